package rendermanager

import (
	"log/slog"

	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/pixfmt"
	"github.com/user-none/retrovideo/processinfo"
)

// Video is the producer-side stream interface of a player. It configures
// the manager for each pixel stream and keeps the process telemetry in
// step with it.
type Video struct {
	rm   *Manager
	info *processinfo.ProcessInfo
	log  *slog.Logger
}

// NewVideo initializes rm and returns a stream facade over it. info may be
// nil.
func NewVideo(rm *Manager, info *processinfo.ProcessInfo, logger *slog.Logger) *Video {
	rm.Initialize()
	if info == nil {
		info = processinfo.New(nil)
	}
	return &Video{rm: rm, info: info, log: logging.Or(logger)}
}

// OpenPixelStream starts a raw frame stream.
func (v *Video) OpenPixelStream(format pixfmt.Format, width, height, orientation int) bool {
	v.log.Info("creating video stream", "format", format, "width", width, "height", height,
		"orientation", orientation)

	v.info.SetVideoPixelFormat(format.String())
	v.info.SetVideoDimensions(width, height)
	v.info.SetVideoDAR(displayAspect(width, height, orientation))

	return v.rm.Configure(format, width, height, orientation)
}

// OpenEncodedStream always fails: only raw pixel streams are rendered.
func (v *Video) OpenEncodedStream(codec string) bool {
	v.log.Warn("encoded video streams are not supported", "codec", codec)
	return false
}

// SetFrameRate records the stream frame rate.
func (v *Video) SetFrameRate(fps float64) {
	v.info.SetVideoFps(fps)
	v.rm.SetFrameRate(fps)
}

// AddData queues one frame.
func (v *Video) AddData(data []byte) {
	v.rm.AddFrame(data)
}

// CloseStream discards the pending frame and resets the telemetry.
func (v *Video) CloseStream() {
	v.rm.Flush()
	v.info.ResetInfo()
}

// Close ends the stream and releases the backend.
func (v *Video) Close() {
	v.CloseStream()
	v.rm.Deinitialize()
}

// displayAspect is the corrected frame aspect as shown on screen.
func displayAspect(width, height, orientation int) float64 {
	e := geometry.NewEngine()
	e.SetSource(width, height, orientation)
	ar := e.AspectRatio()
	if orientation == 90 || orientation == 270 {
		return 1 / ar
	}
	return ar
}
