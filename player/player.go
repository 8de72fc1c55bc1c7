// Package player drives a frame Source into the video pipeline on its own
// goroutine, paced to the stream's frame rate.
package player

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/pixfmt"
)

// Sink receives the stream. rendermanager.Video implements it.
type Sink interface {
	OpenPixelStream(format pixfmt.Format, width, height, orientation int) bool
	SetFrameRate(fps float64)
	AddData(data []byte)
	CloseStream()
}

var (
	// ErrOpenStream is returned when the sink rejects the stream.
	ErrOpenStream = errors.New("video sink rejected stream")
	// ErrRunning is returned by Start on a player that was already started.
	ErrRunning = errors.New("player already started")
)

// Options configure a Player.
type Options struct {
	// Loop restarts sources implementing Rewinder when they end.
	Loop   bool
	Logger *slog.Logger
	// Sleep replaces time.Sleep for pacing.
	Sleep func(time.Duration)
}

// Player feeds frames from a Source to a Sink.
type Player struct {
	src   Source
	sink  Sink
	ctrl  *Control
	loop  bool
	sleep func(time.Duration)
	log   *slog.Logger

	startOnce sync.Once
	started   atomic.Bool
	stopOnce  sync.Once
	done      chan struct{}
	frames    atomic.Uint64

	errMu sync.Mutex
	err   error
}

// New returns a stopped player.
func New(src Source, sink Sink, opts Options) *Player {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Player{
		src:   src,
		sink:  sink,
		ctrl:  NewControl(),
		loop:  opts.Loop,
		sleep: sleep,
		log:   logging.Or(opts.Logger),
		done:  make(chan struct{}),
	}
}

// Start opens the stream and begins producing frames.
func (p *Player) Start() error {
	err := ErrRunning
	p.startOnce.Do(func() {
		st := p.src.Stream()
		if err = p.open(st); err != nil {
			close(p.done)
			return
		}
		p.started.Store(true)
		go p.run(st)
	})
	return err
}

func (p *Player) open(st Stream) error {
	if !p.sink.OpenPixelStream(st.Format, st.Width, st.Height, st.Orientation) {
		return ErrOpenStream
	}
	p.sink.SetFrameRate(st.FPS)
	return nil
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

// run produces frames until the source ends or Stop is called.
func (p *Player) run(st Stream) {
	defer close(p.done)
	defer p.sink.CloseStream()
	// Releases any caller blocked in Pause.
	defer p.ctrl.Stop()

	frameTime := frameDuration(st.FPS)
	lastFrameTime := time.Now()

	for {
		if !p.ctrl.CheckPause() {
			return
		}

		frame, err := p.src.NextFrame()
		if err == io.EOF {
			rw, ok := p.src.(Rewinder)
			if !p.loop || !ok {
				p.log.Debug("source ended", "frames", p.frames.Load())
				return
			}
			rw.Rewind()
			continue
		}
		if err != nil {
			p.setErr(err)
			p.log.Error("source failed", "error", err)
			return
		}

		if cur := p.src.Stream(); cur != st {
			p.log.Info("stream changed",
				"format", cur.Format.String(),
				"width", cur.Width,
				"height", cur.Height,
				"fps", cur.FPS,
			)
			if err := p.open(cur); err != nil {
				p.setErr(err)
				return
			}
			st = cur
			frameTime = frameDuration(st.FPS)
		}

		p.sink.AddData(frame)
		p.frames.Add(1)

		sleepTime := frameTime - time.Since(lastFrameTime)
		if sleepTime > time.Millisecond {
			p.sleep(sleepTime)
		}
		lastFrameTime = time.Now()
	}
}

func (p *Player) setErr(err error) {
	p.errMu.Lock()
	p.err = err
	p.errMu.Unlock()
}

// Err returns the error that ended playback, if any.
func (p *Player) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Pause blocks until the producer is parked between frames. It does
// nothing on a player that is not running.
func (p *Player) Pause() {
	if !p.started.Load() {
		return
	}
	p.ctrl.RequestPause()
}

// Resume continues a paused player.
func (p *Player) Resume() { p.ctrl.RequestResume() }

// Paused reports whether the producer is parked.
func (p *Player) Paused() bool { return p.ctrl.IsPaused() }

// Frames returns the number of frames handed to the sink.
func (p *Player) Frames() uint64 { return p.frames.Load() }

// Done is closed when the producer has exited.
func (p *Player) Done() <-chan struct{} { return p.done }

// Wait blocks until the producer exits and returns Err.
func (p *Player) Wait() error {
	<-p.done
	return p.Err()
}

// Stop ends playback, waits for the producer and closes the source.
// Stop on a player that was never started only closes the source.
func (p *Player) Stop() error {
	var err error
	p.stopOnce.Do(func() {
		p.ctrl.Stop()
		p.startOnce.Do(func() { close(p.done) })
		<-p.done
		err = p.src.Close()
	})
	return err
}
