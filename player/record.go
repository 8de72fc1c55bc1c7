package player

import (
	"fmt"
	"io"

	"github.com/user-none/retrovideo/framedump"
)

// Record writes up to frames frames from src into a frame dump on w and
// returns the number written. A source that changes its stream mid-way
// ends the recording, since a dump holds a single stream.
func Record(src Source, w io.Writer, frames int) (int, error) {
	st := src.Stream()
	dw, err := framedump.NewWriter(w, framedump.Header{
		Format:      st.Format,
		Width:       st.Width,
		Height:      st.Height,
		Orientation: st.Orientation,
		FPS:         st.FPS,
	})
	if err != nil {
		return 0, err
	}

	for dw.Frames() < frames {
		frame, err := src.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dw.Frames(), err
		}
		if src.Stream() != st {
			break
		}
		if err := dw.WriteFrame(frame); err != nil {
			return dw.Frames(), fmt.Errorf("failed to write frame %d: %w", dw.Frames(), err)
		}
	}

	n := dw.Frames()
	if err := dw.Close(); err != nil {
		return n, err
	}
	return n, nil
}
