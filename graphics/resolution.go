package graphics

import "fmt"

// Resolution is an output display mode.
type Resolution int

const (
	ResolutionInvalid Resolution = iota
	ResolutionDesktop
	ResolutionPAL4x3
	ResolutionPAL60
	ResolutionNTSC4x3
	ResolutionHDTV480p4x3
	ResolutionHDTV720p
	ResolutionHDTV1080p
)

var resolutionNames = map[Resolution]string{
	ResolutionInvalid:     "invalid",
	ResolutionDesktop:     "desktop",
	ResolutionPAL4x3:      "pal",
	ResolutionPAL60:       "pal60",
	ResolutionNTSC4x3:     "ntsc",
	ResolutionHDTV480p4x3: "480p",
	ResolutionHDTV720p:    "720p",
	ResolutionHDTV1080p:   "1080p",
}

func (r Resolution) String() string {
	if name, ok := resolutionNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Resolution(%d)", int(r))
}

// Is4x3TV reports whether the mode is one of the 4:3 television modes.
func (r Resolution) Is4x3TV() bool {
	switch r {
	case ResolutionPAL4x3, ResolutionPAL60, ResolutionNTSC4x3, ResolutionHDTV480p4x3:
		return true
	}
	return false
}
