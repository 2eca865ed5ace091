package viewport

import (
	"errors"
	"fmt"

	"github.com/dshills/dsbmap/pkg/types"
)

// ErrInvalidGeometry is returned for a non-positive viewport width or scale
var ErrInvalidGeometry = errors.New("invalid viewport geometry")

// Layout constants of the full view
const (
	// DefaultSpineStart is the x offset of the full spine
	DefaultSpineStart = 30.0

	// FullScaleMinLength is the shortest sequence that may be drawn at one
	// unit per residue
	FullScaleMinLength = 3000
)

// Geometry holds the horizontal extent of both drawing spaces
type Geometry struct {
	SpineStart       float64 `json:"spine_start"`
	SpineWidth       float64 `json:"spine_width"`
	WindowSpineStart float64 `json:"window_spine_start"`
	WindowSpineWidth float64 `json:"window_spine_width"`
}

// GeometryForWidth derives the spines from the viewport width. The margin is
// a tenth of the width on each side. The full spine is stretched by
// scaleFactor; the window spine is not.
func GeometryForWidth(viewportWidth, scaleFactor float64) (Geometry, error) {
	if viewportWidth <= 0 {
		return Geometry{}, fmt.Errorf("%w: viewport width %.2f", ErrInvalidGeometry, viewportWidth)
	}
	if scaleFactor <= 0 {
		return Geometry{}, fmt.Errorf("%w: scale factor %.2f", ErrInvalidGeometry, scaleFactor)
	}

	margin := viewportWidth / 10
	return Geometry{
		SpineStart:       DefaultSpineStart,
		SpineWidth:       viewportWidth*scaleFactor - 2*scaleFactor*margin,
		WindowSpineStart: 0.1 * margin,
		WindowSpineWidth: viewportWidth - 2*margin,
	}, nil
}

// FullScaleAvailable reports whether a sequence of the given length may be
// drawn at one unit per residue
func FullScaleAvailable(length int) bool {
	return length >= FullScaleMinLength
}

// Window is a sub-range of the sequence drawn on the window spine. Both
// bounds are inclusive: a position equal to End lies in the window and maps
// onto the right edge.
type Window struct {
	Start types.Position `json:"start"`
	End   types.Position `json:"end"`
}

// NewWindow validates and clamps a window. start >= end is a RangeError.
// Bounds beyond [0, length] are clamped; a window left empty by clamping is
// also a RangeError.
func NewWindow(start, end, length int) (Window, error) {
	if start >= end {
		return Window{}, &types.RangeError{Start: start, End: end, Length: length, Msg: "window start must be before window end"}
	}

	cs := max(start, 0)
	ce := min(end, length)
	if cs >= ce {
		return Window{}, &types.RangeError{Start: start, End: end, Length: length, Msg: "window does not overlap the sequence"}
	}
	return Window{Start: types.Position(cs), End: types.Position(ce)}, nil
}

// Span returns End - Start
func (w Window) Span() int {
	return int(w.End - w.Start)
}

// Contains reports ws <= p <= we
func (w Window) Contains(p types.Position) bool {
	return w.Start <= p && p <= w.End
}
