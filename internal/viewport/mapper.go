package viewport

import (
	"fmt"

	"github.com/dshills/dsbmap/pkg/types"
)

// Mapper converts positions of one sequence into x coordinates
type Mapper struct {
	length    int
	geometry  Geometry
	window    Window
	hasWindow bool
	fullScale bool
}

// NewMapper creates a mapper. A nil window selects the whole sequence.
// fullScale draws the full spine at one unit per residue and is ignored for
// sequences shorter than FullScaleMinLength.
func NewMapper(length int, geometry Geometry, window *Window, fullScale bool) (*Mapper, error) {
	if length <= 0 {
		return nil, types.NewFormatError("length", "sequence length must be positive, got %d", length)
	}
	if geometry.SpineWidth <= 0 || geometry.WindowSpineWidth <= 0 {
		return nil, fmt.Errorf("%w: spine widths must be positive", ErrInvalidGeometry)
	}

	m := &Mapper{
		length:    length,
		geometry:  geometry,
		window:    Window{Start: 0, End: types.Position(length)},
		fullScale: fullScale && FullScaleAvailable(length),
	}
	if window != nil {
		w, err := NewWindow(int(window.Start), int(window.End), length)
		if err != nil {
			return nil, err
		}
		m.window = w
		m.hasWindow = true
	}
	return m, nil
}

// Geometry returns the geometry in effect. In full-scale mode the full spine
// is the identity onto [0, length].
func (m *Mapper) Geometry() Geometry {
	g := m.geometry
	if m.fullScale {
		g.SpineStart = 0
		g.SpineWidth = float64(m.length)
	}
	return g
}

// ActiveWindow returns the window in use and whether one was requested
func (m *Mapper) ActiveWindow() (Window, bool) { return m.window, m.hasWindow }

// FullScale reports whether the full spine uses one unit per residue
func (m *Mapper) FullScale() bool { return m.fullScale }

// SpineStart returns the x of position 0 on the full spine
func (m *Mapper) SpineStart() float64 {
	if m.fullScale {
		return 0
	}
	return m.geometry.SpineStart
}

// SpineWidth returns the effective width of the full spine
func (m *Mapper) SpineWidth() float64 {
	if m.fullScale {
		return float64(m.length)
	}
	return m.geometry.SpineWidth
}

// Full maps p onto the full spine. Positions beyond [0, length] are clamped.
// In full-scale mode Full(p) == p.
func (m *Mapper) Full(p types.Position) float64 {
	p = clamp(p, 0, types.Position(m.length))
	if m.fullScale {
		return float64(p)
	}
	return m.geometry.SpineStart + float64(p)/float64(m.length)*m.geometry.SpineWidth
}

// InWindow reports whether p lies in the closed window
func (m *Mapper) InWindow(p types.Position) bool {
	return m.window.Contains(p)
}

// Window maps p onto the window spine. ok is false when p is outside the
// window.
func (m *Mapper) Window(p types.Position) (x float64, ok bool) {
	if !m.InWindow(p) {
		return 0, false
	}
	return m.windowX(p), true
}

// LeftEdge is the x coordinate of the window start
func (m *Mapper) LeftEdge() float64 {
	return m.geometry.WindowSpineStart
}

// RightEdge is the x coordinate of the window end
func (m *Mapper) RightEdge() float64 {
	return m.geometry.WindowSpineStart + m.geometry.WindowSpineWidth
}

// windowX maps a position already known to be inside the window
func (m *Mapper) windowX(p types.Position) float64 {
	return m.geometry.WindowSpineStart +
		float64(p-m.window.Start)/float64(m.window.Span())*m.geometry.WindowSpineWidth
}

// windowWidth scales a residue count against the window span
func (m *Mapper) windowWidth(n int) float64 {
	return float64(n) / float64(m.window.Span()) * m.geometry.WindowSpineWidth
}

// MapFunc returns the position to coordinate function for a viewport. With a
// nil window positions map onto the full spine and ok is always true; with a
// window, positions outside it report ok false.
func MapFunc(length int, viewportWidth float64, window *Window) (func(types.Position) (float64, bool), error) {
	g, err := GeometryForWidth(viewportWidth, 1)
	if err != nil {
		return nil, err
	}
	m, err := NewMapper(length, g, window, false)
	if err != nil {
		return nil, err
	}

	if window == nil {
		return func(p types.Position) (float64, bool) {
			return m.Full(p), true
		}, nil
	}
	return m.Window, nil
}

func clamp(p, lo, hi types.Position) types.Position {
	return min(max(p, lo), hi)
}
