package viewport

import (
	"github.com/dshills/dsbmap/pkg/types"
)

// Placement describes how an entity sits relative to the window
type Placement string

const (
	// PlaceInside: both ends are in the window
	PlaceInside Placement = "inside"
	// PlaceLeftStub: the low end is left of the window and is drawn at the
	// left edge
	PlaceLeftStub Placement = "left_stub"
	// PlaceRightStub: the high end is right of the window and is drawn at the
	// right edge
	PlaceRightStub Placement = "right_stub"
	// PlaceSpanning: the entity covers the whole window, edge to edge
	PlaceSpanning Placement = "spanning"
)

// SegmentPlacement is a domain segment clipped to the window
type SegmentPlacement struct {
	Segment   types.DomainSegment `json:"segment"`
	Placement Placement           `json:"placement"`
	Start     types.Position      `json:"clipped_start"`
	End       types.Position      `json:"clipped_end"`
	X         float64             `json:"x"`
	Width     float64             `json:"width"`
}

// BondPlacement is a bond clipped to the window. An endpoint that is not
// anchored is drawn at a window edge instead of its true position.
type BondPlacement struct {
	Bond         types.Bond `json:"bond"`
	Placement    Placement  `json:"placement"`
	LowX         float64    `json:"low_x"`
	HighX        float64    `json:"high_x"`
	LowAnchored  bool       `json:"low_anchored"`
	HighAnchored bool       `json:"high_anchored"`
}

// ClipSegment places seg on the window spine. ok is false when the segment
// shares no extent with the window. A segment crossing a window edge is cut
// at that edge and its width is measured against the window span.
func (m *Mapper) ClipSegment(seg types.DomainSegment) (SegmentPlacement, bool) {
	ws, we := m.window.Start, m.window.End
	if seg.End <= ws || seg.Start >= we {
		// Zero-length segments sitting inside the window are still drawn
		if !(seg.Start == seg.End && m.InWindow(seg.Start)) {
			return SegmentPlacement{}, false
		}
	}

	start := max(seg.Start, ws)
	end := min(seg.End, we)

	placement := PlaceInside
	switch {
	case seg.Start < ws && seg.End > we:
		placement = PlaceSpanning
	case seg.Start < ws:
		placement = PlaceLeftStub
	case seg.End > we:
		placement = PlaceRightStub
	}

	return SegmentPlacement{
		Segment:   seg,
		Placement: placement,
		Start:     start,
		End:       end,
		X:         m.windowX(start),
		Width:     m.windowWidth(int(end - start)),
	}, true
}

// ClipBond places a bond on the window spine. ok is false when both endpoints
// lie on the same side outside the window.
func (m *Mapper) ClipBond(b types.Bond) (BondPlacement, bool) {
	ws, we := m.window.Start, m.window.End
	lowIn, highIn := m.InWindow(b.Low), m.InWindow(b.High)

	p := BondPlacement{Bond: b, LowAnchored: lowIn, HighAnchored: highIn}
	switch {
	case lowIn && highIn:
		p.Placement = PlaceInside
		p.LowX, p.HighX = m.windowX(b.Low), m.windowX(b.High)

	case highIn:
		p.Placement = PlaceLeftStub
		p.LowX, p.HighX = m.LeftEdge(), m.windowX(b.High)

	case lowIn:
		p.Placement = PlaceRightStub
		p.LowX, p.HighX = m.windowX(b.Low), m.RightEdge()

	case b.Low < ws && b.High > we:
		p.Placement = PlaceSpanning
		p.LowX, p.HighX = m.LeftEdge(), m.RightEdge()

	default:
		return BondPlacement{}, false
	}
	return p, true
}
