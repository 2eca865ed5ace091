// Package viewport maps sequence positions into horizontal drawing
// coordinates.
//
// There are two drawing spaces. The full spine shows positions [0, length]
// and can be stretched by a scale factor. The window spine shows a
// caller-selected sub-range at higher resolution:
//
//	g, _ := viewport.GeometryForWidth(1000, 1)
//	w, err := viewport.NewWindow(15, 35, record.Length())
//	if err != nil {
//	    return err // *types.RangeError
//	}
//	m, _ := viewport.NewMapper(record.Length(), g, &w, false)
//
//	x := m.Full(120)
//	wx, ok := m.Window(20)
//
// # Clipping
//
// Segments and bonds that cross a window edge are clipped rather than
// dropped. A bond with one endpoint in the window becomes a stub that runs
// from the anchored endpoint to the nearest window edge:
//
//	window [15,35], bond (5,25)
//
//	   15        25        35
//	   |=========o         |     left stub, low end drawn at the left edge
//
// A bond whose endpoints lie on opposite sides of the window is drawn edge to
// edge with no anchors. Entities completely left or right of the window are
// omitted. Every coordinate returned lies on the spine it was mapped to.
package viewport
