// Package types provides shared type definitions for dsbmap.
//
// This package defines the domain types passed between the decoder, the
// classifiers, the layout engine and the outer catalog/MCP layers.
//
// # Core Types
//
// Position is a 1-based residue index. DomainSegment tags a closed Interval
// with the side of the membrane it lies on:
//
//	seg := types.DomainSegment{
//	    Interval: types.Interval{Start: 0, End: 10},
//	    Side:     types.SideOutside,
//	}
//
// Bond is a disulfide linkage with Low < High. Always construct bonds with
// NewBond, which swaps reversed endpoints and rejects equal ones:
//
//	bond, err := types.NewBond(50, 10) // Bond{Low: 10, High: 50}
//
// # Records
//
// RawRecord is the textual input for one protein entry. AnnotationRecord is
// the normalized output of the annotation builder; it is immutable and its
// accessors return copies:
//
//	rec := types.NewAnnotationRecord(parts)
//	for _, b := range rec.InterDomainBonds() {
//	    fmt.Println(b)
//	}
//
// # Errors
//
// Three error kinds cross package boundaries:
//
//	FormatError  // raw record or topology code is malformed
//	RangeError   // degenerate view window
//	LookupError  // record could not be obtained
//
// Each matches its sentinel through errors.Is:
//
//	if errors.Is(err, types.ErrFormat) {
//	    // reject the record
//	}
package types
