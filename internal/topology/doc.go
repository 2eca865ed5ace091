// Package topology decodes the compact membrane topology code of a protein
// into domain segments.
//
// A code is a run of "start marker end delimiter" groups closed by a bare
// "start marker" that extends to the end of the sequence:
//
//	0o10-10i25-25o   (length 40)
//
//	"0o10-"  outside [0,10]
//	"10i25-" inside  [10,25]
//	"25o"    outside [25,40], closed by the terminal marker
//
// The decoder is an explicit two-phase state machine (awaiting start,
// awaiting end). Malformed input is never partially decoded: the caller gets a
// *types.FormatError with the character offset of the violation.
//
// # Basic Usage
//
//	outside, inside, err := topology.Decode("0o10-10i", 25)
//	if err != nil {
//	    return err
//	}
//	// outside: [{0 10}], inside: [{10 25}]
//
// # Partition Checking
//
// Decode only enforces ordering and bounds. CheckPartition additionally
// verifies that the segments tile [0, length] with no gaps:
//
//	if err := topology.CheckPartition(outside, inside, 25); err != nil {
//	    return err
//	}
//
// Encode is the inverse of Decode for a tiling and is used to echo a
// normalized code.
package topology
