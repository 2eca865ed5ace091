package topology

import (
	"strconv"
	"strings"

	"github.com/dshills/dsbmap/pkg/types"
)

// Code alphabet
const (
	MarkerInside  = 'i'
	MarkerOutside = 'o'
	Delimiter     = '-'
)

const field = "topologyCode"

// state is the phase of the segment currently being read
type state int

const (
	awaitingStart state = iota // reading the start number, expecting a side marker
	awaitingEnd                // reading the end number, expecting a delimiter
	done                       // closed by a terminal marker, no input may follow
)

func (s state) String() string {
	switch s {
	case awaitingStart:
		return "awaiting start"
	case awaitingEnd:
		return "awaiting end"
	default:
		return "done"
	}
}

// decoder holds the scan state of a single Decode call
type decoder struct {
	code   string
	length int

	state state
	buf   strings.Builder
	start types.Position
	side  types.Side

	outside []types.DomainSegment
	inside  []types.DomainSegment
	lastEnd types.Position
	pushed  bool
}

// Decode splits a topology code into its outside and inside domain segments.
//
// The code is a sequence of "start marker end delimiter" groups where the
// final group is a bare "start marker" that runs to the end of the sequence,
// e.g. "0o10-10i" for length 25 yields outside [0,10] and inside [10,25].
// An empty start number means 0. Any deviation from that shape, including a
// code whose last character is not a marker, is reported as a
// *types.FormatError and no segments are returned.
func Decode(code string, length int) (outside, inside []types.DomainSegment, err error) {
	if length <= 0 {
		return nil, nil, types.NewFormatError("length", "sequence length must be positive, got %d", length)
	}

	d := &decoder{
		code:   strings.TrimSpace(code),
		length: length,
	}
	if d.code == "" {
		return nil, nil, types.NewFormatError(field, "empty topology code")
	}

	for i := 0; i < len(d.code); i++ {
		if err := d.step(i, d.code[i]); err != nil {
			return nil, nil, err
		}
	}

	if d.state != done {
		return nil, nil, d.errorf(len(d.code)-1, "code must end with a side marker, ended while %s", d.state)
	}

	return d.outside, d.inside, nil
}

// step applies one character to the state machine
func (d *decoder) step(offset int, c byte) error {
	switch {
	case c >= '0' && c <= '9':
		d.buf.WriteByte(c)
		return nil

	case c == MarkerInside || c == MarkerOutside:
		return d.onMarker(offset, c)

	case c == Delimiter:
		return d.onDelimiter(offset)

	default:
		return d.errorf(offset, "unexpected character %q", c)
	}
}

// onMarker closes the start phase
func (d *decoder) onMarker(offset int, c byte) error {
	if d.state != awaitingStart {
		return d.errorf(offset, "side marker %q while %s", c, d.state)
	}

	start, err := d.takeNumber(offset, true)
	if err != nil {
		return err
	}
	d.start = start
	d.side = types.SideOutside
	if c == MarkerInside {
		d.side = types.SideInside
	}
	d.state = awaitingEnd

	// A marker as the very last character runs to the end of the sequence
	if offset == len(d.code)-1 {
		if err := d.push(offset, types.Position(d.length)); err != nil {
			return err
		}
		d.state = done
	}
	return nil
}

// onDelimiter closes the end phase and emits the segment
func (d *decoder) onDelimiter(offset int) error {
	if d.state != awaitingEnd {
		return d.errorf(offset, "delimiter while %s", d.state)
	}

	end, err := d.takeNumber(offset, false)
	if err != nil {
		return err
	}
	if err := d.push(offset, end); err != nil {
		return err
	}
	d.state = awaitingStart
	return nil
}

// takeNumber consumes the buffer. An empty buffer is 0 for a start and an
// error for an end.
func (d *decoder) takeNumber(offset int, isStart bool) (types.Position, error) {
	text := d.buf.String()
	d.buf.Reset()

	if text == "" {
		if isStart {
			return 0, nil
		}
		return 0, d.errorf(offset, "missing end position before delimiter")
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, d.errorf(offset, "invalid number %q: %v", text, err)
	}
	return types.Position(n), nil
}

// push validates and appends a segment to the list of the current side
func (d *decoder) push(offset int, end types.Position) error {
	seg := types.DomainSegment{
		Interval: types.Interval{Start: d.start, End: end},
		Side:     d.side,
	}

	if seg.Start > seg.End {
		return d.errorf(offset, "segment %s starts after it ends", seg)
	}
	if int(seg.End) > d.length {
		return d.errorf(offset, "segment %s exceeds sequence length %d", seg, d.length)
	}
	if d.pushed && seg.Start < d.lastEnd {
		return d.errorf(offset, "segment %s overlaps the previous segment ending at %d", seg, d.lastEnd)
	}
	d.lastEnd = seg.End
	d.pushed = true

	if d.side == types.SideInside {
		d.inside = append(d.inside, seg)
	} else {
		d.outside = append(d.outside, seg)
	}
	return nil
}

func (d *decoder) errorf(offset int, format string, args ...any) *types.FormatError {
	fe := types.NewFormatError(field, format, args...)
	fe.Offset = offset
	return fe
}
