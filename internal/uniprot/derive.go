package uniprot

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/dsbmap/pkg/types"
)

var (
	nxtPattern = regexp.MustCompile(`N[A-Z]T`)
	nxsPattern = regexp.MustCompile(`N[A-Z]S`)
)

// Derive completes a topology-only catalog row with the annotation lists
// found in a UniProt entry. Length and topology code stay those of the
// catalog; names are taken from the entry only when the row has none.
func Derive(entry *Entry, row types.RawRecord) types.RawRecord {
	out := row
	if out.EntryName == "" {
		out.EntryName = entry.UniProtKBID
	}
	if out.Description == "" {
		out.Description = entry.ProteinDescription.Name()
	}
	if out.Length == 0 {
		out.Length = entry.Sequence.Length
	}

	out.GlycosylationSites = GlycosylationSites(entry.Features)
	out.DisulfideBonds = DisulfideBonds(entry.Features)
	out.CysteinePositions = CysteineOffsets(entry.Sequence.Value)
	out.SequonSites = Sequons(entry.Sequence.Value)
	return out
}

// GlycosylationSites returns the start of every N-linked glycosylation
// feature. Non-enzymatic glycation is excluded.
func GlycosylationSites(features []Feature) []string {
	out := make([]string, 0)
	for _, f := range features {
		if f.Type != FeatureGlycosylation {
			continue
		}
		if !strings.Contains(f.Description, "N-linked") || strings.Contains(f.Description, "glycation") {
			continue
		}
		if f.Location.Start.Value == nil {
			continue
		}
		out = append(out, strconv.Itoa(*f.Location.Start.Value))
	}
	return out
}

// DisulfideBonds returns every disulfide feature as "start end"
func DisulfideBonds(features []Feature) []string {
	out := make([]string, 0)
	for _, f := range features {
		if f.Type != FeatureDisulfide {
			continue
		}
		start, end := f.Location.Start.Value, f.Location.End.Value
		if start == nil || end == nil {
			continue
		}
		out = append(out, strconv.Itoa(*start)+" "+strconv.Itoa(*end))
	}
	return out
}

// CysteineOffsets returns the 0-based offset of every C in the sequence
func CysteineOffsets(sequence string) []string {
	out := make([]string, 0)
	for i := 0; i < len(sequence); i++ {
		if sequence[i] == 'C' {
			out = append(out, strconv.Itoa(i))
		}
	}
	return out
}

// Sequons returns the 1-based start of every N-X-T and N-X-S motif in
// ascending order
func Sequons(sequence string) []string {
	var starts []int
	for _, re := range []*regexp.Regexp{nxtPattern, nxsPattern} {
		for _, loc := range re.FindAllStringIndex(sequence, -1) {
			starts = append(starts, loc[0]+1)
		}
	}
	slices.Sort(starts)

	out := make([]string, 0, len(starts))
	for _, s := range starts {
		out = append(out, strconv.Itoa(s))
	}
	return out
}
