package types

import (
	"cmp"
	"encoding/json"
	"slices"
)

// RawRecord is one entity as handed over by a dataset row or a remote lookup
type RawRecord struct {
	// Identification
	ID          string `json:"id"`
	EntryName   string `json:"entry_name,omitempty"`
	Description string `json:"description,omitempty"`

	// Topology
	Length       int    `json:"length"`
	TopologyCode string `json:"topology_code"`

	// Annotation lists, still in their textual form
	DisulfideBonds     []string `json:"disulfide_bonds"`     // "low high" per entry
	GlycosylationSites []string `json:"glycosylation_sites"` // 1-based positions
	SequonSites        []string `json:"sequon_sites"`        // 1-based positions
	CysteinePositions  []string `json:"cysteine_positions"`  // 0-based positions
}

// AnnotationParts carries the derived fields used to construct an
// AnnotationRecord. The constructor copies every slice.
type AnnotationParts struct {
	ID           string
	EntryName    string
	Description  string
	Length       int
	TopologyCode string

	Inside  []DomainSegment
	Outside []DomainSegment

	Bonds         []Bond
	Glycosylation SiteSet
	TotalSequons  SiteSet
	FreeSequons   SiteSet
	TotalCys      SiteSet
	FreeCys       SiteSet
	IntraBonds    []Bond
	InterBonds    []Bond
}

// AnnotationRecord is the normalized, immutable view of a raw record.
// Accessors return copies; the record is never modified after construction.
type AnnotationRecord struct {
	p AnnotationParts
}

// NewAnnotationRecord builds a record from parts
func NewAnnotationRecord(parts AnnotationParts) *AnnotationRecord {
	parts.Inside = slices.Clone(parts.Inside)
	parts.Outside = slices.Clone(parts.Outside)
	parts.Bonds = slices.Clone(parts.Bonds)
	parts.Glycosylation = slices.Clone(parts.Glycosylation)
	parts.TotalSequons = slices.Clone(parts.TotalSequons)
	parts.FreeSequons = slices.Clone(parts.FreeSequons)
	parts.TotalCys = slices.Clone(parts.TotalCys)
	parts.FreeCys = slices.Clone(parts.FreeCys)
	parts.IntraBonds = slices.Clone(parts.IntraBonds)
	parts.InterBonds = slices.Clone(parts.InterBonds)
	return &AnnotationRecord{p: parts}
}

func (r *AnnotationRecord) ID() string { return r.p.ID }
func (r *AnnotationRecord) EntryName() string { return r.p.EntryName }
func (r *AnnotationRecord) Description() string { return r.p.Description }
func (r *AnnotationRecord) Length() int { return r.p.Length }
func (r *AnnotationRecord) TopologyCode() string { return r.p.TopologyCode }
func (r *AnnotationRecord) Inside() []DomainSegment { return slices.Clone(r.p.Inside) }
func (r *AnnotationRecord) Outside() []DomainSegment { return slices.Clone(r.p.Outside) }
func (r *AnnotationRecord) Bonds() []Bond { return slices.Clone(r.p.Bonds) }
func (r *AnnotationRecord) Glycosylation() SiteSet { return slices.Clone(r.p.Glycosylation) }
func (r *AnnotationRecord) TotalSequons() SiteSet { return slices.Clone(r.p.TotalSequons) }
func (r *AnnotationRecord) FreeSequons() SiteSet { return slices.Clone(r.p.FreeSequons) }
func (r *AnnotationRecord) TotalCysteines() SiteSet { return slices.Clone(r.p.TotalCys) }
func (r *AnnotationRecord) FreeCysteines() SiteSet { return slices.Clone(r.p.FreeCys) }
func (r *AnnotationRecord) IntraDomainBonds() []Bond { return slices.Clone(r.p.IntraBonds) }
func (r *AnnotationRecord) InterDomainBonds() []Bond { return slices.Clone(r.p.InterBonds) }

// Segments returns inside and outside segments merged and sorted by start
func (r *AnnotationRecord) Segments() []DomainSegment {
	all := make([]DomainSegment, 0, len(r.p.Inside)+len(r.p.Outside))
	all = append(all, r.p.Inside...)
	all = append(all, r.p.Outside...)
	slices.SortStableFunc(all, func(a, b DomainSegment) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return all
}

// Summary holds the per-record counts shown next to the legend
type Summary struct {
	Glycans        int `json:"n_glycans"`
	Disulfides     int `json:"disulfides"`
	FreeSequons    int `json:"free_sequons"`
	FreeCysteines  int `json:"free_cysteines"`
	IntraDomain    int `json:"intra_domain_bonds"`
	InterDomain    int `json:"inter_domain_bonds"`
	OutsideDomains int `json:"outside_domains"`
	InsideDomains  int `json:"inside_domains"`
}

// Summary computes the record counts
func (r *AnnotationRecord) Summary() Summary {
	return Summary{
		Glycans:        len(r.p.Glycosylation),
		Disulfides:     len(r.p.Bonds),
		FreeSequons:    len(r.p.FreeSequons),
		FreeCysteines:  len(r.p.FreeCys),
		IntraDomain:    len(r.p.IntraBonds),
		InterDomain:    len(r.p.InterBonds),
		OutsideDomains: len(r.p.Outside),
		InsideDomains:  len(r.p.Inside),
	}
}

type annotationJSON struct {
	ID            string          `json:"id"`
	EntryName     string          `json:"entry_name,omitempty"`
	Description   string          `json:"description,omitempty"`
	Length        int             `json:"length"`
	TopologyCode  string          `json:"topology_code"`
	Inside        []DomainSegment `json:"inside_domains"`
	Outside       []DomainSegment `json:"outside_domains"`
	Bonds         []Bond          `json:"disulfide_bonds"`
	Glycosylation SiteSet         `json:"glycosylation_sites"`
	TotalSequons  SiteSet         `json:"total_sequons"`
	FreeSequons   SiteSet         `json:"free_sequons"`
	TotalCys      SiteSet         `json:"total_cysteines"`
	FreeCys       SiteSet         `json:"free_cysteines"`
	IntraBonds    []Bond          `json:"intra_domain_bonds"`
	InterBonds    []Bond          `json:"inter_domain_bonds"`
	Summary       Summary         `json:"summary"`
}

// MarshalJSON encodes the record with empty lists rendered as []
func (r *AnnotationRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(annotationJSON{
		ID:            r.p.ID,
		EntryName:     r.p.EntryName,
		Description:   r.p.Description,
		Length:        r.p.Length,
		TopologyCode:  r.p.TopologyCode,
		Inside:        nonNil(r.p.Inside),
		Outside:       nonNil(r.p.Outside),
		Bonds:         nonNil(r.p.Bonds),
		Glycosylation: nonNil(r.p.Glycosylation),
		TotalSequons:  nonNil(r.p.TotalSequons),
		FreeSequons:   nonNil(r.p.FreeSequons),
		TotalCys:      nonNil(r.p.TotalCys),
		FreeCys:       nonNil(r.p.FreeCys),
		IntraBonds:    nonNil(r.p.IntraBonds),
		InterBonds:    nonNil(r.p.InterBonds),
		Summary:       r.Summary(),
	})
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
