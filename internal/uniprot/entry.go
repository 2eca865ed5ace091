package uniprot

// Entry is the subset of a UniProtKB JSON entry used for annotation
type Entry struct {
	PrimaryAccession   string             `json:"primaryAccession"`
	UniProtKBID        string             `json:"uniProtkbId"`
	ProteinDescription ProteinDescription `json:"proteinDescription"`
	Sequence           Sequence           `json:"sequence"`
	Features           []Feature          `json:"features"`
}

// ProteinDescription holds the recommended protein name
type ProteinDescription struct {
	RecommendedName *struct {
		FullName struct {
			Value string `json:"value"`
		} `json:"fullName"`
	} `json:"recommendedName,omitempty"`
}

// Name returns the recommended full name, or "" when absent
func (d ProteinDescription) Name() string {
	if d.RecommendedName == nil {
		return ""
	}
	return d.RecommendedName.FullName.Value
}

// Sequence is the canonical amino acid sequence
type Sequence struct {
	Value  string `json:"value"`
	Length int    `json:"length"`
}

// Feature is one sequence feature. Only the type, description and location
// are read.
type Feature struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Location    Location `json:"location"`
}

// Location is a feature's 1-based start and end
type Location struct {
	Start LocationValue `json:"start"`
	End   LocationValue `json:"end"`
}

// LocationValue is nil when UniProt marks the position unknown
type LocationValue struct {
	Value    *int   `json:"value"`
	Modifier string `json:"modifier,omitempty"`
}

// Feature types read by Derive
const (
	FeatureGlycosylation = "Glycosylation"
	FeatureDisulfide     = "Disulfide bond"
)
