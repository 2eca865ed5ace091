package layout

import (
	"fmt"
	"strings"

	"github.com/dshills/dsbmap/internal/viewport"
)

// Category is a legend entry that can be shown or hidden
type Category string

// Legend categories. Intra and inter are counts only; their bonds follow
// the disulfide toggle.
const (
	CategoryOutside       Category = "outside"
	CategoryInside        Category = "inside"
	CategoryGlycosylation Category = "glycosylation"
	CategoryDisulfide     Category = "disulfide"
	CategoryFreeSequons   Category = "free_sequons"
	CategoryFreeCysteines Category = "free_cysteines"
	CategoryIntra         Category = "intra_domain"
	CategoryInter         Category = "inter_domain"
)

var toggles = []Category{
	CategoryOutside, CategoryInside, CategoryGlycosylation,
	CategoryDisulfide, CategoryFreeSequons, CategoryFreeCysteines,
}

// ParseCategory parses a toggleable category name
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range toggles {
		if c == t {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown legend category %q", s)
}

// Defaults of the original viewer
const (
	DefaultWidth      = 1000.0
	DefaultHeight     = 500.0
	DefaultBondLength = 40.0
	SpineHeight       = 30.0
)

// Options controls one scene
type Options struct {
	Width      float64          // Viewport width
	Height     float64          // Viewport height, used for the default SulfidePos
	Scale      float64          // Full spine stretch factor
	FullScale  bool             // One unit per residue, honoured for long sequences only
	Window     *viewport.Window // Optional window view
	SulfidePos float64          // Baseline y of bond stems
	BondLength float64          // Height added per rank step
	Hidden     map[Category]bool
}

// DefaultOptions returns the viewer defaults with every category visible
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Scale:      1,
		BondLength: DefaultBondLength,
	}
}

// Visible reports whether c is shown
func (o Options) Visible(c Category) bool {
	switch c {
	case CategoryIntra, CategoryInter:
		c = CategoryDisulfide
	}
	return !o.Hidden[c]
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.BondLength == 0 {
		o.BondLength = DefaultBondLength
	}
	if o.SulfidePos == 0 {
		o.SulfidePos = o.Height/2 + SpineHeight/2
	}
	return o
}
