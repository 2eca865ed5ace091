package layout

import (
	"fmt"

	"github.com/dshills/dsbmap/internal/bonds"
	"github.com/dshills/dsbmap/internal/viewport"
	"github.com/dshills/dsbmap/pkg/types"
)

// Bond domain classes
const (
	DomainIntra = "intra"
	DomainInter = "inter"
)

// Scene is everything a renderer needs to draw one record
type Scene struct {
	ID                 string            `json:"id"`
	Length             int               `json:"length"`
	Geometry           viewport.Geometry `json:"geometry"`
	FullScale          bool              `json:"full_scale"`
	FullScaleAvailable bool              `json:"full_scale_available"`
	SulfidePos         float64           `json:"sulfide_pos"`
	Full               View              `json:"full"`
	Window             *WindowView       `json:"window,omitempty"`
	Legend             []LegendItem      `json:"legend"`
}

// View holds the visible marks of one spine
type View struct {
	Segments      []viewport.SegmentPlacement `json:"segments"`
	Bonds         []BondMark                  `json:"bonds"`
	Glycosylation []SiteMark                  `json:"glycosylation"`
	FreeSequons   []SiteMark                  `json:"free_sequons"`
	FreeCysteines []SiteMark                  `json:"free_cysteines"`
}

// WindowView is the clipped view of a window
type WindowView struct {
	Range viewport.Window `json:"range"`
	View
}

// BondMark is a placed bond with its stacking rank and drawing height
type BondMark struct {
	viewport.BondPlacement
	Rank   types.BondRank `json:"rank"`
	Height float64        `json:"height"`
	Domain string         `json:"domain,omitempty"`
}

// SiteMark is a single-residue marker
type SiteMark struct {
	Position types.Position `json:"position"`
	X        float64        `json:"x"`
}

// LegendItem is one legend row
type LegendItem struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
	Visible  bool     `json:"visible"`
}

// Compose ranks the record's bonds and places every visible feature on the
// full spine and, when a window is requested, on the window spine
func Compose(rec *types.AnnotationRecord, opts Options) (*Scene, error) {
	opts = opts.withDefaults()

	geometry, err := viewport.GeometryForWidth(opts.Width, opts.Scale)
	if err != nil {
		return nil, err
	}
	mapper, err := viewport.NewMapper(rec.Length(), geometry, opts.Window, opts.FullScale)
	if err != nil {
		return nil, err
	}

	all := rec.Bonds()
	ranks, err := bonds.Rank(all)
	if err != nil {
		return nil, fmt.Errorf("failed to rank bonds: %w", err)
	}

	c := &composer{
		rec:     rec,
		opts:    opts,
		mapper:  mapper,
		bonds:   all,
		ranks:   ranks,
		domains: domainIndex(rec),
	}

	scene := &Scene{
		ID:                 rec.ID(),
		Length:             rec.Length(),
		Geometry:           mapper.Geometry(),
		FullScale:          mapper.FullScale(),
		FullScaleAvailable: viewport.FullScaleAvailable(rec.Length()),
		SulfidePos:         opts.SulfidePos,
		Full:               c.fullView(),
		Legend:             legend(rec, opts),
	}
	if w, ok := mapper.ActiveWindow(); ok {
		scene.Window = &WindowView{Range: w, View: c.windowView()}
	}
	return scene, nil
}

type composer struct {
	rec     *types.AnnotationRecord
	opts    Options
	mapper  *viewport.Mapper
	bonds   []types.Bond
	ranks   []types.BondRank
	domains map[types.Bond]string
}

func (c *composer) segments() []types.DomainSegment {
	out := make([]types.DomainSegment, 0)
	for _, seg := range c.rec.Segments() {
		if seg.Side == types.SideOutside && !c.opts.Visible(CategoryOutside) {
			continue
		}
		if seg.Side == types.SideInside && !c.opts.Visible(CategoryInside) {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func (c *composer) bondMark(i int, p viewport.BondPlacement) BondMark {
	return BondMark{
		BondPlacement: p,
		Rank:          c.ranks[i],
		Height:        c.opts.SulfidePos + c.opts.BondLength*float64(c.ranks[i]),
		Domain:        c.domains[c.bonds[i]],
	}
}

func (c *composer) fullView() View {
	v := emptyView()
	m := c.mapper

	for _, seg := range c.segments() {
		x := m.Full(seg.Start)
		v.Segments = append(v.Segments, viewport.SegmentPlacement{
			Segment:   seg,
			Placement: viewport.PlaceInside,
			Start:     seg.Start,
			End:       seg.End,
			X:         x,
			Width:     m.Full(seg.End) - x,
		})
	}

	if c.opts.Visible(CategoryDisulfide) {
		for i, b := range c.bonds {
			v.Bonds = append(v.Bonds, c.bondMark(i, viewport.BondPlacement{
				Bond:         b,
				Placement:    viewport.PlaceInside,
				LowX:         m.Full(b.Low),
				HighX:        m.Full(b.High),
				LowAnchored:  true,
				HighAnchored: true,
			}))
		}
	}

	full := func(p types.Position) (float64, bool) { return m.Full(p), true }
	v.Glycosylation = c.sites(CategoryGlycosylation, c.rec.Glycosylation(), full)
	v.FreeSequons = c.sites(CategoryFreeSequons, c.rec.FreeSequons(), full)
	v.FreeCysteines = c.sites(CategoryFreeCysteines, c.rec.FreeCysteines(), full)
	return v
}

func (c *composer) windowView() View {
	v := emptyView()
	m := c.mapper

	for _, seg := range c.segments() {
		if p, ok := m.ClipSegment(seg); ok {
			v.Segments = append(v.Segments, p)
		}
	}

	if c.opts.Visible(CategoryDisulfide) {
		for i, b := range c.bonds {
			if p, ok := m.ClipBond(b); ok {
				v.Bonds = append(v.Bonds, c.bondMark(i, p))
			}
		}
	}

	v.Glycosylation = c.sites(CategoryGlycosylation, c.rec.Glycosylation(), m.Window)
	v.FreeSequons = c.sites(CategoryFreeSequons, c.rec.FreeSequons(), m.Window)
	v.FreeCysteines = c.sites(CategoryFreeCysteines, c.rec.FreeCysteines(), m.Window)
	return v
}

func (c *composer) sites(cat Category, set types.SiteSet, place func(types.Position) (float64, bool)) []SiteMark {
	out := make([]SiteMark, 0)
	if !c.opts.Visible(cat) {
		return out
	}
	for _, p := range set {
		if x, ok := place(p); ok {
			out = append(out, SiteMark{Position: p, X: x})
		}
	}
	return out
}

func emptyView() View {
	return View{
		Segments:      make([]viewport.SegmentPlacement, 0),
		Bonds:         make([]BondMark, 0),
		Glycosylation: make([]SiteMark, 0),
		FreeSequons:   make([]SiteMark, 0),
		FreeCysteines: make([]SiteMark, 0),
	}
}

func domainIndex(rec *types.AnnotationRecord) map[types.Bond]string {
	idx := make(map[types.Bond]string)
	for _, b := range rec.IntraDomainBonds() {
		idx[b] = DomainIntra
	}
	for _, b := range rec.InterDomainBonds() {
		idx[b] = DomainInter
	}
	return idx
}

func legend(rec *types.AnnotationRecord, opts Options) []LegendItem {
	s := rec.Summary()
	items := []LegendItem{
		{Category: CategoryOutside, Label: "Outside", Count: s.OutsideDomains},
		{Category: CategoryInside, Label: "Inside", Count: s.InsideDomains},
		{Category: CategoryGlycosylation, Label: "N-Glycan", Count: s.Glycans},
		{Category: CategoryDisulfide, Label: "Disulfide Bond", Count: s.Disulfides},
		{Category: CategoryFreeSequons, Label: "Free Sequon", Count: s.FreeSequons},
		{Category: CategoryFreeCysteines, Label: "Free Cysteine", Count: s.FreeCysteines},
		{Category: CategoryIntra, Label: "Intra-domain", Count: s.IntraDomain},
		{Category: CategoryInter, Label: "Inter-domain", Count: s.InterDomain},
	}
	for i := range items {
		items[i].Visible = opts.Visible(items[i].Category)
	}
	return items
}
