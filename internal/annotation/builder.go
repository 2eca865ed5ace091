package annotation

import (
	"strings"

	"github.com/dshills/dsbmap/internal/bonds"
	"github.com/dshills/dsbmap/internal/sites"
	"github.com/dshills/dsbmap/internal/topology"
	"github.com/dshills/dsbmap/pkg/types"
)

// Options controls validation strictness
type Options struct {
	// StrictPartition rejects topology codes whose segments leave gaps in
	// [0, length]
	StrictPartition bool
}

// Build normalizes a raw record into an AnnotationRecord. The steps run in a
// fixed order and the first error aborts the build; no partial record is
// ever returned.
func Build(raw types.RawRecord, opts Options) (*types.AnnotationRecord, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return nil, types.NewFormatError("id", "record id is empty")
	}
	if raw.Length <= 0 {
		return nil, types.NewFormatError("length", "sequence length must be positive, got %d", raw.Length)
	}

	outside, inside, err := topology.Decode(raw.TopologyCode, raw.Length)
	if err != nil {
		return nil, err
	}
	if opts.StrictPartition {
		if err := topology.CheckPartition(outside, inside, raw.Length); err != nil {
			return nil, err
		}
	}

	allBonds, err := bonds.ParseBondsWithin(raw.DisulfideBonds, raw.Length)
	if err != nil {
		return nil, err
	}

	glyco, err := sites.ParsePositionsWithin(sites.FieldGlycosylation, raw.GlycosylationSites, raw.Length)
	if err != nil {
		return nil, err
	}
	sequons, err := sites.ParsePositionsWithin(sites.FieldSequons, raw.SequonSites, raw.Length)
	if err != nil {
		return nil, err
	}

	cysOffsets, err := sites.ParseOffsetsWithin(sites.FieldCysteines, raw.CysteinePositions, raw.Length)
	if err != nil {
		return nil, err
	}
	cysteines := types.NewSiteSet(sites.NormalizeCysteines(cysOffsets))

	totalSequons := types.NewSiteSet(sequons)
	freeSequons := sites.Free(totalSequons, glyco)
	freeCys := sites.Free(cysteines, sites.BondEndpoints(allBonds))

	intra, inter := bonds.ClassifyDomains(allBonds, outside)

	return types.NewAnnotationRecord(types.AnnotationParts{
		ID:            id,
		EntryName:     raw.EntryName,
		Description:   raw.Description,
		Length:        raw.Length,
		TopologyCode:  strings.TrimSpace(raw.TopologyCode),
		Inside:        inside,
		Outside:       outside,
		Bonds:         allBonds,
		Glycosylation: types.NewSiteSet(glyco),
		TotalSequons:  totalSequons,
		FreeSequons:   freeSequons,
		TotalCys:      cysteines,
		FreeCys:       freeCys,
		IntraBonds:    intra,
		InterBonds:    inter,
	}), nil
}
