// Package sites splits annotated positions into modified and free subsets.
//
// A free sequon is a sequon position that is not glycosylated. A free
// cysteine is a cysteine that is not an endpoint of any disulfide bond.
// Cysteine positions arrive 0-based and are shifted with NormalizeCysteines
// before they are compared against bond endpoints.
package sites
