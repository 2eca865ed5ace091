// Package annotation turns a raw record into an immutable AnnotationRecord.
//
// Build runs the topology decoder, the site parsers and the bond classifier
// in a fixed order:
//
//  1. validate id and length
//  2. decode the topology code (and check the partition in strict mode)
//  3. parse disulfide bonds
//  4. parse glycosylation sites and sequons
//  5. parse cysteines and shift them to 1-based positions
//  6. compute free sequons and free cysteines
//  7. classify bonds as intra or inter domain
//
// Ranking and coordinate mapping depend on the current view and are not part
// of the record; see the bonds and viewport packages.
package annotation
