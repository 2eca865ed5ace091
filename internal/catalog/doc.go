// Package catalog reads protein catalog files in CSV form.
//
// Two layouts are understood. The dataset layout carries everything needed
// to build an annotation:
//
//	Entry,Entry name,Protein names,Disulfide bond,Glycosylation,Length,New_Length,Orientation,topology,Sequon list,Cysteine positions
//
// New_Length and Orientation are the current length and topology code;
// Length and topology are kept as the previous values. List columns are
// Python list literals such as ['10 30', '45 80'].
//
// The topology layout only names a topology code per accession; the
// annotation lists are fetched from UniProt on demand:
//
//	Name,Protein name,Orientation,Length
//
// Rows whose cells cannot be parsed are returned with Err set so that the
// caller can count and report them without aborting the file.
package catalog
