// Package layout composes renderer-facing scenes from annotation records.
//
// A scene carries x coordinates for every visible domain, bond and site on
// the full spine and, optionally, on a clipped window spine, plus legend
// counts. Bond ranks are computed per call and turned into stem heights as
// SulfidePos + BondLength*rank. No pixels are drawn here.
package layout
