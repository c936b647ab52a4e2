package elo

import "errors"

// Boundary marks the rating below which a lookup resolves to Depth. The
// boundary value is the floored midpoint between Depth's calibrated
// rating and the next depth's.
type Boundary struct {
	Depth int `json:"depth"`
	Below int `json:"below"`
}

// LookupTable is the deployable step function from a target rating to the
// nearest calibrated depth. Ratings under the first boundary map to the
// smallest depth; ratings at or above every boundary map to MaxDepth.
type LookupTable struct {
	Boundaries []Boundary `json:"boundaries"`
	MaxDepth   int        `json:"max_depth"`
}

// ErrEmptyTable is returned when no depth produced an estimate.
var ErrEmptyTable = errors.New("no calibrated depths")

// DeriveLookup builds the step function from a depth-rating table sorted
// ascending by depth, as produced by Calibrator.Result.
func DeriveLookup(table []DepthRating) (LookupTable, error) {
	if len(table) == 0 {
		return LookupTable{}, ErrEmptyTable
	}
	lt := LookupTable{MaxDepth: table[len(table)-1].Depth}
	for i := 0; i+1 < len(table); i++ {
		lt.Boundaries = append(lt.Boundaries, Boundary{
			Depth: table[i].Depth,
			Below: (table[i].Rating + table[i+1].Rating) / 2,
		})
	}
	return lt, nil
}

// Lookup maps a target rating to a depth. A rating exactly on a boundary
// resolves to the stronger side.
func (t LookupTable) Lookup(rating int) int {
	for _, b := range t.Boundaries {
		if rating < b.Below {
			return b.Depth
		}
	}
	return t.MaxDepth
}

// Artifact is the serialized calibration output: the averaged table, the
// derived step function, and the operator-facing notes.
type Artifact struct {
	Entries    []DepthRating `json:"entries"`
	Boundaries []Boundary    `json:"boundaries"`
	MaxDepth   int           `json:"max_depth"`
	Omitted    []string      `json:"omitted,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
}
