package sorting

import (
	"slices"

	"github.com/exifnotes/logbook/internal/entities"
)

// AddedBy narrows film stocks by origin.
type AddedBy string

const (
	AddedByAll      AddedBy = "all"
	AddedByPreadded AddedBy = "preadded"
	AddedByUser     AddedBy = "user"
)

// FilmStockFilter is the film stock selection. Every empty field matches
// all stocks; set fields combine with AND.
type FilmStockFilter struct {
	Manufacturers []string               `json:"manufacturers,omitempty"`
	Types         []entities.FilmType    `json:"types,omitempty"`
	Processes     []entities.FilmProcess `json:"processes,omitempty"`
	ISOs          []int                  `json:"isos,omitempty"`
	AddedBy       AddedBy                `json:"added_by,omitempty"`
}

// FilmStockPredicate reports whether a film stock passes one filter step.
type FilmStockPredicate func(entities.FilmStock) bool

// Predicates returns the filter as a chain of predicates.
func (f FilmStockFilter) Predicates() []FilmStockPredicate {
	return []FilmStockPredicate{
		matchAny(f.Manufacturers, func(s entities.FilmStock) string { return s.Make }),
		matchAny(f.Types, func(s entities.FilmStock) entities.FilmType { return s.Type }),
		matchAny(f.Processes, func(s entities.FilmStock) entities.FilmProcess { return s.Process }),
		matchAny(f.ISOs, func(s entities.FilmStock) int { return s.ISO }),
		f.addedBy,
	}
}

func (f FilmStockFilter) addedBy(s entities.FilmStock) bool {
	switch f.AddedBy {
	case AddedByPreadded:
		return s.Preadded
	case AddedByUser:
		return !s.Preadded
	default:
		return true
	}
}

// IsEmpty reports whether the filter lets every stock through.
func (f FilmStockFilter) IsEmpty() bool {
	return len(f.Manufacturers) == 0 && len(f.Types) == 0 && len(f.Processes) == 0 &&
		len(f.ISOs) == 0 && (f.AddedBy == "" || f.AddedBy == AddedByAll)
}

// Apply runs stocks through each predicate in turn and returns the survivors
// in their original order. The input slice is not modified.
func (f FilmStockFilter) Apply(stocks []entities.FilmStock) []entities.FilmStock {
	out := slices.Clone(stocks)
	for _, keep := range f.Predicates() {
		out = slices.DeleteFunc(out, func(s entities.FilmStock) bool { return !keep(s) })
	}
	return out
}

func matchAny[T comparable](selected []T, key func(entities.FilmStock) T) FilmStockPredicate {
	return func(s entities.FilmStock) bool {
		return len(selected) == 0 || slices.Contains(selected, key(s))
	}
}

// AvailableISOs returns the distinct ISO values among stocks in ascending order.
func AvailableISOs(stocks []entities.FilmStock) []int {
	isos := make([]int, 0, len(stocks))
	for _, s := range stocks {
		isos = append(isos, s.ISO)
	}
	slices.Sort(isos)
	return slices.Compact(isos)
}
