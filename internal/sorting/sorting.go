// Package sorting orders and filters the in-memory lists the services keep
// after every mutation. All comparators are total: ties fall back to stable
// keys and finally the ID, so re-sorting a sorted list changes nothing.
package sorting

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/exposure"
)

type FrameSortMode string

const (
	FrameSortCount        FrameSortMode = "count"
	FrameSortDate         FrameSortMode = "date"
	FrameSortFStop        FrameSortMode = "f_stop"
	FrameSortShutterSpeed FrameSortMode = "shutter_speed"
	FrameSortLens         FrameSortMode = "lens"
)

func (m FrameSortMode) Valid() bool {
	switch m {
	case FrameSortCount, FrameSortDate, FrameSortFStop, FrameSortShutterSpeed, FrameSortLens:
		return true
	}
	return false
}

type RollSortMode string

const (
	RollSortDate   RollSortMode = "date"
	RollSortName   RollSortMode = "name"
	RollSortCamera RollSortMode = "camera"
)

func (m RollSortMode) Valid() bool {
	switch m {
	case RollSortDate, RollSortName, RollSortCamera:
		return true
	}
	return false
}

type FilmStockSortMode string

const (
	FilmStockSortName FilmStockSortMode = "name"
	FilmStockSortISO  FilmStockSortMode = "iso"
)

func (m FilmStockSortMode) Valid() bool {
	return m == FilmStockSortName || m == FilmStockSortISO
}

// SortFrames sorts frames in place. Unknown modes sort by count.
func SortFrames(frames []entities.Frame, mode FrameSortMode) {
	slices.SortStableFunc(frames, func(a, b entities.Frame) int {
		var primary int
		switch mode {
		case FrameSortDate:
			primary = a.Date.Compare(b.Date)
		case FrameSortFStop:
			primary = compareParsed(a.Aperture, b.Aperture, exposure.ApertureValue)
		case FrameSortShutterSpeed:
			primary = compareParsed(a.Shutter, b.Shutter, exposure.ShutterSeconds)
		case FrameSortLens:
			primary = compareNames(lensName(a.Lens), lensName(b.Lens))
		}
		return cmp.Or(
			primary,
			cmp.Compare(a.Count, b.Count),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

// ReverseFrames reverses the order of frames in place.
func ReverseFrames(frames []entities.Frame) {
	slices.Reverse(frames)
}

// SortRolls sorts rolls in place. Date sorts newest first; the other modes
// are alphabetical. Unknown modes sort by date.
func SortRolls(rolls []entities.Roll, mode RollSortMode) {
	slices.SortStableFunc(rolls, func(a, b entities.Roll) int {
		var primary int
		switch mode {
		case RollSortName:
			primary = compareNames(a.Name, b.Name)
		case RollSortCamera:
			primary = compareNames(cameraName(a.Camera), cameraName(b.Camera))
		}
		return cmp.Or(
			primary,
			b.Date.Compare(a.Date),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

// SortFilmStocks sorts film stocks in place. Unknown modes sort by name.
func SortFilmStocks(stocks []entities.FilmStock, mode FilmStockSortMode) {
	slices.SortStableFunc(stocks, func(a, b entities.FilmStock) int {
		var primary int
		if mode == FilmStockSortISO {
			primary = cmp.Compare(a.ISO, b.ISO)
		}
		return cmp.Or(
			primary,
			compareNames(a.Name(), b.Name()),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

// compareParsed orders values by their parsed number. Values that do not
// parse come last.
func compareParsed(a, b string, parse func(string) (float64, error)) int {
	return cmp.Compare(parsedOrMax(a, parse), parsedOrMax(b, parse))
}

func parsedOrMax(v string, parse func(string) (float64, error)) float64 {
	if f, err := parse(v); err == nil {
		if math.IsInf(f, 1) {
			return math.MaxFloat64 / 2
		}
		return f
	}
	return math.MaxFloat64
}

// compareNames orders case-insensitively with empty names last.
func compareNames(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return cmp.Or(
		cmp.Compare(strings.ToLower(a), strings.ToLower(b)),
		cmp.Compare(a, b),
	)
}

func lensName(l *entities.Lens) string {
	if l == nil {
		return ""
	}
	return l.Name()
}

func cameraName(c *entities.Camera) string {
	if c == nil {
		return ""
	}
	return c.Name()
}
