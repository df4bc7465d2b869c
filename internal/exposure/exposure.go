// Package exposure knows the selectable shutter speed, aperture and exposure
// compensation values and how to compare them.
//
// Values are stored on frames as display strings ("1/125", `2"`, "5.6",
// "+1 1/3"). The parsers here turn them into numbers for sorting and range
// checks.
package exposure

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/exifnotes/logbook/internal/entities"
)

// Bulb is the shutter value for bulb exposures. It sorts after every timed value.
const Bulb = "B"

var ErrInvalidValue = errors.New("invalid exposure value")

var shutterThirds = []string{
	"1/8000", "1/6400", "1/5000", "1/4000", "1/3200", "1/2500", "1/2000", "1/1600", "1/1250",
	"1/1000", "1/800", "1/640", "1/500", "1/400", "1/320", "1/250", "1/200", "1/160",
	"1/125", "1/100", "1/80", "1/60", "1/50", "1/40", "1/30", "1/25", "1/20",
	"1/15", "1/13", "1/10", "1/8", "1/6", "1/5", "1/4", `0.3"`, `0.4"`,
	"1/2", `0.6"`, `0.8"`, `1"`, `1.3"`, `1.6"`, `2"`, `2.5"`, `3.2"`,
	`4"`, `5"`, `6"`, `8"`, `10"`, `13"`, `15"`, `20"`, `25"`, `30"`,
}

var shutterHalves = []string{
	"1/8000", "1/6000", "1/4000", "1/3000", "1/2000", "1/1500", "1/1000", "1/750",
	"1/500", "1/350", "1/250", "1/180", "1/125", "1/90", "1/60", "1/45",
	"1/30", "1/20", "1/15", "1/10", "1/8", "1/6", "1/4", `0.3"`,
	"1/2", `0.7"`, `1"`, `1.5"`, `2"`, `3"`, `4"`, `6"`, `8"`, `12"`, `16"`, `24"`, `30"`,
}

var shutterFull = []string{
	"1/8000", "1/4000", "1/2000", "1/1000", "1/500", "1/250", "1/125", "1/60",
	"1/30", "1/15", "1/8", "1/4", "1/2", `1"`, `2"`, `4"`, `8"`, `15"`, `30"`,
}

var apertureThirds = []string{
	"1.0", "1.1", "1.2", "1.4", "1.6", "1.8", "2.0", "2.2", "2.5", "2.8", "3.2", "3.5",
	"4.0", "4.5", "5.0", "5.6", "6.3", "7.1", "8", "9", "10", "11", "13", "14",
	"16", "18", "20", "22", "25", "29", "32", "36", "40", "45", "51", "57",
	"64", "72", "81", "90", "102", "114", "128",
}

var apertureHalves = []string{
	"1.0", "1.2", "1.4", "1.7", "2.0", "2.4", "2.8", "3.3", "4.0", "4.8", "5.6", "6.7",
	"8", "9.5", "11", "13", "16", "19", "22", "27", "32", "38", "45", "54",
	"64", "76", "90", "107", "128",
}

var apertureFull = []string{
	"1.0", "1.4", "2.0", "2.8", "4.0", "5.6", "8", "11", "16", "22", "32", "45", "64", "90", "128",
}

// ShutterSeconds parses a shutter value into seconds. Bulb parses as +Inf.
// Accepted forms are "1/125", `2"`, "0.5" and "B".
func ShutterSeconds(value string) (float64, error) {
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		return 0, fmt.Errorf("%w: empty shutter value", ErrInvalidValue)
	case strings.EqualFold(v, Bulb):
		return math.Inf(1), nil
	case strings.HasSuffix(v, `"`):
		v = strings.TrimSuffix(v, `"`)
	}
	seconds, err := parseFraction(v)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%w: shutter %q", ErrInvalidValue, value)
	}
	return seconds, nil
}

// ApertureValue parses an f-number such as "5.6" or "f/5.6".
func ApertureValue(value string) (float64, error) {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "f/"), "F/")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%w: aperture %q", ErrInvalidValue, value)
	}
	return f, nil
}

// ExposureCompValue parses compensation values like "+1 1/3", "-2/3" or "0"
// into stops.
func ExposureCompValue(value string) (float64, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("%w: empty exposure compensation", ErrInvalidValue)
	}
	sign := 1.0
	switch v[0] {
	case '+':
		v = v[1:]
	case '-':
		sign = -1
		v = v[1:]
	}
	var total float64
	for _, part := range strings.Fields(v) {
		n, err := parseFraction(part)
		if err != nil {
			return 0, fmt.Errorf("%w: exposure compensation %q", ErrInvalidValue, value)
		}
		total += n
	}
	return sign * total, nil
}

func parseFraction(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return strconv.ParseFloat(s, 64)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, ErrInvalidValue
	}
	return n / d, nil
}

// ShutterValues returns the shutter speeds selectable at the given increment,
// fastest first. When min and max are set only values inside that range are
// returned; either bound may be the faster one. Bulb is appended last when
// the range has no bounds or one bound is Bulb.
func ShutterValues(increment entities.Increment, min, max string) ([]string, error) {
	all := shutterThirds
	switch increment {
	case entities.IncrementHalf:
		all = shutterHalves
	case entities.IncrementFull:
		all = shutterFull
	}
	if min == "" || max == "" {
		return append(slices.Clone(all), Bulb), nil
	}

	lo, err := ShutterSeconds(min)
	if err != nil {
		return nil, err
	}
	hi, err := ShutterSeconds(max)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	values := inRange(all, lo, hi, ShutterSeconds)
	if math.IsInf(hi, 1) {
		values = append(values, Bulb)
	}
	return values, nil
}

// ApertureValues returns the f-numbers selectable at the given increment
// between min and max, widest first. Custom values replace the generated
// list when present.
func ApertureValues(increment entities.Increment, min, max string, custom []string) ([]string, error) {
	if len(custom) > 0 {
		values := slices.Clone(custom)
		slices.SortStableFunc(values, func(a, b string) int {
			av, _ := ApertureValue(a)
			bv, _ := ApertureValue(b)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		})
		return slices.Compact(values), nil
	}

	all := apertureThirds
	switch increment {
	case entities.IncrementHalf:
		all = apertureHalves
	case entities.IncrementFull:
		all = apertureFull
	}
	if min == "" || max == "" {
		return slices.Clone(all), nil
	}
	lo, err := ApertureValue(min)
	if err != nil {
		return nil, err
	}
	hi, err := ApertureValue(max)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return inRange(all, lo, hi, ApertureValue), nil
}

// ExposureCompValues returns compensation values from -3 to +3 stops at the
// given increment.
func ExposureCompValues(increment entities.Increment) []string {
	steps := 3
	switch increment {
	case entities.IncrementHalf:
		steps = 2
	case entities.IncrementFull:
		steps = 1
	}
	values := make([]string, 0, 6*steps+1)
	for n := -3 * steps; n <= 3*steps; n++ {
		values = append(values, formatComp(n, steps))
	}
	return values
}

// formatComp renders n/den stops, e.g. (-5, 3) as "-1 2/3".
func formatComp(n, den int) string {
	if n == 0 {
		return "0"
	}
	sign := "+"
	if n < 0 {
		sign = "-"
		n = -n
	}
	whole, rem := n/den, n%den
	switch {
	case rem == 0:
		return fmt.Sprintf("%s%d", sign, whole)
	case whole == 0:
		return fmt.Sprintf("%s%d/%d", sign, rem, den)
	default:
		return fmt.Sprintf("%s%d %d/%d", sign, whole, rem, den)
	}
}

// inRange keeps the values whose parsed value lies within [lo, hi]. The list
// values are rounded display numbers, so a small tolerance is allowed.
func inRange(all []string, lo, hi float64, parse func(string) (float64, error)) []string {
	const tolerance = 0.03
	var out []string
	for _, v := range all {
		f, err := parse(v)
		if err != nil {
			continue
		}
		if f >= lo*(1-tolerance) && f <= hi*(1+tolerance) {
			out = append(out, v)
		}
	}
	return out
}
