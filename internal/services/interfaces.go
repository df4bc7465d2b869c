package services

import (
	"context"
	"errors"
)

// LoadState tells consumers whether a service snapshot is complete.
type LoadState int

const (
	InProgress LoadState = iota
	Success
)

func (s LoadState) String() string {
	if s == Success {
		return "success"
	}
	return "in_progress"
}

func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *LoadState) UnmarshalText(text []byte) error {
	*s = InProgress
	if string(text) == "success" {
		*s = Success
	}
	return nil
}

var (
	ErrNotFound     = errors.New("not found")
	ErrGearInUse    = errors.New("gear is in use")
	ErrInvalidInput = errors.New("invalid input")
)

// Geocoder resolves coordinates into a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// PictureRemover deletes complementary picture files.
type PictureRemover interface {
	Delete(ctx context.Context, name string) error
}

// DisplayMessage turns a service error into text safe to show to the user.
// Errors that are not one of the package sentinels are reported generically.
func DisplayMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The item no longer exists."
	case errors.Is(err, ErrGearInUse):
		return "The item is used by existing rolls or frames and cannot be deleted."
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	default:
		return "Something went wrong while accessing the logbook."
	}
}
