package scraper

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable matches every *UpstreamError via errors.Is.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// UpstreamError is a failed or rejected page fetch.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("scraper: fetch %s: %v", e.URL, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("scraper: fetch %s: status %d", e.URL, e.StatusCode)
	}
	return "scraper: fetch " + e.URL + " failed"
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}
