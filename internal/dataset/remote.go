package dataset

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mood-predictor/internal/common"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Source loads observation logs from a local path or an http(s) URL.
type Source struct {
	rest *resty.Client
}

// NewSource creates a source whose remote fetches time out after timeout.
func NewSource(timeout time.Duration) *Source {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second) // default fallback
	}
	r.SetHeader("Accept", "text/csv")
	return &Source{rest: r}
}

// Load dispatches on the location: URLs are fetched, anything else is read
// from disk.
func (s *Source) Load(ctx context.Context, location string) (Table, error) {
	if isURL(location) {
		return s.FetchCSV(ctx, location)
	}
	return LoadCSV(location)
}

// FetchCSV downloads an observation log exported by the log writer.
func (s *Source) FetchCSV(ctx context.Context, url string) (Table, error) {
	resp, err := s.rest.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch observation log: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: observation log %s", common.ErrNotFound, url)
	case resp.IsError():
		return nil, fmt.Errorf("fetch observation log: %s returned %d", url, resp.StatusCode())
	}

	table, err := ReadCSV(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	log.Info().
		Str("url", url).
		Int("rows", len(table)).
		Dur("elapsed", resp.Time()).
		Msg("Observation log fetched")
	return table, nil
}

func isURL(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
