// Package enrich attaches contact details to records from providers whose
// list endpoint omits them.
package enrich

import (
	"context"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/logging"
	"github.com/Sternrassler/bizsearch/pkg/provider"
	"github.com/Sternrassler/bizsearch/pkg/record"
	"github.com/rs/zerolog"
)

// Config holds enrichment configuration.
type Config struct {
	// Limit is how many records, counted from the top, are considered for
	// a detail fetch. Records that already carry a phone are skipped.
	Limit int

	// Delay is the minimum time between two detail calls.
	Delay time.Duration
}

// DefaultConfig returns the default enrichment bounds.
func DefaultConfig() Config {
	return Config{
		Limit: 10,
		Delay: 100 * time.Millisecond,
	}
}

// Enricher runs detail fetches sequentially with pacing.
type Enricher struct {
	fetcher provider.DetailFetcher
	config  Config
	logger  zerolog.Logger
}

// New creates an Enricher over fetcher.
func New(fetcher provider.DetailFetcher, config Config) *Enricher {
	if config.Limit < 0 {
		config.Limit = 0
	}
	if config.Delay < 0 {
		config.Delay = 0
	}
	return &Enricher{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger("enrich"),
	}
}

// Enrich returns a copy of records in which each of the first Limit records
// that lacks a phone has been passed through the detail fetcher. A failed
// fetch keeps the base record. The input slice is not modified.
//
// A cancelled context stops enrichment; the remaining records are returned
// unenriched.
func (e *Enricher) Enrich(ctx context.Context, records []record.BusinessRecord) []record.BusinessRecord {
	out := make([]record.BusinessRecord, len(records))
	copy(out, records)

	fetched := 0
	failed := 0
	for i, rec := range out {
		if i >= e.config.Limit {
			break
		}
		if rec.HasPhone() {
			continue
		}

		if fetched > 0 {
			if err := pause(ctx, e.config.Delay); err != nil {
				e.logger.Debug().Err(err).Int("enriched", fetched).Msg("Enrichment cancelled")
				break
			}
		}
		fetched++

		detailed, err := e.fetcher.FetchDetail(ctx, rec)
		if err != nil {
			failed++
			enrichFailuresTotal.WithLabelValues(string(rec.Source)).Inc()
			e.logger.Warn().
				Err(err).
				Str("record_id", rec.ID).
				Str("error_class", string(provider.ClassOf(err))).
				Msg("Detail fetch failed, keeping base record")
			continue
		}
		enrichCallsTotal.WithLabelValues(string(rec.Source)).Inc()
		out[i] = detailed
	}

	e.logger.Debug().
		Int("records", len(records)).
		Int("fetched", fetched).
		Int("failed", failed).
		Msg("Enrichment complete")

	return out
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
