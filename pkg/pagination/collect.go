package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/provider"
	"github.com/Sternrassler/bizsearch/pkg/record"
)

// Result is everything one provider contributed to a search.
type Result struct {
	Source  record.Source
	Records []record.BusinessRecord
	Pages   int
	Stop    StopReason

	// Err is the later-page failure that cut pagination short.
	// Records still holds every page collected before it.
	Err error
}

// Partial reports whether pagination was cut short by an error.
func (r Result) Partial() bool {
	return r.Err != nil
}

// Collect drains an iterator over client.
// A first-page failure is returned as an error: the provider contributes
// nothing. A later-page failure keeps the collected pages and is reported
// in Result.Err.
func Collect(ctx context.Context, client provider.Client, query provider.Query, cfg Config) (Result, error) {
	start := time.Now()
	it := NewIterator(client, query, cfg)
	result := Result{Source: client.Source()}

	for {
		page, ok, err := it.Next(ctx)
		if err != nil {
			if it.Pages() == 0 {
				paginationStopsTotal.WithLabelValues(string(result.Source), string(StopError)).Inc()
				return Result{Source: result.Source, Stop: StopError}, fmt.Errorf("%s first page: %w", result.Source, err)
			}
			result.Err = fmt.Errorf("%s page %d: %w", result.Source, it.Pages()+1, err)
			break
		}
		if !ok {
			break
		}
		result.Records = append(result.Records, page.Records...)
	}

	result.Pages = it.Pages()
	result.Stop = it.Stop()
	paginationStopsTotal.WithLabelValues(string(result.Source), string(result.Stop)).Inc()

	event := it.logger.Debug()
	if result.Err != nil {
		event = it.logger.Warn().Err(result.Err)
	}
	event.
		Int("pages", result.Pages).
		Int("records", len(result.Records)).
		Str("stop_reason", string(result.Stop)).
		Dur("duration", time.Since(start)).
		Msg("Pagination complete")

	return result, nil
}
