package pagination

import (
	"context"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/logging"
	"github.com/Sternrassler/bizsearch/pkg/provider"
	"github.com/rs/zerolog"
)

// Config holds pagination configuration.
type Config struct {
	// MaxPages caps the number of pages fetched per provider.
	MaxPages int

	// Delay is the minimum time between two page fetches.
	Delay time.Duration

	// TokenDelay is the minimum age of a continuation token before it is
	// used. Zero defers to the client's provider.TokenDelayer, if any.
	TokenDelay time.Duration
}

// DefaultConfig returns conservative defaults for public directory APIs.
func DefaultConfig() Config {
	return Config{
		MaxPages: 3,
		Delay:    200 * time.Millisecond,
	}
}

// StopReason records why an Iterator stopped.
type StopReason string

const (
	// StopNone means the iterator can still produce pages.
	StopNone StopReason = ""

	// StopShortPage means a page carried fewer records than the page size.
	StopShortPage StopReason = "short_page"

	// StopMaxPages means the MaxPages cap was reached.
	StopMaxPages StopReason = "max_pages"

	// StopEmptyPage means a page carried no records.
	StopEmptyPage StopReason = "empty_page"

	// StopDone means the provider reported the last page.
	StopDone StopReason = "provider_done"

	// StopError means a fetch failed or the context ended.
	StopError StopReason = "error"
)

// Iterator is a finite, non-restartable lazy sequence of pages from one
// provider. It is not safe for concurrent use.
type Iterator struct {
	client     provider.Client
	query      provider.Query
	cfg        Config
	tokenDelay time.Duration
	logger     zerolog.Logger

	cursor    provider.Cursor
	pages     int
	lastFetch time.Time
	stop      StopReason
	err       error
}

// NewIterator creates an iterator positioned before the first page.
func NewIterator(client provider.Client, query provider.Query, cfg Config) *Iterator {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultConfig().MaxPages
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	tokenDelay := cfg.TokenDelay
	if tokenDelay <= 0 {
		if td, ok := client.(provider.TokenDelayer); ok {
			tokenDelay = td.TokenDelay()
		}
	}

	return &Iterator{
		client:     client,
		query:      query,
		cfg:        cfg,
		tokenDelay: tokenDelay,
		logger:     logging.NewLogger("pagination").With().Str("source", string(client.Source())).Logger(),
	}
}

// Next fetches the next page. ok is false once the sequence is over; the
// provider is never called again after that or after an error.
// An empty page ends the sequence and is not yielded.
func (it *Iterator) Next(ctx context.Context) (page provider.Page, ok bool, err error) {
	if it.stop != StopNone {
		return provider.Page{}, false, nil
	}

	if it.pages > 0 {
		if err := sleep(ctx, it.wait()); err != nil {
			it.finish(StopError, err)
			return provider.Page{}, false, err
		}
	}

	it.lastFetch = time.Now()
	page, err = it.client.FetchPage(ctx, it.query, it.cursor)
	if err != nil {
		it.finish(StopError, err)
		return provider.Page{}, false, err
	}

	if len(page.Records) == 0 {
		it.finish(StopEmptyPage, nil)
		return provider.Page{}, false, nil
	}

	it.pages++
	pagesFetchedTotal.WithLabelValues(string(it.client.Source())).Inc()
	it.logger.Debug().
		Int("page", it.pages).
		Int("records", len(page.Records)).
		Msg("Page fetched")

	switch {
	case len(page.Records) < it.client.PageSize():
		it.finish(StopShortPage, nil)
	case page.Done:
		it.finish(StopDone, nil)
	case it.pages >= it.cfg.MaxPages:
		it.finish(StopMaxPages, nil)
	default:
		it.cursor = page.Next
	}

	return page, true, nil
}

// Pages returns the number of pages yielded so far.
func (it *Iterator) Pages() int { return it.pages }

// Stop returns why the iterator stopped, or StopNone while it is live.
func (it *Iterator) Stop() StopReason { return it.stop }

// Err returns the error that stopped the iterator, if any.
func (it *Iterator) Err() error { return it.err }

// wait returns how long to hold off before the next fetch.
func (it *Iterator) wait() time.Duration {
	wait := it.cfg.Delay - time.Since(it.lastFetch)
	if it.cursor.Token != "" && !it.cursor.IssuedAt.IsZero() {
		if tokenWait := it.tokenDelay - time.Since(it.cursor.IssuedAt); tokenWait > wait {
			wait = tokenWait
		}
	}
	return wait
}

func (it *Iterator) finish(reason StopReason, err error) {
	it.stop = reason
	it.err = err
}

func sleep(ctx context.Context, d time.Duration) error {
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
