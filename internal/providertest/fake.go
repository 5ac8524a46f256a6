// Package providertest provides scripted in-memory provider.Client fakes
// for pipeline tests that do not need an HTTP round trip.
package providertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/provider"
	"github.com/Sternrassler/bizsearch/pkg/record"
)

// Step is the scripted outcome of one FetchPage call.
type Step struct {
	Records []record.BusinessRecord
	Done    bool
	Err     error
}

// Call is one observed FetchPage invocation.
type Call struct {
	Cursor provider.Cursor
	At     time.Time
}

// Client is a provider.Client that replays Steps in order.
// Calls past the end of the script return an empty, done page.
type Client struct {
	source   record.Source
	pageSize int

	// Tokens makes the fake hand out token cursors instead of page numbers.
	Tokens bool

	// Block, when non-nil, holds every FetchPage until it is closed or the
	// context ends.
	Block chan struct{}

	mu    sync.Mutex
	steps []Step
	calls []Call
}

var _ provider.Client = (*Client)(nil)

// NewClient creates a scripted client.
func NewClient(source record.Source, pageSize int, steps ...Step) *Client {
	return &Client{source: source, pageSize: pageSize, steps: steps}
}

// Source implements provider.Client.
func (c *Client) Source() record.Source { return c.source }

// PageSize implements provider.Client.
func (c *Client) PageSize() int { return c.pageSize }

// FetchPage implements provider.Client.
func (c *Client) FetchPage(ctx context.Context, q provider.Query, cursor provider.Cursor) (provider.Page, error) {
	c.mu.Lock()
	i := len(c.calls)
	c.calls = append(c.calls, Call{Cursor: cursor, At: time.Now()})
	c.mu.Unlock()

	if c.Block != nil {
		select {
		case <-c.Block:
		case <-ctx.Done():
			return provider.Page{}, ctx.Err()
		}
	}

	if i >= len(c.steps) {
		return provider.Page{Done: true}, nil
	}
	step := c.steps[i]
	if step.Err != nil {
		return provider.Page{}, step.Err
	}

	next := provider.Cursor{Page: i + 2}
	if c.Tokens {
		next = provider.Cursor{Token: fmt.Sprintf("token-%d", i+2), IssuedAt: time.Now()}
	}
	return provider.Page{
		Records: append([]record.BusinessRecord(nil), step.Records...),
		Next:    next,
		Done:    step.Done,
	}, nil
}

// Calls returns the observed calls in order.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallCount returns the number of FetchPage calls.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// TokenClient is a token-paginated Client that advertises a token delay.
type TokenClient struct {
	*Client
	Delay time.Duration
}

var _ provider.TokenDelayer = TokenClient{}

// TokenDelay implements provider.TokenDelayer.
func (c TokenClient) TokenDelay() time.Duration { return c.Delay }

// DetailFetcher fills phones from a lookup table.
type DetailFetcher struct {
	// Phones maps record ID to the phone returned for it.
	Phones map[string]string

	// Errs maps record ID to a failure.
	Errs map[string]error

	mu    sync.Mutex
	calls []Call
	ids   []string
}

var _ provider.DetailFetcher = (*DetailFetcher)(nil)

// FetchDetail implements provider.DetailFetcher.
func (f *DetailFetcher) FetchDetail(ctx context.Context, rec record.BusinessRecord) (record.BusinessRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{At: time.Now()})
	f.ids = append(f.ids, rec.ID)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return rec, err
	}
	if err, ok := f.Errs[rec.ID]; ok {
		return rec, err
	}
	if phone, ok := f.Phones[rec.ID]; ok {
		return rec.WithPhone(phone), nil
	}
	return rec, nil
}

// IDs returns the record IDs FetchDetail was called with, in order.
func (f *DetailFetcher) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

// Calls returns the observed calls in order.
func (f *DetailFetcher) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// DetailClient is a Client whose records can be enriched.
type DetailClient struct {
	*Client
	*DetailFetcher
}

// Records builds n records for source named "<prefix> i". Records with an
// index listed in withPhone carry a phone.
func Records(source record.Source, prefix string, n int, withPhone ...int) []record.BusinessRecord {
	phones := make(map[int]bool, len(withPhone))
	for _, i := range withPhone {
		phones[i] = true
	}
	recs := make([]record.BusinessRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := record.BusinessRecord{
			ID:      record.MakeID(source, fmt.Sprintf("%s-%d", prefix, i)),
			Name:    fmt.Sprintf("%s %d", prefix, i),
			Address: fmt.Sprintf("%s street %d", prefix, i),
			Source:  source,
		}
		if phones[i] {
			rec.Phone = fmt.Sprintf("02-100-%04d", i)
		}
		recs = append(recs, rec)
	}
	return recs
}
