// Package provider implements clients for the external business directories
// the search engine aggregates. Each provider keeps its own pagination
// contract; all of them normalize listings into record.BusinessRecord.
package provider

import (
	"context"
	"strings"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

// Query is what a provider is asked for.
type Query struct {
	Keyword string
	Region  string
}

// Text joins region and keyword the way directory APIs expect a free-text
// query ("강남 카페", "tokyo ramen").
func (q Query) Text() string {
	keyword := strings.TrimSpace(q.Keyword)
	region := strings.TrimSpace(q.Region)
	if region == "" {
		return keyword
	}
	return region + " " + keyword
}

// Cursor addresses one page of a provider result.
// Page-number providers use Page, offset providers use Offset and
// token providers use Token. The zero Cursor addresses the first page.
type Cursor struct {
	Page   int
	Offset int
	Token  string

	// IssuedAt is when Token was handed out by the provider.
	IssuedAt time.Time
}

// IsFirst reports whether the cursor addresses the first page.
func (c Cursor) IsFirst() bool {
	return c.Page <= 1 && c.Offset == 0 && c.Token == ""
}

// Page is one fetched and normalized page.
type Page struct {
	Records []record.BusinessRecord

	// Next addresses the following page. Only meaningful when Done is false.
	Next Cursor

	// Done is set when the provider signalled there is nothing after this page.
	Done bool
}

// Client fetches pages of normalized records from one provider.
type Client interface {
	// Source identifies the provider.
	Source() record.Source

	// PageSize is the number of records a full page carries.
	PageSize() int

	// FetchPage fetches the page addressed by cursor.
	// Zero results is an empty page, not an error.
	FetchPage(ctx context.Context, q Query, cursor Cursor) (Page, error)
}

// DetailFetcher is implemented by providers whose list endpoint omits
// contact details. FetchDetail returns a copy of rec with the details filled in.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, rec record.BusinessRecord) (record.BusinessRecord, error)
}

// TokenDelayer is implemented by providers whose continuation tokens only
// become valid some time after they are issued.
type TokenDelayer interface {
	TokenDelay() time.Duration
}
