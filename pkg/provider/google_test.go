package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/bizsearch/internal/testutil"
	"github.com/Sternrassler/bizsearch/pkg/record"
)

func newTestGoogle(t *testing.T, mock *testutil.MockProvider) *GoogleClient {
	t.Helper()
	client, err := NewGoogleClient(GoogleConfig{
		HTTPConfig: HTTPConfig{BaseURL: mock.URL(), Timeout: time.Second, Retry: fastRetry(2)},
		APIKey:     "g-key",
		Language:   "ja",
		TokenDelay: time.Second,
	})
	if err != nil {
		t.Fatalf("NewGoogleClient() error = %v", err)
	}
	return client
}

func TestNewGoogleClient_Defaults(t *testing.T) {
	if _, err := NewGoogleClient(GoogleConfig{}); err == nil {
		t.Error("expected error for missing api key")
	}

	client, err := NewGoogleClient(GoogleConfig{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGoogleClient() error = %v", err)
	}
	if client.TokenDelay() != DefaultGoogleTokenDelay {
		t.Errorf("TokenDelay() = %v, want %v", client.TokenDelay(), DefaultGoogleTokenDelay)
	}
}

func TestGoogleClient_FetchPage_FirstPage(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse(testutil.GoogleSearchPath, testutil.GooglePage("OK", "tok-2", testutil.GooglePlaces("ramen", 3)...))

	client := newTestGoogle(t, mock)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return issued }

	page, err := client.FetchPage(context.Background(), Query{Keyword: "ramen", Region: "Tokyo"}, Cursor{})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if len(page.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(page.Records))
	}
	rec := page.Records[0]
	if rec.ID != "google:ramen-1" {
		t.Errorf("ID = %q, want google:ramen-1", rec.ID)
	}
	if !rec.HasRating() || *rec.Rating != 4.0 {
		t.Errorf("Rating = %v, want 4.0", rec.Rating)
	}
	if rec.HasPhone() {
		t.Error("text search records carry no phone")
	}
	if rec.Category != "cafe" {
		t.Errorf("Category = %q, want cafe", rec.Category)
	}
	if rec.Source != record.SourceGoogle {
		t.Errorf("Source = %q, want google", rec.Source)
	}

	if page.Done {
		t.Error("Done = true with a next_page_token, want false")
	}
	if page.Next.Token != "tok-2" || !page.Next.IssuedAt.Equal(issued) {
		t.Errorf("Next = %+v, want token tok-2 issued at %v", page.Next, issued)
	}

	query := mock.LastQuery(testutil.GoogleSearchPath)
	if got := query.Get("query"); got != "Tokyo ramen" {
		t.Errorf("query = %q, want %q", got, "Tokyo ramen")
	}
	if got := query.Get("language"); got != "ja" {
		t.Errorf("language = %q, want ja", got)
	}
	if got := query.Get("key"); got != "g-key" {
		t.Errorf("key = %q, want g-key", got)
	}
}

func TestGoogleClient_FetchPage_Token(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse(testutil.GoogleSearchPath, testutil.GooglePage("OK", "", testutil.GooglePlaces("ramen", 2)...))

	client := newTestGoogle(t, mock)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	// Token issued half a delay ago is rejected locally.
	_, err := client.FetchPage(context.Background(), Query{Keyword: "ramen"}, Cursor{Token: "tok", IssuedAt: now.Add(-500 * time.Millisecond)})
	if !errors.Is(err, ErrTokenNotReady) {
		t.Fatalf("premature token error = %v, want ErrTokenNotReady", err)
	}
	if got := mock.RequestCount(testutil.GoogleSearchPath); got != 0 {
		t.Errorf("premature token reached the API %d times", got)
	}

	page, err := client.FetchPage(context.Background(), Query{Keyword: "ramen"}, Cursor{Token: "tok", IssuedAt: now.Add(-2 * time.Second)})
	if err != nil {
		t.Fatalf("FetchPage() with aged token error = %v", err)
	}
	if !page.Done {
		t.Error("Done = false without next_page_token, want true")
	}
	query := mock.LastQuery(testutil.GoogleSearchPath)
	if got := query.Get("pagetoken"); got != "tok" {
		t.Errorf("pagetoken = %q, want tok", got)
	}
	if query.Has("query") {
		t.Error("token requests must not resend the query")
	}
}

func TestGoogleClient_FetchPage_InBandStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		cursor    Cursor
		wantIs    error
		wantClass ErrorClass
	}{
		{
			name:      "invalid request on token call",
			status:    googleStatusInvalidRequest,
			cursor:    Cursor{Token: "tok"},
			wantIs:    ErrTokenNotReady,
			wantClass: ErrorClassTokenNotReady,
		},
		{
			name:      "invalid request on first page",
			status:    googleStatusInvalidRequest,
			wantIs:    ErrProviderUnavailable,
			wantClass: ErrorClassClient,
		},
		{
			name:      "over query limit",
			status:    googleStatusOverQueryLimit,
			wantIs:    ErrRateLimited,
			wantClass: ErrorClassRateLimit,
		},
		{
			name:      "request denied",
			status:    googleStatusRequestDenied,
			wantIs:    ErrProviderUnavailable,
			wantClass: ErrorClassClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockProvider()
			defer mock.Close()
			mock.SetResponse(testutil.GoogleSearchPath, testutil.GooglePage(tt.status, ""))

			client := newTestGoogle(t, mock)

			_, err := client.FetchPage(context.Background(), Query{Keyword: "ramen"}, tt.cursor)
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want errors.Is %v", err, tt.wantIs)
			}
			if got := ClassOf(err); got != tt.wantClass {
				t.Errorf("ClassOf = %q, want %q", got, tt.wantClass)
			}
		})
	}
}

func TestGoogleClient_FetchPage_ZeroResults(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse(testutil.GoogleSearchPath, testutil.GooglePage(googleStatusZeroResults, ""))

	page, err := newTestGoogle(t, mock).FetchPage(context.Background(), Query{Keyword: "nothing"}, Cursor{})
	if err != nil {
		t.Fatalf("ZERO_RESULTS should not be an error, got %v", err)
	}
	if len(page.Records) != 0 || !page.Done {
		t.Errorf("page = %+v, want empty and done", page)
	}
}

func TestGoogleClient_FetchDetail(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse(testutil.GoogleDetailsPath, testutil.GoogleDetails("OK", "03-1234-5678"))

	client := newTestGoogle(t, mock)
	base := record.BusinessRecord{ID: "google:abc", Name: "Ichiran", Source: record.SourceGoogle}

	got, err := client.FetchDetail(context.Background(), base)
	if err != nil {
		t.Fatalf("FetchDetail() error = %v", err)
	}
	if got.Phone != "03-1234-5678" {
		t.Errorf("Phone = %q, want 03-1234-5678", got.Phone)
	}
	if base.Phone != "" {
		t.Error("FetchDetail mutated its input")
	}
	if got := mock.LastQuery(testutil.GoogleDetailsPath).Get("place_id"); got != "abc" {
		t.Errorf("place_id = %q, want abc", got)
	}
}

func TestGoogleClient_FetchDetail_Failure(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse(testutil.GoogleDetailsPath, testutil.GoogleDetails(googleStatusNotFound, ""))

	client := newTestGoogle(t, mock)
	base := record.BusinessRecord{ID: "google:gone", Name: "Closed"}

	got, err := client.FetchDetail(context.Background(), base)
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error = %v, want ErrProviderUnavailable", err)
	}
	if got.ID != base.ID || got.Name != base.Name {
		t.Errorf("failed detail should return the base record, got %+v", got)
	}

	if _, err := client.FetchDetail(context.Background(), record.BusinessRecord{ID: "kakao:1"}); err == nil {
		t.Error("expected error for a non-google record")
	}
}
