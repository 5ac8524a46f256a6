package provider

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Sternrassler/bizsearch/internal/testutil"
)

func newTestNaver(t *testing.T, mock *testutil.MockProvider) *NaverClient {
	t.Helper()
	client, err := NewNaverClient(NaverConfig{
		HTTPConfig:   HTTPConfig{BaseURL: mock.URL(), Timeout: time.Second, Retry: fastRetry(2)},
		ClientID:     "id",
		ClientSecret: "secret",
	})
	if err != nil {
		t.Fatalf("NewNaverClient() error = %v", err)
	}
	return client
}

func TestNewNaverClient_RequiresCredentials(t *testing.T) {
	if _, err := NewNaverClient(NaverConfig{ClientID: "id"}); err == nil {
		t.Error("expected error without client secret")
	}
	if _, err := NewNaverClient(NaverConfig{ClientSecret: "secret"}); err == nil {
		t.Error("expected error without client id")
	}
}

func TestNaverClient_FetchPage(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	mock.SetResponse(testutil.NaverSearchPath, testutil.NaverPage(1,
		testutil.NaverPlace{Title: "<b>스타</b>벅스 &amp; 커피", Address: "서울 강남구 테헤란로 1", Telephone: "0212345678"},
		testutil.NaverPlace{Title: "블루보틀", Address: "서울 성동구 아차산로 7", Telephone: ""},
	))

	client := newTestNaver(t, mock)
	page, err := client.FetchPage(context.Background(), Query{Keyword: "카페", Region: "강남"}, Cursor{})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if len(page.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(page.Records))
	}
	first := page.Records[0]
	if first.Name != "스타벅스 & 커피" {
		t.Errorf("Name = %q, want markup stripped and unescaped", first.Name)
	}
	if first.Category != "카페" {
		t.Errorf("Category = %q, want 카페", first.Category)
	}
	if first.Phone != "0212345678" {
		t.Errorf("Phone = %q, want 0212345678", first.Phone)
	}
	if math.Abs(first.Longitude-127.0276) > 1e-6 || math.Abs(first.Latitude-37.4979) > 1e-6 {
		t.Errorf("coordinates = (%v, %v), want (37.4979, 127.0276)", first.Latitude, first.Longitude)
	}
	if first.ID == page.Records[1].ID {
		t.Error("distinct places produced the same ID")
	}

	if page.Next.Offset != 2 {
		t.Errorf("Next.Offset = %d, want 2", page.Next.Offset)
	}
	if page.Done {
		t.Error("Done = true, want false")
	}

	query := mock.LastQuery(testutil.NaverSearchPath)
	if got := query.Get("start"); got != "1" {
		t.Errorf("start = %q, want 1", got)
	}
	if got := query.Get("display"); got != "5" {
		t.Errorf("display = %q, want 5", got)
	}
	if got := query.Get("query"); got != "강남 카페" {
		t.Errorf("query = %q, want %q", got, "강남 카페")
	}
	headers := mock.LastHeader(testutil.NaverSearchPath)
	if headers.Get("X-Naver-Client-Id") != "id" || headers.Get("X-Naver-Client-Secret") != "secret" {
		t.Errorf("credential headers not sent: %v", headers)
	}
}

func TestNaverClient_FetchPage_Offset(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	places := []testutil.NaverPlace{
		{Title: "a", Address: "1"}, {Title: "b", Address: "2"}, {Title: "c", Address: "3"},
		{Title: "d", Address: "4"}, {Title: "e", Address: "5"},
	}
	mock.SetResponse(testutil.NaverSearchPath, testutil.NaverPage(6, places...))

	client := newTestNaver(t, mock)

	page, err := client.FetchPage(context.Background(), Query{Keyword: "카페"}, Cursor{Offset: 5})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if got := mock.LastQuery(testutil.NaverSearchPath).Get("start"); got != "6" {
		t.Errorf("start = %q, want 6", got)
	}
	if page.Next.Offset != 10 {
		t.Errorf("Next.Offset = %d, want 10", page.Next.Offset)
	}

	page, err = client.FetchPage(context.Background(), Query{Keyword: "카페"}, Cursor{Offset: naverMaxStart - NaverPageSize})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if !page.Done {
		t.Error("Done = false at the maximum start offset, want true")
	}
}

func TestNaverClient_FetchPage_Errors(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse(testutil.NaverSearchPath, testutil.NewRateLimitResponse())

	_, err := newTestNaver(t, mock).FetchPage(context.Background(), Query{Keyword: "카페"}, Cursor{})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
	if got := mock.RequestCount(testutil.NaverSearchPath); got != 1 {
		t.Errorf("rate limit should not be retried in place, got %d requests", got)
	}
}

func TestNaverID_Stable(t *testing.T) {
	a := naverID("스타벅스", "서울 강남구")
	b := naverID("스타벅스", "서울 강남구")
	if a != b {
		t.Errorf("naverID not stable: %q != %q", a, b)
	}
	if naverID("ab", "c") == naverID("a", "bc") {
		t.Error("naverID should separate name and address")
	}
}
