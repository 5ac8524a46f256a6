package cache

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

func testSuperset(n int) *Superset {
	recs := make([]record.BusinessRecord, n)
	for i := range recs {
		recs[i] = record.BusinessRecord{
			ID:     record.MakeID(record.SourceKakao, fmt.Sprint(i)),
			Name:   fmt.Sprintf("shop %d", i),
			Source: record.SourceKakao,
		}
	}
	return &Superset{Records: recs, Sources: []record.Source{record.SourceKakao}, BuiltAt: time.Now()}
}

func TestSuperset_Page(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		size      int
		wantStart int
		wantLen   int
		wantPages int
	}{
		{name: "first page of twenty", total: 20, page: 1, size: 10, wantStart: 0, wantLen: 10, wantPages: 2},
		{name: "second page of twenty", total: 20, page: 2, size: 10, wantStart: 10, wantLen: 10, wantPages: 2},
		{name: "partial last page", total: 23, page: 3, size: 10, wantStart: 20, wantLen: 3, wantPages: 3},
		{name: "page past the end", total: 20, page: 3, size: 10, wantLen: 0, wantPages: 2},
		{name: "empty superset", total: 0, page: 1, size: 10, wantLen: 0, wantPages: 0},
		{name: "size larger than total", total: 4, page: 1, size: 10, wantStart: 0, wantLen: 4, wantPages: 1},
		{name: "size one", total: 3, page: 3, size: 1, wantStart: 2, wantLen: 1, wantPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSuperset(tt.total)
			got := s.Page(tt.page, tt.size)

			if len(got) != tt.wantLen {
				t.Fatalf("len(Page) = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && !reflect.DeepEqual(got, s.Records[tt.wantStart:tt.wantStart+tt.wantLen]) {
				t.Errorf("Page(%d, %d) returned the wrong window", tt.page, tt.size)
			}
			if got == nil {
				t.Error("Page returned nil, want empty slice")
			}
			if pages := s.TotalPages(tt.size); pages != tt.wantPages {
				t.Errorf("TotalPages(%d) = %d, want %d", tt.size, pages, tt.wantPages)
			}
		})
	}
}

// Every page of every size is exactly the window [(N-1)*S, min(N*S,T)).
func TestSuperset_PageWindows(t *testing.T) {
	for total := 0; total <= 25; total++ {
		s := testSuperset(total)
		for size := 1; size <= 12; size++ {
			seen := 0
			for page := 1; page <= s.TotalPages(size); page++ {
				got := s.Page(page, size)
				start := (page - 1) * size
				end := page * size
				if end > total {
					end = total
				}
				if len(got) != end-start {
					t.Fatalf("T=%d S=%d N=%d: len = %d, want %d", total, size, page, len(got), end-start)
				}
				if len(got) > 0 && got[0].ID != s.Records[start].ID {
					t.Fatalf("T=%d S=%d N=%d: first = %s, want %s", total, size, page, got[0].ID, s.Records[start].ID)
				}
				seen += len(got)
			}
			if seen != total {
				t.Errorf("T=%d S=%d: pages cover %d records, want %d", total, size, seen, total)
			}
		}
	}
}

func TestSuperset_PageIsACopy(t *testing.T) {
	s := testSuperset(5)
	page := s.Page(1, 5)
	page[0].Name = "changed"

	if s.Records[0].Name == "changed" {
		t.Error("mutating a page changed the cached superset")
	}
}

func TestSuperset_InvalidArguments(t *testing.T) {
	s := testSuperset(5)
	if got := s.Page(0, 5); len(got) != 0 {
		t.Errorf("Page(0, 5) = %d records, want 0", len(got))
	}
	if got := s.Page(1, 0); len(got) != 0 {
		t.Errorf("Page(1, 0) = %d records, want 0", len(got))
	}
	if got := s.TotalPages(0); got != 0 {
		t.Errorf("TotalPages(0) = %d, want 0", got)
	}
}

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{
			name:    "expired entry",
			expires: time.Now().Add(-1 * time.Hour),
			want:    true,
		},
		{
			name:    "valid entry",
			expires: time.Now().Add(1 * time.Hour),
			want:    false,
		},
		{
			name: "never expires",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		wantMin time.Duration
		wantMax time.Duration
	}{
		{
			name:    "one hour remaining",
			expires: time.Now().Add(1 * time.Hour),
			wantMin: 59 * time.Minute,
			wantMax: 61 * time.Minute,
		},
		{
			name:    "already expired",
			expires: time.Now().Add(-1 * time.Hour),
			wantMin: 0,
			wantMax: 0,
		},
		{
			name:    "never expires",
			wantMin: -1,
			wantMax: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			got := entry.TTL()
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("TTL() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
