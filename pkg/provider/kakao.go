package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

const (
	kakaoBaseURL    = "https://dapi.kakao.com"
	kakaoSearchPath = "/v2/local/search/keyword.json"

	// KakaoPageSize is the largest page the keyword endpoint serves.
	KakaoPageSize = 15

	// kakaoMaxPage is the last page number the endpoint accepts.
	kakaoMaxPage = 45
)

// KakaoConfig configures KakaoClient.
type KakaoConfig struct {
	HTTPConfig

	// APIKey is the REST API key, sent as "KakaoAK <key>".
	APIKey string
}

// KakaoClient searches the Kakao Local keyword API.
// Pagination is page-number based; meta.is_end marks the last page.
type KakaoClient struct {
	http   *httpClient
	apiKey string
}

var _ Client = (*KakaoClient)(nil)

// NewKakaoClient creates a Kakao Local client.
func NewKakaoClient(cfg KakaoConfig) (*KakaoClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("kakao api key is required")
	}
	return &KakaoClient{
		http:   newHTTPClient(record.SourceKakao, kakaoBaseURL, cfg.HTTPConfig),
		apiKey: strings.TrimSpace(cfg.APIKey),
	}, nil
}

// Source implements Client.
func (c *KakaoClient) Source() record.Source { return record.SourceKakao }

// PageSize implements Client.
func (c *KakaoClient) PageSize() int { return KakaoPageSize }

type kakaoResponse struct {
	Meta struct {
		TotalCount    int  `json:"total_count"`
		PageableCount int  `json:"pageable_count"`
		IsEnd         bool `json:"is_end"`
	} `json:"meta"`
	Documents []kakaoDocument `json:"documents"`
}

type kakaoDocument struct {
	ID              string `json:"id"`
	PlaceName       string `json:"place_name"`
	CategoryName    string `json:"category_name"`
	Phone           string `json:"phone"`
	AddressName     string `json:"address_name"`
	RoadAddressName string `json:"road_address_name"`
	X               string `json:"x"`
	Y               string `json:"y"`
}

// FetchPage implements Client.
func (c *KakaoClient) FetchPage(ctx context.Context, q Query, cursor Cursor) (Page, error) {
	page := cursor.Page
	if page < 1 {
		page = 1
	}

	params := map[string]string{
		"query": q.Text(),
		"page":  strconv.Itoa(page),
		"size":  strconv.Itoa(KakaoPageSize),
	}
	headers := map[string]string{
		"Authorization": "KakaoAK " + c.apiKey,
	}

	var payload kakaoResponse
	if err := c.http.getJSON(ctx, kakaoSearchPath, params, headers, &payload, nil); err != nil {
		return Page{}, err
	}

	records := make([]record.BusinessRecord, 0, len(payload.Documents))
	for _, doc := range payload.Documents {
		records = append(records, doc.normalize())
	}

	return Page{
		Records: records,
		Next:    Cursor{Page: page + 1},
		Done:    payload.Meta.IsEnd || page >= kakaoMaxPage,
	}, nil
}

func (d kakaoDocument) normalize() record.BusinessRecord {
	address := strings.TrimSpace(d.RoadAddressName)
	if address == "" {
		address = strings.TrimSpace(d.AddressName)
	}
	lon, _ := strconv.ParseFloat(d.X, 64)
	lat, _ := strconv.ParseFloat(d.Y, 64)

	return record.BusinessRecord{
		ID:        record.MakeID(record.SourceKakao, d.ID),
		Name:      strings.TrimSpace(d.PlaceName),
		Address:   address,
		Phone:     record.NormalizePhone(d.Phone),
		Category:  lastCategory(d.CategoryName, ">"),
		Latitude:  lat,
		Longitude: lon,
		Source:    record.SourceKakao,
	}
}

// lastCategory returns the most specific segment of a hierarchical
// category string such as "음식점 > 카페 > 커피전문점".
func lastCategory(category, sep string) string {
	parts := strings.Split(category, sep)
	for i := len(parts) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(parts[i]); s != "" {
			return s
		}
	}
	return ""
}
