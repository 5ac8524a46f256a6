package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"html"
	"strconv"
	"strings"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

const (
	naverBaseURL    = "https://openapi.naver.com"
	naverSearchPath = "/v1/search/local.json"

	// NaverPageSize is the largest "display" the local endpoint serves.
	NaverPageSize = 5

	// naverMaxStart is the highest "start" offset the endpoint accepts.
	naverMaxStart = 1000

	// mapx/mapy are WGS84 degrees scaled by 1e7.
	naverCoordScale = 1e7
)

// NaverConfig configures NaverClient.
type NaverConfig struct {
	HTTPConfig

	ClientID     string
	ClientSecret string
}

// NaverClient searches the Naver local search API.
// Pagination is offset based with no continuation signal: the next page is
// assumed to exist until a short page comes back.
type NaverClient struct {
	http         *httpClient
	clientID     string
	clientSecret string
}

var _ Client = (*NaverClient)(nil)

// NewNaverClient creates a Naver local search client.
func NewNaverClient(cfg NaverConfig) (*NaverClient, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("naver client id and secret are required")
	}
	return &NaverClient{
		http:         newHTTPClient(record.SourceNaver, naverBaseURL, cfg.HTTPConfig),
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: strings.TrimSpace(cfg.ClientSecret),
	}, nil
}

// Source implements Client.
func (c *NaverClient) Source() record.Source { return record.SourceNaver }

// PageSize implements Client.
func (c *NaverClient) PageSize() int { return NaverPageSize }

type naverResponse struct {
	Total   int         `json:"total"`
	Start   int         `json:"start"`
	Display int         `json:"display"`
	Items   []naverItem `json:"items"`
}

type naverItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

// FetchPage implements Client.
func (c *NaverClient) FetchPage(ctx context.Context, q Query, cursor Cursor) (Page, error) {
	start := cursor.Offset + 1

	params := map[string]string{
		"query":   q.Text(),
		"display": strconv.Itoa(NaverPageSize),
		"start":   strconv.Itoa(start),
		"sort":    "random",
	}
	headers := map[string]string{
		"X-Naver-Client-Id":     c.clientID,
		"X-Naver-Client-Secret": c.clientSecret,
	}

	var payload naverResponse
	if err := c.http.getJSON(ctx, naverSearchPath, params, headers, &payload, nil); err != nil {
		return Page{}, err
	}

	records := make([]record.BusinessRecord, 0, len(payload.Items))
	for _, item := range payload.Items {
		records = append(records, item.normalize())
	}

	nextOffset := cursor.Offset + len(records)
	return Page{
		Records: records,
		Next:    Cursor{Offset: nextOffset},
		Done:    nextOffset+1 > naverMaxStart,
	}, nil
}

var naverMarkup = strings.NewReplacer("<b>", "", "</b>", "")

func (i naverItem) normalize() record.BusinessRecord {
	name := strings.TrimSpace(html.UnescapeString(naverMarkup.Replace(i.Title)))
	address := strings.TrimSpace(i.RoadAddress)
	if address == "" {
		address = strings.TrimSpace(i.Address)
	}
	x, _ := strconv.ParseFloat(i.MapX, 64)
	y, _ := strconv.ParseFloat(i.MapY, 64)

	return record.BusinessRecord{
		ID:        record.MakeID(record.SourceNaver, naverID(name, address)),
		Name:      name,
		Address:   address,
		Phone:     record.NormalizePhone(i.Telephone),
		Category:  lastCategory(i.Category, ">"),
		Latitude:  y / naverCoordScale,
		Longitude: x / naverCoordScale,
		Source:    record.SourceNaver,
	}
}

// naverID derives a stable ID; the local endpoint does not return one.
func naverID(name, address string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(address))
	return strconv.FormatUint(h.Sum64(), 16)
}
