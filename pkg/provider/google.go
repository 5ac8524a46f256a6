package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/record"
)

const (
	googleBaseURL     = "https://maps.googleapis.com"
	googleSearchPath  = "/maps/api/place/textsearch/json"
	googleDetailsPath = "/maps/api/place/details/json"

	// GooglePageSize is the fixed page size of text search.
	GooglePageSize = 20

	// DefaultGoogleTokenDelay is how long a next_page_token needs before
	// the API accepts it.
	DefaultGoogleTokenDelay = 2 * time.Second
)

// Places API in-band statuses.
const (
	googleStatusOK             = "OK"
	googleStatusZeroResults    = "ZERO_RESULTS"
	googleStatusInvalidRequest = "INVALID_REQUEST"
	googleStatusOverQueryLimit = "OVER_QUERY_LIMIT"
	googleStatusRequestDenied  = "REQUEST_DENIED"
	googleStatusNotFound       = "NOT_FOUND"
)

// GoogleConfig configures GoogleClient.
type GoogleConfig struct {
	HTTPConfig

	APIKey string

	// Language is passed through to the API (e.g. "ko", "en").
	Language string

	// TokenDelay is the minimum age of a next_page_token before use.
	TokenDelay time.Duration
}

// GoogleClient searches Google Places text search.
// Pagination uses an opaque next_page_token that is rejected when reused
// too soon after issuance. The list payload carries no phone numbers, so the
// client also implements DetailFetcher via Place Details.
type GoogleClient struct {
	http       *httpClient
	apiKey     string
	language   string
	tokenDelay time.Duration
	now        func() time.Time
}

var (
	_ Client        = (*GoogleClient)(nil)
	_ DetailFetcher = (*GoogleClient)(nil)
	_ TokenDelayer  = (*GoogleClient)(nil)
)

// NewGoogleClient creates a Google Places client.
func NewGoogleClient(cfg GoogleConfig) (*GoogleClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("google places api key is required")
	}
	tokenDelay := cfg.TokenDelay
	if tokenDelay <= 0 {
		tokenDelay = DefaultGoogleTokenDelay
	}
	return &GoogleClient{
		http:       newHTTPClient(record.SourceGoogle, googleBaseURL, cfg.HTTPConfig),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		language:   strings.TrimSpace(cfg.Language),
		tokenDelay: tokenDelay,
		now:        time.Now,
	}, nil
}

// Source implements Client.
func (c *GoogleClient) Source() record.Source { return record.SourceGoogle }

// PageSize implements Client.
func (c *GoogleClient) PageSize() int { return GooglePageSize }

// TokenDelay implements TokenDelayer.
func (c *GoogleClient) TokenDelay() time.Duration { return c.tokenDelay }

type googleSearchResponse struct {
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
	NextPageToken string        `json:"next_page_token"`
	Results       []googlePlace `json:"results"`
}

type googlePlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// FetchPage implements Client.
func (c *GoogleClient) FetchPage(ctx context.Context, q Query, cursor Cursor) (Page, error) {
	params := map[string]string{
		"key": c.apiKey,
	}
	if cursor.Token != "" {
		if age := c.now().Sub(cursor.IssuedAt); age < c.tokenDelay {
			providerErrorsTotal.WithLabelValues(string(record.SourceGoogle), string(ErrorClassTokenNotReady)).Inc()
			return Page{}, &ProviderError{
				Source:  record.SourceGoogle,
				Class:   ErrorClassTokenNotReady,
				Message: fmt.Sprintf("next_page_token used after %s, needs %s", age, c.tokenDelay),
				Err:     ErrTokenNotReady,
			}
		}
		params["pagetoken"] = cursor.Token
	} else {
		params["query"] = q.Text()
		if c.language != "" {
			params["language"] = c.language
		}
	}

	var payload googleSearchResponse
	check := func() error {
		return googleStatusError(payload.Status, payload.ErrorMessage, cursor.Token != "")
	}
	if err := c.http.getJSON(ctx, googleSearchPath, params, nil, &payload, check); err != nil {
		return Page{}, err
	}

	records := make([]record.BusinessRecord, 0, len(payload.Results))
	for _, place := range payload.Results {
		records = append(records, place.normalize())
	}

	token := strings.TrimSpace(payload.NextPageToken)
	return Page{
		Records: records,
		Next:    Cursor{Token: token, IssuedAt: c.now()},
		Done:    token == "",
	}, nil
}

type googleDetailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		FormattedPhoneNumber     string `json:"formatted_phone_number"`
		InternationalPhoneNumber string `json:"international_phone_number"`
	} `json:"result"`
}

// FetchDetail implements DetailFetcher. It fills in the phone number.
func (c *GoogleClient) FetchDetail(ctx context.Context, rec record.BusinessRecord) (record.BusinessRecord, error) {
	placeID := strings.TrimPrefix(rec.ID, string(record.SourceGoogle)+":")
	if placeID == "" || placeID == rec.ID {
		return rec, fmt.Errorf("record %q is not a google place", rec.ID)
	}

	params := map[string]string{
		"place_id": placeID,
		"fields":   "formatted_phone_number,international_phone_number",
		"key":      c.apiKey,
	}

	var payload googleDetailsResponse
	check := func() error {
		return googleStatusError(payload.Status, payload.ErrorMessage, false)
	}
	if err := c.http.getJSON(ctx, googleDetailsPath, params, nil, &payload, check); err != nil {
		return rec, err
	}

	phone := strings.TrimSpace(payload.Result.FormattedPhoneNumber)
	if phone == "" {
		phone = strings.TrimSpace(payload.Result.InternationalPhoneNumber)
	}
	return rec.WithPhone(phone), nil
}

// googleStatusError maps the in-band status of a 200 response to an error.
func googleStatusError(status, message string, usedToken bool) error {
	var class ErrorClass
	switch status {
	case googleStatusOK, googleStatusZeroResults:
		return nil
	case googleStatusInvalidRequest:
		class = ErrorClassClient
		if usedToken {
			class = ErrorClassTokenNotReady
		}
	case googleStatusOverQueryLimit:
		class = ErrorClassRateLimit
	case googleStatusRequestDenied, googleStatusNotFound:
		class = ErrorClassClient
	default:
		class = ErrorClassServer
	}
	if message == "" {
		message = status
	}
	return &ProviderError{
		Source:     record.SourceGoogle,
		Class:      class,
		StatusCode: 200,
		Message:    message,
	}
}

func (p googlePlace) normalize() record.BusinessRecord {
	category := ""
	if len(p.Types) > 0 {
		category = p.Types[0]
	}
	return record.BusinessRecord{
		ID:        record.MakeID(record.SourceGoogle, p.PlaceID),
		Name:      strings.TrimSpace(p.Name),
		Address:   strings.TrimSpace(p.FormattedAddress),
		Rating:    p.Rating,
		Category:  category,
		Latitude:  p.Geometry.Location.Lat,
		Longitude: p.Geometry.Location.Lng,
		Source:    record.SourceGoogle,
	}
}
