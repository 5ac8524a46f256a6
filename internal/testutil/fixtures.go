package testutil

import "fmt"

// Provider API paths served by the mock.
const (
	KakaoSearchPath   = "/v2/local/search/keyword.json"
	NaverSearchPath   = "/v1/search/local.json"
	GoogleSearchPath  = "/maps/api/place/textsearch/json"
	GoogleDetailsPath = "/maps/api/place/details/json"
)

// KakaoPlace is one Kakao Local document.
type KakaoPlace struct {
	ID      string
	Name    string
	Address string
	Phone   string
}

// KakaoPage builds a Kakao keyword search payload.
func KakaoPage(isEnd bool, places ...KakaoPlace) MockResponse {
	docs := make([]map[string]any, 0, len(places))
	for _, p := range places {
		docs = append(docs, map[string]any{
			"id":                p.ID,
			"place_name":        p.Name,
			"category_name":     "음식점 > 카페",
			"phone":             p.Phone,
			"address_name":      p.Address,
			"road_address_name": "",
			"x":                 "127.0276",
			"y":                 "37.4979",
		})
	}
	return NewJSONResponse(map[string]any{
		"meta": map[string]any{
			"total_count":    len(places),
			"pageable_count": len(places),
			"is_end":         isEnd,
		},
		"documents": docs,
	})
}

// KakaoPlaces generates n places named "<prefix> n".
func KakaoPlaces(prefix string, n int) []KakaoPlace {
	places := make([]KakaoPlace, 0, n)
	for i := 1; i <= n; i++ {
		places = append(places, KakaoPlace{
			ID:      fmt.Sprintf("%s-%d", prefix, i),
			Name:    fmt.Sprintf("%s %d", prefix, i),
			Address: fmt.Sprintf("서울 강남구 테헤란로 %d", i),
			Phone:   fmt.Sprintf("02-555-%04d", i),
		})
	}
	return places
}

// NaverPlace is one Naver local item.
type NaverPlace struct {
	Title     string
	Address   string
	Telephone string
}

// NaverPage builds a Naver local search payload.
func NaverPage(start int, places ...NaverPlace) MockResponse {
	items := make([]map[string]any, 0, len(places))
	for _, p := range places {
		items = append(items, map[string]any{
			"title":       p.Title,
			"link":        "",
			"category":    "카페,디저트>카페",
			"description": "",
			"telephone":   p.Telephone,
			"address":     p.Address,
			"roadAddress": p.Address,
			"mapx":        "1270276000",
			"mapy":        "374979000",
		})
	}
	return NewJSONResponse(map[string]any{
		"total":   100,
		"start":   start,
		"display": len(items),
		"items":   items,
	})
}

// GooglePlace is one Places text search result.
type GooglePlace struct {
	PlaceID string
	Name    string
	Address string
	Rating  float64
}

// GooglePage builds a Places text search payload.
func GooglePage(status, nextToken string, places ...GooglePlace) MockResponse {
	results := make([]map[string]any, 0, len(places))
	for _, p := range places {
		results = append(results, map[string]any{
			"place_id":          p.PlaceID,
			"name":              p.Name,
			"formatted_address": p.Address,
			"rating":            p.Rating,
			"types":             []string{"cafe", "food"},
			"geometry": map[string]any{
				"location": map[string]any{"lat": 35.6812, "lng": 139.7671},
			},
		})
	}
	body := map[string]any{
		"status":  status,
		"results": results,
	}
	if nextToken != "" {
		body["next_page_token"] = nextToken
	}
	return NewJSONResponse(body)
}

// GooglePlaces generates n places named "<prefix> n".
func GooglePlaces(prefix string, n int) []GooglePlace {
	places := make([]GooglePlace, 0, n)
	for i := 1; i <= n; i++ {
		places = append(places, GooglePlace{
			PlaceID: fmt.Sprintf("%s-%d", prefix, i),
			Name:    fmt.Sprintf("%s %d", prefix, i),
			Address: fmt.Sprintf("%d Chiyoda, Tokyo", i),
			Rating:  4.0,
		})
	}
	return places
}

// GoogleDetails builds a Place Details payload.
func GoogleDetails(status, phone string) MockResponse {
	return NewJSONResponse(map[string]any{
		"status": status,
		"result": map[string]any{
			"formatted_phone_number": phone,
		},
	})
}
