package booking

import (
	"context"
	"encoding/json"
	"strconv"
)

// SearchLocations returns city and country suggestions for a prefix.
// Calls are throttled so that typing does not flood the backend.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]LocationSuggestion, error) {
	if err := c.suggest.Wait(ctx); err != nil {
		return nil, err
	}

	var raw []map[string]json.RawMessage
	_, err := handleError(c.req(ctx, &raw).
		SetQueryParam("q", query).
		Get("locations/search"))
	if err != nil {
		return nil, err
	}

	return decodeSuggestions(raw), nil
}

// decodeSuggestions keeps entries with a known type and skips the rest.
func decodeSuggestions(raw []map[string]json.RawMessage) []LocationSuggestion {
	suggestions := make([]LocationSuggestion, 0, len(raw))
	for _, item := range raw {
		var s LocationSuggestion
		var kind string
		if err := json.Unmarshal(item["type"], &kind); err != nil {
			continue
		}
		s.Kind = LocationKind(kind)
		if s.Kind != LocationCity && s.Kind != LocationCountry {
			continue
		}
		if err := json.Unmarshal(item["id"], &s.ID); err != nil {
			continue
		}
		if err := json.Unmarshal(item["name"], &s.Name); err != nil {
			continue
		}
		if v, ok := item["country_name"]; ok && s.Kind == LocationCity {
			// null leaves CountryName empty
			_ = json.Unmarshal(v, &s.CountryName)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions
}

func (c *Client) SearchHotels(ctx context.Context, request HotelSearchRequest) ([]HotelSearchResult, error) {
	var result []HotelSearchResult
	_, err := handleError(c.req(ctx, &result).
		SetBody(request).
		Post("hotels/search-available"))
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) HotelDetails(ctx context.Context, hotelID int) (*HotelDetail, error) {
	result := &HotelDetail{}

	_, err := handleError(c.req(ctx, result).
		SetPathParam("hotelId", strconv.Itoa(hotelID)).
		Get("hotels/{hotelId}/details"))
	if err != nil {
		return nil, err
	}

	return result, nil
}
