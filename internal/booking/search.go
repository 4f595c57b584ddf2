package booking

import (
	"errors"
	"fmt"
)

var ErrInvalidSort = errors.New("invalid sort order")

// Sort orders understood by hotels/search-available.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortReviews   = "reviews"
)

const (
	DefaultAdults  = 2
	DefaultRooms   = 1
	DefaultPerPage = 10
)

// Filters are optional search constraints. A nil field is not sent.
type Filters struct {
	MinStars           *int
	HasWifi            *bool
	AllowsPets         *bool
	HasKitchen         *bool
	HasAirConditioning *bool
	HasTV              *bool
	HasSafe            *bool
	HasBalcony         *bool
}

type SearchQuery struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Adults      int
	Rooms       int
	Filters     Filters
	SortBy      string
}

func (q SearchQuery) Request() (HotelSearchRequest, error) {
	switch q.SortBy {
	case "", SortPriceAsc, SortPriceDesc, SortRating, SortReviews:
	default:
		return HotelSearchRequest{}, fmt.Errorf("%w: %q", ErrInvalidSort, q.SortBy)
	}

	adults := q.Adults
	if adults <= 0 {
		adults = DefaultAdults
	}
	rooms := q.Rooms
	if rooms <= 0 {
		rooms = DefaultRooms
	}

	return HotelSearchRequest{
		Destination:        q.Destination,
		CheckIn:            q.CheckIn,
		CheckOut:           q.CheckOut,
		Rooms:              rooms,
		Adults:             adults,
		MinStars:           q.Filters.MinStars,
		HasWifi:            q.Filters.HasWifi,
		AllowsPets:         q.Filters.AllowsPets,
		HasKitchen:         q.Filters.HasKitchen,
		HasAirConditioning: q.Filters.HasAirConditioning,
		HasTV:              q.Filters.HasTV,
		HasSafe:            q.Filters.HasSafe,
		HasBalcony:         q.Filters.HasBalcony,
		SortBy:             q.SortBy,
	}, nil
}

// Page is one window of a result list.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Total      int
}

func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// Paginate returns the 1-based page of items. Pages outside the valid range
// are clamped. perPage <= 0 uses DefaultPerPage.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		return Page[T]{Items: []T{}, Number: 1, TotalPages: 0, Total: 0}
	}

	page = max(1, min(page, totalPages))
	start := (page - 1) * perPage
	end := min(start+perPage, total)

	return Page[T]{
		Items:      items[start:end],
		Number:     page,
		TotalPages: totalPages,
		Total:      total,
	}
}
