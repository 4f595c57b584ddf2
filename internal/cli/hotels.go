package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nasti/booking-client/internal/booking"
)

func runLocations(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "locations", "QUERY")
	if err := parse(fs, args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	if err := requireFlags(fs, map[string]string{"query": query}); err != nil {
		return err
	}

	suggestions, err := d.App.API.SearchLocations(ctx, query)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(d.Out, "No matching destinations.")
		return nil
	}
	for _, s := range suggestions {
		fmt.Fprintf(d.Out, "%-8s %s\n", s.Kind, s.Label())
	}
	return nil
}

func runSearch(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "search", "-dest CITY -in DATE -out DATE [filters]")
	var q booking.SearchQuery
	fs.StringVar(&q.Destination, "dest", "", "city or country")
	fs.StringVar(&q.CheckIn, "in", "", "check-in date, YYYY-MM-DD")
	fs.StringVar(&q.CheckOut, "out", "", "check-out date, YYYY-MM-DD")
	fs.IntVar(&q.Adults, "adults", booking.DefaultAdults, "number of adults")
	fs.IntVar(&q.Rooms, "rooms", booking.DefaultRooms, "number of rooms")
	fs.StringVar(&q.SortBy, "sort", "", "price_asc, price_desc, rating or reviews")
	minStars := fs.Int("min-stars", 0, "minimum star rating")
	page := fs.Int("page", 1, "result page")
	amenities := map[string]**bool{
		"wifi":    &q.Filters.HasWifi,
		"pets":    &q.Filters.AllowsPets,
		"kitchen": &q.Filters.HasKitchen,
		"ac":      &q.Filters.HasAirConditioning,
		"tv":      &q.Filters.HasTV,
		"safe":    &q.Filters.HasSafe,
		"balcony": &q.Filters.HasBalcony,
	}
	values := map[string]*bool{}
	for name := range amenities {
		values[name] = fs.Bool(name, false, "require "+name)
	}
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, map[string]string{"dest": q.Destination, "in": q.CheckIn, "out": q.CheckOut}); err != nil {
		return err
	}

	// Only amenities given on the command line are sent, so -wifi=false
	// asks for rooms without wifi.
	fs.Visit(func(f *flag.Flag) {
		if target, ok := amenities[f.Name]; ok {
			*target = values[f.Name]
		}
		if f.Name == "min-stars" {
			q.Filters.MinStars = minStars
		}
	})

	request, err := q.Request()
	if err != nil {
		return err
	}
	hotels, err := d.App.API.SearchHotels(ctx, request)
	if err != nil {
		return err
	}
	if len(hotels) == 0 {
		fmt.Fprintln(d.Out, "No hotels available for these dates.")
		return nil
	}

	nights := booking.Nights(q.CheckIn, q.CheckOut)
	p := booking.Paginate(hotels, *page, booking.DefaultPerPage)
	for _, h := range p.Items {
		fmt.Fprintf(d.Out, "#%d %s%s, %s, %s\n", h.ID, h.Name, stars(h.Stars), h.City, h.Country)
		if h.LowestPrice != nil {
			fmt.Fprintf(d.Out, "    from %.2f per night, %.2f for %d night(s)\n",
				*h.LowestPrice, booking.TotalPrice(*h.LowestPrice, nights), nights)
		}
		if h.AverageRating != nil {
			fmt.Fprintf(d.Out, "    rated %.1f\n", *h.AverageRating)
		}
	}
	fmt.Fprintf(d.Out, "Page %d of %d (%d hotels)\n", p.Number, p.TotalPages, p.Total)
	return nil
}

func stars(n *int) string {
	if n == nil || *n <= 0 {
		return ""
	}
	return " " + strings.Repeat("*", *n)
}

func runHotel(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "hotel", "ID")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := intArg(fs)
	if err != nil {
		return err
	}

	h, err := d.App.API.HotelDetails(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.Out, "%s%s\n%s, %s, %s\n", h.Name, stars(h.Stars), h.Address, h.City, h.Country)
	if h.Description != "" {
		fmt.Fprintf(d.Out, "\n%s\n", h.Description)
	}
	if len(h.Rooms) > 0 {
		fmt.Fprintln(d.Out, "\nRooms:")
		for _, r := range h.Rooms {
			fmt.Fprintf(d.Out, "  #%d %s (%s, sleeps %d) %.2f per night\n", r.ID, r.Name, r.RoomType, r.Capacity, r.PricePerNight)
			if a := amenityList(r); a != "" {
				fmt.Fprintf(d.Out, "      %s\n", a)
			}
			if r.CancellationPolicy != "" {
				fmt.Fprintf(d.Out, "      Cancellation: %s\n", r.CancellationPolicy)
			}
		}
	}
	if len(h.Reviews) > 0 {
		fmt.Fprintln(d.Out, "\nReviews:")
		for _, r := range h.Reviews {
			who := r.UserName
			if who == "" {
				who = "guest"
			}
			fmt.Fprintf(d.Out, "  %d/5 by %s", r.Rating, who)
			if r.Text != "" {
				fmt.Fprintf(d.Out, ": %s", r.Text)
			}
			fmt.Fprintln(d.Out)
		}
	}
	return nil
}

func amenityList(r booking.RoomDetail) string {
	var a []string
	for _, item := range []struct {
		has  bool
		name string
	}{
		{r.HasWifi, "wifi"},
		{r.AllowsPets, "pets allowed"},
		{r.HasAirConditioning, "air conditioning"},
		{r.HasTV, "TV"},
		{r.HasMinibar, "minibar"},
		{r.HasBalcony, "balcony"},
		{r.HasKitchen, "kitchen"},
		{r.HasSafe, "safe"},
	} {
		if item.has {
			a = append(a, item.name)
		}
	}
	return strings.Join(a, ", ")
}

func intArg(fs *flag.FlagSet) (int, error) {
	if fs.NArg() != 1 {
		fs.Usage()
		return 0, ErrUsage
	}
	id, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(fs.Output(), "invalid id %q\n", fs.Arg(0))
		return 0, ErrUsage
	}
	return id, nil
}
