package cli

import (
	"context"
	"fmt"

	"github.com/nasti/booking-client/internal/booking"
)

func runBook(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "book", "-room ID -in DATE -out DATE [-info TEXT]")
	room := fs.Int("room", 0, "room id from the hotel command")
	in := fs.String("in", "", "check-in date, YYYY-MM-DD")
	out := fs.String("out", "", "check-out date, YYYY-MM-DD")
	info := fs.String("info", "", "note for the hotel")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *room <= 0 {
		fmt.Fprintln(d.Out, "missing -room")
		fs.Usage()
		return ErrUsage
	}

	res, err := d.App.Book(ctx, *room, *in, *out, *info)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "Booking #%d is %s: %s to %s.\n", res.ID, res.Status, res.CheckInDate, res.CheckOutDate)
	fmt.Fprintf(d.Out, "Pay with: booking-client pay -booking %d -method Card -amount AMOUNT\n", res.ID)
	return nil
}

func runPay(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "pay", "-booking ID -method METHOD -amount AMOUNT")
	id := fs.Int("booking", 0, "booking id")
	method := fs.String("method", booking.PaymentCard, "Cash, Card or Google Pay")
	amount := fs.Float64("amount", 0, "amount to pay")
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := d.App.Pay(ctx, *id, *method, *amount); err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "Paid %.2f for booking #%d.\n", *amount, *id)
	return nil
}

func runBookings(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "bookings", "[-page N]")
	page := fs.Int("page", 1, "page")
	if err := parse(fs, args); err != nil {
		return err
	}

	bookings, err := d.App.Bookings(ctx)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		fmt.Fprintln(d.Out, "No bookings yet.")
		return nil
	}

	p := booking.Paginate(bookings, *page, booking.DefaultPerPage)
	printBookings(d, p.Items)
	if p.TotalPages > 1 {
		fmt.Fprintf(d.Out, "Page %d of %d\n", p.Number, p.TotalPages)
	}
	return nil
}

func printBookings(d Deps, bookings []booking.BookingSummary) {
	for _, b := range bookings {
		fmt.Fprintf(d.Out, "#%d %s, %s [%s]\n", b.ID, b.HotelName, b.City, b.Status)
		fmt.Fprintf(d.Out, "    %s to %s, %d night(s)", b.CheckIn, b.CheckOut, b.Nights())
		if b.TotalPrice != "" {
			fmt.Fprintf(d.Out, ", total %s", b.TotalPrice)
		}
		fmt.Fprintln(d.Out)
	}
}

func runCancel(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "cancel", "ID")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := intArg(fs)
	if err != nil {
		return err
	}

	msg, err := d.App.Cancel(ctx, id)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Booking #%d cancelled.", id)
	}
	fmt.Fprintln(d.Out, msg)
	return nil
}

func runReview(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "review", "-booking ID -rating 1-5 [-text TEXT]")
	id := fs.Int("booking", 0, "booking id")
	rating := fs.Int("rating", 0, "rating from 1 to 5")
	text := fs.String("text", "", "review text")
	if err := parse(fs, args); err != nil {
		return err
	}

	if _, err := d.App.Review(ctx, *id, *rating, *text); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "Thanks for the review!")
	return nil
}
