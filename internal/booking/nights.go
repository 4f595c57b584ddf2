package booking

import (
	"math"
	"time"
)

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

// Nights counts whole days between two dates. It never returns less than
// one, and returns one when either date does not parse.
func Nights(checkIn, checkOut string) int {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return 1
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return 1
	}

	days := int(out.Sub(in).Hours() / 24)
	return max(days, 1)
}

// TotalPrice rounds to cents.
func TotalPrice(perNight float64, nights int) float64 {
	return math.Round(perNight*float64(nights)*100) / 100
}
