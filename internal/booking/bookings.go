package booking

import (
	"context"
	"strconv"
)

// CreateBooking books a room. An empty status is sent as pending.
func (c *Client) CreateBooking(ctx context.Context, request BookingCreateRequest) (*BookingResponse, error) {
	if request.Status == "" {
		request.Status = StatusPending
	}

	result := &BookingResponse{}
	req, err := c.authReq(ctx, result)
	if err != nil {
		return nil, err
	}
	if _, err := handleError(req.SetBody(request).Post("bookings")); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) MyBookings(ctx context.Context) ([]BookingSummary, error) {
	var result []BookingSummary

	req, err := c.authReq(ctx, &result)
	if err != nil {
		return nil, err
	}
	if _, err := handleError(req.Get("bookings")); err != nil {
		return nil, err
	}

	return result, nil
}

// CancelBooking returns the backend's confirmation message.
func (c *Client) CancelBooking(ctx context.Context, bookingID int) (map[string]string, error) {
	result := map[string]string{}

	req, err := c.authReq(ctx, &result)
	if err != nil {
		return nil, err
	}
	_, err = handleError(req.
		SetPathParam("bookingId", strconv.Itoa(bookingID)).
		Post("bookings/my-bookings/{bookingId}/cancel"))
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) CreatePayment(ctx context.Context, request PaymentCreateRequest) error {
	req, err := c.authReq(ctx, nil)
	if err != nil {
		return err
	}
	_, err = handleError(req.SetBody(request).Post("payments/"))
	return err
}

func (c *Client) SubmitReview(ctx context.Context, request ReviewCreateRequest) (*Review, error) {
	result := &Review{}

	req, err := c.authReq(ctx, result)
	if err != nil {
		return nil, err
	}
	if _, err := handleError(req.SetBody(request).Post("reviews/")); err != nil {
		return nil, err
	}

	return result, nil
}
