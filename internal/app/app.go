// Package app ties the session store to the booking API. It decides where the
// user starts, gates actions that need a session, and ends the session when
// the server rejects the token.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nasti/booking-client/internal/booking"
	"github.com/nasti/booking-client/internal/session"
	"github.com/nasti/booking-client/internal/validate"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrLoginRequired means the action needs a valid session and there is none.
	ErrLoginRequired = errors.New("login required")
	// ErrNoToken is returned when a successful login or registration carries
	// no access token. The stored session is left as it was.
	ErrNoToken = errors.New("server returned no access token")
)

type Route string

const (
	RouteAuth    Route = "auth"
	RouteProfile Route = "profile"
)

type App struct {
	Session *session.Store
	API     *booking.Client

	now func() time.Time
}

type Option func(*App)

// WithClock sets the clock used to stamp booking and payment dates.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

func New(sess *session.Store, api *booking.Client, opts ...Option) *App {
	a := &App{Session: sess, API: api, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) today() string {
	return a.now().Format(booking.DateLayout)
}

// StartRoute picks the first screen. Storage faults fall back to RouteAuth.
func (a *App) StartRoute() (Route, error) {
	loggedIn, err := a.Session.IsLoggedIn()
	if err != nil {
		return RouteAuth, fmt.Errorf("failed to read session: %w", err)
	}
	if loggedIn {
		return RouteProfile, nil
	}
	return RouteAuth, nil
}

func (a *App) RequireSession() error {
	expired, err := a.Session.IsTokenExpired()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if expired {
		return ErrLoginRequired
	}
	return nil
}

// checkAuth ends the session when the server rejects the token.
func (a *App) checkAuth(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, booking.ErrUnauthorized):
		log.Info().Err(err).Msg("server rejected token, clearing session")
		if clearErr := a.Session.ClearSession(); clearErr != nil {
			return fmt.Errorf("failed to clear session: %w", clearErr)
		}
		return fmt.Errorf("%w: %w", ErrLoginRequired, err)
	case errors.Is(err, booking.ErrNotLoggedIn):
		return ErrLoginRequired
	default:
		return err
	}
}

func (a *App) saveToken(res *booking.TokenResponse) error {
	if res.AccessToken == "" {
		return ErrNoToken
	}
	if err := a.Session.SaveToken(res.AccessToken); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (a *App) Login(ctx context.Context, email, password string) (*booking.User, error) {
	if err := validate.Login(email, password); err != nil {
		return nil, err
	}

	res, err := a.API.Login(ctx, booking.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := a.saveToken(res); err != nil {
		return nil, err
	}

	log.Info().Str("email", email).Msg("logged in")
	return res.User, nil
}

func (a *App) Register(ctx context.Context, form validate.RegisterForm) (*booking.User, error) {
	if err := validate.Register(form); err != nil {
		return nil, err
	}

	res, err := a.API.Register(ctx, booking.RegisterRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Phone:     form.Phone,
		Password:  form.Password,
	})
	if err != nil {
		return nil, err
	}
	if err := a.saveToken(res); err != nil {
		return nil, err
	}

	log.Info().Str("email", form.Email).Msg("registered")
	return res.User, nil
}

// RegisterByEmail starts a registration that is finished by the link the
// backend emails. No session is stored.
func (a *App) RegisterByEmail(ctx context.Context, form validate.RegisterForm) error {
	if err := validate.Register(form); err != nil {
		return err
	}

	err := a.API.RegisterInitiate(ctx, booking.RegisterRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Phone:     form.Phone,
		Password:  form.Password,
	})
	if err != nil {
		return err
	}

	log.Info().Str("email", form.Email).Msg("registration email requested")
	return nil
}

func (a *App) VerifyRegistration(ctx context.Context, token string) error {
	if token == "" {
		return validate.Errors{"token": "is required"}
	}
	return a.API.VerifyRegistration(ctx, token)
}

func (a *App) Logout() error {
	if err := a.Session.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (a *App) DeleteAccount(ctx context.Context) error {
	if err := a.RequireSession(); err != nil {
		return err
	}
	if err := a.checkAuth(a.API.DeleteAccount(ctx)); err != nil {
		return err
	}
	return a.Logout()
}

func (a *App) ForgotPassword(ctx context.Context, email string) error {
	if err := validate.Email(email); err != nil {
		return err
	}
	return a.API.ForgotPassword(ctx, email)
}

func (a *App) VerifyCode(ctx context.Context, email, code string) error {
	if err := validate.Email(email); err != nil {
		return err
	}
	return a.API.VerifyCode(ctx, email, code)
}

func (a *App) ResetPassword(ctx context.Context, email, newPassword, confirm string) error {
	if err := validate.ResetPassword(newPassword, confirm); err != nil {
		return err
	}
	return a.API.ResetPassword(ctx, booking.ResetPasswordRequest{Email: email, NewPassword: newPassword})
}

func (a *App) Profile(ctx context.Context) (*booking.User, error) {
	if err := a.RequireSession(); err != nil {
		return nil, err
	}
	user, err := a.API.Profile(ctx)
	return user, a.checkAuth(err)
}

func (a *App) UpdateProfile(ctx context.Context, form validate.ProfileForm) (*booking.User, error) {
	if err := a.RequireSession(); err != nil {
		return nil, err
	}
	if err := validate.Profile(form); err != nil {
		return nil, err
	}

	user, err := a.API.UpdateProfile(ctx, booking.UserUpdateRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Phone:     form.Phone,
	})
	if err := a.checkAuth(err); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *App) ChangePassword(ctx context.Context, current, newPassword, confirm string) error {
	if err := a.RequireSession(); err != nil {
		return err
	}
	if err := validate.ChangePassword(current, newPassword, confirm); err != nil {
		return err
	}

	err := a.API.ChangePassword(ctx, booking.PasswordChangeRequest{
		CurrentPassword: current,
		NewPassword:     newPassword,
	})
	return a.checkAuth(err)
}

func (a *App) Bookings(ctx context.Context) ([]booking.BookingSummary, error) {
	if err := a.RequireSession(); err != nil {
		return nil, err
	}
	bookings, err := a.API.MyBookings(ctx)
	return bookings, a.checkAuth(err)
}

// Overview is what the profile screen shows.
type Overview struct {
	User     *booking.User
	Bookings []booking.BookingSummary
}

// Overview loads the profile and the booking list concurrently.
func (a *App) Overview(ctx context.Context) (*Overview, error) {
	if err := a.RequireSession(); err != nil {
		return nil, err
	}

	var overview Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := a.API.Profile(ctx)
		overview.User = user
		return err
	})
	g.Go(func() error {
		bookings, err := a.API.MyBookings(ctx)
		overview.Bookings = bookings
		return err
	})

	if err := a.checkAuth(g.Wait()); err != nil {
		return nil, err
	}
	return &overview, nil
}

func (a *App) Book(ctx context.Context, roomID int, checkIn, checkOut, info string) (*booking.BookingResponse, error) {
	if err := a.RequireSession(); err != nil {
		return nil, err
	}
	if err := validate.Booking(checkIn, checkOut, info); err != nil {
		return nil, err
	}

	res, err := a.API.CreateBooking(ctx, booking.BookingCreateRequest{
		RoomID:         roomID,
		BookingDate:    a.today(),
		CheckInDate:    checkIn,
		CheckOutDate:   checkOut,
		Status:         booking.StatusPending,
		AdditionalInfo: info,
	})
	if err := a.checkAuth(err); err != nil {
		return nil, err
	}

	log.Info().Int("booking_id", res.ID).Int("room_id", roomID).Msg("booking created")
	return res, nil
}

func (a *App) Pay(ctx context.Context, bookingID int, method string, amount float64) error {
	if err := a.RequireSession(); err != nil {
		return err
	}
	if err := validate.Payment(method, amount); err != nil {
		return err
	}

	err := a.API.CreatePayment(ctx, booking.PaymentCreateRequest{
		BookingID:     bookingID,
		PaymentDate:   a.today(),
		PaymentMethod: method,
		Amount:        amount,
	})
	return a.checkAuth(err)
}

func (a *App) Review(ctx context.Context, bookingID, rating int, text string) (*booking.Review, error) {
	if err := a.RequireSession(); err != nil {
		return nil, err
	}
	if err := validate.Review(rating); err != nil {
		return nil, err
	}

	review, err := a.API.SubmitReview(ctx, booking.ReviewCreateRequest{
		BookingID: bookingID,
		Rating:    rating,
		Text:      text,
	})
	return review, a.checkAuth(err)
}

// Cancel returns the server's confirmation message.
func (a *App) Cancel(ctx context.Context, bookingID int) (string, error) {
	if err := a.RequireSession(); err != nil {
		return "", err
	}

	res, err := a.API.CancelBooking(ctx, bookingID)
	if err := a.checkAuth(err); err != nil {
		return "", err
	}
	return res["message"], nil
}
