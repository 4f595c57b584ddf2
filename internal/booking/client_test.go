package booking

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
	ok    bool
	err   error
}

func (s staticTokens) Token() (string, bool, error) { return s.token, s.ok, s.err }

func newTestServer(t *testing.T, status int, body string, seen **http.Request, seenBody *[]byte) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = r
		if seenBody != nil {
			*seenBody, _ = io.ReadAll(r.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestLogin(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := newTestServer(t, http.StatusOK,
		`{"access_token":"abc.def.ghi","token_type":"bearer","user":{"id":3,"first_name":"Ada","last_name":"L","email":"ada@example.com"}}`,
		&req, &body)

	client := NewClient(ClientOpts{BaseURL: ts.URL, InstallationID: "install-1"})
	res, err := client.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "abc.def.ghi", res.AccessToken)
	assert.Equal(t, 3, res.User.ID)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/users/login", req.URL.Path)
	assert.Equal(t, "", req.Header.Get("Authorization"))
	assert.Equal(t, "install-1", req.Header.Get("X-Installation-Id"))
	assert.JSONEq(t, `{"email":"ada@example.com","password":"secret1"}`, string(body))

	_, err = ulid.ParseStrict(req.Header.Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestAuthorizedRequestSendsBearer(t *testing.T) {
	var req *http.Request
	ts := newTestServer(t, http.StatusOK, `{"id":1,"first_name":"A","last_name":"B","email":"a@b.co"}`, &req, nil)

	client := NewClient(ClientOpts{BaseURL: ts.URL, Tokens: staticTokens{token: "tok", ok: true}})
	user, err := client.Profile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "a@b.co", user.Email)
	assert.Equal(t, "/users/me", req.URL.Path)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
}

func TestAuthorizedRequestWithoutToken(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	for _, tokens := range []TokenSource{nil, staticTokens{}} {
		client := NewClient(ClientOpts{BaseURL: ts.URL, Tokens: tokens})

		_, err := client.MyBookings(context.Background())
		assert.ErrorIs(t, err, ErrNotLoggedIn)
		assert.ErrorIs(t, client.DeleteAccount(context.Background()), ErrNotLoggedIn)
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestAuthorizedRequestTokenFault(t *testing.T) {
	fault := errors.New("store offline")
	client := NewClient(ClientOpts{BaseURL: "http://127.0.0.1:1", Tokens: staticTokens{err: fault}})

	_, err := client.Profile(context.Background())
	assert.ErrorIs(t, err, fault)
}

func TestAPIErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Email already registered"}`, "Email already registered"},
		{"validation list", http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"},{"msg":"field required"}]}`,
			"value is not a valid email address; field required"},
		{"object detail", http.StatusConflict, `{"detail":{"code":7}}`, `{"code":7}`},
		{"no detail", http.StatusInternalServerError, `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			ts := newTestServer(t, tt.status, tt.body, &req, nil)

			client := NewClient(ClientOpts{BaseURL: ts.URL})
			_, err := client.Register(context.Background(), RegisterRequest{Email: "x@y.z"})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, http.MethodPost, apiErr.Method)
			assert.Equal(t, tt.detail, apiErr.Detail)
			assert.NotErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	var req *http.Request
	ts := newTestServer(t, http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`, &req, nil)

	client := NewClient(ClientOpts{BaseURL: ts.URL, Tokens: staticTokens{token: "old", ok: true}})
	_, err := client.Profile(context.Background())

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "status: 401")
	assert.Contains(t, err.Error(), "Could not validate credentials")
}

func TestSearchLocations(t *testing.T) {
	var req *http.Request
	ts := newTestServer(t, http.StatusOK, `[
		{"type":"city","id":1,"name":"Paris","country_name":"France"},
		{"type":"country","id":2,"name":"Portugal"},
		{"type":"region","id":3,"name":"Provence"},
		{"type":"city","id":4,"name":"Porto","country_name":null},
		{"type":"city","name":"No id"}
	]`, &req, nil)

	client := NewClient(ClientOpts{BaseURL: ts.URL, SuggestRate: -1})
	got, err := client.SearchLocations(context.Background(), "P")
	require.NoError(t, err)

	assert.Equal(t, "/locations/search", req.URL.Path)
	assert.Equal(t, "P", req.URL.Query().Get("q"))
	assert.Equal(t, []LocationSuggestion{
		{Kind: LocationCity, ID: 1, Name: "Paris", CountryName: "France"},
		{Kind: LocationCountry, ID: 2, Name: "Portugal"},
		{Kind: LocationCity, ID: 4, Name: "Porto"},
	}, got)
	assert.Equal(t, "Paris, France", got[0].Label())
	assert.Equal(t, "Portugal", got[1].Label())
}

func TestSearchLocationsThrottled(t *testing.T) {
	var req *http.Request
	ts := newTestServer(t, http.StatusOK, `[]`, &req, nil)

	client := NewClient(ClientOpts{BaseURL: ts.URL, SuggestRate: 0.001})
	_, err := client.SearchLocations(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.SearchLocations(ctx, "ab")
	assert.Error(t, err)
}

func TestSearchHotels(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := newTestServer(t, http.StatusOK,
		`[{"id":5,"name":"Grand","address":"1 Main","city":"Rome","country":"Italy","stars":4,"lowest_price":120.5,"available_room_ids":[7,8]}]`,
		&req, &body)

	wifi := true
	request, err := SearchQuery{
		Destination: "Rome",
		CheckIn:     "2026-05-01",
		CheckOut:    "2026-05-03",
		Filters:     Filters{HasWifi: &wifi},
		SortBy:      SortPriceAsc,
	}.Request()
	require.NoError(t, err)

	client := NewClient(ClientOpts{BaseURL: ts.URL})
	hotels, err := client.SearchHotels(context.Background(), request)
	require.NoError(t, err)

	require.Len(t, hotels, 1)
	assert.Equal(t, []int{7, 8}, hotels[0].AvailableRoomIDs)
	assert.Equal(t, 4, *hotels[0].Stars)
	assert.Equal(t, "/hotels/search-available", req.URL.Path)
	assert.JSONEq(t, `{"destination":"Rome","check_in":"2026-05-01","check_out":"2026-05-03","rooms":1,"adults":2,"has_wifi":true,"sort_by":"price_asc"}`, string(body))
}

func TestHotelDetails(t *testing.T) {
	var req *http.Request
	ts := newTestServer(t, http.StatusOK, `{
		"id":12,"name":"Seaside","address":"Beach 1","city":"Nice","country":"France","photos":["a.jpg"],
		"rooms":[{"id":1,"name":"Double","room_type":"double","price_per_night":99.9,"capacity":2,"has_wifi":true}],
		"reviews":[{"id":4,"rating":5,"user_name":"Bob"}]
	}`, &req, nil)

	client := NewClient(ClientOpts{BaseURL: ts.URL})
	hotel, err := client.HotelDetails(context.Background(), 12)
	require.NoError(t, err)

	assert.Equal(t, "/hotels/12/details", req.URL.Path)
	assert.Equal(t, "Seaside", hotel.Name)
	require.Len(t, hotel.Rooms, 1)
	assert.True(t, hotel.Rooms[0].HasWifi)
	assert.Equal(t, "Bob", hotel.Reviews[0].UserName)
}

func TestCreateBookingDefaultsToPending(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := newTestServer(t, http.StatusOK,
		`{"id":30,"booking_date":"2026-04-01","check_in_date":"2026-05-01","check_out_date":"2026-05-03","status":"pending"}`,
		&req, &body)

	client := NewClient(ClientOpts{BaseURL: ts.URL, Tokens: staticTokens{token: "tok", ok: true}})
	res, err := client.CreateBooking(context.Background(), BookingCreateRequest{
		RoomID:       7,
		BookingDate:  "2026-04-01",
		CheckInDate:  "2026-05-01",
		CheckOutDate: "2026-05-03",
	})
	require.NoError(t, err)

	assert.Equal(t, 30, res.ID)
	assert.Equal(t, "/bookings", req.URL.Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, StatusPending, sent["status"])
	assert.NotContains(t, sent, "additional_info")
}

func TestCancelBooking(t *testing.T) {
	var req *http.Request
	ts := newTestServer(t, http.StatusOK, `{"message":"Booking cancelled"}`, &req, nil)

	client := NewClient(ClientOpts{BaseURL: ts.URL, Tokens: staticTokens{token: "tok", ok: true}})
	res, err := client.CancelBooking(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/bookings/my-bookings/30/cancel", req.URL.Path)
	assert.Equal(t, "Booking cancelled", res["message"])
}

func TestPaymentAndReviewRoutes(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := newTestServer(t, http.StatusOK, `{"id":1,"rating":5}`, &req, &body)

	client := NewClient(ClientOpts{BaseURL: ts.URL, Tokens: staticTokens{token: "tok", ok: true}})

	err := client.CreatePayment(context.Background(), PaymentCreateRequest{
		BookingID: 30, PaymentDate: "2026-04-01", PaymentMethod: PaymentCard, Amount: 199.8,
	})
	require.NoError(t, err)
	assert.Equal(t, "/payments/", req.URL.Path)
	assert.JSONEq(t, `{"booking_id":30,"payment_date":"2026-04-01","payment_method":"Card","amount":199.8}`, string(body))

	review, err := client.SubmitReview(context.Background(), ReviewCreateRequest{BookingID: 30, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "/reviews/", req.URL.Path)
	assert.Equal(t, 5, review.Rating)
}

func TestPasswordRecoveryRoutes(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := newTestServer(t, http.StatusOK, `{"message":"ok"}`, &req, &body)

	client := NewClient(ClientOpts{BaseURL: ts.URL})
	ctx := context.Background()

	require.NoError(t, client.ForgotPassword(ctx, "a@b.co"))
	assert.Equal(t, "/users/forgot-password", req.URL.Path)
	assert.JSONEq(t, `{"email":"a@b.co"}`, string(body))

	require.NoError(t, client.VerifyCode(ctx, "a@b.co", "123456"))
	assert.Equal(t, "/users/verify-code", req.URL.Path)
	assert.JSONEq(t, `{"email":"a@b.co","code":"123456"}`, string(body))

	require.NoError(t, client.ResetPassword(ctx, ResetPasswordRequest{Email: "a@b.co", NewPassword: "newpass"}))
	assert.Equal(t, "/users/reset-password", req.URL.Path)

	require.NoError(t, client.VerifyRegistration(ctx, "reg-token"))
	assert.Equal(t, "/users/verify-registration", req.URL.Path)
	assert.Equal(t, "reg-token", req.URL.Query().Get("token"))
}

func TestProfileRoutes(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := newTestServer(t, http.StatusOK, `{"id":1,"first_name":"Ada","last_name":"King","email":"ada@example.com"}`, &req, &body)

	client := NewClient(ClientOpts{BaseURL: ts.URL, Tokens: staticTokens{token: "tok", ok: true}})
	ctx := context.Background()

	user, err := client.UpdateProfile(ctx, UserUpdateRequest{LastName: "King", Phone: "0401234567"})
	require.NoError(t, err)
	assert.Equal(t, "King", user.LastName)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/users/me", req.URL.Path)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.JSONEq(t, `{"last_name":"King","phone":"0401234567"}`, string(body))

	require.NoError(t, client.ChangePassword(ctx, PasswordChangeRequest{CurrentPassword: "old", NewPassword: "newpass"}))
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/users/me/password", req.URL.Path)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.JSONEq(t, `{"current_password":"old","new_password":"newpass"}`, string(body))
}

func TestRegisterInitiate(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := newTestServer(t, http.StatusOK, `{"message":"sent"}`, &req, &body)

	client := NewClient(ClientOpts{BaseURL: ts.URL})
	err := client.RegisterInitiate(context.Background(), RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/users/register-initiate", req.URL.Path)
	assert.Equal(t, "", req.Header.Get("Authorization"))
	assert.JSONEq(t, `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"secret1"}`, string(body))
}
