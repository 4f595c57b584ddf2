package booking

// Request and response shapes of the booking backend.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// UserUpdateRequest only sends the fields that are set.
type UserUpdateRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// LocationKind distinguishes city and country suggestions.
type LocationKind string

const (
	LocationCity    LocationKind = "city"
	LocationCountry LocationKind = "country"
)

type LocationSuggestion struct {
	Kind        LocationKind
	ID          int
	Name        string
	CountryName string
}

// Label is the text shown for the suggestion.
func (l LocationSuggestion) Label() string {
	if l.Kind == LocationCity && l.CountryName != "" {
		return l.Name + ", " + l.CountryName
	}
	return l.Name
}

type HotelSearchRequest struct {
	Destination        string `json:"destination"`
	CheckIn            string `json:"check_in"`
	CheckOut           string `json:"check_out"`
	Rooms              int    `json:"rooms"`
	Adults             int    `json:"adults"`
	MinStars           *int   `json:"min_stars,omitempty"`
	HasWifi            *bool  `json:"has_wifi,omitempty"`
	AllowsPets         *bool  `json:"allows_pets,omitempty"`
	HasKitchen         *bool  `json:"has_kitchen,omitempty"`
	HasAirConditioning *bool  `json:"has_air_conditioning,omitempty"`
	HasTV              *bool  `json:"has_tv,omitempty"`
	HasSafe            *bool  `json:"has_safe,omitempty"`
	HasBalcony         *bool  `json:"has_balcony,omitempty"`
	SortBy             string `json:"sort_by,omitempty"`
}

type HotelSearchResult struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	City             string   `json:"city"`
	Country          string   `json:"country"`
	Stars            *int     `json:"stars"`
	LowestPrice      *float64 `json:"lowest_price"`
	AverageRating    *float64 `json:"average_rating,omitempty"`
	CoverImageURL    string   `json:"cover_image_url,omitempty"`
	AvailableRoomIDs []int    `json:"available_room_ids"`
}

type HotelDetail struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Address     string         `json:"address"`
	Description string         `json:"description,omitempty"`
	Stars       *int           `json:"stars"`
	City        string         `json:"city"`
	Country     string         `json:"country"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	Photos      []string       `json:"photos"`
	Rooms       []RoomDetail   `json:"rooms"`
	Reviews     []ReviewDetail `json:"reviews"`
}

type RoomDetail struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	RoomType           string  `json:"room_type"`
	PricePerNight      float64 `json:"price_per_night"`
	Capacity           int     `json:"capacity"`
	Description        string  `json:"description,omitempty"`
	CancellationPolicy string  `json:"cancellation_policy,omitempty"`
	HasWifi            bool    `json:"has_wifi"`
	AllowsPets         bool    `json:"allows_pets"`
	HasAirConditioning bool    `json:"has_air_conditioning"`
	HasTV              bool    `json:"has_tv"`
	HasMinibar         bool    `json:"has_minibar"`
	HasBalcony         bool    `json:"has_balcony"`
	HasKitchen         bool    `json:"has_kitchen"`
	HasSafe            bool    `json:"has_safe"`
}

type ReviewDetail struct {
	ID       int    `json:"id"`
	Rating   int    `json:"rating"`
	Text     string `json:"text,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Booking statuses as reported by the backend.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

type BookingCreateRequest struct {
	RoomID         int    `json:"room_id"`
	BookingDate    string `json:"booking_date"`
	CheckInDate    string `json:"check_in_date"`
	CheckOutDate   string `json:"check_out_date"`
	Status         string `json:"status"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

type BookingResponse struct {
	ID             int    `json:"id"`
	BookingDate    string `json:"booking_date"`
	CheckInDate    string `json:"check_in_date"`
	CheckOutDate   string `json:"check_out_date"`
	Status         string `json:"status"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// BookingSummary is one entry of the current user's booking list.
type BookingSummary struct {
	ID                 int      `json:"id"`
	HotelName          string   `json:"hotel_name"`
	Address            string   `json:"address"`
	City               string   `json:"city"`
	Country            string   `json:"country"`
	CheckIn            string   `json:"check_in"`
	CheckOut           string   `json:"check_out"`
	BookingDate        string   `json:"booking_date"`
	TotalPrice         string   `json:"total_price,omitempty"`
	Status             string   `json:"status"`
	CancellationPolicy string   `json:"cancellation_policy,omitempty"`
	CoverImageURL      string   `json:"cover_image_url,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
}

// Nights is the length of stay, at least one.
func (b BookingSummary) Nights() int {
	if b.CheckIn == "" || b.CheckOut == "" {
		return 1
	}
	return Nights(b.CheckIn, b.CheckOut)
}

// Payment methods accepted by the backend.
const (
	PaymentCash      = "Cash"
	PaymentCard      = "Card"
	PaymentGooglePay = "Google Pay"
)

type PaymentCreateRequest struct {
	BookingID     int     `json:"booking_id"`
	PaymentDate   string  `json:"payment_date"`
	PaymentMethod string  `json:"payment_method"`
	Amount        float64 `json:"amount"`
}

type ReviewCreateRequest struct {
	BookingID int    `json:"booking_id"`
	Rating    int    `json:"rating"`
	Text      string `json:"text,omitempty"`
}

type Review struct {
	ID     int    `json:"id"`
	Rating int    `json:"rating"`
	Text   string `json:"text,omitempty"`
}
