// Package validate checks form input before it is sent to the backend.
package validate

import (
	"net/mail"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
	MinPhoneDigits    = 7
	MaxPhoneDigits    = 15
	MaxAdditionalInfo = 500
)

var PaymentMethods = []string{"Cash", "Card", "Google Pay"}

// Errors maps a field name to a message. A nil or empty Errors means the
// input is valid.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Err returns nil when there are no errors so the result can be used as an
// error value directly.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

type RegisterForm struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// ProfileForm holds profile changes. Empty fields are left unchanged.
type ProfileForm struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func Login(email, password string) error {
	errs := Errors{}
	checkEmail(errs, email)
	checkPassword(errs, "password", password)
	return errs.Err()
}

func Register(form RegisterForm) error {
	errs := Errors{}
	checkName(errs, "first_name", form.FirstName)
	checkName(errs, "last_name", form.LastName)
	checkEmail(errs, form.Email)
	checkPhone(errs, form.Phone)
	checkPassword(errs, "password", form.Password)
	return errs.Err()
}

func ResetPassword(newPassword, confirm string) error {
	errs := Errors{}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		errs.add("new_password", "must be at least 6 characters")
	}
	if newPassword != confirm {
		errs.add("confirm_password", "passwords do not match")
	}
	return errs.Err()
}

// Profile checks the fields that are set. At least one must be.
func Profile(form ProfileForm) error {
	errs := Errors{}
	if form == (ProfileForm{}) {
		errs.add("profile", "nothing to update")
	}
	if form.FirstName != "" {
		checkName(errs, "first_name", form.FirstName)
	}
	if form.LastName != "" {
		checkName(errs, "last_name", form.LastName)
	}
	if form.Email != "" {
		checkEmail(errs, form.Email)
	}
	checkPhone(errs, form.Phone)
	return errs.Err()
}

func ChangePassword(current, newPassword, confirm string) error {
	errs := Errors{}
	if current == "" {
		errs.add("current_password", "is required")
	}
	checkPassword(errs, "new_password", newPassword)
	if newPassword != confirm {
		errs.add("confirm_password", "passwords do not match")
	}
	return errs.Err()
}

func Email(email string) error {
	errs := Errors{}
	checkEmail(errs, email)
	return errs.Err()
}

func Review(rating int) error {
	errs := Errors{}
	if rating < 1 || rating > 5 {
		errs.add("rating", "must be between 1 and 5")
	}
	return errs.Err()
}

func Payment(method string, amount float64) error {
	errs := Errors{}
	if !slices.Contains(PaymentMethods, method) {
		errs.add("payment_method", "must be one of "+strings.Join(PaymentMethods, ", "))
	}
	if !(amount > 0) {
		errs.add("amount", "must be greater than zero")
	}
	return errs.Err()
}

// Booking checks a stay given as 2006-01-02 dates and its optional note.
func Booking(checkIn, checkOut, info string) error {
	errs := Errors{}

	in, inOK := checkDate(errs, "check_in", checkIn)
	out, outOK := checkDate(errs, "check_out", checkOut)
	if inOK && outOK && !out.After(in) {
		errs.add("check_out", "must be after check-in")
	}
	if utf8.RuneCountInString(info) > MaxAdditionalInfo {
		errs.add("additional_info", "must be at most 500 characters")
	}

	return errs.Err()
}

func checkDate(errs Errors, field, value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "is required")
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		errs.add(field, "must be a date like 2006-01-02")
		return time.Time{}, false
	}
	return t, true
}

func checkName(errs Errors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "is required")
		return
	}
	if strings.ContainsFunc(value, unicode.IsDigit) {
		errs.add(field, "must not contain digits")
	}
}

func checkEmail(errs Errors, email string) {
	if strings.TrimSpace(email) == "" {
		errs.add("email", "is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	// ParseAddress also accepts display-name forms like "Ada <a@b.co>".
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		errs.add("email", "is not a valid email address")
	}
}

func checkPhone(errs Errors, phone string) {
	if phone == "" {
		return
	}
	n := utf8.RuneCountInString(phone)
	if n < MinPhoneDigits || n > MaxPhoneDigits || strings.ContainsFunc(phone, func(r rune) bool { return r < '0' || r > '9' }) {
		errs.add("phone", "must be 7 to 15 digits")
	}
}

func checkPassword(errs Errors, field, password string) {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		errs.add(field, "must be between 6 and 100 characters")
	}
}
