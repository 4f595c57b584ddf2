package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned by DecodeClaims for anything that is not a
// three-segment token with a JSON object payload.
var ErrMalformedToken = errors.New("malformed token")

// segmentParser is only used for its base64url segment decoding. Tokens are
// never verified here: the server checks the signature on every call.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

var stdToURLAlphabet = strings.NewReplacer("+", "-", "/", "_")

// Claims holds the payload fields the client cares about.
type Claims struct {
	// ExpiresAt is the exp claim in epoch seconds, 0 when the claim is absent.
	ExpiresAt int64
	// Subject is the numeric sub claim. Valid only when HasSubject is true.
	Subject    int64
	HasSubject bool
}

// Expired reports whether the token is no longer usable at now.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}

// Expiry returns exp as a time, or the zero time when exp was absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

// DecodeClaims reads the payload segment of a header.payload.signature token.
// The header is not inspected and the signature is not checked.
func DecodeClaims(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(stdToURLAlphabet.Replace(parts[1]))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: payload is not base64url: %v", ErrMalformedToken, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Claims{}, fmt.Errorf("%w: payload is not a JSON object: %v", ErrMalformedToken, err)
	}
	if fields == nil {
		return Claims{}, fmt.Errorf("%w: payload is null", ErrMalformedToken)
	}

	var claims Claims

	if raw, ok := fields["exp"]; ok {
		exp, err := parseExpiry(raw)
		if err != nil {
			return Claims{}, fmt.Errorf("%w: exp: %v", ErrMalformedToken, err)
		}
		claims.ExpiresAt = exp
	}

	if raw, ok := fields["sub"]; ok {
		claims.Subject, claims.HasSubject = parseSubject(raw)
	}

	return claims, nil
}

// parseExpiry reads exp as a JSON number. Integers keep their full int64
// range; fractional values are truncated through jwt.NumericDate.
func parseExpiry(raw json.RawMessage) (int64, error) {
	// json.Number would also accept a quoted number.
	if len(raw) == 0 || raw[0] == '"' {
		return 0, errors.New("not a number")
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if n == "" {
		return 0, errors.New("not a number")
	}
	if exp, err := n.Int64(); err == nil {
		return exp, nil
	}

	var date jwt.NumericDate
	if err := json.Unmarshal(raw, &date); err != nil {
		return 0, err
	}
	switch f, _ := n.Float64(); {
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	case f <= math.MinInt64:
		return math.MinInt64, nil
	}
	return date.Unix(), nil
}

// parseSubject accepts a JSON integer or a string holding one. Negative
// values and anything else yield no subject.
func parseSubject(raw json.RawMessage) (int64, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	id, err := n.Int64()
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
