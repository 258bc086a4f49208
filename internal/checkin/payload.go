package checkin

import (
	"errors"
	"net/url"
	"strings"

	"github.com/iliyamo/church-check-in/internal/model"
	"github.com/iliyamo/church-check-in/internal/utils"
)

// ErrMalformedPayload is returned when scanned data cannot be reduced to the
// expected first|last|role form. No state changes on this error.
var ErrMalformedPayload = errors.New("malformed QR code, expected first|last|role")

// Identity is a parsed QR payload.
type Identity struct {
	First   string
	Last    string
	Role    model.Role
	Name    string // normalized "First Last"
	Payload string // cleaned first|last|role string, safe to re-encode
}

// ParsePayload turns raw scanned data into an Identity. Scanners are messy:
// the payload may be URL-encoded more than once, or wrapped into a full URL
// by a lens app, or arrive as a stray "data=..." fragment. The unwrapping
// order mirrors what those scanners actually produce:
//
//  1. if "data=" is visible without any '|', cut everything up to it;
//  2. decode once;
//  3. if the result is itself a URL, pull out its data query parameter;
//  4. repeat the "data=" cut for fragments that were encoded;
//  5. decode again and split on '|'.
//
// The prefix cut has to run before each decode: decoding first turns %7C
// into '|' and hides that the value was a query fragment.
//
// At least three parts are required; the role part keeps only the prefix
// before the first comma since some older codes carried trailing junk there.
func ParsePayload(raw string) (Identity, error) {
	data := unquote(stripDataPrefix(raw))

	if strings.HasPrefix(data, "http") {
		if u, err := url.Parse(data); err == nil {
			if v := u.Query().Get("data"); v != "" {
				data = v
			}
		}
	}
	data = unquote(stripDataPrefix(data))

	if data == "" {
		return Identity{}, ErrMalformedPayload
	}
	parts := strings.Split(data, "|")
	if len(parts) < 3 {
		return Identity{}, ErrMalformedPayload
	}

	first := strings.TrimSpace(parts[0])
	last := strings.TrimSpace(parts[1])
	role := strings.TrimSpace(strings.SplitN(parts[2], ",", 2)[0])
	name := utils.NormalizeName(first + " " + last)
	if name == "" {
		return Identity{}, ErrMalformedPayload
	}

	return Identity{
		First:   first,
		Last:    last,
		Role:    model.ParseRole(role),
		Name:    name,
		Payload: first + "|" + last + "|" + role,
	}, nil
}

// stripDataPrefix cuts everything up to and including "data=" when the
// value still looks like a query fragment rather than a pipe payload.
func stripDataPrefix(s string) string {
	if strings.Contains(s, "data=") && !strings.Contains(s, "|") {
		return s[strings.Index(s, "data=")+len("data="):]
	}
	return s
}

// unquote decodes URL escapes, keeping the input untouched when it is not
// valid encoding.
func unquote(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}
