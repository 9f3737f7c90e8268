// Package findmypet provides a Go client for the FindMyPet lost-and-found
// pet listings API.
//
// The client keeps the current session (auth token and user profile) as an
// explicit object with a defined lifecycle: hydrate it from disk with
// Initialize, establish it through Auth.Login or Auth.Register, and tear it
// down with Auth.Logout. Authentication state is token presence; the profile
// may lag behind (or never load) without affecting it.
package findmypet

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// PetType classifies a listing's animal.
type PetType string

const (
	PetTypeCat   PetType = "cat"
	PetTypeDog   PetType = "dog"
	PetTypeBird  PetType = "bird"
	PetTypeOther PetType = "other"
)

// ListingStatus says whether the pet is missing or has been found.
type ListingStatus string

const (
	StatusMissing ListingStatus = "missing"
	StatusFound   ListingStatus = "found"
)

// User is the profile of a registered account. It is replaced wholesale on
// login, register and profile fetch, never merged field by field.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Coordinate is one component of a listing's last-seen position. The backend
// stores coordinates as nullable floats, but older records carry them as
// strings, so decoding is tolerant: anything that does not parse to a finite
// number is treated as absent rather than failing the whole listing.
type Coordinate struct {
	Value float64
	Valid bool
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	c.Value, c.Valid = 0, false
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	}
	f, ok := parseCoordinate(s)
	if !ok {
		return nil
	}
	c.Value, c.Valid = f, true
	return nil
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// parseCoordinate parses a raw coordinate string. Empty, unparseable and
// non-finite values are all rejected the same way.
func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Listing is a lost or found pet post. Listings are owned by the server; the
// client holds read-only copies.
type Listing struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	PetType         PetType       `json:"pet_type"`
	Status          ListingStatus `json:"status"`
	ImageURL        string        `json:"image_url,omitempty"`
	LastSeenAddress string        `json:"last_seen_address"`
	LastSeenDate    string        `json:"last_seen_date"`
	Latitude        Coordinate    `json:"latitude"`
	Longitude       Coordinate    `json:"longitude"`
	CreatedAt       string        `json:"created_at"`
	UserID          int64         `json:"user_id"`
}

// HasValidCoordinates reports whether a listing can be plotted on a map:
// both latitude and longitude are present and finite. A listing with one
// valid and one missing component is not plottable.
func HasValidCoordinates(l Listing) bool {
	return l.Latitude.Valid && l.Longitude.Valid
}

// FilterMappable keeps only the listings that HasValidCoordinates accepts.
func FilterMappable(listings []Listing) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if HasValidCoordinates(l) {
			out = append(out, l)
		}
	}
	return out
}

// ListingFilter narrows a listing fetch. The zero value matches everything.
type ListingFilter struct {
	PetType PetType
	Status  ListingStatus
}

// values encodes only the fields that are set. An empty filter produces no
// query parameters at all, which is distinct from sending empty ones.
func (f ListingFilter) values() url.Values {
	q := url.Values{}
	if f.PetType != "" {
		q.Set("pet_type", string(f.PetType))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	return q
}
