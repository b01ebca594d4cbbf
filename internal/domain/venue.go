package domain

import "strings"

// Venue indicates where the subject team played.
type Venue string

const (
	VenueHome Venue = "Home"
	VenueAway Venue = "Away"
)

// Venues lists both venues in simulation order.
var Venues = []Venue{VenueHome, VenueAway}

// String returns the string representation of Venue.
func (v Venue) String() string {
	return string(v)
}

// IsValid checks if the venue is Home or Away.
func (v Venue) IsValid() bool {
	return v == VenueHome || v == VenueAway
}

// Opposite returns the venue seen from the opponent's side.
func (v Venue) Opposite() Venue {
	switch v {
	case VenueHome:
		return VenueAway
	case VenueAway:
		return VenueHome
	default:
		return v
	}
}

// ParseVenue maps a raw venue cell to a Venue, case-insensitively.
func ParseVenue(s string) (Venue, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return VenueHome, true
	case "away":
		return VenueAway, true
	default:
		return "", false
	}
}
