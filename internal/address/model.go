// Package address keeps each device's saved addresses, with at most one
// default, and resolves the device's physical location to readable text.
package address

import (
	"errors"
	"strings"
)

const (
	savedAddressesKey  = "savedAddresses"
	currentLocationKey = "currentLocation"

	// MinSearchLength is the shortest query that reaches the geocoder.
	MinSearchLength = 3
)

var (
	// ErrNotFound is returned for address ids not in the collection.
	ErrNotFound = errors.New("address not found")
	// ErrPermissionDenied is returned when the device refuses location access.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrNoGeocodeResult is returned when a position resolves to no address.
	ErrNoGeocodeResult = errors.New("no address found for location")
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address is one saved location. The JSON shape matches what the mobile app
// keeps on-device so collections can be migrated as-is.
type Address struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Pincode   string   `json:"pincode"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	IsDefault bool     `json:"isDefault"`
}

// Coordinates returns the address position when both parts are set.
func (a Address) Coordinates() *Coordinates {
	if a.Latitude == nil || a.Longitude == nil {
		return nil
	}
	return &Coordinates{Latitude: *a.Latitude, Longitude: *a.Longitude}
}

// Input is a new address before an id is assigned.
type Input struct {
	Title     string
	Address   string
	City      string
	Pincode   string
	Latitude  *float64
	Longitude *float64
	IsDefault bool
}

// Snapshot is the last resolved device location, kept apart from saved addresses.
type Snapshot struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// Place is a reverse-geocoded location broken into parts.
type Place struct {
	Name     string
	Street   string
	District string
	City     string
	Region   string
	Postcode string
}

// Format joins the non-empty name, street, district, city and region with ", ".
func (p Place) Format() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{p.Name, p.Street, p.District, p.City, p.Region} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// SearchResult is a forward-geocoding candidate.
type SearchResult struct {
	Coordinates
	DisplayName string `json:"display_name"`
}
