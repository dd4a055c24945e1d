package address

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Geocoder converts between coordinates and addresses.
type Geocoder interface {
	Reverse(ctx context.Context, pos Coordinates) ([]Place, error)
	Forward(ctx context.Context, query string) ([]SearchResult, error)
}

// NominatimGeocoder queries an OpenStreetMap Nominatim server.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewNominatimGeocoder builds a geocoder for baseURL. Nominatim's usage policy
// requires an identifying User-Agent.
func NewNominatimGeocoder(baseURL, userAgent string) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimPlace struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		HouseNumber   string `json:"house_number"`
		Road          string `json:"road"`
		Suburb        string `json:"suburb"`
		CityDistrict  string `json:"city_district"`
		StateDistrict string `json:"state_district"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		State         string `json:"state"`
		Postcode      string `json:"postcode"`
	} `json:"address"`
}

func (p nominatimPlace) place() Place {
	a := p.Address
	street := strings.TrimSpace(strings.Join([]string{a.HouseNumber, a.Road}, " "))
	return Place{
		Name:     p.Name,
		Street:   street,
		District: firstNonEmpty(a.Suburb, a.CityDistrict, a.StateDistrict),
		City:     firstNonEmpty(a.City, a.Town, a.Village),
		Region:   a.State,
		Postcode: a.Postcode,
	}
}

// Reverse resolves pos to at most one place.
func (g *NominatimGeocoder) Reverse(ctx context.Context, pos Coordinates) ([]Place, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("lat", strconv.FormatFloat(pos.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pos.Longitude, 'f', -1, 64))

	var raw struct {
		nominatimPlace
		Error string `json:"error"`
	}
	if err := g.get(ctx, "/reverse", q, &raw); err != nil {
		return nil, err
	}
	if raw.Error != "" {
		return nil, nil
	}
	return []Place{raw.place()}, nil
}

// Forward returns up to five candidates for query.
func (g *NominatimGeocoder) Forward(ctx context.Context, query string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("limit", "5")
	q.Set("q", query)

	var raw []nominatimPlace
	if err := g.get(ctx, "/search", q, &raw); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(raw))
	for _, p := range raw {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			continue
		}
		results = append(results, SearchResult{Coordinates: Coordinates{Latitude: lat, Longitude: lon}, DisplayName: p.DisplayName})
	}
	return results, nil
}

func (g *NominatimGeocoder) get(ctx context.Context, path string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode geocoder response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
