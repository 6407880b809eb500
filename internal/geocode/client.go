// Package geocode turns coordinates into a city and country name.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/verte-zerg/mariam/internal/apiclient"
)

// DefaultBaseURL is the BigDataCloud client-side reverse geocoding API.
const DefaultBaseURL = "https://api.bigdatacloud.net"

const unknown = "Unknown"

// Place is a reverse geocoded name.
type Place struct {
	City    string
	Country string
}

// Reverser resolves coordinates to a Place.
type Reverser interface {
	Reverse(ctx context.Context, lat, lon float64) (Place, error)
}

var _ Reverser = (*Client)(nil)

// Client talks to the reverse geocoding API.
type Client struct {
	api *apiclient.Client
}

// NewClient builds a Client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	api, err := apiclient.New(baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

type reverseResponse struct {
	City        string `json:"city"`
	Locality    string `json:"locality"`
	CountryName string `json:"countryName"`
}

// Reverse looks up the place at lat/lon.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	if c == nil {
		return Place{}, fmt.Errorf("client is nil")
	}
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("localityLanguage", "en")

	var payload reverseResponse
	if err := c.api.Get(ctx, "/data/reverse-geocode-client", query, &payload); err != nil {
		return Place{}, err
	}
	return Place{
		City:    firstNonEmpty(payload.City, payload.Locality, unknown),
		Country: firstNonEmpty(payload.CountryName, unknown),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
