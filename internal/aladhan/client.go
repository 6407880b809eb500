// Package aladhan fetches daily prayer times from the Aladhan timings API.
package aladhan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/mariam/internal/apiclient"
	"github.com/verte-zerg/mariam/internal/model"
)

const (
	// DefaultBaseURL is the public Aladhan API.
	DefaultBaseURL = "https://api.aladhan.com"
	// DefaultMethod is ISNA.
	DefaultMethod = 2
)

// ErrAPI is returned when the API answers with a non-200 code in its body.
var ErrAPI = errors.New("aladhan api error")

// Fetcher returns the prayer times for a date at a location.
type Fetcher interface {
	Timings(ctx context.Context, date time.Time, lat, lon float64) (model.PrayerTimes, error)
}

var _ Fetcher = (*Client)(nil)

// Client talks to the Aladhan API.
type Client struct {
	api    *apiclient.Client
	method int
}

// NewClient builds a Client. An empty baseURL uses DefaultBaseURL and a
// non-positive method uses DefaultMethod.
func NewClient(baseURL string, method int, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if method <= 0 {
		method = DefaultMethod
	}
	api, err := apiclient.New(baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, method: method}, nil
}

type timingsResponse struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type timingData struct {
	Timings map[string]string `json:"timings"`
}

// Timings fetches the prayer times of date's calendar day.
func (c *Client) Timings(ctx context.Context, date time.Time, lat, lon float64) (model.PrayerTimes, error) {
	if c == nil {
		return model.PrayerTimes{}, fmt.Errorf("client is nil")
	}
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("method", strconv.Itoa(c.method))
	path := "/v1/timings/" + strconv.FormatInt(date.Unix(), 10)

	var payload timingsResponse
	if err := c.api.Get(ctx, path, query, &payload); err != nil {
		return model.PrayerTimes{}, err
	}
	if payload.Code != http.StatusOK {
		return model.PrayerTimes{}, fmt.Errorf("%w: %s", ErrAPI, payload.Status)
	}
	var data timingData
	if err := json.Unmarshal(payload.Data, &data); err != nil {
		return model.PrayerTimes{}, fmt.Errorf("decode timings: %w", err)
	}
	return parseTimings(data.Timings)
}

func parseTimings(raw map[string]string) (model.PrayerTimes, error) {
	get := func(name string) (string, error) {
		value, ok := raw[name]
		if !ok {
			return "", fmt.Errorf("%w: missing %s", ErrAPI, name)
		}
		return NormalizeTime(value)
	}
	var pt model.PrayerTimes
	var err error
	for _, field := range []struct {
		name string
		dest *string
	}{
		{model.Fajr, &pt.Fajr},
		{model.Sunrise, &pt.Sunrise},
		{model.Dhuhr, &pt.Dhuhr},
		{model.Asr, &pt.Asr},
		{model.Maghrib, &pt.Maghrib},
		{model.Isha, &pt.Isha},
	} {
		if *field.dest, err = get(field.name); err != nil {
			return model.PrayerTimes{}, err
		}
	}
	pt.Jumuah = pt.Dhuhr
	return pt, nil
}

// NormalizeTime trims a " (TZ)" suffix and validates the HH:MM prefix.
func NormalizeTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, ' '); idx >= 0 {
		value = value[:idx]
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return "", fmt.Errorf("%w: invalid time %q", ErrAPI, value)
	}
	return value, nil
}
