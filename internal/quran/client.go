// Package quran downloads, caches and navigates the Quran text.
package quran

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/mariam/internal/apiclient"
)

const (
	// DefaultBaseURL is the public AlQuran Cloud API.
	DefaultBaseURL = "https://api.alquran.cloud"
	// ArabicEdition is the Arabic text edition.
	ArabicEdition = "ar.alafasy"
	// DefaultTranslation is the English translation edition.
	DefaultTranslation = "en.asad"

	defaultRetries   = 5
	defaultRetryBase = 2 * time.Second
	maxBackoff       = 2 * time.Minute
)

// ErrRetriesExhausted is returned when every attempt hit a transient failure.
var ErrRetriesExhausted = errors.New("max retries reached")

// SurahInfo is a chapter as listed by the API.
type SurahInfo struct {
	Number         int    `json:"number"`
	Name           string `json:"name"`
	EnglishName    string `json:"englishName"`
	NumberOfAyahs  int    `json:"numberOfAyahs"`
	RevelationType string `json:"revelationType"`
}

// Ayah is one verse of an edition.
type Ayah struct {
	Number        int    `json:"number"`
	NumberInSurah int    `json:"numberInSurah"`
	Text          string `json:"text"`
}

type listResponse struct {
	Code   int         `json:"code"`
	Status string      `json:"status"`
	Data   []SurahInfo `json:"data"`
}

type editionResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Number int    `json:"number"`
		Ayahs  []Ayah `json:"ayahs"`
	} `json:"data"`
}

// RetryPolicy controls retries of transient failures.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
}

// DefaultRetryPolicy is five attempts starting at two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: defaultRetries, Base: defaultRetryBase}
}

// Client talks to the AlQuran Cloud API.
type Client struct {
	api    *apiclient.Client
	retry  RetryPolicy
	logger zerolog.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewClient builds a Client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, retry RetryPolicy, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if retry.Attempts <= 0 {
		retry.Attempts = defaultRetries
	}
	if retry.Base < 0 {
		retry.Base = defaultRetryBase
	}
	api, err := apiclient.New(baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, retry: retry, logger: logger, sleep: sleepContext}, nil
}

// Surahs lists all chapters.
func (c *Client) Surahs(ctx context.Context) ([]SurahInfo, error) {
	var payload listResponse
	if err := c.getWithRetry(ctx, "/v1/surah", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch surah list: %w", err)
	}
	if payload.Code != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch surah list: %s", payload.Status)
	}
	return payload.Data, nil
}

// Edition returns the verses of surah n in the given edition.
func (c *Client) Edition(ctx context.Context, n int, edition string) ([]Ayah, error) {
	path := "/v1/surah/" + strconv.Itoa(n) + "/" + url.PathEscape(edition)
	var payload editionResponse
	if err := c.getWithRetry(ctx, path, &payload); err != nil {
		return nil, err
	}
	if payload.Code != http.StatusOK {
		return nil, fmt.Errorf("api %s: %s", path, payload.Status)
	}
	return payload.Data.Ayahs, nil
}

// getWithRetry retries rate limits, server errors and transport failures
// with exponential backoff. Other failures return immediately.
func (c *Client) getWithRetry(ctx context.Context, path string, dest any) error {
	var lastErr error
	for attempt := 0; attempt < c.retry.Attempts; attempt++ {
		err := c.api.Get(ctx, path, nil, dest)
		if err == nil {
			return nil
		}
		if !apiclient.IsRetryable(ctx, err) {
			return err
		}
		lastErr = err
		wait := calculateBackoff(attempt, c.retry.Base)
		c.logger.Debug().
			Str("path", path).
			Int("attempt", attempt+1).
			Int("attempts", c.retry.Attempts).
			Dur("wait", wait).
			Err(err).
			Msg("retrying request")
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w for %s: %w", ErrRetriesExhausted, path, lastErr)
}

// calculateBackoff returns base * 2^attempt, capped at maxBackoff.
func calculateBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
