package aladhan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimingsParsesResponse(t *testing.T) {
	t.Parallel()

	var gotPath, gotLat, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLat = r.URL.Query().Get("latitude")
		gotMethod = r.URL.Query().Get("method")
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{
			"Fajr":"05:01 (AST)","Sunrise":"06:18","Dhuhr":"12:04","Asr":"15:27",
			"Sunset":"17:50","Maghrib":"17:50","Isha":"19:20","Imsak":"04:51"}}}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	date := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	pt, err := c.Timings(context.Background(), date, 21.3891, 39.8579)
	if err != nil {
		t.Fatalf("Timings returned error: %v", err)
	}
	if gotPath != fmt.Sprintf("/v1/timings/%d", date.Unix()) {
		t.Fatalf("path = %q", gotPath)
	}
	if gotLat != "21.3891" || gotMethod != "2" {
		t.Fatalf("query latitude=%q method=%q", gotLat, gotMethod)
	}
	if pt.Fajr != "05:01" || pt.Isha != "19:20" {
		t.Fatalf("unexpected times: %+v", pt)
	}
	if pt.Jumuah != pt.Dhuhr {
		t.Fatalf("Jumuah = %q, want Dhuhr %q", pt.Jumuah, pt.Dhuhr)
	}
}

func TestTimingsReportsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"code":400,"status":"Bad Request","data":"Please specify a valid latitude"}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 3, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Timings(context.Background(), time.Now(), 999, 0)
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
}

func TestNormalizeTime(t *testing.T) {
	got, err := NormalizeTime(" 04:51 (+03) ")
	if err != nil || got != "04:51" {
		t.Fatalf("NormalizeTime = %q, %v", got, err)
	}
	if _, err := NormalizeTime("later"); !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
}

func TestParseTimingsRequiresAllPrayers(t *testing.T) {
	_, err := parseTimings(map[string]string{"Fajr": "05:00"})
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
}
