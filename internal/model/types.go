// Package model defines shared data structures.
package model

import "time"

// Prayer names in display order.
const (
	Fajr    = "Fajr"
	Sunrise = "Sunrise"
	Dhuhr   = "Dhuhr"
	Jumuah  = "Jumuah"
	Asr     = "Asr"
	Maghrib = "Maghrib"
	Isha    = "Isha"
)

// PrayerTimes holds one day's prayer times as 24-hour "HH:MM" strings.
type PrayerTimes struct {
	Fajr    string `json:"fajr"`
	Sunrise string `json:"sunrise"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
	// Jumuah is the Friday congregational prayer, held at Dhuhr time.
	Jumuah string `json:"jumuah"`
}

// Location is the place prayer times are computed for.
type Location struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Label returns a human readable location name.
func (l Location) Label() string {
	switch {
	case l.City != "" && l.Country != "":
		return l.City + ", " + l.Country
	case l.City != "":
		return l.City
	default:
		return l.Country
	}
}

// NextPrayer is the upcoming prayer and the time left until it.
type NextPrayer struct {
	Name      string
	Time      string
	Countdown time.Duration
}

// Verse is a single ayah with its translation.
type Verse struct {
	Number      int    `json:"number"`
	Arabic      string `json:"arabic"`
	English     string `json:"english"`
	IsSpecial   bool   `json:"isSpecial,omitempty"`
	SpecialName string `json:"specialName,omitempty"`
}

// Surah is a Quran chapter with its verses.
type Surah struct {
	Number             int     `json:"number"`
	Name               string  `json:"name"`
	EnglishName        string  `json:"englishName,omitempty"`
	Verses             []Verse `json:"verses"`
	HasSpecialReminder bool    `json:"hasSpecialReminder,omitempty"`
}

// Bookmark marks the last read position. A zero Surah means no bookmark.
type Bookmark struct {
	Surah int `json:"surahNumber"`
	Ayah  int `json:"ayahNumber"`
}

// IsSet reports whether the bookmark points somewhere.
func (b Bookmark) IsSet() bool {
	return b.Surah > 0
}

// Zikr is a remembrance phrase with a target repetition count.
type Zikr struct {
	ID          string `json:"id"`
	Arabic      string `json:"arabic"`
	Translation string `json:"translation"`
	Count       int    `json:"count"`
}

// AzkarCategory groups azkar for an occasion.
type AzkarCategory struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Azkar []Zikr `json:"azkar"`
}

// Hadith is a single narration.
type Hadith struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Arabic      string `json:"arabic"`
	Translation string `json:"translation"`
}

// Reciter identifies a Quran audio edition.
type Reciter struct {
	ID         string
	Name       string
	ArabicName string
}
