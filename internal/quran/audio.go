package quran

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

const audioBaseURL = "https://cdn.islamic.network/quran"

// Reciters lists the supported recitation editions. The first is the default.
var Reciters = []model.Reciter{
	{ID: "ar.alafasy", Name: "Mishary Rashid Alafasy", ArabicName: "مشاري راشد العفاسي"},
	{ID: "ar.abdulbasitmurattal", Name: "Abdul Basit (Murattal)", ArabicName: "عبد الباسط عبد الصمد"},
	{ID: "ar.minshawi", Name: "Mohamed Siddiq Minshawi", ArabicName: "محمد صديق المنشاوي"},
	{ID: "ar.hussary", Name: "Mahmoud Khalil Al-Hussary", ArabicName: "محمود خليل الحصري"},
	{ID: "ar.shaatri", Name: "Abu Bakr Al-Shatri", ArabicName: "أبو بكر الشاطري"},
}

// DefaultReciter is Alafasy.
func DefaultReciter() model.Reciter {
	return Reciters[0]
}

// FindReciter returns the reciter with id.
func FindReciter(id string) (model.Reciter, bool) {
	for _, r := range Reciters {
		if r.ID == id {
			return r, true
		}
	}
	return model.Reciter{}, false
}

// SurahAudioURL is the full-surah recitation.
func SurahAudioURL(reciter string, surah int) string {
	return fmt.Sprintf("%s/audio-surah/128/%s/%d.mp3", audioBaseURL, reciter, surah)
}

// AyahAudioURL is a single ayah's recitation by its global number.
func AyahAudioURL(reciter string, globalAyah int) string {
	return fmt.Sprintf("%s/audio/128/%s/%d.mp3", audioBaseURL, reciter, globalAyah)
}

// LoadReciter returns the saved reciter. Without one it returns fallback,
// or the default when fallback is unknown.
func LoadReciter(ctx context.Context, st *store.Store, fallback string) (model.Reciter, error) {
	id, err := st.GetValue(ctx, store.KeyQuranReciter)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return model.Reciter{}, err
	}
	if r, ok := FindReciter(id); ok {
		return r, nil
	}
	if r, ok := FindReciter(fallback); ok {
		return r, nil
	}
	return DefaultReciter(), nil
}

// SaveReciter stores the selected reciter after validating id.
func SaveReciter(ctx context.Context, st *store.Store, id string) (model.Reciter, error) {
	r, ok := FindReciter(id)
	if !ok {
		return model.Reciter{}, fmt.Errorf("unknown reciter %q", id)
	}
	if err := st.SetValue(ctx, store.KeyQuranReciter, r.ID); err != nil {
		return model.Reciter{}, fmt.Errorf("failed to save reciter: %w", err)
	}
	return r, nil
}
