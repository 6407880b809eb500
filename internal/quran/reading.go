package quran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

// ToggleBookmark sets the bookmark to surah:ayah, or clears it when it
// already points there.
func ToggleBookmark(current model.Bookmark, surah, ayah int) model.Bookmark {
	if current.Surah == surah && current.Ayah == ayah {
		return model.Bookmark{}
	}
	return model.Bookmark{Surah: surah, Ayah: ayah}
}

// LoadBookmark returns the saved bookmark, or an empty one.
func LoadBookmark(ctx context.Context, st *store.Store) (model.Bookmark, error) {
	raw, err := st.GetValue(ctx, store.KeyQuranBookmark)
	if errors.Is(err, store.ErrNotFound) {
		return model.Bookmark{}, nil
	}
	if err != nil {
		return model.Bookmark{}, err
	}
	var b model.Bookmark
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return model.Bookmark{}, fmt.Errorf("failed to decode bookmark: %w", err)
	}
	return b, nil
}

// SaveBookmark persists b. An empty bookmark is stored as cleared.
func SaveBookmark(ctx context.Context, st *store.Store, b model.Bookmark) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return st.SetValue(ctx, store.KeyQuranBookmark, string(raw))
}

// Find returns surah n.
func Find(surahs []model.Surah, n int) (model.Surah, bool) {
	idx := sort.Search(len(surahs), func(i int) bool { return surahs[i].Number >= n })
	if idx < len(surahs) && surahs[idx].Number == n {
		return surahs[idx], true
	}
	for _, s := range surahs {
		if s.Number == n {
			return s, true
		}
	}
	return model.Surah{}, false
}

// ContinueReading returns the bookmarked surah.
func ContinueReading(surahs []model.Surah, b model.Bookmark) (model.Surah, bool) {
	if !b.IsSet() {
		return model.Surah{}, false
	}
	return Find(surahs, b.Surah)
}

// Previous returns the surah before n.
func Previous(surahs []model.Surah, n int) (model.Surah, bool) {
	if n <= 1 {
		return model.Surah{}, false
	}
	return Find(surahs, n-1)
}

// Next returns the surah after n.
func Next(surahs []model.Surah, n int) (model.Surah, bool) {
	return Find(surahs, n+1)
}

// GlobalAyahNumber numbers ayah of surah across the whole Quran, as the
// audio CDN expects.
func GlobalAyahNumber(surahs []model.Surah, surah, ayah int) int {
	global := 0
	for _, s := range surahs {
		if s.Number < surah {
			global += len(s.Verses)
		}
	}
	return global + ayah
}

// VerseRange returns verses from..to (inclusive, 1-based) of s, clamped.
func VerseRange(s model.Surah, from, to int) []model.Verse {
	if from < 1 {
		from = 1
	}
	if to <= 0 || to > len(s.Verses) {
		to = len(s.Verses)
	}
	if from > to {
		return nil
	}
	return s.Verses[from-1 : to]
}
