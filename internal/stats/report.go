package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/mariam/internal/azkar"
	"github.com/verte-zerg/mariam/internal/hadith"
	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/quran"
	"github.com/verte-zerg/mariam/internal/store"
)

// CategoryProgress is the completion of one azkar category.
type CategoryProgress struct {
	Key   string
	Title string
	Done  int
	Total int
}

// Report contains precomputed data for progress rendering.
type Report struct {
	Azkar       []CategoryProgress
	HadithRead  int
	HadithTotal int
	Bookmark    model.Bookmark
	Quran       store.QuranStats
}

// BuildReport loads counts, read marks and cache state from st.
func BuildReport(ctx context.Context, st *store.Store, categories []model.AzkarCategory, items []model.Hadith) (Report, error) {
	counter, err := azkar.NewCounter(ctx, st, categories)
	if err != nil {
		return Report{}, err
	}
	tracker, err := hadith.NewTracker(ctx, st)
	if err != nil {
		return Report{}, err
	}
	bookmark, err := quran.LoadBookmark(ctx, st)
	if err != nil {
		return Report{}, err
	}
	quranStats, err := st.QuranStats(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Bookmark: bookmark, Quran: quranStats}
	for _, c := range categories {
		done, total := counter.Progress(c.Key)
		report.Azkar = append(report.Azkar, CategoryProgress{Key: c.Key, Title: c.Title, Done: done, Total: total})
	}
	report.HadithRead, report.HadithTotal = tracker.Progress(items)
	return report, nil
}

// AzkarTotals sums completion across categories.
func (r Report) AzkarTotals() (int, int) {
	done, total := 0, 0
	for _, c := range r.Azkar {
		done += c.Done
		total += c.Total
	}
	return done, total
}

// Render writes the report as aligned plain-text tables.
func Render(w io.Writer, r Report, now time.Time, barWidth int) error {
	var b strings.Builder

	done, total := r.AzkarTotals()
	fmt.Fprintf(&b, "Azkar  %s %d/%d\n", Bar(done, total, barWidth), done, total)
	rows := make([][]string, 0, len(r.Azkar))
	for _, c := range r.Azkar {
		rows = append(rows, []string{c.Title, strconv.Itoa(c.Done), strconv.Itoa(c.Total), Bar(c.Done, c.Total, barWidth/2)})
	}
	for _, line := range FormatTable([]string{"Category", "Done", "Total", ""}, rows, map[int]bool{1: true, 2: true}) {
		b.WriteString("  " + line + "\n")
	}

	fmt.Fprintf(&b, "\nHadith %s %d/%d read\n", Bar(r.HadithRead, r.HadithTotal, barWidth), r.HadithRead, r.HadithTotal)

	b.WriteString("\nQuran\n")
	quranRows := [][]string{
		{"Surahs cached", fmt.Sprintf("%d/%d", r.Quran.Surahs, TotalSurahs)},
		{"Verses cached", humanize.Comma(int64(r.Quran.Verses))},
	}
	if r.Quran.Surahs > 0 {
		quranRows = append(quranRows,
			[]string{"Cache size", humanize.Bytes(uint64(r.Quran.Bytes))},
			[]string{"Downloaded", humanize.RelTime(r.Quran.SavedAt, now, "ago", "from now")},
		)
	}
	if r.Bookmark.IsSet() {
		quranRows = append(quranRows, []string{"Bookmark", fmt.Sprintf("%d:%d", r.Bookmark.Surah, r.Bookmark.Ayah)})
	} else {
		quranRows = append(quranRows, []string{"Bookmark", "none"})
	}
	for _, line := range FormatTable(nil, quranRows, nil) {
		b.WriteString("  " + line + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// TotalSurahs is the number of chapters in the Quran.
const TotalSurahs = 114

// Bar draws a fixed-width completion bar.
func Bar(done, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
