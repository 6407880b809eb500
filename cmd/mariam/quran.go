package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/prayer"
	"github.com/verte-zerg/mariam/internal/quran"
	"github.com/verte-zerg/mariam/internal/stats"
	"github.com/verte-zerg/mariam/internal/store"
	"github.com/verte-zerg/mariam/internal/tui"
)

var (
	quranForce      bool
	quranFrom       int
	quranTo         int
	quranSetReciter string
)

func newQuranCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quran",
		Short: "Download and read the Quran",
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&quranReciter, "reciter", quran.DefaultReciter().ID, "reciter edition for audio URLs")
	flags.StringVar(&quranTranslation, "translation", quran.DefaultTranslation, "translation edition")
	flags.IntVar(&quranBatchSize, "batch-size", defaultBatchSize, "surahs downloaded together")
	flags.DurationVar(&quranBatchDelay, "batch-delay", defaultBatchDelay, "pause between batches")
	flags.DurationVar(&quranEditionDelay, "edition-delay", defaultEditionDelay, "pause between a surah's editions")
	flags.IntVar(&quranRetries, "retries", defaultRetries, "attempts per request")
	flags.DurationVar(&quranRetryBase, "retry-base", defaultRetryBase, "first retry wait, doubled per attempt")

	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Download the Quran for offline reading",
		Args:  cobra.NoArgs,
		RunE:  runQuranFetchCmd,
	}
	fetch.Flags().BoolVar(&quranForce, "force", false, "download even when cached")
	cmd.AddCommand(fetch)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the offline Quran cache",
		Args:  cobra.NoArgs,
		RunE:  runQuranStatusCmd,
	})

	read := &cobra.Command{
		Use:   "read [surah]",
		Short: "Read a surah, or continue from the bookmark",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runQuranReadCmd,
	}
	read.Flags().IntVar(&quranFrom, "from", 0, "first ayah")
	read.Flags().IntVar(&quranTo, "to", 0, "last ayah")
	cmd.AddCommand(read)

	cmd.AddCommand(&cobra.Command{
		Use:   "bookmark [surah:ayah]",
		Short: "Show or toggle the reading bookmark",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runQuranBookmarkCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "audio <surah> [ayah]",
		Short: "Print recitation URLs",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runQuranAudioCmd,
	})
	reciters := &cobra.Command{
		Use:   "reciters",
		Short: "List reciters",
		Args:  cobra.NoArgs,
		RunE:  runQuranRecitersCmd,
	}
	reciters.Flags().StringVar(&quranSetReciter, "set", "", "save the default reciter")
	cmd.AddCommand(reciters)
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the offline Quran cache",
		Args:  cobra.NoArgs,
		RunE:  runQuranClearCmd,
	})
	return cmd
}

// downloadProgress renders prefetch progress on stderr.
func downloadProgress(done, total, percent int) {
	logErrf("\rDownloading Quran... %3d%% (%d/%d surahs)", percent, done, total)
	if done == total {
		logErrln()
	}
}

func quranDownloadError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("download canceled")
	}
	return fmt.Errorf("failed to download quran: %w\nrun `mariam quran fetch` to try again", err)
}

func runQuranFetchCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib, err := a.quranLibrary(downloadProgress)
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	if !quranForce {
		surahs, ok, err := lib.Cached(ctx)
		if err != nil {
			return err
		}
		if ok {
			p.Printf("Quran already downloaded (%d surahs). Use --force to download again.\n", len(surahs))
			return p.Err()
		}
	}
	started := time.Now()
	surahs, _, err := lib.Refresh(ctx)
	if err != nil {
		return quranDownloadError(err)
	}
	verses := 0
	for _, s := range surahs {
		verses += len(s.Verses)
	}
	p.Printf("Downloaded %d surahs, %s verses in %s\n",
		len(surahs), humanize.Comma(int64(verses)), time.Since(started).Round(time.Second))
	return p.Err()
}

func runQuranStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	qs, err := a.store.QuranStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read quran cache: %w", err)
	}
	version, err := a.store.GetValue(ctx, store.KeyQuranVersion)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	bookmark, err := quran.LoadBookmark(ctx, a.store)
	if err != nil {
		return err
	}
	reciter, err := activeReciter(ctx, cmd, a)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	if qs.Surahs == 0 {
		p.Println("Quran is not downloaded. Run: mariam quran fetch")
		return p.Err()
	}
	if version != quran.CacheVersion {
		p.Println(p.muted("Cache is outdated and will be downloaded again."))
	}
	rows := [][]string{
		{"Surahs", fmt.Sprintf("%d/%d", qs.Surahs, stats.TotalSurahs)},
		{"Verses", humanize.Comma(int64(qs.Verses))},
		{"Size", humanize.Bytes(uint64(qs.Bytes))},
		{"Downloaded", humanize.Time(qs.SavedAt)},
		{"Reciter", reciter.Name},
	}
	if bookmark.IsSet() {
		rows = append(rows, []string{"Bookmark", fmt.Sprintf("%d:%d", bookmark.Surah, bookmark.Ayah)})
	}
	for _, line := range stats.FormatTable(nil, rows, nil) {
		p.Println(line)
	}
	return p.Err()
}

func runQuranReadCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib, err := a.quranLibrary(downloadProgress)
	if err != nil {
		return err
	}
	surahs, _, err := lib.Load(ctx)
	if err != nil {
		return quranDownloadError(err)
	}

	now := time.Now()
	from, to := quranFrom, quranTo
	var surah model.Surah
	var ok bool
	if len(args) == 1 {
		n, err := parseSurah(args[0])
		if err != nil {
			return err
		}
		surah, ok = quran.Find(surahs, n)
		if !ok {
			return fmt.Errorf("surah %d not found", n)
		}
	} else {
		bookmark, err := quran.LoadBookmark(ctx, a.store)
		if err != nil {
			return err
		}
		surah, ok = quran.ContinueReading(surahs, bookmark)
		if !ok {
			if prayer.IsFriday(now) {
				return fmt.Errorf("no bookmark yet; %s", prayer.FridayReminder)
			}
			return fmt.Errorf("no bookmark yet; pass a surah number")
		}
		if from == 0 {
			from = bookmark.Ayah
		}
	}

	p := newPrinter(cmd.OutOrStdout())
	if len(args) == 0 && prayer.IsFriday(now) && !surah.HasSpecialReminder {
		p.Println(p.accent(prayer.FridayReminder))
		p.Println()
	}
	printSurah(p, surah, quran.VerseRange(surah, from, to), now)
	var nav []string
	if prev, ok := quran.Previous(surahs, surah.Number); ok {
		nav = append(nav, fmt.Sprintf("previous: %d %s", prev.Number, prev.EnglishName))
	}
	if next, ok := quran.Next(surahs, surah.Number); ok {
		nav = append(nav, fmt.Sprintf("next: %d %s", next.Number, next.EnglishName))
	}
	if len(nav) > 0 {
		p.Println()
		p.Println(p.muted(strings.Join(nav, "  ")))
	}
	return p.Err()
}

func printSurah(p *printer, surah model.Surah, verses []model.Verse, now time.Time) {
	p.Printf("%s  %s\n", p.heading(fmt.Sprintf("%d. %s", surah.Number, surah.EnglishName)), surah.Name)
	if surah.HasSpecialReminder && prayer.IsFriday(now) {
		p.Println(p.accent("Reading Surah Al-Kahf on Friday is recommended."))
	}
	width := p.textWidth() - 2
	for _, v := range verses {
		label := fmt.Sprintf("[%d:%d]", surah.Number, v.Number)
		if v.IsSpecial {
			label += " " + p.accent(v.SpecialName)
		}
		p.Println()
		p.Println(p.muted(label))
		p.Println(tui.Indent(tui.Wrap(v.Arabic, width), "  "))
		p.Println(tui.Indent(tui.Wrap(v.English, width), "  "))
	}
}

func runQuranBookmarkCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	current, err := quran.LoadBookmark(ctx, a.store)
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	if len(args) == 0 {
		if !current.IsSet() {
			p.Println("No bookmark")
		} else {
			p.Printf("Bookmark: %d:%d\n", current.Surah, current.Ayah)
		}
		return p.Err()
	}

	surahN, ayahN, err := parseVerseRef(args[0])
	if err != nil {
		return err
	}
	surahs, ok, err := quran.NewLibrary(a.store, nil, a.logger).Cached(ctx)
	if err != nil {
		return err
	}
	if ok {
		surah, found := quran.Find(surahs, surahN)
		if !found || ayahN > len(surah.Verses) {
			return fmt.Errorf("verse %d:%d does not exist", surahN, ayahN)
		}
	}
	next := quran.ToggleBookmark(current, surahN, ayahN)
	if err := quran.SaveBookmark(ctx, a.store, next); err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}
	if next.IsSet() {
		p.Printf("Bookmarked %d:%d\n", next.Surah, next.Ayah)
	} else {
		p.Println("Bookmark cleared")
	}
	return p.Err()
}

func runQuranAudioCmd(cmd *cobra.Command, args []string) error {
	surahN, err := parseSurah(args[0])
	if err != nil {
		return err
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	reciter, err := activeReciter(ctx, cmd, a)
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	if len(args) == 1 {
		p.Println(quran.SurahAudioURL(reciter.ID, surahN))
		return p.Err()
	}

	ayahN, err := strconv.Atoi(args[1])
	if err != nil || ayahN < 1 {
		return fmt.Errorf("invalid ayah %q", args[1])
	}
	surahs, ok, err := quran.NewLibrary(a.store, nil, a.logger).Cached(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ayah audio needs the downloaded quran; run `mariam quran fetch`")
	}
	surah, found := quran.Find(surahs, surahN)
	if !found || ayahN > len(surah.Verses) {
		return fmt.Errorf("verse %d:%d does not exist", surahN, ayahN)
	}
	p.Println(quran.AyahAudioURL(reciter.ID, quran.GlobalAyahNumber(surahs, surahN, ayahN)))
	return p.Err()
}

// activeReciter prefers --reciter, then the saved reciter, then config.
func activeReciter(ctx context.Context, cmd *cobra.Command, a *app) (model.Reciter, error) {
	if cmd.Flags().Changed("reciter") {
		if r, ok := quran.FindReciter(a.settings.Reciter); ok {
			return r, nil
		}
	}
	return quran.LoadReciter(ctx, a.store, a.settings.Reciter)
}

func runQuranRecitersCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout())
	if quranSetReciter != "" {
		r, err := quran.SaveReciter(ctx, a.store, quranSetReciter)
		if err != nil {
			return err
		}
		p.Printf("Reciter set to %s\n", r.Name)
		return p.Err()
	}
	active, err := activeReciter(ctx, cmd, a)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(quran.Reciters))
	for _, r := range quran.Reciters {
		mark := ""
		if r.ID == active.ID {
			mark = "*"
		}
		rows = append(rows, []string{mark, r.ID, r.Name, r.ArabicName})
	}
	for _, line := range stats.FormatTable(nil, rows, nil) {
		p.Println(line)
	}
	return p.Err()
}

func runQuranClearCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := quran.NewLibrary(a.store, nil, a.logger).Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear quran cache: %w", err)
	}
	p := newPrinter(cmd.OutOrStdout())
	p.Println("Quran cache cleared")
	return p.Err()
}

func parseSurah(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > stats.TotalSurahs {
		return 0, fmt.Errorf("surah must be a number between 1 and %d", stats.TotalSurahs)
	}
	return n, nil
}

// parseVerseRef parses "surah:ayah".
func parseVerseRef(value string) (int, int, error) {
	surahPart, ayahPart, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected surah:ayah, got %q", value)
	}
	surahN, err := parseSurah(surahPart)
	if err != nil {
		return 0, 0, err
	}
	ayahN, err := strconv.Atoi(strings.TrimSpace(ayahPart))
	if err != nil || ayahN < 1 {
		return 0, 0, fmt.Errorf("invalid ayah %q", ayahPart)
	}
	return surahN, ayahN, nil
}
