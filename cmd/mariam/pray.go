package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/prayer"
	"github.com/verte-zerg/mariam/internal/stats"
	"github.com/verte-zerg/mariam/internal/tui"
)

const longDateLayout = "Monday, 2 January 2006"

var (
	prayDate string
	prayWeek bool

	locationForget bool
)

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	cache, err := a.prayerCache(cmd.Context())
	if err != nil {
		return err
	}
	opts := tui.Options{Cache: cache, Bell: os.Stderr, Logger: a.logger}
	if a.settings.Notify {
		// The dashboard shows the alert itself; the watcher only dedupes.
		opts.Watcher = &prayer.Watcher{
			Source: cache,
			Store:  a.store,
			Notify: func(prayer.Notification) error { return nil },
			Logger: a.logger,
		}
	}
	program := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newPrayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pray",
		Short: "Print prayer times",
		Args:  cobra.NoArgs,
		RunE:  runPrayCmd,
	}
	cmd.Flags().StringVar(&prayDate, "date", "", "date (YYYY-MM-DD, default: today)")
	cmd.Flags().BoolVar(&prayWeek, "week", false, "print the coming week")
	return cmd
}

func runPrayCmd(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	selected := prayer.StartOfDay(now)
	if prayDate != "" {
		if prayWeek {
			return fmt.Errorf("--date and --week cannot be combined")
		}
		parsed, err := parseDate(prayDate)
		if err != nil {
			return err
		}
		selected = parsed
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	cache, err := a.prayerCache(ctx)
	if err != nil {
		return err
	}
	times, err := cache.EnsureRange(ctx, selected, now)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	if prayWeek {
		printWeek(ctx, p, cache, now)
		return p.Err()
	}
	var tomorrow *model.PrayerTimes
	if t, ok := cache.Cached(ctx, selected.AddDate(0, 0, 1)); ok {
		tomorrow = &t
	}
	next, hasNext := prayer.Next(now, selected, times, tomorrow)
	printDay(p, cache.Location(), selected, now, times, next, hasNext)
	return p.Err()
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(prayer.DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date value: %w", err)
	}
	return parsed, nil
}

func printDay(p *printer, loc model.Location, date, now time.Time, times model.PrayerTimes, next model.NextPrayer, hasNext bool) {
	p.Printf("%s  %s\n", p.heading(date.Format(longDateLayout)), p.muted(loc.Label()))
	entries := prayer.Schedule(times, prayer.IsFriday(date))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		marker := ""
		if hasNext && e.Name == next.Name && e.Time == next.Time && prayer.SameDay(date, now.Add(next.Countdown)) {
			marker = p.accent("<- next")
		}
		rows = append(rows, []string{e.Name, prayer.To12Hour(e.Time), marker})
	}
	for _, line := range stats.FormatTable(nil, rows, map[int]bool{1: true}) {
		p.Println("  " + line)
	}
	if hasNext {
		p.Printf("\nNext: %s at %s (in %s)\n", next.Name, prayer.To12Hour(next.Time), prayer.FormatCountdown(next.Countdown))
	}
	if prayer.IsFriday(date) && prayer.SameDay(date, now) {
		p.Println(p.accent(prayer.FridayReminder))
	}
}

func printWeek(ctx context.Context, p *printer, cache *prayer.Cache, now time.Time) {
	p.Printf("%s  %s\n", p.heading("Prayer times this week"), p.muted(cache.Location().Label()))
	headers := []string{"Date", model.Fajr, model.Sunrise, model.Dhuhr, model.Asr, model.Maghrib, model.Isha}
	rows := make([][]string, 0, 8)
	friday := false
	for _, day := range prayer.WeekDates(now) {
		label := day.Format("Mon 2 Jan")
		times, ok := cache.Cached(ctx, day)
		if !ok {
			rows = append(rows, []string{label, "unavailable"})
			continue
		}
		dhuhr := prayer.To12Hour(times.Dhuhr)
		if prayer.IsFriday(day) {
			dhuhr = prayer.To12Hour(times.Jumuah) + "*"
			friday = true
		}
		rows = append(rows, []string{
			label,
			prayer.To12Hour(times.Fajr),
			prayer.To12Hour(times.Sunrise),
			dhuhr,
			prayer.To12Hour(times.Asr),
			prayer.To12Hour(times.Maghrib),
			prayer.To12Hour(times.Isha),
		})
	}
	for _, line := range stats.FormatTable(headers, rows, nil) {
		p.Println("  " + line)
	}
	if friday {
		p.Println(p.muted("  * " + model.Jumuah))
	}
}

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next prayer and the time left",
		Args:  cobra.NoArgs,
		RunE:  runNextCmd,
	}
}

func runNextCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	now := time.Now()
	today := prayer.StartOfDay(now)
	cache, err := a.prayerCache(ctx)
	if err != nil {
		return err
	}
	times, err := cache.EnsureRange(ctx, today, now)
	if err != nil {
		return err
	}
	var tomorrow *model.PrayerTimes
	if t, ok := cache.Cached(ctx, today.AddDate(0, 0, 1)); ok {
		tomorrow = &t
	}

	p := newPrinter(cmd.OutOrStdout())
	next, ok := prayer.Next(now, today, times, tomorrow)
	if !ok {
		p.Println("No upcoming prayer")
		return p.Err()
	}
	p.Printf("%s at %s, %s (%s)\n",
		p.heading(next.Name),
		prayer.To12Hour(next.Time),
		humanize.RelTime(now.Add(next.Countdown), now, "ago", "from now"),
		prayer.FormatCountdown(next.Countdown),
	)
	return p.Err()
}

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Watch prayer times and ring the bell when one arrives",
		Args:  cobra.NoArgs,
		RunE:  runNotifyCmd,
	}
}

func runNotifyCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := a.prayerCache(ctx)
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	watcher := &prayer.Watcher{
		Source: cache,
		Store:  a.store,
		Logger: a.logger,
		Notify: func(n prayer.Notification) error {
			p.Printf("\a%s  %s\n", p.heading(n.Title()), n.Body())
			return p.Err()
		},
	}
	logErrf("Watching prayer times for %s. Press Ctrl+C to stop.\n", cache.Location().Label())
	return watcher.Run(ctx)
}

func newLocationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Show the location used for prayer times",
		Args:  cobra.NoArgs,
		RunE:  runLocationCmd,
	}
	cmd.Flags().BoolVar(&locationForget, "forget", false, "clear the saved location")
	return cmd
}

func runLocationCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	r, err := a.resolver()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	if locationForget {
		if err := r.Forget(ctx); err != nil {
			return fmt.Errorf("failed to forget location: %w", err)
		}
		p.Println("Saved location cleared")
		return p.Err()
	}
	res, err := r.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve location: %w", err)
	}
	loc := res.Location
	p.Printf("%s\n", p.heading(loc.Label()))
	p.Printf("  %.4f, %.4f  %s\n", loc.Latitude, loc.Longitude, p.muted(string(res.Source)))
	return p.Err()
}
