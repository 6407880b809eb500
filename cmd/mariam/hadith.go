package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mariam/internal/generator"
	"github.com/verte-zerg/mariam/internal/hadith"
	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/stats"
	"github.com/verte-zerg/mariam/internal/tui"
)

var hadithUnread bool

func newHadithCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hadith",
		Short: "Read the hadith collection",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List hadith with their read state",
		Args:  cobra.NoArgs,
		RunE:  runHadithListCmd,
	}
	list.Flags().BoolVar(&hadithUnread, "unread", false, "only unread hadith")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id|number>",
		Short: "Show a hadith",
		Args:  cobra.ExactArgs(1),
		RunE:  runHadithShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "read <id|number>",
		Short: "Toggle the read mark of a hadith",
		Args:  cobra.ExactArgs(1),
		RunE:  runHadithReadCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "random",
		Short: "Show a random hadith, favoring unread ones",
		Args:  cobra.NoArgs,
		RunE:  runHadithRandomCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Show the hadith of the day",
		Args:  cobra.NoArgs,
		RunE:  runHadithTodayCmd,
	})
	return cmd
}

func openTracker(ctx context.Context, cmd *cobra.Command) (*app, []model.Hadith, *hadith.Tracker, error) {
	items, err := hadith.Collection()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load hadith: %w", err)
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return nil, nil, nil, err
	}
	tracker, err := hadith.NewTracker(ctx, a.store)
	if err != nil {
		a.Close()
		return nil, nil, nil, err
	}
	return a, items, tracker, nil
}

func runHadithListCmd(cmd *cobra.Command, _ []string) error {
	a, items, tracker, err := openTracker(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrinter(cmd.OutOrStdout())
	preview := max(p.width-16, 20)
	rows := make([][]string, 0, len(items))
	for _, h := range items {
		read := tracker.IsRead(h.ID)
		if hadithUnread && read {
			continue
		}
		mark := ""
		if read {
			mark = "read"
		}
		rows = append(rows, []string{strconv.Itoa(h.Number), mark, runewidth.Truncate(h.Translation, preview, "...")})
	}
	for _, line := range stats.FormatTable([]string{"#", "", "Hadith"}, rows, map[int]bool{0: true}) {
		p.Println(line)
	}
	done, total := tracker.Progress(items)
	p.Printf("\n%d/%d read\n", done, total)
	return p.Err()
}

func runHadithShowCmd(cmd *cobra.Command, args []string) error {
	a, items, tracker, err := openTracker(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	h, ok := hadith.Find(items, args[0])
	if !ok {
		return fmt.Errorf("hadith %q not found", args[0])
	}
	p := newPrinter(cmd.OutOrStdout())
	printHadith(p, h, tracker.IsRead(h.ID))
	return p.Err()
}

func runHadithReadCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, items, tracker, err := openTracker(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	h, ok := hadith.Find(items, args[0])
	if !ok {
		return fmt.Errorf("hadith %q not found", args[0])
	}
	read, err := tracker.ToggleRead(ctx, h.ID)
	if err != nil {
		return fmt.Errorf("failed to update hadith %d: %w", h.Number, err)
	}
	p := newPrinter(cmd.OutOrStdout())
	if read {
		p.Printf("Hadith %d marked as read\n", h.Number)
	} else {
		p.Printf("Hadith %d marked as unread\n", h.Number)
	}
	done, total := tracker.Progress(items)
	p.Printf("%d/%d read\n", done, total)
	return p.Err()
}

func runHadithTodayCmd(cmd *cobra.Command, _ []string) error {
	a, items, tracker, err := openTracker(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	h, ok, err := tracker.Daily(cmd.Context(), items, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("hadith collection is empty")
	}
	p := newPrinter(cmd.OutOrStdout())
	printHadith(p, h, tracker.IsRead(h.ID))
	return p.Err()
}

func runHadithRandomCmd(cmd *cobra.Command, _ []string) error {
	a, items, tracker, err := openTracker(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	h, ok := tracker.Pick(items, generator.New())
	if !ok {
		return fmt.Errorf("hadith collection is empty")
	}
	p := newPrinter(cmd.OutOrStdout())
	printHadith(p, h, tracker.IsRead(h.ID))
	return p.Err()
}

func printHadith(p *printer, h model.Hadith, read bool) {
	title := fmt.Sprintf("Hadith %d", h.Number)
	if read {
		title += " " + p.accent("(read)")
	}
	width := p.textWidth() - 2
	p.Println(p.heading(title))
	p.Println()
	p.Println(tui.Indent(tui.Wrap(h.Arabic, width), "  "))
	p.Println()
	p.Println(tui.Indent(tui.Wrap(h.Translation, width), "  "))
}
