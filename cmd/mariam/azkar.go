package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mariam/internal/azkar"
	"github.com/verte-zerg/mariam/internal/azkarui"
	"github.com/verte-zerg/mariam/internal/stats"
	"github.com/verte-zerg/mariam/internal/tui"
)

var (
	azkarCategory string
	azkarResetAll bool
)

func newAzkarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "azkar",
		Short: "Count azkar",
		Args:  cobra.NoArgs,
		RunE:  runAzkarCmd,
	}
	cmd.Flags().StringVar(&azkarCategory, "category", "", "category to open")
	cmd.AddCommand(&cobra.Command{
		Use:   "list [category]",
		Short: "List categories, or the azkar of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAzkarListCmd,
	})
	reset := &cobra.Command{
		Use:   "reset [category]",
		Short: "Reset counts of a category",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAzkarResetCmd,
	}
	reset.Flags().BoolVar(&azkarResetAll, "all", false, "reset every category")
	cmd.AddCommand(reset)
	return cmd
}

func openCounter(cmd *cobra.Command, fullScreen bool) (*app, *azkar.Counter, error) {
	a, err := openApp(cmd, fullScreen)
	if err != nil {
		return nil, nil, err
	}
	categories, err := azkar.Catalog()
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("failed to load azkar: %w", err)
	}
	counter, err := azkar.NewCounter(cmd.Context(), a.store, categories)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, counter, nil
}

func runAzkarCmd(cmd *cobra.Command, _ []string) error {
	a, counter, err := openCounter(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if azkarCategory != "" {
		if err := counter.Select(cmd.Context(), azkarCategory); err != nil {
			return categoryError(err, counter)
		}
	}
	program := tea.NewProgram(azkarui.NewModel(counter, a.logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run azkar TUI: %w", err)
	}
	return nil
}

func runAzkarListCmd(cmd *cobra.Command, args []string) error {
	a, counter, err := openCounter(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrinter(cmd.OutOrStdout())
	categories := counter.Categories()
	if len(args) == 0 {
		rows := make([][]string, 0, len(categories))
		for _, c := range categories {
			done, total := counter.Progress(c.Key)
			rows = append(rows, []string{c.Key, c.Title, fmt.Sprintf("%d/%d", done, total)})
		}
		for _, line := range stats.FormatTable([]string{"Key", "Title", "Done"}, rows, map[int]bool{2: true}) {
			p.Println(line)
		}
		return p.Err()
	}

	idx := azkar.CategoryIndex(categories, args[0])
	if idx < 0 {
		return categoryError(fmt.Errorf("unknown azkar category %q", args[0]), counter)
	}
	category := categories[idx]
	p.Println(p.heading(category.Title))
	width := p.textWidth() - 2
	for i, z := range category.Azkar {
		count := fmt.Sprintf("%d/%d", counter.Count(z.ID), z.Count)
		if counter.Completed(z.ID) {
			count = p.accent(count)
		}
		p.Printf("\n%d. %s\n", i+1, count)
		p.Println(tui.Indent(tui.Wrap(z.Arabic, width), "  "))
		p.Println(p.muted(tui.Indent(tui.Wrap(z.Translation, width), "  ")))
	}
	return p.Err()
}

func runAzkarResetCmd(cmd *cobra.Command, args []string) error {
	if azkarResetAll == (len(args) == 1) {
		return fmt.Errorf("pass a category or --all")
	}
	a, counter, err := openCounter(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	keys := args
	if azkarResetAll {
		keys = azkar.Keys(counter.Categories())
	}
	for _, key := range keys {
		if err := counter.ResetCategory(ctx, key); err != nil {
			return categoryError(err, counter)
		}
	}
	p := newPrinter(cmd.OutOrStdout())
	p.Printf("Reset %s\n", strings.Join(keys, ", "))
	return p.Err()
}

func categoryError(err error, counter *azkar.Counter) error {
	return fmt.Errorf("%w (available: %s)", err, strings.Join(azkar.Keys(counter.Categories()), ", "))
}
