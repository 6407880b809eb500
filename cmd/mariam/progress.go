package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/mariam/internal/azkar"
	"github.com/verte-zerg/mariam/internal/hadith"
	"github.com/verte-zerg/mariam/internal/stats"
)

const defaultBarWidth = 30

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show azkar, hadith and Quran progress",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	categories, err := azkar.Catalog()
	if err != nil {
		return fmt.Errorf("failed to load azkar: %w", err)
	}
	items, err := hadith.Collection()
	if err != nil {
		return fmt.Errorf("failed to load hadith: %w", err)
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := stats.BuildReport(cmd.Context(), a.store, categories, items)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	barWidth := min(defaultBarWidth, max(terminalWidth(out)-40, 10))
	if err := stats.Render(out, report, time.Now(), barWidth); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
