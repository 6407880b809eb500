// Package main provides the CLI entrypoint for mariam.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagLatitude  float64
	flagLongitude float64
	flagCity      string
	flagCountry   string
	flagMethod    int
	flagLogLevel  string
	flagNotify    bool
	flagDBPath    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mariam",
		Short:         "Prayer times, azkar, hadith and Quran in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.Float64Var(&flagLatitude, "latitude", 0, "latitude for prayer times")
	flags.Float64Var(&flagLongitude, "longitude", 0, "longitude for prayer times")
	flags.StringVar(&flagCity, "city", "", "city name to display")
	flags.StringVar(&flagCountry, "country", "", "country name to display")
	flags.IntVar(&flagMethod, "method", defaultMethod, "prayer time calculation method")
	flags.StringVar(&flagLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&flagDBPath, "db", "", "database path (default: XDG data dir)")
	rootCmd.Flags().BoolVar(&flagNotify, "notify", defaultNotify, "ring the terminal bell at prayer times")

	rootCmd.AddCommand(newPrayCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newNotifyCmd())
	rootCmd.AddCommand(newLocationCmd())
	rootCmd.AddCommand(newAzkarCmd())
	rootCmd.AddCommand(newHadithCmd())
	rootCmd.AddCommand(newQuranCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
