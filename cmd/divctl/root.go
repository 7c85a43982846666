package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/validation"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/version"
)

type loader func(verbose bool) (backend, error)

type rootOptions struct {
	jsonOutput bool
	verbose    bool
	timeout    time.Duration
}

func newRootCmd(load loader) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "divctl",
		Short:        "Forecast dividends for a Trading 212 portfolio",
		Version:      version.Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at LOG_LEVEL instead of warn")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Minute, "abort after this long")

	root.AddCommand(
		newForecastCmd(load, opts),
		newUpcomingCmd(load, opts),
		newPortfolioCmd(load, opts),
		newSnapshotCmd(load, opts),
	)
	return root
}

// run loads the backend and calls fn with a context cancelled on timeout or interrupt.
func run(cmd *cobra.Command, load loader, opts *rootOptions, fn func(ctx context.Context, b backend) error) error {
	b, err := load(opts.verbose)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	return fn(ctx, b)
}

func newForecastCmd(load loader, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Show every calculated dividend and the expected total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, load, opts, func(ctx context.Context, b backend) error {
				summary, err := b.Forecast(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOutput {
					return writeJSON(out, summary)
				}
				if err := writeRecords(out, append(summary.Past, summary.Future...)); err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "\nExpected: %s\n", summary.Display)
				return err
			})
		},
	}
}

func newUpcomingCmd(load loader, opts *rootOptions) *cobra.Command {
	var days string

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show dividends going ex within the next N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := validation.ValidateUpcoming(request.UpcomingRequest{Days: days}, service.DefaultUpcomingDays)
			if err != nil {
				return err
			}
			return run(cmd, load, opts, func(ctx context.Context, b backend) error {
				records, err := b.Upcoming(ctx, n)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), records)
				}
				return writeRecords(cmd.OutOrStdout(), records)
			})
		},
	}
	cmd.Flags().StringVar(&days, "days", "", fmt.Sprintf("window in days (default %d)", service.DefaultUpcomingDays))
	return cmd
}

func newPortfolioCmd(load loader, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show current holdings with instrument details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, load, opts, func(ctx context.Context, b backend) error {
				positions, err := b.Positions(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOutput {
					return writeJSON(out, positions)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SYMBOL\tNAME\tSHARES\tAVG PRICE\tLAST\tVALUE\tCCY")
				for _, p := range positions {
					fmt.Fprintf(tw, "%s\t%s\t%g\t%.2f\t%.2f\t%.2f\t%s\n",
						p.Symbol, p.LongName, p.Shares, p.AvgPriceMajor, p.LastPrice, p.MarketValue, p.QuoteCurrency)
				}
				return tw.Flush()
			})
		},
	}
}

func newSnapshotCmd(load loader, opts *rootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show the shares held at the start of a day, rebuilt from order history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, load, opts, func(ctx context.Context, b backend) error {
				cutoff, err := validation.ValidateSnapshot(request.SnapshotRequest{Date: date}, b.Today())
				if err != nil {
					return err
				}
				entries, err := b.Snapshot(ctx, cutoff)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.jsonOutput {
					return writeJSON(out, entries)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SYMBOL\tSHARES")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%g\n", e.Symbol, e.Shares)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day in YYYY-MM-DD form (default today)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRecords(w io.Writer, records []model.DividendRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tEX-DATE\tPER SHARE\tSHARES\tPAYOUT\tSTATUS")
	for _, r := range records {
		status := "confirmed"
		if r.IsEstimated {
			status = "estimated"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Symbol, formatDate(r.ExDividendDate), formatFloat(r.DividendPerShare), formatFloat(r.Shares), formatFloat(r.Payout), status)
	}
	return tw.Flush()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
