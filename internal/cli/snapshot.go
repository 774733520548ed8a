package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/modules/catalog"
	"github.com/aristath/cropwatch/internal/modules/dashboard"
	dashboardhandlers "github.com/aristath/cropwatch/internal/modules/dashboard/handlers"
	"github.com/aristath/cropwatch/internal/modules/market"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatXLSX = "xlsx"
)

type snapshotOptions struct {
	crop   string
	region string
	seed   uint64
	month  int
	format string
	output string
}

// monthClock pins the reference month while keeping the current year
type monthClock struct {
	month time.Month
}

func (c monthClock) Now() time.Time {
	now := time.Now()
	return time.Date(now.Year(), c.month, 15, 12, 0, 0, 0, time.UTC)
}

func newSnapshotCommand(root *rootOptions) *cobra.Command {
	opts := &snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Generate one dashboard snapshot",
		Example: `  cropwatch snapshot --crop Onion --region Maharashtra
  cropwatch snapshot --crop Wheat --seed 42 --month 6 --format json
  cropwatch snapshot --crop Cotton --format xlsx --output cotton.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.crop, "crop", "", "crop name (default: first catalog crop)")
	cmd.Flags().StringVar(&opts.region, "region", "", "region name (default: first catalog region)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed; 0 seeds from the clock")
	cmd.Flags().IntVar(&opts.month, "month", 0, "reference month 1-12; 0 uses the current month")
	cmd.Flags().StringVar(&opts.format, "format", formatText, "output format: text, json or xlsx")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (required for xlsx)")

	return cmd
}

func runSnapshot(cmd *cobra.Command, root *rootOptions, opts *snapshotOptions) error {
	if opts.month < 0 || opts.month > 12 {
		return fmt.Errorf("--month must be between 1 and 12, got %d", opts.month)
	}
	switch opts.format {
	case formatText, formatJSON:
	case formatXLSX:
		if opts.output == "" {
			return fmt.Errorf("--output is required for xlsx")
		}
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cat, err := catalog.LoadFile(root.catalogPath)
	if err != nil {
		return err
	}

	var rnd domain.RandomSource = market.NewTimeSeededSource()
	if opts.seed != 0 {
		rnd = market.NewSeededSource(opts.seed)
	}
	var clock domain.Clock = domain.SystemClock{}
	if opts.month != 0 {
		clock = monthClock{month: time.Month(opts.month)}
	}

	orch, err := dashboard.New(dashboard.Config{
		Catalog: cat,
		Random:  rnd,
		Clock:   clock,
		Waiter:  dashboard.DelayWaiter{},
		Log:     root.logger(cmd),
	})
	if err != nil {
		return err
	}
	defer orch.Close()

	crop := cat.DefaultCrop()
	if opts.crop != "" {
		if crop, err = cat.Crop(opts.crop); err != nil {
			return err
		}
	}
	region := cat.DefaultRegion()
	if opts.region != "" {
		if region, err = cat.Region(opts.region); err != nil {
			return err
		}
	}

	snapshot, err := orch.Refresh(context.Background(), crop, region)
	if err != nil {
		return fmt.Errorf("failed to generate snapshot: %w", err)
	}

	switch opts.format {
	case formatJSON:
		return withOutput(cmd, opts.output, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		})
	case formatXLSX:
		f, err := dashboardhandlers.BuildWorkbook(snapshot)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := f.SaveAs(opts.output); err != nil {
			return fmt.Errorf("failed to save workbook: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.output)
		return nil
	default:
		return withOutput(cmd, opts.output, func(w io.Writer) error {
			return writeText(w, snapshot)
		})
	}
}

func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return write(f)
}

func writeText(w io.Writer, s *domain.DashboardSnapshot) error {
	sign := ""
	if s.PriceChangePercent > 0 {
		sign = "+"
	}

	fmt.Fprintf(w, "%s %s · %s · %s (%s)\n", s.Crop.Icon, s.Crop.Name, s.Region, domain.MonthLabels[s.ReferenceMonth], s.Crop.Unit)
	fmt.Fprintf(w, "Current price:  ₹%s (%s%.1f%%, %s)\n", dashboard.FormatThousands(s.CurrentPrice), sign, s.PriceChangePercent, s.Trend)
	if s.BestTime.HasPrice() {
		fmt.Fprintf(w, "Best time:      %s at ₹%s (%s)\n", s.BestTime.Month, dashboard.FormatThousands(*s.BestTime.Price), s.BestTime.Reason)
	} else {
		fmt.Fprintf(w, "Best time:      %s (%s)\n", s.BestTime.Month, s.BestTime.Reason)
	}
	fmt.Fprintf(w, "Advice:         %s\n", s.Advice)
	fmt.Fprintf(w, "Range:          ₹%s (%s) to ₹%s (%s), mean %.2f\n\n",
		dashboard.FormatThousands(s.Stats.Low), s.Stats.LowMonth,
		dashboard.FormatThousands(s.Stats.High), s.Stats.HighMonth,
		s.Stats.Mean)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tPrice\tMarket Avg\t\t")
	for _, p := range s.Series {
		marker := ""
		if p.Predicted {
			marker = "predicted"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t\n", p.Month, p.Price, p.MarketAverage, marker)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nMarkets (%d tracked)\n", s.MarketsTracked)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, q := range s.Quotes {
		fmt.Fprintf(tw, "%s\t₹%s\n", q.Market, dashboard.FormatThousands(q.Price))
	}
	return tw.Flush()
}
