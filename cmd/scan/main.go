package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/bighogz/tradie/internal/classify"
	"github.com/bighogz/tradie/internal/config"
	"github.com/bighogz/tradie/internal/httpclient"
	"github.com/bighogz/tradie/internal/logging"
	"github.com/bighogz/tradie/internal/models"
	"github.com/bighogz/tradie/internal/runlog"
	"github.com/bighogz/tradie/internal/runlog/sqlite"
	"github.com/bighogz/tradie/internal/scraper"
)

// thresholdFlags names the flag overriding each subset threshold.
var thresholdFlags = map[string]classify.Category{
	"ceo-threshold":         classify.CEO,
	"pres-threshold":        classify.PresidentCEO,
	"cfo-threshold":         classify.CFO,
	"dir-threshold":         classify.Director,
	"ten-percent-threshold": classify.TenPercentOwner,
}

type options struct {
	configPath string
	category   string
	listAll    bool
	csvPath    string
	strict     bool
	thresholds map[classify.Category]float64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "TOML config file (default: $TRADIE_CONFIG or tradie.toml)")
	flag.StringVar(&opts.category, "category", "", "Only print one subset: ceo, pres, cfo, dir, ten-percent")
	flag.BoolVar(&opts.listAll, "list-all", false, "Print every normalized trade, not just the subsets")
	flag.StringVar(&opts.csvPath, "csv", "", "Write the printed trades to CSV")
	flag.BoolVar(&opts.strict, "strict-dates", false, "Fail the scrape on unparsable dates")
	values := make(map[string]*float64, len(thresholdFlags))
	for name, c := range thresholdFlags {
		values[name] = flag.Float64(name, 0, fmt.Sprintf("Minimum ΔOwn for %s (default: configured value)", label(c)))
	}
	flag.Parse()

	// Only flags given on the command line override the configuration.
	opts.thresholds = make(map[classify.Category]float64)
	flag.Visit(func(f *flag.Flag) {
		if c, ok := thresholdFlags[f.Name]; ok {
			opts.thresholds[c] = *values[f.Name]
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	var paths []string
	if opts.configPath != "" {
		paths = append(paths, opts.configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var only []classify.Category
	if opts.category != "" {
		c, err := classify.ParseCategory(opts.category)
		if err != nil {
			return err
		}
		only = []classify.Category{c}
	} else {
		only = classify.Categories
	}

	sopts := cfg.ScraperOptions()
	sopts.StrictDates = sopts.StrictDates || opts.strict
	sopts.Thresholds = applyThresholds(sopts.Thresholds, opts.thresholds)

	logger := logging.New(cfg.Logging)
	client := httpclient.New(time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second)
	s := scraper.New(sopts, logger, scraper.WithHTTPClient(client))

	runs := sqlite.Open(cfg.RunLog.Enabled, cfg.RunLog.Path, logger)
	defer runs.Close()

	fmt.Fprintf(out, "Scraping %s...\n", sopts.URL)
	run := runlog.Start(sopts.URL, "cli")
	snap, err := s.Scrape(ctx)
	run.Finish(err)
	run.Observe(snap)
	if rerr := runs.Record(context.WithoutCancel(ctx), run); rerr != nil {
		logger.Warn().Err(rerr).Str("run", run.ID).Msg("Failed to record scrape run")
	}
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}
	fmt.Fprintf(out, "Parsed %d trades (%d rows skipped, %d fields flagged).\n",
		len(snap.Trades), len(snap.Skipped), len(snap.Coercions))

	var exported []models.InsiderTrade
	if opts.listAll {
		fmt.Fprintln(out, "\nAll trades:")
		printTrades(out, snap.Trades)
		exported = snap.Trades
	}
	for _, c := range only {
		subset := snap.Subsets.Of(c)
		fmt.Fprintf(out, "\n%s (ΔOwn > %g):\n", label(c), sopts.Thresholds.For(c))
		printTrades(out, subset)
		if !opts.listAll {
			exported = append(exported, subset...)
		}
	}

	if opts.csvPath != "" {
		f, err := os.Create(opts.csvPath)
		if err != nil {
			return fmt.Errorf("could not create CSV: %w", err)
		}
		defer f.Close()
		if err := writeCSV(f, exported); err != nil {
			return fmt.Errorf("could not write CSV: %w", err)
		}
		fmt.Fprintf(out, "\nWrote %s.\n", opts.csvPath)
	}
	return nil
}

// applyThresholds overrides th with every threshold given on the command line.
func applyThresholds(th classify.Thresholds, set map[classify.Category]float64) classify.Thresholds {
	for c, v := range set {
		th = th.With(c, v)
	}
	return th
}

func label(c classify.Category) string {
	switch c {
	case classify.CEO:
		return "CEO purchases"
	case classify.PresidentCEO:
		return "President-CEO purchases"
	case classify.CFO:
		return "CFO purchases"
	case classify.Director:
		return "Director purchases"
	case classify.TenPercentOwner:
		return "10% owner purchases"
	}
	return string(c)
}

func printTrades(out io.Writer, trades []models.InsiderTrade) {
	if len(trades) == 0 {
		fmt.Fprintln(out, "  None.")
		return
	}
	for _, t := range trades {
		price := "n/a"
		if t.Price.Valid {
			price = "$" + t.Price.Decimal.StringFixed(2)
		}
		fmt.Fprintf(out, "  %-6s %-28.28s %-22.22s %-12s %s  qty=%d  +%d%%  value=$%s\n",
			t.Ticker, t.CompanyName, t.InsiderName, t.Title, price,
			t.Quantity, t.PercentOwnedIncrease, t.MoneyValueIncrease.StringFixed(0))
	}
}

// writeCSV writes trades with a header row in InsiderTrade field order.
func writeCSV(out io.Writer, trades []models.InsiderTrade) error {
	w := csv.NewWriter(out)
	_ = w.Write([]string{
		"filerRelationshipCode", "filingDate", "tradeDate", "ticker", "companyName", "insiderName",
		"title", "tradeType", "price", "quantity", "alreadyOwned", "percentOwnedIncrease", "moneyValueIncrease",
	})
	for _, t := range trades {
		price := ""
		if t.Price.Valid {
			price = t.Price.Decimal.String()
		}
		_ = w.Write([]string{
			t.FilerRelationshipCode,
			t.FilingDate.String(),
			t.TradeDate.String(),
			t.Ticker,
			t.CompanyName,
			t.InsiderName,
			t.Title,
			t.TradeType,
			price,
			strconv.FormatInt(t.Quantity, 10),
			strconv.FormatInt(t.AlreadyOwned, 10),
			strconv.Itoa(t.PercentOwnedIncrease),
			t.MoneyValueIncrease.String(),
		})
	}
	w.Flush()
	return w.Error()
}
