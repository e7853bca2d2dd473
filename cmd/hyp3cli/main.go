// Command hyp3cli searches a HyP3 subscription catalog, downloads finished
// RTC products, and preprocesses the extracted rasters with GDAL.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/example/go-hyp3/gdal"
	"github.com/example/go-hyp3/hyp3"
	"github.com/example/go-hyp3/hyp3/download"
	"github.com/example/go-hyp3/hyp3/model"
	"github.com/example/go-hyp3/internal/config"
	"github.com/example/go-hyp3/raster"
)

const userAgent = "go-hyp3/0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	app := &cli.Command{
		Name:    "hyp3cli",
		Usage:   "Fetch and preprocess HyP3 RTC products",
		Version: "0.1.0",
		Commands: []*cli.Command{
			newSubscriptionsCommand(cfg, logger),
			newProductsCommand(cfg, logger),
			newFetchCommand(cfg, logger),
			newPrepCommand(cfg, logger),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newSubscriptionsCommand(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "subscriptions",
		Usage: "List enabled HyP3 subscriptions",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include disabled subscriptions",
			},
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := buildClient(cfg, logger)
			subs, err := client.Subscriptions(ctx, !cmd.Bool("all"))
			if err != nil {
				return fmt.Errorf("list subscriptions: %w", err)
			}
			if len(subs) == 0 {
				fmt.Fprintln(os.Stdout, "No subscriptions found.")
				return nil
			}
			if strings.EqualFold(cmd.String("output"), "json") {
				return writeJSON(os.Stdout, subs)
			}
			printSubscriptionsTable(os.Stdout, subs)
			return nil
		},
	}
}

func newProductsCommand(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:   "products",
		Usage:  "List products for a subscription",
		Flags:  append(selectionFlags(), outputFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := buildClient(cfg, logger)
			products, err := selectProducts(ctx, cmd, client)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintln(os.Stdout, "No products matched the filters.")
				return nil
			}
			if strings.EqualFold(cmd.String("output"), "json") {
				return writeJSON(os.Stdout, products)
			}
			printProductsTable(os.Stdout, products)
			return nil
		},
	}
}

func newFetchCommand(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download and extract products for a subscription",
		Flags: append(selectionFlags(),
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Destination directory for extracted products",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := buildClient(cfg, logger)
			products, err := selectProducts(ctx, cmd, client)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintln(os.Stdout, "No products matched the filters.")
				return nil
			}

			dest := cmd.String("dest")
			if dest == "" {
				dest = cfg.Dirs.Products
			}
			logger.Info("fetching products", "count", len(products), "dest", dest)

			manager := buildManager(cfg, logger)
			// No client timeout here: product archives can take minutes.
			httpClient := &http.Client{}
			if err := download.FetchAll(ctx, manager, httpClient, userAgent, products, dest); err != nil {
				return fmt.Errorf("fetch: %w", err)
			}

			if cfg.Auth.WriteNetrc && cfg.Auth.Username != "" {
				if err := hyp3.WriteNetrc("", cfg.Auth.Username, cfg.Auth.Password); err != nil {
					logger.Warn("could not update netrc", "error", err)
				}
			}
			logger.Info("fetch complete", "count", len(products))
			return nil
		},
	}
}

func newPrepCommand(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "prep",
		Usage: "Normalize, merge, and flatten extracted rasters",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "products-dir",
				Usage: "Directory holding extracted products",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Flat output directory for finished tiles",
			},
			&cli.StringSliceFlag{
				Name:  "polarization",
				Usage: "Polarizations to keep (repeatable); prompts when products carry several",
			},
			&cli.BoolFlag{
				Name:  "keep-blank",
				Usage: "Keep tiles that contain no valid pixels",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			productsDir := cmd.String("products-dir")
			if productsDir == "" {
				productsDir = cfg.Dirs.Products
			}
			outDir := cmd.String("out")
			if outDir == "" {
				outDir = cfg.Dirs.Output
			}

			pols, err := resolvePolarizations(cmd.StringSlice("polarization"), productsDir)
			if err != nil {
				return err
			}

			opts := []raster.PipelineOption{
				raster.WithLogger(logger),
				raster.WithToolkit(gdal.NewToolkit(nil, gdal.Tools{
					SRSInfo: cfg.GDAL.SRSInfo,
					Warp:    cfg.GDAL.Warp,
					Merge:   cfg.GDAL.Merge,
					Info:    cfg.GDAL.Info,
				})),
			}
			if cmd.Bool("keep-blank") {
				opts = append(opts, raster.KeepBlankTiles())
			}

			tiles, err := raster.NewPipeline(opts...).Run(ctx, productsDir, outDir, pols...)
			if err != nil {
				return fmt.Errorf("prep: %w", err)
			}
			logger.Info("prep complete", "tiles", len(tiles), "out", outDir)
			return nil
		},
	}
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "sub-id",
			Usage: "Subscription ID (prompts when omitted)",
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "Keep products acquired on or after this date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "Keep products acquired before this date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "flight-direction",
			Usage: "Filter by flight direction (A, ASC, ASCENDING, D, DESC, DESCENDING)",
		},
		&cli.IntFlag{
			Name:  "path",
			Usage: "Filter by relative orbit (path) number",
		},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "output",
		Usage: "Output format (text or json)",
		Value: "text",
	}
}

// selectProducts resolves the subscription (prompting when needed) and
// applies the date/direction/path filters.
func selectProducts(ctx context.Context, cmd *cli.Command, client *hyp3.Client) ([]model.Product, error) {
	subID := cmd.Int("sub-id")
	if subID == 0 {
		subs, err := client.Subscriptions(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("list subscriptions: %w", err)
		}
		if len(subs) == 0 {
			return nil, hyp3.ErrNoSubscriptions
		}
		subID, err = pickSubscription(os.Stdin, os.Stdout, subs)
		if err != nil {
			return nil, err
		}
	}

	products, err := client.Products(ctx, subID)
	if err != nil {
		return nil, err
	}

	start, err := parseDateFlag(cmd, "start")
	if err != nil {
		return nil, err
	}
	end, err := parseDateFlag(cmd, "end")
	if err != nil {
		return nil, err
	}
	if hyp3.ValidDateRange(start, end) {
		products, err = hyp3.FilterDateRange(products, start, end)
		if err != nil {
			return nil, err
		}
	} else if !start.IsZero() || !end.IsZero() {
		return nil, fmt.Errorf("both --start and --end are required, with start before end")
	}

	if dir := cmd.String("flight-direction"); dir != "" {
		direction, err := hyp3.NormalizeFlightDirection(dir)
		if err != nil {
			return nil, err
		}
		products, err = hyp3.FilterFlightDirection(ctx, client, products, direction)
		if err != nil {
			return nil, err
		}
	}

	if path := cmd.Int("path"); path > 0 {
		products, err = hyp3.FilterPath(ctx, client, products, path)
		if err != nil {
			return nil, err
		}
	}

	return products, nil
}

// pickSubscription prompts until the user enters one of the listed IDs.
func pickSubscription(in io.Reader, out io.Writer, subs []model.Subscription) (int, error) {
	valid := make(map[int]struct{}, len(subs))
	for _, sub := range subs {
		fmt.Fprintf(out, "Subscription id: %d  %s\n", sub.ID, sub.Name)
		valid[sub.ID] = struct{}{}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Pick a subscription ID from the above list: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("no subscription selected")
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintln(out, "Invalid ID")
			continue
		}
		if _, ok := valid[choice]; ok {
			return choice, nil
		}
		fmt.Fprintln(out, "Invalid ID")
	}
}

// resolvePolarizations turns flag values into polarizations, discovering the
// available ones and prompting when the flags leave it ambiguous.
func resolvePolarizations(flags []string, productsDir string) ([]raster.Polarization, error) {
	if len(flags) > 0 {
		pols := make([]raster.Polarization, 0, len(flags))
		for _, flag := range flags {
			pols = append(pols, raster.Polarization(strings.ToUpper(strings.TrimSpace(flag))))
		}
		return pols, nil
	}

	tiles, err := raster.Ingest(productsDir)
	if err != nil {
		return nil, err
	}
	available := raster.AvailablePolarizations(tiles)
	switch len(available) {
	case 0:
		return nil, fmt.Errorf("no polarizations found under %s", productsDir)
	case 1:
		fmt.Fprintf(os.Stdout, "Selecting the only available polarization: %s\n", available[0])
		return available, nil
	}

	fmt.Fprintln(os.Stdout, "Select a polarization:")
	for i, pol := range available {
		fmt.Fprintf(os.Stdout, "[%d]: %s\n", i, pol)
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if !scanner.Scan() {
			return nil, fmt.Errorf("no polarization selected")
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 0 || choice >= len(available) {
			fmt.Fprintln(os.Stdout, "Please enter the number of an available polarization.")
			continue
		}
		return available[choice : choice+1], nil
	}
}

func buildClient(cfg *config.Config, logger *slog.Logger) *hyp3.Client {
	jar, _ := cookiejar.New(nil)
	opts := []hyp3.Option{
		hyp3.WithAPIURL(cfg.API.BaseURL),
		hyp3.WithSearchURL(cfg.API.SearchURL),
		hyp3.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout, Jar: jar}),
		hyp3.WithLogger(logger),
	}
	if cfg.Auth.Token != "" {
		opts = append(opts, hyp3.WithAuthToken(cfg.Auth.Token))
	} else if cfg.Auth.Username != "" {
		opts = append(opts, hyp3.WithAuthenticator(hyp3.BasicAuth{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		}))
	}
	return hyp3.NewClient(opts...)
}

func buildManager(cfg *config.Config, logger *slog.Logger) download.Manager {
	var auth *download.BasicAuth
	if cfg.Auth.Username != "" {
		auth = &download.BasicAuth{Username: cfg.Auth.Username, Password: cfg.Auth.Password}
	}
	var s3dl download.S3Downloader
	if cfg.Download.S3CredentialsURL != "" {
		s3dl = download.NewS3Downloader(download.S3Config{
			CredentialsURL: cfg.Download.S3CredentialsURL,
			BasicAuth:      auth,
		})
	}
	return download.NewManager(download.Config{
		Concurrency: cfg.Download.Concurrency,
		Verify:      cfg.Download.Verify,
		Extract:     cfg.Download.Extract,
		BasicAuth:   auth,
		S3:          s3dl,
		Logger:      logger,
		Progress: func(p download.FileProgress) {
			if p.Total > 0 && p.Downloaded >= p.Total {
				fmt.Fprintf(os.Stderr, "\r%s: done                \n", p.FileName)
				return
			}
			fmt.Fprintf(os.Stderr, "\r%s: %d bytes", p.FileName, p.Downloaded)
		},
	})
}

func parseDateFlag(cmd *cli.Command, name string) (time.Time, error) {
	value := strings.TrimSpace(cmd.String(name))
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return parsed, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printSubscriptionsTable(w io.Writer, subs []model.Subscription) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPLATFORM\tENABLED")
	for _, sub := range subs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", sub.ID, sub.Name, sub.Platform, sub.Enabled)
	}
	tw.Flush()
}

func printProductsTable(w io.Writer, products []model.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDATE\tSIZE(MB)")
	for _, product := range products {
		date := "-"
		if d, err := hyp3.AcquisitionDate(product.Name); err == nil {
			date = d.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\n", product.ID, product.Name, date, product.SizeMB)
	}
	tw.Flush()
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
