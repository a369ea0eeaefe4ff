// Package cli implements the houseprice command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/pkg/logger"
)

const (
	backendKey         = "backend"
	reportFileMode     = 0o644
	defaultTimeout     = 10 * time.Second
	defaultPollEvery   = 200 * time.Millisecond
	stdoutOutput       = "-"
	defaultBatchFormat = "table"
	jsonFormat         = "json"
)

// ErrUsage marks invalid command line input.
var ErrUsage = errors.New("usage")

// Options wires the tool to its environment.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
	// Backend replaces the backend chosen from --url.
	Backend Backend
}

// houseFlag binds one attribute to a command line flag.
type houseFlag struct {
	name  string
	attr  int
	usage string
}

var houseFlags = []houseFlag{
	{"area", pricing.SquareFootage, "floor area in m²"},
	{"bedrooms", pricing.Bedrooms, "number of bedrooms"},
	{"bathrooms", pricing.Bathrooms, "number of bathrooms"},
	{"year", pricing.YearBuilt, "year built"},
	{"lot", pricing.LotSize, "lot size in acres"},
	{"garage", pricing.GarageSize, "garage spaces"},
	{"neighborhood", pricing.NeighborhoodQuality, "neighborhood quality, 1 to 10"},
}

// New builds the houseprice application.
func New(opts Options) *cli.App {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &cli.App{
		Name:      "houseprice",
		Usage:     "Estimate house prices in reais with a linear model",
		Writer:    opts.Stdout,
		ErrWriter: opts.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "server base URL; empty prices in process",
				EnvVars: []string{"HOUSEPRICE_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "log level (debug, info, warn, error)",
				EnvVars: []string{"HOUSEPRICE_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "no-limits",
				Usage: "skip the accepted attribute ranges (in-process only)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaultTimeout,
				Usage: "per-request timeout against the server",
			},
		},
		Before: func(c *cli.Context) error {
			if err := logger.Init(logger.WithWriter(opts.Stderr)); err != nil {
				return err
			}
			if err := logger.SetLevelString(c.String("log-level")); err != nil {
				return fmt.Errorf("%w: %w", ErrUsage, err)
			}
			b := opts.Backend
			if b == nil {
				var err error
				if b, err = chooseBackend(c, opts.Now); err != nil {
					return err
				}
			}
			c.App.Metadata = map[string]interface{}{backendKey: b}
			return nil
		},
		Commands: []*cli.Command{
			predictCommand(),
			reportCommand(opts.Now),
			importanceCommand(),
			batchCommand(),
		},
	}
}

func chooseBackend(c *cli.Context, now func() time.Time) (Backend, error) {
	url := strings.TrimSpace(c.String("url"))
	if url == "" {
		return newLocalBackend(!c.Bool("no-limits"), now), nil
	}
	return newRemoteBackend(url, "", c.Duration("timeout"), defaultPollEvery)
}

func backendFrom(c *cli.Context) Backend {
	return c.App.Metadata[backendKey].(Backend)
}

func featureFlags() []cli.Flag {
	out := make([]cli.Flag, len(houseFlags))
	for i, hf := range houseFlags {
		out[i] = &cli.Float64Flag{Name: hf.name, Usage: hf.usage}
	}
	return out
}

// featuresFrom collects only the flags the user set; the rest stay missing.
func featuresFrom(c *cli.Context) pricing.Features {
	var f pricing.Features
	for _, hf := range houseFlags {
		if c.IsSet(hf.name) {
			f.Set(hf.attr, c.Float64(hf.name))
		}
	}
	return f
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Estimate the price of one house",
		Flags: append(featureFlags(), &cli.BoolFlag{Name: "json", Usage: "print the full breakdown as JSON"}),
		Action: func(c *cli.Context) error {
			p, err := backendFrom(c).Predict(c.Context, featuresFrom(c))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, p)
			}
			return writePrediction(c.App.Writer, p)
		},
	}
}

func reportCommand(now func() time.Time) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Write the text report for one house",
		Flags: append(featureFlags(), &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   `destination file; "-" writes to stdout (default: relatorio_preco_casa_<date>.txt)`,
		}),
		Action: func(c *cli.Context) error {
			report, name, err := backendFrom(c).Report(c.Context, featuresFrom(c))
			if err != nil {
				return err
			}
			out := c.String("output")
			switch {
			case out == stdoutOutput:
				_, err := io.WriteString(c.App.Writer, report)
				return err
			case out == "" && name != "":
				out = name
			case out == "":
				out = pricing.ReportFileName(now())
			}
			if err := os.WriteFile(out, []byte(report), reportFileMode); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			logger.Get().Info(c.Context, "report written", logger.String("path", out))
			_, err = fmt.Fprintln(c.App.ErrWriter, "report written to", out)
			return err
		},
	}
}

func importanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "importance",
		Usage: "Rank the attributes by coefficient magnitude",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "print as JSON"}},
		Action: func(c *cli.Context) error {
			ranking, err := backendFrom(c).Importance(c.Context)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, ranking)
			}
			return writeRanking(c.App.Writer, ranking)
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Price every row of a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    `CSV file with seven values per row; "-" reads stdin`,
				Required: true,
			},
			&cli.StringFlag{
				Name:  "request-id",
				Usage: "idempotency key for the server batch",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: defaultBatchFormat,
				Usage: "output format (table, json)",
			},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			if format != defaultBatchFormat && format != jsonFormat {
				return fmt.Errorf("%w: unknown format %q", ErrUsage, format)
			}
			rows, err := readInput(c.String("input"))
			if err != nil {
				return err
			}
			b := backendFrom(c)
			if rb, ok := b.(*remoteBackend); ok {
				rb.requestID = c.String("request-id")
			}
			ctx := c.Context
			if ctx == nil {
				ctx = context.Background()
			}
			v, err := b.Batch(ctx, rows)
			if err != nil {
				return err
			}
			if format == jsonFormat {
				return writeJSON(c.App.Writer, v)
			}
			return writeValuation(c.App.Writer, v)
		},
	}
}

func readInput(path string) ([]pricing.Features, error) {
	if path == stdoutOutput {
		return ReadFeatures(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()
	return ReadFeatures(f)
}
