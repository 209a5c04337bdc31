package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/drakos74/clust/infra/config"
	clust "github.com/drakos74/clust/internal"
	"github.com/drakos74/clust/internal/model"
	"github.com/drakos74/clust/internal/storage"
	"github.com/drakos74/clust/internal/storage/file"
	"github.com/drakos74/clust/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const reportTable = "reports"

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "clust",
		Usage:     "cluster the images of two plant categories and classify the held-out ones",
		ArgsUsage: "<kmeans|autoclass>",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "inputfile",
				Aliases: []string{"f"},
				Usage:   "training data file",
			},
			&cli.StringFlag{
				Name:    "testfile",
				Aliases: []string{"t"},
				Usage:   "test data file",
			},
			&cli.StringFlag{
				Name:    "num-clusters",
				Aliases: []string{"k"},
				Usage:   "number of clusters per category, as K0,K1",
			},
			&cli.IntFlag{
				Name:    "num-examples",
				Aliases: []string{"n"},
				Usage:   "maximum number of examples to read from each file",
			},
			&cli.Float64Flag{
				Name:    "epsilon",
				Aliases: []string{"e"},
				Usage:   "autoclass convergence threshold",
			},
			&cli.StringFlag{
				Name:    "sample-size",
				Aliases: []string{"s"},
				Usage:   "average the first S0,S1 examples of every sample of 10 in the training and test data",
			},
			&cli.BoolFlag{
				Name:    "raw-output",
				Aliases: []string{"r"},
				Usage:   "print the objective of every iteration",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "json config file",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "random seed",
			},
			&cli.StringFlag{
				Name:  "rule",
				Usage: "autoclass classification rule (likelihood|prototype)",
			},
			&cli.StringFlag{
				Name:  "report-dir",
				Usage: "directory to store the run reports in",
			},
			&cli.StringFlag{
				Name:  "push-gateway",
				Usage: "prometheus push gateway url",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			cfg, err := newConfig(c)
			if err != nil {
				return err
			}
			return run(cfg, c.App.Writer, c.Bool("debug"))
		},
	}
}

// newConfig builds the config from the config file and overrides it with the given flags.
func newConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.Args().Present() {
		cfg.Algorithm = c.Args().First()
	}
	if c.IsSet("inputfile") {
		cfg.TrainFile = c.String("inputfile")
	}
	if c.IsSet("testfile") {
		cfg.TestFile = c.String("testfile")
	}
	if c.IsSet("num-clusters") {
		k, err := parsePair(c.String("num-clusters"))
		if err != nil {
			return cfg, fmt.Errorf("invalid --num-clusters: %w", err)
		}
		cfg.K = k
	}
	if c.IsSet("num-examples") {
		cfg.NumExamples = c.Int("num-examples")
	}
	if c.IsSet("epsilon") {
		cfg.Epsilon = c.Float64("epsilon")
	}
	if c.IsSet("sample-size") {
		s, err := parsePair(c.String("sample-size"))
		if err != nil {
			return cfg, fmt.Errorf("invalid --sample-size: %w", err)
		}
		cfg.Samples = &s
	}
	if c.IsSet("raw-output") {
		cfg.Raw = c.Bool("raw-output")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Uint64("seed")
	}
	if c.IsSet("rule") {
		cfg.AutoclassRule = c.String("rule")
	}
	if c.IsSet("report-dir") {
		cfg.ReportDir = c.String("report-dir")
	}
	if c.IsSet("push-gateway") {
		cfg.PushGateway = c.String("push-gateway")
	}
	return cfg, cfg.Validate()
}

func run(cfg config.Config, out io.Writer, debug bool) error {
	var train, test model.Dataset
	var g errgroup.Group
	g.Go(func() (err error) {
		train, err = file.LoadImages(cfg.TrainFile, cfg.NumExamples)
		if err != nil {
			return fmt.Errorf("could not load training data: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		test, err = file.LoadImages(cfg.TestFile, cfg.NumExamples)
		if err != nil {
			return fmt.Errorf("could not load test data: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().
		Int("train", train.Size()).
		Int("test", test.Size()).
		Int("dim", train.Dim()).
		Msg("loaded data")

	var store storage.Persistence = storage.NewVoidStorage()
	if cfg.ReportDir != "" {
		store = json.NewJsonBlob(cfg.ReportDir, reportTable, debug)
	}

	engine, err := clust.NewEngine(cfg, clust.WithStorage(store), clust.WithRawOutput(out))
	if err != nil {
		return err
	}
	report, err := engine.Run(train, test)
	if err != nil {
		return err
	}

	for _, fit := range report.Fits {
		fmt.Fprintf(out, "MSE: %f\n", fit.MSE)
	}
	fmt.Fprintf(out, "Performance: %f\n", report.Evaluation.Accuracy)
	return nil
}

func parsePair(s string) ([2]int, error) {
	var pair [2]int
	parts := strings.Split(s, ",")
	if len(parts) != len(pair) {
		return pair, fmt.Errorf("expected two comma separated values but got '%s'", s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return pair, fmt.Errorf("could not parse '%s': %w", p, err)
		}
		pair[i] = v
	}
	return pair, nil
}
