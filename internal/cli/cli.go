// Package cli implements the winrate command line: building the dataset,
// training, predictions, and a smoke run against a live server.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/okian/winrate/internal/adapters/riot"
	"github.com/okian/winrate/internal/config"
	"github.com/okian/winrate/internal/domain/defaults"
	"github.com/okian/winrate/internal/smoke"
	"github.com/okian/winrate/internal/wire"
	"github.com/okian/winrate/pkg/logger"
)

// Run executes the subcommand in args against cfg and writes its report to
// stdout. cfg is not modified; flags override a copy.
func Run(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		ShowHelp(stdout)
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	c := *cfg
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "train":
		return runTrain(ctx, &c, rest, stdout)
	case "predict":
		return runPredict(ctx, &c, rest, stdout)
	case "defaults":
		return runDefaults(ctx, &c, rest, stdout)
	case "build":
		return runBuild(ctx, &c, rest, stdout)
	case "smoke":
		return runSmoke(ctx, &c, rest, stdout)
	case "help", "-h", "-help", "--help":
		ShowHelp(stdout)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

// newFlagSet returns a flag set carrying the --csv and --model flags shared
// by every subcommand.
func newFlagSet(name string, cfg *config.Config, stdout io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.StringVar(&cfg.DatasetPath, "csv", cfg.DatasetPath, "dataset CSV path")
	fs.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "model artifact path")
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %s", ErrUsage, strings.Join(fs.Args(), " "))
	}
	return nil
}

func runTrain(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("train", cfg, stdout)
	if err := parse(fs, args); err != nil {
		return ignoreHelp(err)
	}
	svc, err := wire.NewService(cfg, logger.Named("service"))
	if err != nil {
		return err
	}
	rep, err := svc.Train(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "[TRAIN] n_train=%d  n_test=%d\n", rep.TrainCount, rep.TestCount)
	fmt.Fprintf(stdout, "  - acc: %.3f\n", rep.Accuracy)
	if rep.ROCAUC != nil {
		fmt.Fprintf(stdout, "  - roc_auc: %.3f\n", *rep.ROCAUC)
	} else {
		fmt.Fprintln(stdout, "  - roc_auc: unavailable")
	}
	fmt.Fprintf(stdout, "  - f1: %.3f\n", rep.F1)
	fmt.Fprintf(stdout, "  - model: %s\n", rep.Model)
	return nil
}

func runDefaults(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("defaults", cfg, stdout)
	champion := fs.String("champion", "", "champion whose averages to show; global when empty or unknown")
	if err := parse(fs, args); err != nil {
		return ignoreHelp(err)
	}
	svc, err := wire.NewService(cfg, logger.Named("service"))
	if err != nil {
		return err
	}

	var d defaults.Defaults
	if c := strings.TrimSpace(*champion); c != "" {
		d, err = svc.Defaults(ctx, c)
	} else {
		d, err = svc.GlobalDefaults(ctx)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func runBuild(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("build", cfg, stdout)
	fs.StringVar(&cfg.RawPath, "raw", cfg.RawPath, "raw match-v5 JSON lines")
	fs.StringVar(&cfg.PUUID, "puuid", cfg.PUUID, "player whose rows to extract")
	if err := parse(fs, args); err != nil {
		return ignoreHelp(err)
	}

	b := riot.NewBuilder(cfg.PUUID, riot.WithLogger(logger.Named("builder")))
	sum, err := b.BuildFile(ctx, cfg.RawPath, cfg.DatasetPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "[BUILD] written=%d  duplicates=%d  skipped=%d  -> %s\n",
		sum.Written, sum.Duplicates, sum.Skipped, cfg.DatasetPath)
	return nil
}

func runSmoke(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("smoke", flag.ContinueOnError)
	fs.SetOutput(stdout)
	sc := smoke.Config{}
	fs.StringVar(&sc.BaseURL, "url", localURL(cfg.Addr), "base URL of the running server")
	fs.IntVar(&sc.Requests, "requests", 200, "partial predictions to submit")
	fs.IntVar(&sc.Workers, "workers", runtime.NumCPU(), "concurrent workers")
	fs.DurationVar(&sc.Timeout, "timeout", 30*time.Second, "per-request timeout")
	fs.BoolVar(&sc.Train, "train", false, "POST /train before predicting")
	fs.Int64Var(&sc.Seed, "seed", cfg.RandomSeed, "request generation seed")
	if err := parse(fs, args); err != nil {
		return ignoreHelp(err)
	}

	stats, err := smoke.Run(ctx, &sc)
	if errors.Is(err, smoke.ErrInvalidConfig) {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	fmt.Fprintf(stdout, "[SMOKE] submitted=%d  ok=%d  failed=%d  inconsistent=%d  rps=%.1f\n",
		stats.Submitted, stats.Successful, stats.Failed, stats.Inconsistent, stats.RequestsPerSecond())
	return err
}

// localURL turns a listen address like ":9080" into a loopback base URL.
func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func ignoreHelp(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// ShowHelp prints usage information for the winrate command.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `winrate
=======

Champion win-probability engine over a player's own match history.

Usage:
  winrate <command> [options]

Commands:
  build     Build the dataset CSV from raw match-v5 JSON lines
  train     Train, evaluate and store the model
  predict   Predict the win probability of a game profile
  defaults  Show the values partial predictions fill in
  smoke     Send concurrent predictions to a running server and check them
  help      Show this help message

Common options:
  -csv string     dataset CSV path (default data/my_matches_ml.csv)
  -model string   model artifact path (default data/my_win_model.json)

build options:
  -raw string     raw match-v5 JSON lines (default my_matches_raw.jsonl)
  -puuid string   player whose rows to extract

predict options:
  -champion string   required
  -role string       TOP, JUNGLE, MID, ADC, SUPPORT (Riot names accepted)
  -runePrimary int   -runeSub int
  -kills -deaths -assists -goldPerMin -csPerMin -dmgPerMin -visionScore -xpPerMin float
  -queueId int       -patch string

  With champion, role, both runes and all eight metrics the model scores the
  input as given. Otherwise missing values come from the champion's averages,
  or the global defaults when the champion has no matches.

smoke options:
  -url string        server base URL (default http://localhost:9080)
  -requests int      -workers int    -timeout duration
  -train             train on the server first
  -seed int          request generation seed

Configuration is read from WINRATE_* environment variables (a .env file is
loaded first) and the YAML file named by WINRATE_CONFIG.

Examples:
  winrate build -puuid <puuid> -raw my_matches_raw.jsonl
  winrate train
  winrate predict -champion Jinx -kills 8 -deaths 3
  winrate smoke -url http://localhost:9080 -train -requests 500
`)
}
