package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	service "github.com/okian/winrate/internal/app"
	"github.com/okian/winrate/internal/config"
	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/internal/wire"
	"github.com/okian/winrate/pkg/logger"
)

// predictFlags holds the predict flag values. Which ones were given is read
// back from the flag set after parsing.
type predictFlags struct {
	champion    string
	role        string
	runePrimary int
	runeSub     int
	queueID     int
	patch       string
	stats       match.Stats
}

func (p *predictFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.champion, match.ColChampion, "", "champion name")
	fs.StringVar(&p.role, match.ColRole, "", "role")
	fs.IntVar(&p.runePrimary, match.ColRunePrimary, 0, "primary rune tree id")
	fs.IntVar(&p.runeSub, match.ColRuneSub, 0, "secondary rune tree id")
	fs.IntVar(&p.queueID, match.ColQueueID, 0, "queue id")
	fs.StringVar(&p.patch, match.ColPatch, "", "patch, e.g. 14.20")
	for _, m := range match.Metrics() {
		fs.Float64Var(&p.stats[m], m.Column(), 0, m.Column())
	}
}

// coreComplete reports whether every field the full path requires was given.
func coreComplete(given map[string]bool) bool {
	for _, name := range []string{match.ColChampion, match.ColRole, match.ColRunePrimary, match.ColRuneSub} {
		if !given[name] {
			return false
		}
	}
	for _, m := range match.Metrics() {
		if !given[m.Column()] {
			return false
		}
	}
	return true
}

func (p *predictFlags) vector() features.Vector {
	return features.Vector{
		Champion:    p.champion,
		Role:        match.Role(p.role),
		RunePrimary: p.runePrimary,
		RuneSub:     p.runeSub,
		QueueID:     p.queueID,
		Patch:       p.patch,
		Stats:       p.stats,
	}
}

func (p *predictFlags) overrides(given map[string]bool) features.Overrides {
	var o features.Overrides
	if given[match.ColRole] && strings.TrimSpace(p.role) != "" {
		o.Role = &p.role
	}
	if given[match.ColRunePrimary] {
		o.RunePrimary = &p.runePrimary
	}
	if given[match.ColRuneSub] {
		o.RuneSub = &p.runeSub
	}
	if given[match.ColQueueID] {
		o.QueueID = &p.queueID
	}
	if given[match.ColPatch] {
		o.Patch = &p.patch
	}
	for _, m := range match.Metrics() {
		if given[m.Column()] {
			o.SetStat(m, p.stats[m])
		}
	}
	return o
}

func runPredict(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("predict", cfg, stdout)
	var pf predictFlags
	pf.register(fs)
	if err := parse(fs, args); err != nil {
		return ignoreHelp(err)
	}
	given := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	pf.champion = strings.TrimSpace(pf.champion)
	if pf.champion == "" {
		return fmt.Errorf("%w: -champion is required", ErrUsage)
	}

	svc, err := wire.NewService(cfg, logger.Named("service"))
	if err != nil {
		return err
	}

	if coreComplete(given) {
		pred, err := svc.PredictFull(ctx, pf.vector())
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "[PREDICT] prob_win=%.1f%%  pred_win=%d\n", pred.Probability*100, winBit(pred))
		return nil
	}

	pred, err := svc.PredictPartial(ctx, pf.champion, pf.overrides(given))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "[PREDICT*] prob_win=%.1f%%  pred_win=%d  (fill=%s)\n",
		pred.Probability*100, winBit(pred), pred.FallbackSource)
	return nil
}

func winBit(p service.Prediction) int {
	if p.PredictedWin {
		return 1
	}
	return 0
}
