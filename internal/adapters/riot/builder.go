package riot

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/okian/winrate/pkg/logger"
	"github.com/okian/winrate/pkg/metrics"
)

// Default builder configuration constants.
const (
	defaultExpectedMatches = 100_000
	defaultFalsePositive   = 0.001
	utf8BOM                = "\ufeff"
)

// Builder outcomes, also used as metric labels.
const (
	OutcomeWritten   = "written"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

// Header is the dataset column layout written by the builder.
var Header = []string{
	"matchId", "gameDuration", "champion", "role", "win",
	"kills", "deaths", "assists", "kda", "killParticipation",
	"gold", "goldPerMin", "cs", "csPerMin", "dmg", "dmgPerMin",
	"damageTaken", "damageMitigated",
	"visionScore", "wardsPlaced", "wardsKilled", "champLevel", "xp", "xpPerMin",
	"gameVersion", "queueId", "runePrimary", "runeSub",
	"item0", "item1", "item2", "item3", "item4", "item5", "item6",
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithExpectedMatches sizes the duplicate filter.
func WithExpectedMatches(n uint) Option {
	return func(b *Builder) {
		if n > 0 {
			b.expected = n
		}
	}
}

// WithFalsePositiveRate sets the duplicate filter's false-positive rate.
// Rates outside (0, 1) are ignored.
func WithFalsePositiveRate(p float64) Option {
	return func(b *Builder) {
		if p > 0 && p < 1 {
			b.falsePositive = p
		}
	}
}

// WithLogger sets the builder logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// Builder turns match-v5 JSON lines into dataset rows for one player.
type Builder struct {
	puuid         string
	expected      uint
	falsePositive float64
	log           logger.Logger
}

// Summary counts what happened to each raw match.
type Summary struct {
	Written    int `json:"written"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// NewBuilder returns a builder that keeps the participant with puuid.
func NewBuilder(puuid string, opts ...Option) *Builder {
	b := &Builder{
		puuid:         puuid,
		expected:      defaultExpectedMatches,
		falsePositive: defaultFalsePositive,
		log:           logger.Get(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build reads JSON match payloads from r and writes a header plus one row per
// match to w. Matches without the player and repeated match ids are skipped;
// payloads without a match id are always written.
func (b *Builder) Build(ctx context.Context, r io.Reader, w io.Writer) (Summary, error) {
	var sum Summary
	if b.puuid == "" {
		return sum, ErrMissingPUUID
	}

	// The filter answers most lookups; a hit is confirmed against the exact set.
	seen := bloom.NewWithEstimates(b.expected, b.falsePositive)
	written := make(map[string]struct{})
	dec := json.NewDecoder(r)
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return sum, fmt.Errorf("write dataset: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return sum, fmt.Errorf("write dataset header: %w", err)
	}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		var m MatchResponse
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return sum, fmt.Errorf("%w: record %d: %v", ErrMalformedMatch, n, err)
		}

		id := m.Metadata.MatchID
		if id != "" && seen.TestString(id) {
			if _, dup := written[id]; dup {
				sum.Duplicates++
				metrics.RecordMatchBuilt(OutcomeDuplicate)
				continue
			}
			b.log.Debug(ctx, "match id collided in filter", logger.String("matchId", id))
		}
		me, ok := m.Participant(b.puuid)
		if !ok {
			sum.Skipped++
			metrics.RecordMatchBuilt(OutcomeSkipped)
			continue
		}
		if id != "" {
			seen.AddString(id)
			written[id] = struct{}{}
		}

		if err := cw.Write(Row(m, me)); err != nil {
			return sum, fmt.Errorf("write dataset row: %w", err)
		}
		sum.Written++
		metrics.RecordMatchBuilt(OutcomeWritten)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return sum, fmt.Errorf("flush dataset: %w", err)
	}
	b.log.Info(ctx, "dataset built",
		logger.Int("written", sum.Written),
		logger.Int("duplicates", sum.Duplicates),
		logger.Int("skipped", sum.Skipped))
	return sum, nil
}

// BuildFile runs Build from the JSONL file at in to the CSV file at out,
// creating out's directory. A missing input yields ErrRawNotFound.
func (b *Builder) BuildFile(ctx context.Context, in, out string) (Summary, error) {
	src, err := os.Open(in)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Summary{}, fmt.Errorf("%w: %s", ErrRawNotFound, in)
		}
		return Summary{}, fmt.Errorf("open raw matches: %w", err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return Summary{}, fmt.Errorf("create dataset dir: %w", err)
	}
	dst, err := os.Create(out)
	if err != nil {
		return Summary{}, fmt.Errorf("create dataset: %w", err)
	}
	sum, err := b.Build(ctx, src, dst)
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close dataset: %w", cerr)
	}
	return sum, err
}

// Row flattens participant p of match m in Header order.
func Row(m MatchResponse, p MatchParticipant) []string {
	dur := m.Info.GameDuration
	cs := p.TotalMinionsKilled + p.NeutralMinionsKilled
	role := p.TeamPosition
	if role == "" {
		role = p.Role
	}
	win := "0"
	if p.Win {
		win = "1"
	}

	row := []string{
		m.Metadata.MatchID,
		itoa(dur),
		p.ChampionName,
		strings.ToUpper(role),
		win,
		itoa(p.Kills),
		itoa(p.Deaths),
		itoa(p.Assists),
		ftoa(float64(p.Kills+p.Assists) / float64(max(p.Deaths, 1))),
		ftoa(p.Challenges.KillParticipation),
		itoa(p.GoldEarned),
		ftoa(PerMinute(float64(p.GoldEarned), dur)),
		itoa(cs),
		ftoa(PerMinute(float64(cs), dur)),
		itoa(p.TotalDamageDealtToChampions),
		ftoa(PerMinute(float64(p.TotalDamageDealtToChampions), dur)),
		itoa(p.TotalDamageTaken),
		itoa(p.DamageSelfMitigated),
		itoa(p.VisionScore),
		itoa(p.WardsPlaced),
		itoa(p.WardsKilled),
		itoa(p.ChampLevel),
		itoa(p.ChampExperience),
		ftoa(PerMinute(float64(p.ChampExperience), dur)),
		m.Info.GameVersion,
		itoa(m.Info.QueueID),
		style(p.Perks, 0),
		style(p.Perks, 1),
	}
	for _, it := range p.Items() {
		row = append(row, itoa(it))
	}
	return row
}

// PerMinute divides value by the game length in minutes, guarding zero-length games.
func PerMinute(value float64, durationSec int) float64 {
	return value / math.Max(float64(durationSec)/60.0, 1e-9)
}

// style returns the rune tree at i, or "" when the payload has none.
func style(p Perks, i int) string {
	if i >= len(p.Styles) {
		return ""
	}
	return itoa(p.Styles[i].Style)
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
