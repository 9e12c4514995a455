package smoke

import "math/rand"

// Generation ranges, loosely matching solo queue games.
const (
	maxKills       = 15
	maxDeaths      = 12
	minGoldPerMin  = 250
	goldPerMinSpan = 300
)

var (
	roles = []string{"TOP", "JUNGLE", "MIDDLE", "BOTTOM", "UTILITY", ""}
	runes = []int{8000, 8100, 8200, 8300, 8400}
)

// generateRequests returns n partial requests. Each optional field is set
// with probability one half, so both fill sources and sparse overrides occur.
func generateRequests(cfg *Config) []Request {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible load, not security
	out := make([]Request, cfg.Requests)
	for i := range out {
		r := Request{Champion: cfg.Champions[rng.Intn(len(cfg.Champions))]}
		if rng.Intn(2) == 0 {
			role := roles[rng.Intn(len(roles))]
			r.Role = &role
		}
		if rng.Intn(2) == 0 {
			rp := runes[rng.Intn(len(runes))]
			r.RunePrimary = &rp
		}
		if rng.Intn(2) == 0 {
			k := float64(rng.Intn(maxKills + 1))
			r.Kills = &k
		}
		if rng.Intn(2) == 0 {
			d := float64(rng.Intn(maxDeaths + 1))
			r.Deaths = &d
		}
		if rng.Intn(2) == 0 {
			g := minGoldPerMin + rng.Float64()*goldPerMinSpan
			r.GoldPerMin = &g
		}
		out[i] = r
	}
	return out
}

// verify checks the invariants every prediction must hold.
func verify(r Response) bool {
	if r.Probability < 0 || r.Probability > 1 {
		return false
	}
	if r.PredictedWin != (r.Probability >= 0.5) {
		return false
	}
	switch r.FallbackSource {
	case "champion_average", "global_defaults":
		return true
	}
	return false
}

