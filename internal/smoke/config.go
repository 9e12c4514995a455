package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Requests  int           // Number of partial predictions to submit
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	Train     bool          // POST /train before predicting
	Seed      int64         // Seed for request generation
	Champions []string      // Champions to draw from
}

// Request is a partial prediction request.
type Request struct {
	Champion    string   `json:"champion"`
	Role        *string  `json:"role,omitempty"`
	RunePrimary *int     `json:"runePrimary,omitempty"`
	Kills       *float64 `json:"kills,omitempty"`
	Deaths      *float64 `json:"deaths,omitempty"`
	GoldPerMin  *float64 `json:"goldPerMin,omitempty"`
}

// Response is the subset of a prediction the run verifies.
type Response struct {
	Probability    float64 `json:"probability"`
	PredictedWin   bool    `json:"predicted_win"`
	FallbackSource string  `json:"fallback_source"`
}

// Stats holds run statistics.
type Stats struct {
	Generated    int
	Submitted    int
	Successful   int
	Failed       int
	Inconsistent int
	Trained      bool
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// RequestsPerSecond returns the submission rate over the whole run.
func (s Stats) RequestsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}
