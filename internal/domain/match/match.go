// Package match holds the normalized match-performance record and the rules
// that turn raw tabular rows into it.
package match

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Column names of the dataset header.
const (
	ColChampion    = "champion"
	ColRole        = "role"
	ColRunePrimary = "runePrimary"
	ColRuneSub     = "runeSub"
	ColWin         = "win"
	ColGameVersion = "gameVersion"
	ColQueueID     = "queueId"
	// ColPatch is derived from ColGameVersion; it never appears in the source file.
	ColPatch = "patch"
)

// MandatoryColumns must be present in every dataset header.
var MandatoryColumns = []string{ColChampion, ColRole, ColRunePrimary, ColRuneSub, ColWin}

// Role is a normalized lane position.
type Role string

// Known roles after normalization. Other non-empty values pass through upper-cased.
const (
	RoleTop     Role = "TOP"
	RoleJungle  Role = "JUNGLE"
	RoleMid     Role = "MID"
	RoleADC     Role = "ADC"
	RoleSupport Role = "SUPPORT"
	RoleUnknown Role = "UNKNOWN"
)

// NormalizeRole maps Riot position names onto the role vocabulary.
func NormalizeRole(s string) Role {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "BOTTOM", "BOT":
		return RoleADC
	case "UTILITY":
		return RoleSupport
	case "MIDDLE":
		return RoleMid
	case "":
		return RoleUnknown
	}
	return Role(s)
}

// ToPatch truncates a game version like "14.20.123.4567" to "14.20".
// Versions without a dot yield "".
func ToPatch(version string) string {
	if !strings.Contains(version, ".") {
		return ""
	}
	p := strings.Split(version, ".")
	return p[0] + "." + p[1]
}

// Metric indexes one of the numeric performance columns.
type Metric int

// Numeric metrics in column order.
const (
	Kills Metric = iota
	Deaths
	Assists
	GoldPerMin
	CSPerMin
	DmgPerMin
	VisionScore
	XPPerMin

	NumMetrics = int(XPPerMin) + 1
)

var metricColumns = [NumMetrics]string{
	"kills", "deaths", "assists",
	"goldPerMin", "csPerMin", "dmgPerMin", "visionScore", "xpPerMin",
}

// Column returns the dataset column name of m.
func (m Metric) Column() string { return metricColumns[m] }

// String implements fmt.Stringer.
func (m Metric) String() string { return m.Column() }

// MarshalText encodes m as its column name.
func (m Metric) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= NumMetrics {
		return nil, fmt.Errorf("%w: metric %d", ErrInvalidValue, int(m))
	}
	return []byte(m.Column()), nil
}

// UnmarshalText decodes a column name.
func (m *Metric) UnmarshalText(b []byte) error {
	v, ok := MetricByColumn(string(b))
	if !ok {
		return fmt.Errorf("%w: unknown metric %q", ErrInvalidValue, b)
	}
	*m = v
	return nil
}

// Metrics returns every metric in column order.
func Metrics() []Metric {
	out := make([]Metric, NumMetrics)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

// MetricByColumn resolves a column name to its metric.
func MetricByColumn(col string) (Metric, bool) {
	for i, c := range metricColumns {
		if c == col {
			return Metric(i), true
		}
	}
	return 0, false
}

// Stats holds the eight numeric metrics indexed by Metric.
type Stats [NumMetrics]float64

// Check reports the first metric that is NaN or infinite.
func (s Stats) Check() error {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidValue, Metric(i))
		}
	}
	return nil
}

// Record is one normalized player-match observation.
type Record struct {
	Champion    string
	Role        Role
	RunePrimary int
	RuneSub     int
	QueueID     int
	Patch       string
	Win         bool
	Stats       Stats
}

// Dataset is a normalized record set together with the source columns it had.
type Dataset struct {
	Records []Record
	columns map[string]bool
}

// NewDataset builds a Dataset. The patch column is present whenever
// gameVersion is.
func NewDataset(records []Record, columns []string) *Dataset {
	d := &Dataset{Records: records, columns: make(map[string]bool, len(columns))}
	for _, c := range columns {
		d.columns[c] = true
	}
	if d.columns[ColGameVersion] {
		d.columns[ColPatch] = true
	}
	return d
}

// Has reports whether the source had column col.
func (d *Dataset) Has(col string) bool {
	if d == nil {
		return false
	}
	return d.columns[col]
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// PresentMetrics returns the metrics whose columns exist, in column order.
func (d *Dataset) PresentMetrics() []Metric {
	var out []Metric
	for _, m := range Metrics() {
		if d.Has(m.Column()) {
			out = append(out, m)
		}
	}
	return out
}

// Filter returns the records for which keep returns true, sharing the column set.
func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	sub := &Dataset{columns: d.columns}
	for _, r := range d.Records {
		if keep(r) {
			sub.Records = append(sub.Records, r)
		}
	}
	return sub
}

// Labels returns the win labels as 0/1 ints.
func (d *Dataset) Labels() []int {
	out := make([]int, len(d.Records))
	for i, r := range d.Records {
		if r.Win {
			out[i] = 1
		}
	}
	return out
}

// MarshalJSON encodes the metrics as an object keyed by column name.
func (s Stats) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumMetrics)
	for i, v := range s {
		m[metricColumns[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by column name. Unknown keys are ignored.
func (s *Stats) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for col, v := range m {
		if metric, ok := MetricByColumn(col); ok {
			s[metric] = v
		}
	}
	return nil
}
