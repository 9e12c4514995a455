// Package features defines the model's feature contract: the single-row
// feature vector, its categorical/numeric split, and how caller overrides are
// merged over computed defaults.
package features

import (
	"strconv"

	"github.com/okian/winrate/internal/domain/match"
)

// CategoricalColumns are always one-hot encoded, in this order.
var CategoricalColumns = []string{
	match.ColChampion,
	match.ColRole,
	match.ColRunePrimary,
	match.ColRuneSub,
	match.ColQueueID,
	match.ColPatch,
}

// Vector is one fully specified model input row.
type Vector struct {
	Champion    string      `json:"champion"`
	Role        match.Role  `json:"role"`
	RunePrimary int         `json:"runePrimary"`
	RuneSub     int         `json:"runeSub"`
	QueueID     int         `json:"queueId"`
	Patch       string      `json:"patch"`
	Stats       match.Stats `json:"stats"`
}

// FromRecord projects a record onto the feature vector (dropping the label).
func FromRecord(r match.Record) Vector {
	return Vector{
		Champion:    r.Champion,
		Role:        r.Role,
		RunePrimary: r.RunePrimary,
		RuneSub:     r.RuneSub,
		QueueID:     r.QueueID,
		Patch:       r.Patch,
		Stats:       r.Stats,
	}
}

// Categorical returns the categorical values in CategoricalColumns order.
func (v Vector) Categorical() []string {
	return []string{
		v.Champion,
		string(v.Role),
		strconv.Itoa(v.RunePrimary),
		strconv.Itoa(v.RuneSub),
		strconv.Itoa(v.QueueID),
		v.Patch,
	}
}

// Numeric returns the requested metrics in the given order.
func (v Vector) Numeric(metrics []match.Metric) []float64 {
	out := make([]float64, len(metrics))
	for i, m := range metrics {
		out[i] = v.Stats[m]
	}
	return out
}

// Normalized returns v with its role normalized.
func (v Vector) Normalized() Vector {
	v.Role = match.NormalizeRole(string(v.Role))
	return v
}

// Overrides are the caller-supplied values of a partial request. A nil field
// means "use the default".
type Overrides struct {
	Role        *string
	RunePrimary *int
	RuneSub     *int
	QueueID     *int
	Patch       *string
	Stats       [match.NumMetrics]*float64
}

// SetStat sets the override for metric m.
func (o *Overrides) SetStat(m match.Metric, v float64) {
	o.Stats[m] = &v
}

// Complete reports whether every field is overridden, so that no default
// would be consulted.
func (o Overrides) Complete() bool {
	if o.Role == nil || o.RunePrimary == nil || o.RuneSub == nil || o.QueueID == nil || o.Patch == nil {
		return false
	}
	for _, s := range o.Stats {
		if s == nil {
			return false
		}
	}
	return true
}

// Apply merges o over base field by field and sets the champion. Supplied
// values always win; a supplied role is normalized first.
func (o Overrides) Apply(champion string, base Vector) Vector {
	v := base
	v.Champion = champion
	if o.Role != nil {
		v.Role = match.NormalizeRole(*o.Role)
	}
	if o.RunePrimary != nil {
		v.RunePrimary = *o.RunePrimary
	}
	if o.RuneSub != nil {
		v.RuneSub = *o.RuneSub
	}
	if o.QueueID != nil {
		v.QueueID = *o.QueueID
	}
	if o.Patch != nil {
		v.Patch = *o.Patch
	}
	for m, s := range o.Stats {
		if s != nil {
			v.Stats[m] = *s
		}
	}
	return v
}

// OverridesFrom returns overrides that pin every field of v.
func OverridesFrom(v Vector) Overrides {
	role := string(v.Role)
	o := Overrides{
		Role:        &role,
		RunePrimary: &v.RunePrimary,
		RuneSub:     &v.RuneSub,
		QueueID:     &v.QueueID,
		Patch:       &v.Patch,
	}
	for _, m := range match.Metrics() {
		o.SetStat(m, v.Stats[m])
	}
	return o
}
