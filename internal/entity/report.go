package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/autoesg/analyzer/constants"
)

// CategoryScore is the per-category sum against its declared ceiling.
type CategoryScore struct {
	Name    string `json:"name"`
	Raw     int    `json:"raw"`
	Ceiling int    `json:"ceiling"`
}

// TrackResult is the outcome of one track run: every indicator plus the
// deterministic sums computed from them.
type TrackResult struct {
	Track         constants.Track `json:"track"`
	RubricVersion string          `json:"rubric_version"`
	Categories    []CategoryScore `json:"categories"`
	Indicators    []Indicator     `json:"indicators"`
	RawTotal      int             `json:"raw_total"`
	Ceiling       int             `json:"ceiling"`
	Normalized    float64         `json:"normalized"`
	Incomplete    bool            `json:"incomplete"`
	Degradations  []string        `json:"degradations,omitempty"`
}

// ScoreReport is the terminal, write-once artifact of an analysis run.
// Either track may be absent; Partial is set when the overall score was
// computed from fewer tracks than both, or when a present track degraded.
type ScoreReport struct {
	RunID          uuid.UUID    `json:"run_id"`
	RubricVersion  string       `json:"rubric_version"`
	Financial      *TrackResult `json:"financial,omitempty"`
	Sustainability *TrackResult `json:"sustainability,omitempty"`
	Overall        float64      `json:"overall"`
	Partial        bool         `json:"partial"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Tracks returns the present track results in display order.
func (r *ScoreReport) Tracks() []*TrackResult {
	var out []*TrackResult
	if r.Financial != nil {
		out = append(out, r.Financial)
	}
	if r.Sustainability != nil {
		out = append(out, r.Sustainability)
	}
	return out
}
