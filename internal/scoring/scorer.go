// Package scoring turns extracted indicators into the deterministic score
// report. Everything here is a pure function: no I/O, no randomness, no
// hidden state, so scoring the same indicator set twice yields the same
// report.
package scoring

import (
	"fmt"
	"math"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/common"
	"github.com/autoesg/analyzer/internal/entity"
	"github.com/autoesg/analyzer/internal/rubric"
)

// RoundHalfUp1 rounds to one decimal place, halves up (7.45 -> 7.5).
func RoundHalfUp1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// ScoreTrack computes category sums, the raw track total, and the
// normalized score for one track. Null indicators contribute 0 to the
// sums but keep their null value in the result for the evidence trail,
// so "disclosed and bad" stays distinguishable from "undisclosed".
func ScoreTrack(tr *rubric.TrackRubric, rubricVersion string, indicators []entity.Indicator, degradations []string) (*entity.TrackResult, error) {
	byKey := make(map[string]entity.Indicator, len(indicators))
	for _, ind := range indicators {
		byKey[ind.Key] = ind
	}

	var categories []entity.CategoryScore
	rawTotal := 0
	for _, cat := range tr.Categories {
		sum := 0
		for _, def := range cat.Indicators {
			ind, ok := byKey[def.Key]
			if !ok {
				return nil, common.NewAppError("SCORE_MISMATCH",
					fmt.Sprintf("indicator %q missing from extraction result", def.Key),
					common.ErrInvalidInput)
			}
			if p := ind.Points(); p < 0 || p > def.MaxPoints {
				return nil, common.NewAppError("SCORE_MISMATCH",
					fmt.Sprintf("indicator %q carries %d points, max is %d", def.Key, p, def.MaxPoints),
					common.ErrInvalidInput)
			}
			sum += ind.Points()
		}
		// null indicators never reduce the ceiling; it is a rubric constant
		categories = append(categories, entity.CategoryScore{
			Name:    cat.Name,
			Raw:     sum,
			Ceiling: cat.Ceiling,
		})
		rawTotal += sum
	}

	return &entity.TrackResult{
		Track:         tr.Track,
		RubricVersion: rubricVersion,
		Categories:    categories,
		Indicators:    indicators,
		RawTotal:      rawTotal,
		Ceiling:       tr.Ceiling,
		Normalized:    Normalize(rawTotal, tr.Ceiling),
		Incomplete:    len(degradations) > 0,
		Degradations:  degradations,
	}, nil
}

// Normalize maps a raw total onto the common 0-10 scale:
// clamp(raw/ceiling*10, 0, 10), rounded half-up to one decimal.
func Normalize(raw, ceiling int) float64 {
	if ceiling <= 0 {
		return 0
	}
	n := float64(raw) / float64(ceiling) * constants.NormalizedCeiling
	if n < 0 {
		n = 0
	}
	if n > constants.NormalizedCeiling {
		n = constants.NormalizedCeiling
	}
	return RoundHalfUp1(n)
}

// Combine builds the score report from whichever tracks ran. At least one
// is required; a report from fewer than both tracks, or containing a
// degraded track, is marked partial. Run identity (ID, timestamp) is
// stamped by the caller so Combine stays a pure function.
func Combine(fin, sus *entity.TrackResult) (*entity.ScoreReport, error) {
	if fin == nil && sus == nil {
		return nil, common.NewAppError("NO_TRACKS", "combine requires at least one track result", common.ErrInvalidInput)
	}
	version := ""
	var sum float64
	var n int
	partial := fin == nil || sus == nil
	for _, tr := range []*entity.TrackResult{fin, sus} {
		if tr == nil {
			continue
		}
		if version == "" {
			version = tr.RubricVersion
		} else if tr.RubricVersion != version {
			return nil, common.NewAppError("RUBRIC_MISMATCH",
				fmt.Sprintf("cannot combine rubric versions %q and %q", version, tr.RubricVersion),
				common.ErrInvalidInput)
		}
		sum += tr.Normalized
		n++
		if tr.Incomplete {
			partial = true
		}
	}

	return &entity.ScoreReport{
		RubricVersion:  version,
		Financial:      fin,
		Sustainability: sus,
		Overall:        sum / float64(n),
		Partial:        partial,
	}, nil
}
