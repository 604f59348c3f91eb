// Package extract maps free-text LLM output onto the typed indicator
// schema. The generation response is treated as untrusted input: every
// key checked, every value forced into range, every repair recorded.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/autoesg/analyzer/internal/entity"
	"github.com/autoesg/analyzer/internal/llm"
	"github.com/autoesg/analyzer/internal/rubric"
)

// Degradation reasons recorded on a track result when extraction could not
// run cleanly. The track still completes; the report carries the marker.
const (
	DegradeNoEvidence = "no_evidence"
	DegradeRetrieval  = "retrieval_failed"
	DegradeGeneration = "generation_failed"
	DegradeParse      = "parse_failed"
	DegradeSchema     = "schema_mismatch"
)

type Extractor struct {
	gen    llm.Generator
	logger *slog.Logger
}

func NewExtractor(gen llm.Generator, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gen: gen, logger: logger}
}

// Extract runs the single extraction pass for one track. Exactly one
// generation call is made; generation is never retried here (cost
// control). The returned slice always contains every indicator the rubric
// defines, in rubric order. A non-empty degradations slice means the
// result is incomplete rather than wrong-looking-but-complete.
func (e *Extractor) Extract(ctx context.Context, tr *rubric.TrackRubric, contextText string) ([]entity.Indicator, []string, error) {
	start := time.Now()

	if contextText == "" {
		// No usable evidence: all-null indicators, no generation call,
		// never fabricated values.
		e.logger.Warn("extract.no_evidence", "track", tr.Track)
		return NullIndicators(tr, entity.FlagDefaulted), []string{DegradeNoEvidence}, nil
	}

	instruction := BuildInstruction(tr)
	e.logger.Info("extract.start",
		"track", tr.Track,
		"indicators", len(tr.Indicators()),
		"context_len", len(contextText),
	)

	resp, err := e.gen.Generate(ctx, llm.GenerateRequest{
		Instruction: instruction,
		Input:       "CONTEXT:\n" + contextText,
		ForceJSON:   true,
	})
	if err != nil {
		e.logger.Error("extract.generation_failed",
			"track", tr.Track, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return NullIndicators(tr, entity.FlagDefaulted), []string{DegradeGeneration + ": " + err.Error()}, nil
	}

	indicators, degradations := e.parse(tr, resp)
	e.logger.Info("extract.ok",
		"track", tr.Track,
		"degradations", len(degradations),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return indicators, degradations, nil
}

// parse repairs and types the raw model output. Defensive normalization,
// not silent data loss: missing keys become null with a flag, out-of-range
// values are clamped with a flag.
func (e *Extractor) parse(tr *rubric.TrackRubric, resp string) ([]entity.Indicator, []string) {
	var degradations []string

	cleaned := llm.CleanJSON(resp)
	sanitized, rep, err := llm.SanitizeIndicatorJSON([]byte(cleaned), tr)
	if err != nil {
		e.logger.Error("extract.parse_failed", "track", tr.Track, "error", err)
		return NullIndicators(tr, entity.FlagDefaulted), []string{DegradeParse + ": " + err.Error()}
	}
	if !rep.Empty() {
		e.logger.Warn("extract.sanitize_applied", "track", tr.Track,
			"dropped", rep.DroppedKeys, "nulled", rep.NulledKeys, "coerced_evidence", rep.CoercedEvidence)
	}

	// Validate strictly first; a mismatch is recoverable but recorded.
	schema := llm.BuildIndicatorJSONSchema(tr)
	if err := llm.ValidateJSONAgainstSchema(schema, sanitized); err != nil {
		e.logger.Warn("extract.schema_validation_failed", "track", tr.Track, "error", err)
		degradations = append(degradations, DegradeSchema)
	}

	var m map[string]any
	if err := json.Unmarshal(sanitized, &m); err != nil {
		return NullIndicators(tr, entity.FlagDefaulted), []string{DegradeParse + ": " + err.Error()}
	}

	var out []entity.Indicator
	for _, def := range tr.Indicators() {
		ind := typeIndicator(def, m)
		// A textual null the sanitizer repaired is a defaulted value,
		// recorded on the indicator like any other repair.
		if slices.Contains(rep.NulledKeys, def.Key) && !slices.Contains(ind.Flags, entity.FlagDefaulted) {
			ind.Flags = append(ind.Flags, entity.FlagDefaulted)
		}
		out = append(out, ind)
	}
	return out, degradations
}

// typeIndicator converts one raw value into a typed Indicator.
func typeIndicator(def rubric.IndicatorDef, m map[string]any) entity.Indicator {
	ind := entity.Indicator{
		Key:       def.Key,
		Label:     def.Label,
		MaxPoints: def.MaxPoints,
	}
	if ev, ok := m[def.Key+"_evidence"].(string); ok {
		ind.Evidence = ev
	}

	raw, present := m[def.Key]
	if !present {
		ind.Flags = append(ind.Flags, entity.FlagDefaulted)
		return ind
	}
	if raw == nil {
		return ind // explicit null: insufficient evidence
	}

	switch def.Kind {
	case rubric.KindBoolean:
		switch v := raw.(type) {
		case bool:
			ind.Value = boolPoints(v)
		case float64:
			// some models emit 0/1 for booleans
			if v == 0 || v == 1 {
				ind.Value = boolPoints(v == 1)
			} else {
				ind.Flags = append(ind.Flags, entity.FlagDefaulted)
			}
		default:
			ind.Flags = append(ind.Flags, entity.FlagDefaulted)
		}
	default:
		f, ok := raw.(float64)
		if !ok {
			ind.Flags = append(ind.Flags, entity.FlagDefaulted)
			return ind
		}
		v := int(math.Round(f))
		if v < 0 {
			v = 0
			ind.Flags = append(ind.Flags, entity.FlagClamped)
		} else if v > def.MaxPoints {
			v = def.MaxPoints
			ind.Flags = append(ind.Flags, entity.FlagClamped)
		}
		ind.Value = &v
	}
	return ind
}

func boolPoints(b bool) *int {
	v := 0
	if b {
		v = 1
	}
	return &v
}

// NullIndicators returns every indicator of the track with a null value
// and the given flag, the shape a track degrades to when no evidence or
// no usable generation output exists.
func NullIndicators(tr *rubric.TrackRubric, flag string) []entity.Indicator {
	var out []entity.Indicator
	for _, def := range tr.Indicators() {
		out = append(out, entity.Indicator{
			Key:       def.Key,
			Label:     def.Label,
			MaxPoints: def.MaxPoints,
			Flags:     []string{flag},
		})
	}
	return out
}
