// Package pipeline wires indexing, retrieval, extraction, and scoring into
// the end-to-end analysis flow.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/common"
	"github.com/autoesg/analyzer/internal/entity"
	"github.com/autoesg/analyzer/internal/extract"
	"github.com/autoesg/analyzer/internal/index"
	"github.com/autoesg/analyzer/internal/report"
	"github.com/autoesg/analyzer/internal/retrieval"
	"github.com/autoesg/analyzer/internal/rubric"
	"github.com/autoesg/analyzer/internal/scoring"
)

// Analyzer runs the full flow for one or both tracks: build an index over
// the document, consolidate retrieved context, extract indicators in a
// single generation pass, and score them against the rubric. Tracks share
// no mutable state, so they run concurrently.
type Analyzer struct {
	rubric           *rubric.Rubric
	builder          index.Builder
	consolidator     *retrieval.Consolidator
	extractor        *extract.Extractor
	summarizer       *report.Summarizer
	retrievalTimeout time.Duration
	logger           *slog.Logger
}

func NewAnalyzer(
	rub *rubric.Rubric,
	builder index.Builder,
	consolidator *retrieval.Consolidator,
	extractor *extract.Extractor,
	summarizer *report.Summarizer,
	retrievalTimeout time.Duration,
	logger *slog.Logger,
) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		rubric:           rub,
		builder:          builder,
		consolidator:     consolidator,
		extractor:        extractor,
		summarizer:       summarizer,
		retrievalTimeout: retrievalTimeout,
		logger:           logger,
	}
}

// RunFinancial analyzes the financial report text.
func (a *Analyzer) RunFinancial(ctx context.Context, text string) (*entity.TrackResult, error) {
	return a.runTrack(ctx, constants.TrackFinancial, text)
}

// RunSustainability analyzes the sustainability report text.
func (a *Analyzer) RunSustainability(ctx context.Context, text string) (*entity.TrackResult, error) {
	return a.runTrack(ctx, constants.TrackSustainability, text)
}

// Analyze runs both tracks concurrently over their respective documents
// and combines the results into a stamped score report. An empty document
// skips its track; the combined report is then partial. Tracks are
// isolated: a failing track degrades to an incomplete result and never
// cancels or discards its sibling, so no shared cancellation context.
func (a *Analyzer) Analyze(ctx context.Context, financialText, sustainabilityText string) (*entity.ScoreReport, error) {
	var fin, sus *entity.TrackResult

	var g errgroup.Group
	if financialText != "" {
		g.Go(func() error {
			tr, err := a.RunFinancial(ctx, financialText)
			if err != nil {
				return err
			}
			fin = tr
			return nil
		})
	}
	if sustainabilityText != "" {
		g.Go(func() error {
			tr, err := a.RunSustainability(ctx, sustainabilityText)
			if err != nil {
				return err
			}
			sus = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a.Combine(fin, sus)
}

// Combine merges the track results and stamps run identity onto the
// report.
func (a *Analyzer) Combine(fin, sus *entity.TrackResult) (*entity.ScoreReport, error) {
	r, err := scoring.Combine(fin, sus)
	if err != nil {
		return nil, err
	}
	r.RunID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	a.logger.Info("pipeline.combine.ok",
		"run_id", r.RunID,
		"overall", r.Overall,
		"partial", r.Partial,
	)
	return r, nil
}

// RenderSummary produces the investor narrative for a finished report.
// A failure here never invalidates the scores; callers degrade to a
// report without narrative.
func (a *Analyzer) RenderSummary(ctx context.Context, r *entity.ScoreReport) (string, error) {
	return a.summarizer.Summarize(ctx, r)
}

func (a *Analyzer) runTrack(ctx context.Context, track constants.Track, text string) (*entity.TrackResult, error) {
	start := time.Now()
	tr, err := a.rubric.Track(track)
	if err != nil {
		return nil, err
	}

	a.logger.Info("pipeline.track.start", "track", track, "document_chars", len(text))

	idx, err := a.buildIndex(ctx, text)
	if err != nil {
		return a.degradeTrack(tr, track, common.WrapError(err, "build index"))
	}

	contextText, err := a.consolidate(ctx, idx, retrieval.QueriesFor(track))
	if err != nil {
		return a.degradeTrack(tr, track, err)
	}

	indicators, degradations, err := a.extractor.Extract(ctx, tr, contextText)
	if err != nil {
		return nil, common.WrapError(err, "extract indicators")
	}

	result, err := scoring.ScoreTrack(tr, a.rubric.Version, indicators, degradations)
	if err != nil {
		return nil, err
	}

	a.logger.Info("pipeline.track.ok",
		"track", track,
		"raw", result.RawTotal,
		"ceiling", result.Ceiling,
		"normalized", result.Normalized,
		"incomplete", result.Incomplete,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// degradeTrack closes out a track whose index build or retrieval failed
// after its retry. The track still completes with all-null indicators and
// a visible marker; the sibling track is unaffected.
func (a *Analyzer) degradeTrack(tr *rubric.TrackRubric, track constants.Track, cause error) (*entity.TrackResult, error) {
	a.logger.Warn("pipeline.track.degraded", "track", track, "error", cause)
	indicators := extract.NullIndicators(tr, entity.FlagDefaulted)
	degradations := []string{extract.DegradeRetrieval + ": " + cause.Error()}
	return scoring.ScoreTrack(tr, a.rubric.Version, indicators, degradations)
}

func (a *Analyzer) buildIndex(ctx context.Context, text string) (index.Searcher, error) {
	bctx, cancel := common.WithTimeout(ctx, a.retrievalTimeout)
	defer cancel()
	return a.builder.Build(bctx, text)
}

// consolidate maps a no-evidence condition onto an empty context string:
// the extractor then returns all-null indicators with a degradation
// marker instead of failing the whole track.
func (a *Analyzer) consolidate(ctx context.Context, idx index.Searcher, queries []string) (string, error) {
	rctx, cancel := common.WithTimeout(ctx, a.retrievalTimeout)
	defer cancel()

	contextText, err := a.consolidator.Consolidate(rctx, idx, queries)
	if err != nil {
		if errors.Is(err, common.ErrNoEvidence) {
			return "", nil
		}
		return "", common.WrapError(err, "consolidate context")
	}
	return contextText, nil
}
