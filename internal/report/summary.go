package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/autoesg/analyzer/internal/entity"
	"github.com/autoesg/analyzer/internal/llm"
)

// Summarizer turns a finished score report into a one-page investor
// narrative. Pure formatting pass: no numeric logic, no retries; callers
// degrade to scores-without-narrative when it fails.
type Summarizer struct {
	gen    llm.Generator
	logger *slog.Logger
}

func NewSummarizer(gen llm.Generator, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{gen: gen, logger: logger}
}

const summaryInstruction = `You are writing a comprehensive one-page investor report for an AUTOMOTIVE company,
based on structured scores and evidence supplied as JSON.

FORMATTING RULES (IMPORTANT):
- Use markdown headings (##) exactly as requested below.
- Use bullet points with "-" as the bullet.
- You MAY use **bold** ONLY for short labels at the beginning of each bullet, e.g. **Revenue Growth:**.
- Write normal prose after the bold label; no italics or inline code.
- Where an indicator is marked "insufficient evidence", say so; never present it as a zero.

Generate these sections:

## EXECUTIVE OVERVIEW
2-3 sentences on overall financial health and sustainability performance.

## FINANCIAL HEALTH
3-5 bullets on revenue growth, margins, cash flow and capital allocation,
and inventory efficiency, quoting specific figures from the evidence.

## EMISSIONS TRANSPARENCY
2-4 bullets on Scope 1/2/3 coverage and year-on-year trends.

## EV TRANSITION READINESS
2-4 bullets on EV targets, ICE phase-out, battery recycling, supply chain traceability.

## GREENWASHING RISK
2-3 bullets assessing claim specificity, supporting evidence, and promotional language.

## ENVIRONMENTAL COMPLIANCE
2-3 bullets on water, waste, fines, and supplier audits.

## OVERALL READINESS
1-2 sentences with the overall assessment and readiness for the automotive industry transition.

Keep the entire report under 600 words. Be specific and neutral.`

// Summarize sends scores plus evidence to the generator with the fixed
// template. Exactly one call; the error is returned untouched so the
// caller can keep the scores.
func (s *Summarizer) Summarize(ctx context.Context, r *entity.ScoreReport) (string, error) {
	start := time.Now()

	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report payload: %w", err)
	}

	s.logger.Info("summary.start", "run_id", r.RunID, "payload_bytes", len(payload))
	out, err := s.gen.Generate(ctx, llm.GenerateRequest{
		Instruction: summaryInstruction,
		Input:       string(payload),
	})
	if err != nil {
		s.logger.Error("summary.failed", "run_id", r.RunID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	s.logger.Info("summary.ok", "run_id", r.RunID, "chars", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
