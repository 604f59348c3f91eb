package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/common"
	"github.com/autoesg/analyzer/internal/entity"
	"github.com/autoesg/analyzer/internal/export"
	"github.com/autoesg/analyzer/internal/extract"
	"github.com/autoesg/analyzer/internal/index"
	"github.com/autoesg/analyzer/internal/llm/openai"
	"github.com/autoesg/analyzer/internal/pipeline"
	"github.com/autoesg/analyzer/internal/report"
	repo "github.com/autoesg/analyzer/internal/repository"
	"github.com/autoesg/analyzer/internal/retrieval"
	"github.com/autoesg/analyzer/internal/rubric"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		finPath     = flag.String("financial", "", "path to the financial report text file")
		susPath     = flag.String("sustainability", "", "path to the sustainability report text file")
		outPath     = flag.String("out", "", "write the rendered report to this file (optional)")
		xlsxPath    = flag.String("xlsx", "", "write an XLSX workbook to this path (optional)")
		rubricVer   = flag.String("rubric", "", "rubric version override (default: RUBRIC_VERSION env)")
		noNarrative = flag.Bool("no-narrative", false, "skip the investor narrative")
		noStore     = flag.Bool("no-store", false, "skip run-history persistence")
	)
	flag.Parse()

	if *finPath == "" && *susPath == "" {
		printError("Error: at least one of --financial or --sustainability is required\n")
		os.Exit(2)
	}

	// .env is optional; environment variables win
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *rubricVer != "" {
		cfg.Rubric.Version = *rubricVer
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	rub, err := rubric.Load(cfg.Rubric.Version, cfg.Rubric.Dir)
	if err != nil {
		logger.Error("failed to load rubric", "version", cfg.Rubric.Version, "error", err)
		os.Exit(1)
	}
	logger.Info("rubric loaded", "version", rub.Version)

	finText, err := readInput(*finPath)
	if err != nil {
		logger.Error("failed to read financial report", "path", *finPath, "error", err)
		os.Exit(1)
	}
	susText, err := readInput(*susPath)
	if err != nil {
		logger.Error("failed to read sustainability report", "path", *susPath, "error", err)
		os.Exit(1)
	}

	client := openai.NewClient(openai.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
		Timeout:        cfg.LLM.Timeout,
	}, logger)

	builder := index.NewEmbeddingBuilder(client, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap, logger)
	consolidator := retrieval.NewConsolidator(cfg.Retrieval.TopK, cfg.Retrieval.ContextChars, cfg.Retrieval.WorkerLimit, logger)
	extractor := extract.NewExtractor(client, logger)
	summarizer := report.NewSummarizer(client, logger)
	analyzer := pipeline.NewAnalyzer(rub, builder, consolidator, extractor, summarizer, cfg.Retrieval.Timeout, logger)

	var store *repo.RunStore
	if !*noStore && cfg.Store.Path != "" {
		store, err = repo.Open(cfg.Store.Path)
		if err != nil {
			logger.Error("failed to open run store", "path", cfg.Store.Path, "error", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()
	}

	runID := uuid.New()
	startedAt := time.Now().UTC()
	ctx := common.WithRunID(context.Background(), runID.String())

	run := &entity.AnalysisRun{
		ID:            runID,
		Status:        constants.RunStatusRunning,
		RubricVersion: rub.Version,
		StartedAt:     startedAt,
		ModelName:     &cfg.LLM.Model,
	}
	saveRun(ctx, store, run, logger)

	r, err := analyzer.Analyze(ctx, finText, susText)
	if err != nil {
		logger.Error("analysis failed", "run_id", runID, "error", err)
		msg := err.Error()
		run.Status = constants.RunStatusFailed
		run.ErrorMessage = &msg
		finishRun(ctx, store, run, logger)
		os.Exit(1)
	}
	r.RunID = runID

	rendered := report.RenderText(r)
	fmt.Print(rendered)

	if q, ok := report.ComputeDisclosureQuality(r.Sustainability); ok {
		fmt.Printf("Disclosure risk: %s (completeness %s, reliability %s)\n",
			q.Risk, q.CompletenessLevel, q.ReliabilityLevel)
	}

	var narrative string
	if !*noNarrative {
		narrative, err = analyzer.RenderSummary(ctx, r)
		if err != nil {
			// scores survive a narrative failure
			logger.Warn("narrative generation failed, keeping scores", "run_id", runID, "error", err)
		} else {
			fmt.Println()
			fmt.Println(narrative)
		}
	}

	if *outPath != "" {
		body := rendered
		if narrative != "" {
			body += "\n" + narrative + "\n"
		}
		if err := os.WriteFile(*outPath, []byte(body), 0644); err != nil {
			logger.Error("failed to write report file", "path", *outPath, "error", err)
			os.Exit(1)
		}
		logger.Info("report written", "path", *outPath)
	}

	if *xlsxPath != "" {
		xlsxBytes, err := export.NewService(logger).ExportReportXLSX(r)
		if err != nil {
			logger.Error("failed to build workbook", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write workbook", "path", *xlsxPath, "error", err)
			os.Exit(1)
		}
		logger.Info("workbook written", "path", *xlsxPath)
	}

	run.Status = constants.RunStatusOK
	if r.Partial {
		run.Status = constants.RunStatusPartial
	}
	if reportJSON, err := json.Marshal(r); err == nil {
		run.ReportJSON = reportJSON
	}
	if narrative != "" {
		run.Narrative = &narrative
	}
	finishRun(ctx, store, run, logger)

	logger.Info("analysis complete",
		"run_id", runID,
		"overall", r.Overall,
		"partial", r.Partial,
	)
}

func readInput(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func saveRun(ctx context.Context, store *repo.RunStore, run *entity.AnalysisRun, logger *slog.Logger) {
	if store == nil {
		return
	}
	if err := store.SaveRun(ctx, run); err != nil {
		logger.Warn("failed to save run record", "run_id", run.ID, "error", err)
	}
}

func finishRun(ctx context.Context, store *repo.RunStore, run *entity.AnalysisRun, logger *slog.Logger) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	saveRun(ctx, store, run, logger)
}
