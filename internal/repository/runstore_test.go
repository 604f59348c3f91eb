package repository

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/common"
	"github.com/autoesg/analyzer/internal/entity"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strp(s string) *string { return &s }

func TestRunStore_SaveAndGetRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	finished := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	run := &entity.AnalysisRun{
		ID:            uuid.New(),
		Status:        constants.RunStatusOK,
		RubricVersion: "2025.1",
		StartedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:    &finished,
		ReportJSON:    json.RawMessage(`{"overall":7.85}`),
		Narrative:     strp("## EXECUTIVE OVERVIEW\nsolid"),
		ModelName:     strp("gpt-4o-mini"),
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.ID != run.ID || got.Status != run.Status || got.RubricVersion != run.RubricVersion {
		t.Errorf("roundtrip mismatch: got %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, finished)
	}
	if string(got.ReportJSON) != `{"overall":7.85}` {
		t.Errorf("ReportJSON = %s", got.ReportJSON)
	}
	if got.Narrative == nil || *got.Narrative != *run.Narrative {
		t.Errorf("Narrative = %v", got.Narrative)
	}
	if got.ErrorMessage != nil {
		t.Errorf("ErrorMessage = %v, want nil", got.ErrorMessage)
	}
}

func TestRunStore_SaveTwiceUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := &entity.AnalysisRun{
		ID:            uuid.New(),
		Status:        constants.RunStatusRunning,
		RubricVersion: "2025.1",
		StartedAt:     time.Now().UTC(),
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	run.Status = constants.RunStatusPartial
	msg := "sustainability track degraded"
	run.ErrorMessage = &msg
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("second SaveRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != constants.RunStatusPartial {
		t.Errorf("Status = %s, want PARTIAL after update", got.Status)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage != msg {
		t.Errorf("ErrorMessage = %v, want %q", got.ErrorMessage, msg)
	}

	list, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("runs = %d, want 1 after in-place update", len(list))
	}
}

func TestRunStore_GetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("GetRun succeeded for unknown id, want error")
	}
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRunStore_ListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		run := &entity.AnalysisRun{
			ID:            uuid.New(),
			Status:        constants.RunStatusOK,
			RubricVersion: "2025.1",
			StartedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
		ids = append(ids, run.ID)
	}

	list, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("runs = %d, want 2 (limit)", len(list))
	}
	if list[0].ID != ids[2] || list[1].ID != ids[1] {
		t.Error("ListRuns is not newest-first")
	}
}

func TestOpen_ReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	run := &entity.AnalysisRun{
		ID:            uuid.New(),
		Status:        constants.RunStatusOK,
		RubricVersion: "2025.1",
		StartedAt:     time.Now().UTC(),
	}
	if err := s1.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = s2.Close() }()
	if _, err := s2.GetRun(context.Background(), run.ID); err != nil {
		t.Errorf("run lost across reopen: %v", err)
	}
}
