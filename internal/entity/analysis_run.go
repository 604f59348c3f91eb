package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/autoesg/analyzer/constants"
)

// AnalysisRun represents a persisted analysis run for data transfer
// between layers.
type AnalysisRun struct {
	ID            uuid.UUID           `json:"id"`
	Status        constants.RunStatus `json:"status"`
	RubricVersion string              `json:"rubric_version"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`
	ReportJSON    json.RawMessage     `json:"report_json,omitempty"`
	Narrative     *string             `json:"narrative,omitempty"`
	ErrorMessage  *string             `json:"error_message,omitempty"`
	ModelName     *string             `json:"model_name,omitempty"`
}
