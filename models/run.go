package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// ScrapeRun records one building scrape session.
type ScrapeRun struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	SourceURL    string     `json:"source_url" db:"source_url"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	FinishedAt   *time.Time `json:"finished_at" db:"finished_at"`
	Status       RunStatus  `json:"status" db:"status"`
	FieldsFound  int        `json:"fields_found" db:"fields_found"`
	ErrorsCount  int        `json:"errors_count" db:"errors_count"`
	OutputPath   string     `json:"output_path" db:"output_path"`
	ErrorMessage string     `json:"error_message" db:"error_message"`
}

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

type ScrapeLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     uuid.UUID `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
}

// WatchedBuilding is an entry of the scheduler's re-scrape list. Either URL
// or Address must be set.
type WatchedBuilding struct {
	Address string `yaml:"address" json:"address"`
	Zip     string `yaml:"zip" json:"zip"`
	URL     string `yaml:"url" json:"url"`
}
