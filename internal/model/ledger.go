package model

import "time"

// LedgerEntry is the stored form of a validated TimeEntry.
type LedgerEntry struct {
	LineID      int     `json:"line_id"`
	EntryID     int     `json:"entry_id"`
	Date        string  `json:"date"`
	Week        int     `json:"week"`
	ProjectID   string  `json:"project_id"`
	Activity    string  `json:"activity"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Hours       float64 `json:"hours"`
	Charge      float64 `json:"charge"`
	Description string  `json:"description"`
}

// Key returns the project#activity key of the entry.
func (l LedgerEntry) Key() string {
	return JoinKey(l.ProjectID, l.Activity)
}

// Ledger is the top-level structure stored in each monthly JSON file.
type Ledger struct {
	Month       string         `json:"month"`
	RunID       string         `json:"run_id"`
	ProcessedAt time.Time      `json:"processed_at"`
	Timesheet   string         `json:"timesheet"`
	Template    string         `json:"template"`
	Output      string         `json:"output"`
	Invoice     string         `json:"invoice"`
	HourlyRate  float64        `json:"hourly_rate"`
	TotalHours  float64        `json:"total_hours"`
	TotalCharge float64        `json:"total_charge"`
	Entries     []LedgerEntry  `json:"entries"`
	Projects    []ProjectEntry `json:"projects"`
}
