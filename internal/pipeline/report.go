package pipeline

import (
	"encoding/json"
	"time"
)

// Run statuses as they appear in the report.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// StageRows reports row movement through one cleaning table.
type StageRows struct {
	RowsIn         int `json:"rows_input"`
	RowsOut        int `json:"rows_output"`
	RowsFiltered   int `json:"rows_filtered"`
	Duplicates     int `json:"duplicates_removed"`
	InvalidIDs     int `json:"invalid_ids_removed"`
	InvalidAmounts int `json:"invalid_amounts_removed,omitempty"`
	Orphans        int `json:"orphans_removed,omitempty"`
}

func stageRows(s CleanStats) StageRows {
	return StageRows{
		RowsIn:         s.RowsIn,
		RowsOut:        s.RowsOut,
		RowsFiltered:   s.Filtered(),
		Duplicates:     s.Duplicates,
		InvalidIDs:     s.InvalidIDs,
		InvalidAmounts: s.InvalidAmounts,
		Orphans:        s.Orphans,
	}
}

// SilverReport covers the two validated tables.
type SilverReport struct {
	Clients   StageRows `json:"clients"`
	Purchases StageRows `json:"achats"`
}

// RunReport is the consolidated pipeline run report consumed by external
// monitoring. A failed run carries the failing stage and reason; a
// successful run carries per-stage and per-collection counts so silent data
// loss stays observable.
type RunReport struct {
	RunID           string         `json:"run_id"`
	Timestamp       time.Time      `json:"timestamp"`
	DurationSeconds float64        `json:"duration_seconds"`
	Status          string         `json:"status"`
	FailedStage     string         `json:"failed_stage,omitempty"`
	Error           string         `json:"error,omitempty"`
	Silver          *SilverReport  `json:"silver_layer,omitempty"`
	Gold            map[string]int `json:"gold_layer,omitempty"`
	Load            *LoadReport    `json:"operational_load,omitempty"`
}

// JSON renders the report for stdout/monitoring consumption.
func (r *RunReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
