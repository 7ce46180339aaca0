package entities

import (
	"time"
)

type ImportRunStatus string

const (
	ImportRunRunning   ImportRunStatus = "running"
	ImportRunCompleted ImportRunStatus = "completed"
	ImportRunFailed    ImportRunStatus = "failed"
	ImportRunCancelled ImportRunStatus = "cancelled"
)

// ImportRun tracks one import of one file.
//
// ActiveDomain holds the domain name while the run is in progress and is
// NULL afterwards; its unique index allows one running import per domain.
type ImportRun struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Domain       string          `gorm:"size:50;index" json:"domain"`
	ActiveDomain *string         `gorm:"size:50;uniqueIndex" json:"-"`
	FileName     string          `gorm:"size:255" json:"file_name"`
	BatchID      string          `gorm:"size:36;index" json:"batch_id,omitempty"`
	UserID       uint            `gorm:"index" json:"user_id"`
	Status       ImportRunStatus `gorm:"size:20;index" json:"status"`
	Phase        string          `gorm:"size:20" json:"phase"`
	TotalItems   int             `json:"total_items"`
	Processed    int             `json:"processed"`
	Succeeded    int             `json:"succeeded"`
	Failed       int             `json:"failed"`
	Duplicates   int             `json:"duplicates"`
	Skipped      int             `json:"skipped"`
	Conflicts    int             `json:"conflicts"`
	Percentage   float64         `json:"percentage"`
	CurrentItem  string          `gorm:"size:512" json:"current_item,omitempty"`
	Error        string          `gorm:"type:text" json:"error,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
