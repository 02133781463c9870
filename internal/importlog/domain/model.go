package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Dataset string

const (
	DatasetCogs   Dataset = "cogs"
	DatasetStores Dataset = "stores"
	DatasetSales  Dataset = "sales"
)

type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusPartial     Status = "partial"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// Batch is the audit record of one spreadsheet upload.
type Batch struct {
	ID         string         `gorm:"primaryKey;size:26" json:"id"`
	Dataset    Dataset        `gorm:"size:32;not null;index" json:"dataset"`
	FileName   string         `gorm:"not null" json:"file_name"`
	Status     Status         `gorm:"size:16;not null" json:"status"`
	RowCount   int            `gorm:"not null;default:0" json:"row_count"`
	Inserted   int            `gorm:"not null;default:0" json:"inserted"`
	Updated    int            `gorm:"not null;default:0" json:"updated"`
	Skipped    int            `gorm:"not null;default:0" json:"skipped"`
	Errors     datatypes.JSON `json:"errors,omitempty"`
	StartedAt  time.Time      `gorm:"not null;index" json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

func (Batch) TableName() string { return "import_batches" }
