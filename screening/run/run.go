package run

import (
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

// ScreeningRun is an immutable snapshot of one ranking request. Re-running
// the same job description later creates a new run; old results stay as
// they were scored.
type ScreeningRun struct {
	ID               kernel.RunID            `db:"id" json:"id"`
	JobDescriptionID kernel.JobDescriptionID `db:"job_description_id" json:"job_description_id"`
	BatchID          *kernel.BatchID         `db:"batch_id" json:"batch_id,omitempty"`
	MinScore         *float64                `db:"min_score" json:"min_score,omitempty"`
	ResultLimit      int                     `db:"result_limit" json:"result_limit"`
	CreatedAt        time.Time               `db:"created_at" json:"created_at"`
}

// ScreeningResult is one ranked resume inside a run.
type ScreeningResult struct {
	RunID      kernel.RunID    `db:"run_id" json:"-"`
	ResumeID   kernel.ResumeID `db:"resume_id" json:"resume_id"`
	Filename   string          `db:"filename" json:"filename"`
	Similarity float64         `db:"similarity" json:"similarity"`
	Rank       int             `db:"rank" json:"rank"`
}

// RankedResume is a row coming out of the vector search, before it is
// frozen into a run.
type RankedResume struct {
	ResumeID   kernel.ResumeID `db:"id"`
	Filename   string          `db:"filename"`
	Similarity float64         `db:"similarity"`
	BatchID    kernel.BatchID  `db:"batch_id"`
}
