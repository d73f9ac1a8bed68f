package run

import (
	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

// Rank limits
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type RankRequest struct {
	JobDescriptionID kernel.JobDescriptionID `json:"job_description_id"`
	BatchID          *kernel.BatchID         `json:"batch_id,omitempty"`
	MinScore         *float64                `json:"min_score,omitempty"`
	Limit            int                     `json:"limit,omitempty"`
}

type RankResponse struct {
	Run     ScreeningRun      `json:"run"`
	Results []ScreeningResult `json:"results"`
}
