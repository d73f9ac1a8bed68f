package jd

import (
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

// JobDescription is the query side of screening: its embedding is computed
// lazily on first rank and cached until the text changes.
type JobDescription struct {
	ID           kernel.JobDescriptionID `db:"id" json:"id"`
	UserID       kernel.UserID           `db:"user_id" json:"user_id"`
	Title        string                  `db:"title" json:"title"`
	RawText      string                  `db:"raw_text" json:"raw_text"`
	HasEmbedding bool                    `db:"has_embedding" json:"has_embedding"`
	CreatedAt    time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time               `db:"updated_at" json:"updated_at"`
}
