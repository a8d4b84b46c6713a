package model

import "time"

// LearnerExport is the top-level structure written by `mentor export`.
type LearnerExport struct {
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Learners    []LearnerRecord `json:"learners" yaml:"learners"`
}

// LearnerRecord holds the durable data of one registered learner.
type LearnerRecord struct {
	Username  string    `json:"username" yaml:"username"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Notes     []Note    `json:"notes" yaml:"notes"`
}
