package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/mentor/internal/model"
)

// ExportLearners builds export-ready records of all registered learners.
func (s *Store) ExportLearners() (model.LearnerExport, error) {
	export := model.LearnerExport{GeneratedAt: time.Now().UTC()}

	users, err := s.ListUsers()
	if err != nil {
		return export, fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		notes, err := s.ListNotes(u.Username)
		if err != nil {
			return export, fmt.Errorf("list notes for %s: %w", u.Username, err)
		}
		if notes == nil {
			notes = []model.Note{}
		}
		export.Learners = append(export.Learners, model.LearnerRecord{
			Username:  u.Username,
			CreatedAt: u.CreatedAt,
			Notes:     notes,
		})
	}
	return export, nil
}
