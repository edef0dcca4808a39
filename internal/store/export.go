package store

import (
	"fmt"

	"github.com/pavelanni/randomizer/internal/model"
)

// ExportExam collects a master and all of its versions. It returns nil if the
// master does not exist.
func (s *Store) ExportExam(masterID string) (*model.ExamExport, error) {
	master, err := s.GetExam(masterID)
	if err != nil {
		return nil, fmt.Errorf("get exam %s: %w", masterID, err)
	}
	if master == nil {
		return nil, nil
	}
	if master.MasterID != "" {
		return nil, fmt.Errorf("exam %s is a version of %s, not a master", masterID, master.MasterID)
	}

	versions, err := s.ListVersions(masterID)
	if err != nil {
		return nil, fmt.Errorf("list versions of %s: %w", masterID, err)
	}
	return &model.ExamExport{
		Master:   *master,
		Versions: versions,
	}, nil
}
