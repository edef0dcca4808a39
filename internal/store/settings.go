package store

import (
	"database/sql"
	"strconv"

	"github.com/pavelanni/randomizer/internal/model"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setSetting(db execer, examID string, setting model.ExamSetting) error {
	pairs := []struct{ k, v string }{
		{"university", setting.University},
		{"department", setting.Department},
		{"term", setting.Term},
		{"coursecode", setting.CourseCode},
		{"examname", setting.ExamName},
		{"examdate", setting.ExamDate},
		{"timeallowed", setting.TimeAllowed},
		{"numberofvestions", strconv.FormatUint(uint64(setting.NumberOfVersions), 10)},
		{"groups", setting.Groups},
	}
	for _, p := range pairs {
		_, err := db.Exec(
			`INSERT INTO exam_settings (exam_id, key, value) VALUES (?, ?, ?)
			 ON CONFLICT(exam_id, key) DO UPDATE SET value = ?`,
			examID, p.k, p.v, p.v,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SetSetting upserts the setting fields of an exam.
func (s *Store) SetSetting(examID string, setting model.ExamSetting) error {
	return setSetting(s.db, examID, setting)
}

// GetSetting returns the stored setting of an exam, or nil if none was saved.
func (s *Store) GetSetting(examID string) (*model.ExamSetting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM exam_settings WHERE exam_id = ?`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var setting model.ExamSetting
	found := false
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		found = true
		switch k {
		case "university":
			setting.University = v
		case "department":
			setting.Department = v
		case "term":
			setting.Term = v
		case "coursecode":
			setting.CourseCode = v
		case "examname":
			setting.ExamName = v
		case "examdate":
			setting.ExamDate = v
		case "timeallowed":
			setting.TimeAllowed = v
		case "numberofvestions":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return nil, err
			}
			setting.NumberOfVersions = uint32(n)
		case "groups":
			setting.Groups = v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &setting, nil
}

// GetImportedFile returns the hash recorded for path and the exam it was
// imported as. Both are empty if the file was never imported.
func (s *Store) GetImportedFile(path string) (hash, examID string, err error) {
	err = s.db.QueryRow(`SELECT hash, exam_id FROM imported_files WHERE path = ?`, path).Scan(&hash, &examID)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	return hash, examID, err
}

// SetImportedFile records that path with the given content hash was imported
// as examID.
func (s *Store) SetImportedFile(path, hash, examID string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash, exam_id) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = ?, exam_id = ?`,
		path, hash, examID, hash, examID,
	)
	return err
}
