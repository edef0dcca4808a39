package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/randomizer/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exams (
		id TEXT PRIMARY KEY,
		master_id TEXT REFERENCES exams(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		preamble TEXT,
		questions TEXT NOT NULL DEFAULT '[]',
		ordering TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS exams_master_id ON exams(master_id);

	CREATE TABLE IF NOT EXISTS exam_settings (
		exam_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (exam_id, key),
		FOREIGN KEY (exam_id) REFERENCES exams(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		exam_id TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveExam stores e and returns its new ID. masterID is empty for a master
// and names the master when e is a shuffled version.
func (s *Store) SaveExam(e model.Exam, setting *model.ExamSetting, masterID string) (string, error) {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}
	var ordering sql.NullString
	if e.Ordering != nil {
		b, err := json.Marshal(e.Ordering)
		if err != nil {
			return "", fmt.Errorf("encode ordering: %w", err)
		}
		ordering = sql.NullString{String: string(b), Valid: true}
	}
	var preamble sql.NullString
	if e.Preamble != nil {
		preamble = sql.NullString{String: *e.Preamble, Valid: true}
	}
	var master sql.NullString
	if masterID != "" {
		master = sql.NullString{String: masterID, Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.Exec(
		`INSERT INTO exams (id, master_id, name, preamble, questions, ordering, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, master, e.Name, preamble, string(questions), ordering, time.Now(),
	)
	if err != nil {
		return "", err
	}
	if setting != nil {
		if err := setSetting(tx, id, *setting); err != nil {
			return "", err
		}
	}
	return id, tx.Commit()
}

const examColumns = `id, master_id, name, preamble, questions, ordering, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExam(row rowScanner) (model.StoredExam, error) {
	var (
		se        model.StoredExam
		master    sql.NullString
		preamble  sql.NullString
		questions string
		ordering  sql.NullString
	)
	if err := row.Scan(&se.ID, &master, &se.Exam.Name, &preamble, &questions, &ordering, &se.CreatedAt); err != nil {
		return se, err
	}
	se.MasterID = master.String
	if preamble.Valid {
		p := preamble.String
		se.Exam.Preamble = &p
	}
	if err := json.Unmarshal([]byte(questions), &se.Exam.Questions); err != nil {
		return se, fmt.Errorf("decode questions of %s: %w", se.ID, err)
	}
	if ordering.Valid {
		if err := json.Unmarshal([]byte(ordering.String), &se.Exam.Ordering); err != nil {
			return se, fmt.Errorf("decode ordering of %s: %w", se.ID, err)
		}
	}
	return se, nil
}

// GetExam returns the exam with the given ID, or nil if it does not exist.
func (s *Store) GetExam(id string) (*model.StoredExam, error) {
	se, err := scanExam(s.db.QueryRow(`SELECT `+examColumns+` FROM exams WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	setting, err := s.GetSetting(id)
	if err != nil {
		return nil, err
	}
	se.Setting = setting
	return &se, nil
}

// ListExams returns all masters, newest first, with their version counts.
func (s *Store) ListExams() ([]model.ExamSummary, error) {
	rows, err := s.db.Query(
		`SELECT e.id, e.name, json_array_length(e.questions), e.created_at,
		        (SELECT COUNT(*) FROM exams v WHERE v.master_id = e.id)
		 FROM exams e WHERE e.master_id IS NULL
		 ORDER BY e.created_at DESC, e.rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exams []model.ExamSummary
	for rows.Next() {
		var es model.ExamSummary
		if err := rows.Scan(&es.ID, &es.Name, &es.NumQuestions, &es.CreatedAt, &es.NumVersions); err != nil {
			return nil, err
		}
		exams = append(exams, es)
	}
	return exams, rows.Err()
}

// ListVersions returns the versions of a master in creation order.
func (s *Store) ListVersions(masterID string) ([]model.StoredExam, error) {
	rows, err := s.db.Query(
		`SELECT `+examColumns+` FROM exams WHERE master_id = ? ORDER BY created_at, rowid`, masterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var versions []model.StoredExam
	for rows.Next() {
		se, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, se)
	}
	return versions, rows.Err()
}

// DeleteExam removes an exam together with its versions and settings. It
// reports whether the exam existed.
func (s *Store) DeleteExam(id string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM exam_settings WHERE exam_id IN (SELECT id FROM exams WHERE master_id = ?)`,
		`DELETE FROM exam_settings WHERE exam_id = ?`,
		`DELETE FROM exams WHERE master_id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return false, err
		}
	}
	res, err := tx.Exec(`DELETE FROM exams WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}
