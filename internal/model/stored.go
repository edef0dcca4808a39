package model

import "time"

// StoredExam is an exam as persisted by the store. MasterID is empty for
// masters and names the master for shuffled versions.
type StoredExam struct {
	ID        string       `json:"id"`
	MasterID  string       `json:"master_id,omitempty"`
	Exam      Exam         `json:"exam"`
	Setting   *ExamSetting `json:"setting,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ExamSummary is a listing row for a stored master exam.
type ExamSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	NumQuestions int       `json:"num_questions"`
	NumVersions  int       `json:"num_versions"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExamExport is the top-level JSON document written by the export command: a
// master, its versions and their answer keys.
type ExamExport struct {
	Master   StoredExam   `json:"master"`
	Versions []StoredExam `json:"versions"`
	Keys     []AnswerKey  `json:"answer_keys,omitempty"`
}

// AnswerKeyEntry is one line of an answer key.
type AnswerKeyEntry struct {
	Position int    `json:"position"` // 1-based position in the version
	Order    int    `json:"order"`    // the question's order in the master
	Answer   string `json:"answer"`   // letter, "?" when unknown, "-" when open-ended
	Text     string `json:"text,omitempty"`
}

// AnswerKey is the answer key of one exam version.
type AnswerKey struct {
	Name    string           `json:"name"`
	Entries []AnswerKeyEntry `json:"entries"`
}
