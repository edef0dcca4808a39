package examreader

import (
	"errors"
	"testing"
)

func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"preamble": "\\usepackage{amsmath}",
		"questions": [
			{"text": "2+2?", "choices": {"items": [{"text": "3"}, {"text": "4"}], "correct": 1}},
			{"text": "Discuss.", "group": 2, "choices": {"items": []}}
		],
		"setting": {"university": "KFUPM"}
	}`)
	doc, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if doc.Preamble == nil || *doc.Preamble != `\usepackage{amsmath}` {
		t.Errorf("preamble = %v", doc.Preamble)
	}
	if doc.Setting == nil || doc.Setting.University != "KFUPM" {
		t.Errorf("setting = %+v", doc.Setting)
	}
	q := doc.Questions[0]
	if q.Order != 1 || q.Group != 1 {
		t.Errorf("defaults not applied: %+v", q)
	}
	if q.Choices.Correct == nil || *q.Choices.Correct != 1 {
		t.Errorf("correct = %v, want 1", q.Choices.Correct)
	}
	if doc.Questions[1].Choices != nil {
		t.Error("empty item list should become nil choices")
	}
	if doc.Questions[1].Order != 2 || doc.Questions[1].Group != 2 {
		t.Errorf("second question = %+v", doc.Questions[1])
	}
}

func TestFromJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"no questions", `{"questions": []}`},
		{"correct out of range", `{"questions": [{"text": "q", "choices": {"items": [{"text": "a"}], "correct": 3}}]}`},
		{"ordering wrong length", `{"questions": [{"text": "q", "choices": {"items": [{"text": "a"}, {"text": "b"}], "ordering": [0]}}]}`},
		{"ordering repeats", `{"questions": [{"text": "q", "choices": {"items": [{"text": "a"}, {"text": "b"}], "ordering": [1, 1]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.data))
			if !errors.Is(err, ErrTemplate) {
				t.Errorf("expected template error, got %v", err)
			}
		})
	}
}
