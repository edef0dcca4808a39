package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/randomizer/internal/i18n"
	"github.com/pavelanni/randomizer/internal/model"
	"github.com/pavelanni/randomizer/internal/shuffle"
	"github.com/pavelanni/randomizer/internal/store"
)

const markupDoc = `%{setting}
% university = KFUPM
% numberofvestions = 2
%{/setting}
\begin{document}
\begin{question} 2+2? \end{question}
\begin{choice} 3 \end{choice}
\begin{choice} 4 \end{choice}
\begin{question} Explain. \end{question}
\end{document}`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	h := New(s, shuffle.NewSeeded(1), Config{})
	r := chi.NewRouter()
	r.Use(i18n.Middleware("en"))
	h.Routes(r)
	return r
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v (body %q)", v, err, rec.Body.String())
	}
	return v
}

func upload(t *testing.T, srv http.Handler) model.StoredExam {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/exams?name=midterm", markupDoc)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[model.StoredExam](t, rec)
}

func TestUploadAndGet(t *testing.T) {
	srv := newTestServer(t)
	se := upload(t, srv)

	if se.Exam.Name != "midterm" || len(se.Exam.Questions) != 2 {
		t.Errorf("unexpected exam %+v", se.Exam)
	}
	if se.Setting == nil || se.Setting.University != "KFUPM" {
		t.Errorf("setting = %+v", se.Setting)
	}

	rec := do(t, srv, http.MethodGet, "/exams/"+se.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	got := decode[model.StoredExam](t, rec)
	if got.ID != se.ID {
		t.Errorf("got id %q, want %q", got.ID, se.ID)
	}

	rec = do(t, srv, http.MethodGet, "/exams", "")
	list := decode[[]model.ExamSummary](t, rec)
	if len(list) != 1 || list[0].NumQuestions != 2 {
		t.Errorf("list = %+v", list)
	}
}

func TestUploadErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"unknown format", "/exams?format=docx", "x", http.StatusBadRequest},
		{"missing end tag", "/exams?format=markup", `\begin{document} \begin{question} q \end{question}`, http.StatusBadRequest},
		{"no csv questions", "/exams?format=csv", "1\n2\n", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestUploadBodyErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name string
		body func() io.Reader
		want int
	}{
		{"too large", func() io.Reader { return strings.NewReader("1,Q," + strings.Repeat("a", maxUploadBytes)) }, http.StatusRequestEntityTooLarge},
		{"read failure", func() io.Reader { return failingReader{} }, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/exams?format=csv", tt.body())
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestVersionsAndKeys(t *testing.T) {
	srv := newTestServer(t)
	se := upload(t, srv)

	// Count falls back to the setting's declared number of versions.
	rec := do(t, srv, http.MethodPost, "/exams/"+se.ID+"/versions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("versions status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[[]model.StoredExam](t, rec)
	if len(created) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(created))
	}

	rec = do(t, srv, http.MethodPost, "/exams/"+se.ID+"/versions?count=1&seed=9", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("seeded versions status = %d", rec.Code)
	}

	// Reshuffling a version attaches the result to the master.
	rec = do(t, srv, http.MethodPost, "/exams/"+created[0].ID+"/versions?count=1", "")
	reshuffled := decode[[]model.StoredExam](t, rec)
	if len(reshuffled) != 1 || reshuffled[0].MasterID != se.ID {
		t.Errorf("reshuffled = %+v", reshuffled)
	}

	rec = do(t, srv, http.MethodGet, "/exams/"+se.ID+"/versions", "")
	versions := decode[[]model.StoredExam](t, rec)
	if len(versions) != 4 {
		t.Fatalf("expected 4 stored versions, got %d", len(versions))
	}
	for _, v := range versions {
		if !v.Exam.IsShuffled() {
			t.Errorf("version %s is not shuffled", v.ID)
		}
	}

	rec = do(t, srv, http.MethodGet, "/exams/"+se.ID+"/key", "")
	keys := decode[[]model.AnswerKey](t, rec)
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %d", len(keys))
	}
	for _, k := range keys {
		if len(k.Entries) != 2 {
			t.Errorf("key %s has %d entries", k.Name, len(k.Entries))
		}
	}

	rec = do(t, srv, http.MethodGet, "/exams/"+created[0].ID+"/key?format=text", "")
	if !strings.HasPrefix(rec.Body.String(), "Answer key: version 1\n") {
		t.Errorf("text key = %q", rec.Body.String())
	}
}

func TestVersionsBadParams(t *testing.T) {
	srv := newTestServer(t)
	se := upload(t, srv)
	for _, q := range []string{"count=0", "count=abc", "seed=-1"} {
		rec := do(t, srv, http.MethodPost, "/exams/"+se.ID+"/versions?"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestSettingValue(t *testing.T) {
	srv := newTestServer(t)
	se := upload(t, srv)

	rec := do(t, srv, http.MethodGet, "/exams/"+se.ID+"/setting/university", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[map[string]string](t, rec)
	if got["value"] != "KFUPM" {
		t.Errorf("value = %q", got["value"])
	}

	rec = do(t, srv, http.MethodGet, "/exams/"+se.ID+"/setting/campus", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", rec.Code)
	}
}

func TestNotFoundAndDelete(t *testing.T) {
	srv := newTestServer(t)
	for _, target := range []string{"/exams/missing", "/exams/missing/versions", "/exams/missing/key"} {
		if rec := do(t, srv, http.MethodGet, target, ""); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", target, rec.Code)
		}
	}

	se := upload(t, srv)
	if rec := do(t, srv, http.MethodDelete, "/exams/"+se.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, "/exams/"+se.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
