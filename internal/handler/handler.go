package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/randomizer/internal/answerkey"
	"github.com/pavelanni/randomizer/internal/examreader"
	"github.com/pavelanni/randomizer/internal/model"
	"github.com/pavelanni/randomizer/internal/shuffle"
	"github.com/pavelanni/randomizer/internal/store"
)

const maxUploadBytes = 10 << 20

// Config holds runtime parameters for the HTTP API.
type Config struct {
	DefaultName     string // name given to uploaded masters without ?name=
	DefaultVersions int    // versions created when ?count= is absent; 0 defers to the exam setting
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	shuffler *shuffle.Shuffler
	config   Config
}

// New creates a new Handler.
func New(s *store.Store, sh *shuffle.Shuffler, cfg Config) *Handler {
	if cfg.DefaultName == "" {
		cfg.DefaultName = "master"
	}
	return &Handler{store: s, shuffler: sh, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/exams", h.handleListExams)
	r.Post("/exams", h.handleUpload)
	r.Route("/exams/{examID}", func(r chi.Router) {
		r.Get("/", h.handleGetExam)
		r.Delete("/", h.handleDeleteExam)
		r.Post("/versions", h.handleCreateVersions)
		r.Get("/versions", h.handleListVersions)
		r.Get("/key", h.handleAnswerKey)
		r.Get("/setting/{key}", h.handleSettingValue)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeReaderError maps reader failures to status codes: input defects are
// the client's fault, anything else is ours.
func writeReaderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, examreader.ErrTemplate), errors.Is(err, examreader.ErrInvalidHeader):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, examreader.ErrRedaction):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("reader failure", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) loadExam(w http.ResponseWriter, r *http.Request) (*model.StoredExam, bool) {
	id := chi.URLParam(r, "examID")
	se, err := h.store.GetExam(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if se == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("exam %s not found", id))
		return nil, false
	}
	return se, true
}

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListExams()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if exams == nil {
		exams = []model.ExamSummary{}
	}
	writeJSON(w, http.StatusOK, exams)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	format, err := examreader.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read request body: %v", err))
		return
	}

	doc, err := examreader.Parse(data, format)
	if err != nil {
		writeReaderError(w, err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = h.config.DefaultName
	}
	id, err := h.store.SaveExam(model.NewExam(name, doc), doc.Setting, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("imported exam", "id", id, "name", name, "questions", len(doc.Questions))

	se, err := h.store.GetExam(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, se)
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	se, ok := h.loadExam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, se)
}

func (h *Handler) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "examID")
	found, err := h.store.DeleteExam(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("exam %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateVersions(w http.ResponseWriter, r *http.Request) {
	se, ok := h.loadExam(w, r)
	if !ok {
		return
	}

	count := h.config.DefaultVersions
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}

	sh := h.shuffler
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seed must be an unsigned integer")
			return
		}
		sh = shuffle.NewSeeded(seed)
	}

	// Versions always hang off the master, even when a version is reshuffled.
	masterID := se.ID
	setting := se.Setting
	if se.MasterID != "" {
		masterID = se.MasterID
		if setting == nil {
			if setting, ok = h.masterSetting(w, masterID); !ok {
				return
			}
		}
	}

	versions := sh.Versions(se.Exam, count, setting)
	stored := make([]model.StoredExam, 0, len(versions))
	for _, v := range versions {
		id, err := h.store.SaveExam(v, nil, masterID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		stored = append(stored, model.StoredExam{ID: id, MasterID: masterID, Exam: v})
	}
	slog.Info("created versions", "master", masterID, "from", se.ID, "count", len(stored))
	writeJSON(w, http.StatusCreated, stored)
}

func (h *Handler) masterSetting(w http.ResponseWriter, masterID string) (*model.ExamSetting, bool) {
	setting, err := h.store.GetSetting(masterID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return setting, true
}

func (h *Handler) handleListVersions(w http.ResponseWriter, r *http.Request) {
	se, ok := h.loadExam(w, r)
	if !ok {
		return
	}
	versions, err := h.store.ListVersions(se.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if versions == nil {
		versions = []model.StoredExam{}
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *Handler) handleAnswerKey(w http.ResponseWriter, r *http.Request) {
	se, ok := h.loadExam(w, r)
	if !ok {
		return
	}

	exams := []model.Exam{se.Exam}
	if se.MasterID == "" {
		versions, err := h.store.ListVersions(se.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		exams = exams[:0]
		for _, v := range versions {
			exams = append(exams, v.Exam)
		}
	}
	keys := answerkey.BuildAll(exams)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := answerkey.Render(r.Context(), w, keys); err != nil {
			slog.Error("render answer key", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *Handler) handleSettingValue(w http.ResponseWriter, r *http.Request) {
	se, ok := h.loadExam(w, r)
	if !ok {
		return
	}
	var setting model.ExamSetting
	if se.Setting != nil {
		setting = *se.Setting
	}
	value, err := examreader.SettingValue(setting, chi.URLParam(r, "key"))
	if err != nil {
		writeReaderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": chi.URLParam(r, "key"), "value": value})
}
