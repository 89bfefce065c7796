package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/usman11267/ai-project/internal/catalog"
)

// ReportRenderer turns a completed session into a printable PDF.
type ReportRenderer interface {
	Render(s *Session) ([]byte, error)
}

type Handler struct {
	svc      *Service
	catalog  *catalog.Catalog
	renderer ReportRenderer
}

func NewHandler(svc *Service, cat *catalog.Catalog, renderer ReportRenderer) *Handler {
	return &Handler{svc: svc, catalog: cat, renderer: renderer}
}

type startSessionRequest struct {
	PatientName string   `json:"patient_name"`
	PatientAge  *int     `json:"patient_age,omitempty"`
	Symptoms    []string `json:"symptoms"`
}

type answerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// needsClarificationResponse is the wire view of a session waiting on its
// pending question. symptom_index is 1-based; clients render
// "Question X of Y".
type needsClarificationResponse struct {
	SessionID     string   `json:"session_id"`
	Status        string   `json:"status"`
	Question      string   `json:"question"`
	InputType     string   `json:"input_type"`
	Options       []string `json:"options,omitempty"`
	Symptom       string   `json:"symptom"`
	SymptomIndex  int      `json:"symptom_index"`
	TotalSymptoms int      `json:"total_symptoms"`
}

type completeResponse struct {
	Status         string          `json:"status"`
	Prescription   string          `json:"prescription"`
	SymptomDetails []SymptomDetail `json:"symptom_details"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", ErrInvalidInput))
		return
	}
	sess, err := h.svc.StartSession(r.Context(), Patient{Name: req.PatientName, Age: req.PatientAge}, req.Symptoms)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSessionView(w, sess)
}

func (h *Handler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", ErrInvalidInput))
		return
	}
	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid session id", ErrInvalidInput))
		return
	}
	sess, err := h.svc.AnswerQuestion(r.Context(), id, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSessionView(w, sess)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid session id", ErrInvalidInput))
		return
	}
	sess, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSessionView(w, sess)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid session id", ErrInvalidInput))
		return
	}
	if err := h.svc.DeleteSession(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// DownloadReport streams the PDF prescription of a completed session.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid session id", ErrInvalidInput))
		return
	}
	sess, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if sess.Status != StatusComplete || sess.Result == nil {
		writeError(w, fmt.Errorf("%w: consultation is not complete", ErrInvalidState))
		return
	}
	pdf, err := h.renderer.Render(sess)
	if err != nil {
		writeError(w, fmt.Errorf("render report: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="prescription_%s.pdf"`, sess.ID))
	w.Write(pdf)
}

// QuickPrescription is the legacy one-call flow: the whole loop runs with
// stock answers and only the prescription text is returned.
func (h *Handler) QuickPrescription(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", ErrInvalidInput))
		return
	}
	p, err := h.svc.QuickPrescription(r.Context(), Patient{Name: req.PatientName, Age: req.PatientAge}, req.Symptoms)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prescription": p.Text})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": h.catalog.Categories()})
}

func (h *Handler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	symptoms, ok := h.catalog.Symptoms(category)
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown category %q", ErrNotFound, category))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"symptoms": symptoms})
}

func (h *Handler) FollowupQuestions(w http.ResponseWriter, r *http.Request) {
	symptom := chi.URLParam(r, "symptom")
	writeJSON(w, http.StatusOK, map[string][]string{"questions": h.catalog.FollowupQuestions(symptom)})
}

func (h *Handler) ClosestSymptom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symptom string `json:"symptom"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", ErrInvalidInput))
		return
	}
	closest, _ := h.catalog.ClosestSymptom(req.Symptom)
	writeJSON(w, http.StatusOK, map[string]string{"closest_match": closest})
}

func (h *Handler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]catalog.Medicine{"medicines": h.catalog.Medicines()})
}

func (h *Handler) GetMedicine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	m, ok := h.catalog.MedicineByName(name)
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown medicine %q", ErrNotFound, name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]catalog.Medicine{"medicine": m})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/start_session", h.StartSession)
	r.Post("/answer_question", h.AnswerQuestion)
	r.Get("/session/{id}", h.GetSession)
	r.Delete("/session/{id}", h.DeleteSession)
	r.Get("/session/{id}/report", h.DownloadReport)
	r.Post("/get_prescription", h.QuickPrescription)

	r.Get("/symptoms/categories", h.ListCategories)
	r.Get("/symptoms/followup/{symptom}", h.FollowupQuestions)
	r.Post("/symptoms/closest", h.ClosestSymptom)
	r.Get("/symptoms/{category}", h.ListSymptoms)
	r.Get("/medicines", h.ListMedicines)
	r.Get("/medicines/{name}", h.GetMedicine)
}

// writeSessionView renders either the needs_clarification or the complete
// envelope depending on where the session landed after the last advance.
func writeSessionView(w http.ResponseWriter, s *Session) {
	if s.Status == StatusComplete && s.Result != nil {
		writeJSON(w, http.StatusOK, completeResponse{
			Status:         "complete",
			Prescription:   s.Result.Text,
			SymptomDetails: s.Result.Details,
		})
		return
	}
	if s.Pending == nil {
		// Should not happen: the advance always leaves a question or a result.
		writeError(w, fmt.Errorf("%w: session has neither a question nor a result", ErrInvalidState))
		return
	}
	writeJSON(w, http.StatusOK, needsClarificationResponse{
		SessionID:     s.ID.String(),
		Status:        "needs_clarification",
		Question:      s.Pending.Text,
		InputType:     string(s.Pending.Input),
		Options:       s.Pending.Options,
		Symptom:       s.CurrentSymptom(),
		SymptomIndex:  s.Cursor + 1,
		TotalSymptoms: len(s.Symptoms),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses and a uniform JSON
// envelope so clients can branch on the category.
func writeError(w http.ResponseWriter, err error) {
	code := "internal"
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput):
		code, status = "invalid_input", http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		code, status = "not_found", http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		code, status = "invalid_state", http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		code, status = "conflict", http.StatusConflict
	case errors.Is(err, ErrOracleUnavailable):
		code, status = "oracle_unavailable", http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": code, "message": err.Error()})
}
