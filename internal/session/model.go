package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/usman11267/ai-project/internal/catalog"
)

type Status string

const (
	StatusAwaitingAnswer Status = "awaiting_answer"
	StatusComplete       Status = "complete"
)

// InputType tells the client how to render the pending question.
type InputType string

const (
	InputText   InputType = "text"
	InputChoice InputType = "choice"
)

type Patient struct {
	Name string `json:"name"`
	Age  *int   `json:"age,omitempty"`
}

// QA is one question/answer exchange recorded for a symptom.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Question is the single outstanding question of a session. Options is set
// only for choice input.
type Question struct {
	Text    string    `json:"text"`
	Input   InputType `json:"input"`
	Options []string  `json:"options,omitempty"`
}

// SymptomDetail is the per-symptom breakdown of a finished consultation.
type SymptomDetail struct {
	Symptom  string            `json:"symptom"`
	Info     map[string]string `json:"info"`
	Medicine *catalog.Medicine `json:"medicine,omitempty"`
}

// Prescription is the final decision artifact produced once every symptom
// has been clarified.
type Prescription struct {
	Text    string          `json:"text"`
	Details []SymptomDetail `json:"details"`
}

// Session is the aggregate root of one consultation. Patient and Symptoms
// are immutable after creation; Cursor only moves forward; Answers only
// grows. Exactly one of Pending or Result is set once the first advance has
// run. Version backs the store's optimistic update check.
type Session struct {
	ID             uuid.UUID       `json:"id"`
	Patient        Patient         `json:"patient"`
	Symptoms       []string        `json:"symptoms"`
	Cursor         int             `json:"cursor"`
	Answers        map[string][]QA `json:"answers"`
	Pending        *Question       `json:"pending,omitempty"`
	Status         Status          `json:"status"`
	Result         *Prescription   `json:"result,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	LastActivityAt time.Time       `json:"last_activity_at"`
	Version        int64           `json:"version"`
}

// CurrentSymptom returns the symptom being clarified, or "" once the cursor
// has run past the end.
func (s *Session) CurrentSymptom() string {
	if s.Cursor < 0 || s.Cursor >= len(s.Symptoms) {
		return ""
	}
	return s.Symptoms[s.Cursor]
}

// Clone deep-copies the session so callers can mutate freely without
// touching the snapshot a store handed out.
func (s *Session) Clone() *Session {
	out := *s
	out.Symptoms = append([]string(nil), s.Symptoms...)
	if s.Answers != nil {
		out.Answers = make(map[string][]QA, len(s.Answers))
		for k, v := range s.Answers {
			out.Answers[k] = append([]QA(nil), v...)
		}
	}
	if s.Pending != nil {
		q := *s.Pending
		q.Options = append([]string(nil), s.Pending.Options...)
		out.Pending = &q
	}
	if s.Result != nil {
		res := *s.Result
		res.Details = make([]SymptomDetail, len(s.Result.Details))
		for i, d := range s.Result.Details {
			nd := d
			if d.Info != nil {
				nd.Info = make(map[string]string, len(d.Info))
				for k, v := range d.Info {
					nd.Info[k] = v
				}
			}
			if d.Medicine != nil {
				m := *d.Medicine
				nd.Medicine = &m
			}
			res.Details[i] = nd
		}
		out.Result = &res
	}
	return &out
}
