package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClarificationOracle produces the next question for a symptom given the
// answers collected so far, or nil when the symptom needs no further
// clarification. Implementations must be side-effect free with respect to
// session state.
type ClarificationOracle interface {
	NextQuestion(ctx context.Context, symptom string, prior []QA) (*Question, error)
}

// PrescriptionOracle turns the fully clarified symptom set into the final
// prescription.
type PrescriptionOracle interface {
	Generate(ctx context.Context, patient Patient, symptoms []string, answers map[string][]QA) (*Prescription, error)
}

// ReportSender delivers the finished consultation to the doctor. Failures
// are logged, never surfaced to the patient flow.
type ReportSender interface {
	SendDoctorReport(ctx context.Context, s *Session) error
}

// Resolver normalizes raw symptom input against the catalog.
type Resolver interface {
	Resolve(raw []string) []string
}

const DefaultMaxQuestionsPerSymptom = 8

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	// Reports, when set, receives completed consultations.
	Reports ReportSender
	// MaxQuestionsPerSymptom caps the clarification rounds per symptom so a
	// never-terminating oracle cannot stall a session.
	MaxQuestionsPerSymptom int
	// TTL after which an inactive session is treated as expired. Zero
	// disables expiry on read.
	TTL time.Duration
	// Now is swappable in tests.
	Now func() time.Time
}

// Service drives one session's lifecycle: creation, the per-symptom
// clarification loop, completion, lookup, deletion and expiry. All mutation
// happens on a local copy and is committed to the store only after the full
// advance succeeds, so a failed oracle call leaves the stored session
// untouched.
type Service struct {
	store        Store
	resolver     Resolver
	clarifier    ClarificationOracle
	prescriber   PrescriptionOracle
	reports      ReportSender
	maxQuestions int
	ttl          time.Duration
	now          func() time.Time
}

func NewService(store Store, resolver Resolver, clarifier ClarificationOracle, prescriber PrescriptionOracle, opts Options) *Service {
	if opts.MaxQuestionsPerSymptom <= 0 {
		opts.MaxQuestionsPerSymptom = DefaultMaxQuestionsPerSymptom
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:        store,
		resolver:     resolver,
		clarifier:    clarifier,
		prescriber:   prescriber,
		reports:      opts.Reports,
		maxQuestions: opts.MaxQuestionsPerSymptom,
		ttl:          opts.TTL,
		now:          opts.Now,
	}
}

// StartSession validates and resolves the raw symptoms, runs the first
// clarification advance and persists the session. When no symptom needs any
// clarification the returned session is already complete.
func (svc *Service) StartSession(ctx context.Context, patient Patient, rawSymptoms []string) (*Session, error) {
	if strings.TrimSpace(patient.Name) == "" {
		return nil, fmt.Errorf("%w: patient name is required", ErrInvalidInput)
	}
	if patient.Age != nil && *patient.Age < 0 {
		return nil, fmt.Errorf("%w: patient age must not be negative", ErrInvalidInput)
	}
	symptoms := svc.resolver.Resolve(rawSymptoms)
	if len(symptoms) == 0 {
		return nil, fmt.Errorf("%w: at least one symptom is required", ErrInvalidInput)
	}

	now := svc.now()
	sess := &Session{
		ID:             uuid.New(),
		Patient:        patient,
		Symptoms:       symptoms,
		Answers:        make(map[string][]QA, len(symptoms)),
		Status:         StatusAwaitingAnswer,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := svc.advance(ctx, sess); err != nil {
		return nil, err
	}
	if err := svc.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	if sess.Status == StatusComplete {
		svc.dispatchReport(sess)
	}
	return sess, nil
}

// AnswerQuestion records the answer to the pending question and advances the
// clarification loop. Exactly one concurrent submission per pending question
// can succeed; losers get ErrConflict from the store.
func (svc *Service) AnswerQuestion(ctx context.Context, id uuid.UUID, answer string) (*Session, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer must not be empty", ErrInvalidInput)
	}

	cur, err := svc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != StatusAwaitingAnswer || cur.Pending == nil {
		return nil, fmt.Errorf("%w: session %s has no pending question", ErrInvalidState, id)
	}
	if cur.Pending.Input == InputChoice {
		canonical, ok := matchOption(answer, cur.Pending.Options)
		if !ok {
			return nil, fmt.Errorf("%w: answer %q is not one of the offered options", ErrInvalidInput, answer)
		}
		answer = canonical
	}

	next := cur.Clone()
	symptom := next.CurrentSymptom()
	next.Answers[symptom] = append(next.Answers[symptom], QA{Question: next.Pending.Text, Answer: answer})
	next.Pending = nil
	next.LastActivityAt = svc.now()

	if err := svc.advance(ctx, next); err != nil {
		return nil, err
	}
	if err := svc.store.Update(ctx, next); err != nil {
		return nil, err
	}
	if next.Status == StatusComplete {
		svc.dispatchReport(next)
	}
	return next, nil
}

// GetSession returns the current snapshot; expired sessions read as not
// found.
func (svc *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return svc.load(ctx, id)
}

// DeleteSession removes a session. Deleting an unknown id is a no-op.
func (svc *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return svc.store.Delete(ctx, id)
}

// SweepExpired removes sessions inactive past the TTL. Safe to run
// concurrently with live traffic: a swept in-flight session surfaces as
// ErrNotFound to its next operation.
func (svc *Service) SweepExpired(ctx context.Context) (int, error) {
	if svc.ttl <= 0 {
		return 0, nil
	}
	return svc.store.SweepExpired(ctx, svc.ttl)
}

// QuickPrescription runs the whole clarification loop in one shot without
// persisting anything, answering every question with a stock reply. Kept for
// the legacy one-call consultation endpoint.
func (svc *Service) QuickPrescription(ctx context.Context, patient Patient, rawSymptoms []string) (*Prescription, error) {
	if strings.TrimSpace(patient.Name) == "" {
		return nil, fmt.Errorf("%w: patient name is required", ErrInvalidInput)
	}
	symptoms := svc.resolver.Resolve(rawSymptoms)
	if len(symptoms) == 0 {
		return nil, fmt.Errorf("%w: at least one symptom is required", ErrInvalidInput)
	}

	now := svc.now()
	sess := &Session{
		ID:             uuid.New(),
		Patient:        patient,
		Symptoms:       symptoms,
		Answers:        make(map[string][]QA, len(symptoms)),
		Status:         StatusAwaitingAnswer,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	for sess.Status == StatusAwaitingAnswer {
		if err := svc.advance(ctx, sess); err != nil {
			return nil, err
		}
		if sess.Pending == nil {
			continue
		}
		symptom := sess.CurrentSymptom()
		sess.Answers[symptom] = append(sess.Answers[symptom], QA{
			Question: sess.Pending.Text,
			Answer:   autoAnswer(sess.Pending),
		})
		sess.Pending = nil
	}
	return sess.Result, nil
}

// advance is the clarification-advance procedure: query the oracle for the
// current symptom until it either hands back a question (which becomes the
// single pending question) or signals done, moving the cursor forward. Once
// the cursor runs past the last symptom the completion procedure runs.
func (svc *Service) advance(ctx context.Context, s *Session) error {
	for s.Cursor < len(s.Symptoms) {
		symptom := s.Symptoms[s.Cursor]
		prior := s.Answers[symptom]
		if len(prior) >= svc.maxQuestions {
			// Liveness cap: stop consulting the oracle for this symptom.
			s.Cursor++
			continue
		}
		q, err := svc.clarifier.NextQuestion(ctx, symptom, prior)
		if err != nil {
			return fmt.Errorf("%w: next question for %q: %v", ErrOracleUnavailable, symptom, err)
		}
		if q != nil {
			s.Pending = q
			return nil
		}
		s.Cursor++
	}
	return svc.complete(ctx, s)
}

// complete invokes the prescription oracle and moves the session to its
// terminal state.
func (svc *Service) complete(ctx context.Context, s *Session) error {
	p, err := svc.prescriber.Generate(ctx, s.Patient, s.Symptoms, s.Answers)
	if err != nil {
		return fmt.Errorf("%w: generate prescription: %v", ErrOracleUnavailable, err)
	}
	s.Result = p
	s.Pending = nil
	s.Status = StatusComplete
	return nil
}

func (svc *Service) load(ctx context.Context, id uuid.UUID) (*Session, error) {
	s, err := svc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.ttl > 0 && svc.now().Sub(s.LastActivityAt) > svc.ttl {
		_ = svc.store.Delete(ctx, id)
		return nil, fmt.Errorf("%w: session %s expired", ErrNotFound, id)
	}
	return s, nil
}

// dispatchReport hands the finished consultation to the report sender in the
// background.
func (svc *Service) dispatchReport(s *Session) {
	if svc.reports == nil {
		return
	}
	go func(c *Session) {
		if err := svc.reports.SendDoctorReport(context.Background(), c); err != nil {
			log.Printf("failed to send doctor report for session %s: %v", c.ID, err)
		}
	}(s.Clone())
}

// matchOption finds the offered option the answer refers to, ignoring case
// and surrounding whitespace, and returns its canonical spelling.
func matchOption(answer string, options []string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(opt)) {
			return opt, true
		}
	}
	return "", false
}

// autoAnswer picks a stock answer for the legacy one-shot flow: the first
// option for choice questions, "1 week" for duration questions, otherwise
// "not specified".
func autoAnswer(q *Question) string {
	if q.Input == InputChoice && len(q.Options) > 0 {
		return q.Options[0]
	}
	lower := strings.ToLower(q.Text)
	if strings.Contains(lower, "how long") || strings.Contains(lower, "duration") {
		return "1 week"
	}
	return "not specified"
}
