package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists sessions in a single table, with the nested state
// (patient, symptoms, answers, pending question, result) held in JSON
// columns. The optimistic check rides on the version column: updates only
// apply when the stored version still matches the snapshot's.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) Create(ctx context.Context, s *Session) error {
	patient, symptoms, answers, pending, result, err := marshalState(s)
	if err != nil {
		return err
	}
	s.Version = 1
	query := `
		INSERT INTO sessions (id, patient, symptoms, cursor, answers, pending, status, result, created_at, last_activity_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, patient, symptoms, s.Cursor, answers, pending, string(s.Status), result, s.CreatedAt, s.LastActivityAt, s.Version)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `
		SELECT id, patient, symptoms, cursor, answers, pending, status, result, created_at, last_activity_at, version
		FROM sessions WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var s Session
	var status string
	var patient, symptoms, answers []byte
	var pending, result []byte
	err := row.Scan(
		&s.ID, &patient, &symptoms, &s.Cursor, &answers, &pending,
		&status, &result, &s.CreatedAt, &s.LastActivityAt, &s.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.Status = Status(status)

	if err := json.Unmarshal(patient, &s.Patient); err != nil {
		return nil, fmt.Errorf("unmarshal patient: %w", err)
	}
	if err := json.Unmarshal(symptoms, &s.Symptoms); err != nil {
		return nil, fmt.Errorf("unmarshal symptoms: %w", err)
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if len(pending) > 0 {
		if err := json.Unmarshal(pending, &s.Pending); err != nil {
			return nil, fmt.Errorf("unmarshal pending question: %w", err)
		}
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &s.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return &s, nil
}

func (r *PostgresStore) Update(ctx context.Context, s *Session) error {
	patient, symptoms, answers, pending, result, err := marshalState(s)
	if err != nil {
		return err
	}
	query := `
		UPDATE sessions SET
			patient = $2, symptoms = $3, cursor = $4, answers = $5, pending = $6,
			status = $7, result = $8, last_activity_at = $9, version = version + 1
		WHERE id = $1 AND version = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		s.ID, patient, symptoms, s.Cursor, answers, pending, string(s.Status), result, s.LastActivityAt, s.Version)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		// Either the row is gone or someone committed first.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrNotFound, s.ID)
		}
		return fmt.Errorf("%w: session %s changed since read", ErrConflict, s.ID)
	}
	s.Version++
	return nil
}

func (r *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *PostgresStore) SweepExpired(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE last_activity_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return int(n), nil
}

func marshalState(s *Session) (patient, symptoms, answers, pending, result []byte, err error) {
	if patient, err = json.Marshal(s.Patient); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal patient: %w", err)
	}
	if symptoms, err = json.Marshal(s.Symptoms); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal symptoms: %w", err)
	}
	a := s.Answers
	if a == nil {
		a = map[string][]QA{}
	}
	if answers, err = json.Marshal(a); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("marshal answers: %w", err)
	}
	if s.Pending != nil {
		if pending, err = json.Marshal(s.Pending); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("marshal pending question: %w", err)
		}
	}
	if s.Result != nil {
		if result, err = json.Marshal(s.Result); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("marshal result: %w", err)
		}
	}
	return patient, symptoms, answers, pending, result, nil
}
