package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usman11267/ai-project/internal/session"
)

type fakeTelegram struct {
	messages  []string
	documents []string
	chatIDs   []int64
	msgErr    error
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) error {
	if f.msgErr != nil {
		return f.msgErr
	}
	f.chatIDs = append(f.chatIDs, chatID)
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeTelegram) SendDocument(chatID int64, fileData []byte, fileName string) error {
	f.chatIDs = append(f.chatIDs, chatID)
	f.documents = append(f.documents, fileName)
	return nil
}

func completedSession() *session.Session {
	age := 30
	return &session.Session{
		ID:       uuid.New(),
		Patient:  session.Patient{Name: "Ali", Age: &age},
		Symptoms: []string{"fever"},
		Status:   session.StatusComplete,
		Result: &session.Prescription{
			Text: "Patient Name: Ali\nPanadol (Tablet), take as directed for the full course.",
			Details: []session.SymptomDetail{
				{Symptom: "fever", Info: map[string]string{"duration": "3 days"}},
			},
		},
		CreatedAt:      time.Now(),
		LastActivityAt: time.Now(),
	}
}

func TestRenderRequiresResult(t *testing.T) {
	svc := NewService(&fakeTelegram{}, 42)
	_, err := svc.Render(&session.Session{ID: uuid.New()})
	assert.Error(t, err)
}

func TestSendDoctorReport(t *testing.T) {
	tg := &fakeTelegram{}
	svc := NewService(tg, 42)
	sess := completedSession()

	if _, err := svc.Render(sess); err != nil {
		t.Skipf("no TTF font available on this machine: %v", err)
	}

	require.NoError(t, svc.SendDoctorReport(context.Background(), sess))

	require.Len(t, tg.messages, 1)
	assert.Contains(t, tg.messages[0], "Ali")
	require.Len(t, tg.documents, 1)
	assert.Equal(t, "prescription_"+sess.ID.String()+".pdf", tg.documents[0])
	for _, id := range tg.chatIDs {
		assert.Equal(t, int64(42), id)
	}
}

func TestSendDoctorReportMessageFailure(t *testing.T) {
	tg := &fakeTelegram{msgErr: errors.New("bot blocked")}
	svc := NewService(tg, 42)
	sess := completedSession()

	if _, err := svc.Render(sess); err != nil {
		t.Skipf("no TTF font available on this machine: %v", err)
	}

	err := svc.SendDoctorReport(context.Background(), sess)
	assert.Error(t, err)
	assert.Empty(t, tg.documents, "no document goes out when the notification fails")
}
