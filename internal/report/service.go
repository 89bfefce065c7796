package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signintech/gopdf"

	"github.com/usman11267/ai-project/internal/session"
)

type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

// Service renders completed consultations as PDF prescriptions and delivers
// them to the doctor's Telegram chat.
type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
}

func NewService(tg TelegramClient, doctorChatID int64) *Service {
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
	}
}

// Render produces the printable PDF for a completed session.
func (s *Service) Render(c *session.Session) ([]byte, error) {
	if c.Result == nil {
		return nil, fmt.Errorf("session %s has no prescription", c.ID)
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	// Try the common DejaVuSans locations; Alpine and Debian differ.
	fontPaths := []string{
		"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	}
	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, is ttf-dejavu installed? last error: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Consultation Report (AI Doctor)")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", time.Now().Format("02.01.2006 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Patient: %s", c.Patient.Name))
	pdf.Br(15)
	if c.Patient.Age != nil {
		pdf.Cell(nil, fmt.Sprintf("Age: %d", *c.Patient.Age))
		pdf.Br(15)
	}
	pdf.Cell(nil, fmt.Sprintf("Session: %s", c.ID))
	pdf.Br(25)

	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Symptoms:")
	pdf.Br(15)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	for _, d := range c.Result.Details {
		line := fmt.Sprintf("- %s", d.Symptom)
		if dur := d.Info["duration"]; dur != "" {
			line += fmt.Sprintf(" (duration: %s)", dur)
		}
		if d.Medicine != nil {
			line += fmt.Sprintf(": %s, %s", d.Medicine.Name, d.Medicine.Type)
		}
		lines, _ := pdf.SplitText(line, 500)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
		pdf.Br(5)
	}
	pdf.Br(15)

	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Prescription:")
	pdf.Br(15)
	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	for _, paragraph := range strings.Split(c.Result.Text, "\n") {
		if paragraph == "" {
			pdf.Br(12)
			continue
		}
		lines, _ := pdf.SplitText(paragraph, 500)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// SendDoctorReport renders the PDF and pushes it to the configured chat,
// preceded by a short text notification.
func (s *Service) SendDoctorReport(ctx context.Context, c *session.Session) error {
	data, err := s.Render(c)
	if err != nil {
		return err
	}
	note := fmt.Sprintf("Consultation for %s is complete. Prescription attached.", c.Patient.Name)
	if err := s.tgClient.SendMessage(s.doctorChatID, note); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	fileName := fmt.Sprintf("prescription_%s.pdf", c.ID)
	if err := s.tgClient.SendDocument(s.doctorChatID, data, fileName); err != nil {
		return fmt.Errorf("send telegram document: %w", err)
	}
	return nil
}
