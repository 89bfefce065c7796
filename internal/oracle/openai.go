package oracle

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/usman11267/ai-project/internal/session"
)

const prescriberSystemPrompt = `You are a kind, professional doctor. Rewrite the draft prescription below as a clean, plain-text prescription.
Rules:
- Bullet points only, no markdown formatting characters.
- For every medicine give: name, dosage, times per day, total days.
- State what to take the medicine with (water, food).
- Do not explain the medicines and do not add precautions.`

// LLMPrescriber polishes the template prescription text through a chat
// completion model. The structured per-symptom details always come from the
// wrapped oracle; only the free text is rewritten. Any API failure is
// returned as an error so the engine leaves session state untouched and the
// caller can retry.
type LLMPrescriber struct {
	inner  session.PrescriptionOracle
	client *openai.Client
	model  string
}

func NewLLMPrescriber(inner session.PrescriptionOracle, apiKey, model string) *LLMPrescriber {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLMPrescriber{
		inner:  inner,
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *LLMPrescriber) Generate(ctx context.Context, patient session.Patient, symptoms []string, answers map[string][]session.QA) (*session.Prescription, error) {
	draft, err := p.inner.Generate(ctx, patient, symptoms, answers)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prescriberSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: draft.Text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) > 0 {
		if text := strings.TrimSpace(resp.Choices[0].Message.Content); text != "" {
			draft.Text = text
		}
	}
	return draft, nil
}
