package services

import (
	"context"
	"fmt"
	"strings"

	"crewdesk/internal/models"

	"cloud.google.com/go/vertexai/genai"
)

// VertexInterviewer asks a Gemini model on Vertex AI to play the hiring
// manager.
type VertexInterviewer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewVertexInterviewer(ctx context.Context, projectID, location, modelName string) (*VertexInterviewer, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(512)

	return &VertexInterviewer{client: client, model: model}, nil
}

func (v *VertexInterviewer) Reply(ctx context.Context, skills []string, history []models.InterviewTurn, answer string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(interviewPrompt(skills, history, answer)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

func (v *VertexInterviewer) Close() error {
	return v.client.Close()
}

// interviewPrompt frames the transcript so the model answers as the
// hiring manager for an installer position.
func interviewPrompt(skills []string, history []models.InterviewTurn, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User is interviewing for: %s.\n", strings.Join(skills, ", "))
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, t := range history {
			speaker := "Hiring manager"
			if t.Role == models.RoleApplicant {
				speaker = "Applicant"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, t.Content)
		}
	}
	fmt.Fprintf(&b, "User said: %s.\n", answer)
	b.WriteString("Act as a hiring manager. Reply with one short follow-up question or comment.")
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}
	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}
	return result, nil
}
