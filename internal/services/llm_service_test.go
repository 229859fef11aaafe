package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel answers every prompt with a canned reply.
type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLLMService_ExtractJobDetails(t *testing.T) {
	model := &fakeModel{reply: "```json\n" + `{
		"company_name": " Acme ",
		"role_title": "Senior Backend Engineer",
		"location": "Remote",
		"description": "Build APIs.",
		"tech_stack": ["Go", "PostgreSQL"],
		"salary_range": null
	}` + "\n```"}
	svc := &LLMService{Client: model}

	job, err := svc.ExtractJobDetails(context.Background(), "<html><h1>Senior Backend Engineer</h1></html>")
	require.NoError(t, err)
	assert.Equal(t, "Acme", job.CompanyName)
	assert.Equal(t, "Senior Backend Engineer", job.Title)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, job.TechStack)
	assert.Empty(t, job.SalaryRange)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "<h1>Senior Backend Engineer</h1>")
}

func TestLLMService_TruncatesLongPostings(t *testing.T) {
	model := &fakeModel{reply: `{"company_name":"Acme","role_title":"SRE","tech_stack":null}`}
	svc := &LLMService{Client: model}

	job, err := svc.ExtractJobDetails(context.Background(), strings.Repeat("x", maxPostingChars+500))
	require.NoError(t, err)
	assert.NotNil(t, job.TechStack)
	assert.NotContains(t, model.prompts[0], strings.Repeat("x", maxPostingChars+1))
}

func TestLLMService_Failures(t *testing.T) {
	ctx := context.Background()

	var disabled *LLMService
	_, err := disabled.ExtractJobDetails(ctx, "posting")
	assert.ErrorIs(t, err, ErrLLMDisabled)

	_, err = NewLLMService(ctx, "", "gemini-2.5-flash")
	assert.ErrorIs(t, err, ErrLLMDisabled)

	boom := errors.New("quota exceeded")
	_, err = (&LLMService{Client: &fakeModel{err: boom}}).ExtractJobDetails(ctx, "posting")
	assert.ErrorIs(t, err, boom)

	_, err = (&LLMService{Client: &fakeModel{reply: "Sorry, I cannot help with that."}}).ExtractJobDetails(ctx, "posting")
	assert.Error(t, err)
}
