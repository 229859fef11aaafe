package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/justsurfingit/applicant-tracker/internal/dtos"
)

// ErrLLMDisabled is returned when no Gemini key is configured.
var ErrLLMDisabled = errors.New("job extraction is not configured")

// maxPostingChars caps how much of a posting is sent to the model.
const maxPostingChars = 20000

// JobExtractor turns a pasted job posting into structured fields.
type JobExtractor interface {
	ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.ExtractedJob, error)
}

type LLMService struct {
	Client llms.Model
}

// NewLLMService connects to Gemini through langchaingo.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return nil, ErrLLMDisabled
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_range": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails asks the model for the posting's structured fields.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.ExtractedJob, error) {
	if s == nil || s.Client == nil {
		return nil, ErrLLMDisabled
	}
	if len(rawHTML) > maxPostingChars {
		rawHTML = rawHTML[:maxPostingChars]
	}

	prompt := fmt.Sprintf(jobExtractionPrompt, rawHTML)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt, llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("llm call: %w", err)
	}

	job, err := parseExtraction(resp)
	if err != nil {
		log.WithError(err).WithField("raw", truncate(resp, 200)).Warn("LLM returned unparseable job JSON")
		return nil, err
	}
	return job, nil
}

// parseExtraction tolerates the markdown fences models add despite being told
// not to.
func parseExtraction(resp string) (*dtos.ExtractedJob, error) {
	s := strings.TrimSpace(resp)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var job dtos.ExtractedJob
	if err := json.Unmarshal([]byte(s), &job); err != nil {
		return nil, fmt.Errorf("parse extracted job: %w", err)
	}
	job.CompanyName = strings.TrimSpace(job.CompanyName)
	job.Title = strings.TrimSpace(job.Title)
	if job.TechStack == nil {
		job.TechStack = []string{}
	}
	return &job, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
