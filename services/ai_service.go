package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// geminiModelName is the default extraction model.
const geminiModelName = "gemini-1.5-flash"

// maxPromptContentBytes bounds how much page text is sent per extraction
// call.
const maxPromptContentBytes = 12_000

// AIExtraction is the structured output of an AI extraction call. Fields
// mirror the selector-based extraction so the two can be merged.
type AIExtraction struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Amount             string   `json:"amount"`
	Deadline           string   `json:"deadline"`
	Eligibility        []string `json:"eligibility"`
	ApplicationURL     string   `json:"application_url"`
	Provider           string   `json:"provider"`
	ApplicationProcess string   `json:"application_process"`
	Benefits           []string `json:"benefits"`
	RequiredDocuments  []string `json:"required_documents"`
}

// AIExtractor extracts scholarship fields from page text with an LLM. It is
// an optional enrichment: callers must tolerate a nil extractor and treat
// every error as a soft failure.
type AIExtractor interface {
	ExtractScholarships(ctx context.Context, pageText string) ([]AIExtraction, error)
	Close() error
}

// GeminiExtractor implements AIExtractor on Google Gemini.
type GeminiExtractor struct {
	client *genai.Client
	model  string
	logger *logrus.Entry
}

// NewGeminiExtractor creates an extractor. Returns (nil, nil) when no API
// key is configured so the pipeline runs selector-only.
func NewGeminiExtractor(ctx context.Context, apiKey string) (*GeminiExtractor, error) {
	if apiKey == "" {
		logrus.Info("No Gemini API key configured, AI extraction disabled")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiExtractor{
		client: client,
		model:  geminiModelName,
		logger: logrus.WithField("service", "ai_extractor"),
	}, nil
}

const extractionPrompt = `You are extracting scholarship listings from an Indian scholarship portal page.
Return a JSON array. Each element describes one scholarship with these fields:
title, description, amount, deadline, eligibility (array of strings),
application_url, provider, application_process, benefits (array),
required_documents (array). Use empty strings or empty arrays for unknown
fields. Do not invent scholarships that are not on the page.

Page text:
%s`

// ExtractScholarships asks the model for structured listings from page text.
func (extractor *GeminiExtractor) ExtractScholarships(ctx context.Context, pageText string) ([]AIExtraction, error) {
	if len(pageText) > maxPromptContentBytes {
		pageText = pageText[:maxPromptContentBytes]
	}

	model := extractor.client.GenerativeModel(extractor.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	response, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(extractionPrompt, pageText)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(response)
	if err != nil {
		return nil, err
	}

	var extractions []AIExtraction
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &extractions); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	extractor.logger.WithField("count", len(extractions)).Debug("AI extraction returned listings")
	return extractions, nil
}

// Close releases the underlying client.
func (extractor *GeminiExtractor) Close() error {
	if extractor.client != nil {
		return extractor.client.Close()
	}
	return nil
}

func extractTextFromResponse(response *genai.GenerateContentResponse) (string, error) {
	if len(response.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := response.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
