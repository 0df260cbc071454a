// Package models defines the request and response types of the fact-check
// API, plus the intermediate shape of a parsed Mistral analysis.
package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/professor-icebear/Mistral-Fact-Checker/internal/apierr"
)

// Input kinds reported in FactCheckResponse.InputType.
const (
	InputText  = "text"
	InputURL   = "url"
	InputImage = "image"
)

// MaxContextLength caps the optional context accompanying a text request.
const MaxContextLength = 1000

// TextRequest is the body of POST /api/fact-check/text.
type TextRequest struct {
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

// Validate checks the field constraints. maxTextLength comes from config.
func (r TextRequest) Validate(maxTextLength int) error {
	if strings.TrimSpace(r.Text) == "" {
		return apierr.Validation("Text cannot be empty or whitespace only")
	}
	if len([]rune(r.Text)) > maxTextLength {
		return apierr.Validation(fmt.Sprintf("Text exceeds maximum length of %d characters", maxTextLength))
	}
	if len([]rune(r.Context)) > MaxContextLength {
		return apierr.Validation(fmt.Sprintf("Context exceeds maximum length of %d characters", MaxContextLength))
	}
	return nil
}

// Content returns the trimmed text to analyze, prefixed with the optional
// context when present.
func (r TextRequest) Content() string {
	text := strings.TrimSpace(r.Text)
	if r.Context != "" {
		return fmt.Sprintf("Context: %s\n\nContent: %s", r.Context, text)
	}
	return text
}

// URLRequest is the body of POST /api/fact-check/url.
type URLRequest struct {
	URL string `json:"url"`
}

// Validate requires a well-formed absolute http(s) URL.
func (r URLRequest) Validate() error {
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apierr.Validation("URL must be a valid absolute http or https URL")
	}
	return nil
}

// EncodedImage is an uploaded image prepared for the vision model.
type EncodedImage struct {
	Base64 string
	MIME   string
}

// AnalysisResult is the raw parsed form of a Mistral JSON reply. Every field
// is optional on parse; pointers distinguish absent from zero so defaults can
// be applied during normalization.
type AnalysisResult struct {
	Rating           *float64    `json:"rating"`
	Confidence       *float64    `json:"confidence"`
	Explanation      *string     `json:"explanation"`
	Analysis         *string     `json:"analysis"`
	CorrectAspects   []string    `json:"correct_aspects"`
	IncorrectAspects []string    `json:"incorrect_aspects"`
	Sources          []RawSource `json:"sources"`
}

// RawSource is a source entry as the model returned it. All three fields are
// required once the entry exists; a missing field fails normalization.
type RawSource struct {
	Title     *string `json:"title"`
	URL       *string `json:"url"`
	Relevance *string `json:"relevance"`
}

// Source is a verified citation in the final response.
type Source struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Relevance string `json:"relevance"`
}

// FactCheckResponse is the stable output contract of all three endpoints.
type FactCheckResponse struct {
	Rating           float64  `json:"rating"`
	Explanation      string   `json:"explanation"`
	Confidence       float64  `json:"confidence"`
	Analysis         string   `json:"analysis"`
	CorrectAspects   []string `json:"correct_aspects"`
	IncorrectAspects []string `json:"incorrect_aspects"`
	Sources          []Source `json:"sources"`
	Timestamp        string   `json:"timestamp"`
	InputType        string   `json:"input_type"`
}

// HealthResponse is returned by GET / and GET /health.
type HealthResponse struct {
	Status            string `json:"status"`
	Service           string `json:"service"`
	Version           string `json:"version"`
	MistralConnection string `json:"mistral_connection"`
}

// BuildResponse normalizes a parsed analysis into the response contract:
// absent fields get defaults, rating and confidence are clamped into range,
// and the current UTC time is stamped on. A source entry missing a required
// field fails the whole normalization.
func BuildResponse(result AnalysisResult, inputType string) (FactCheckResponse, error) {
	resp := FactCheckResponse{
		Rating:           5.0,
		Explanation:      "No explanation provided",
		Confidence:       0.5,
		Analysis:         "No analysis available",
		CorrectAspects:   []string{},
		IncorrectAspects: []string{},
		Sources:          []Source{},
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		InputType:        inputType,
	}

	if result.Rating != nil {
		resp.Rating = clamp(*result.Rating, 0, 10)
	}
	if result.Confidence != nil {
		resp.Confidence = clamp(*result.Confidence, 0, 1)
	}
	if result.Explanation != nil {
		resp.Explanation = *result.Explanation
	}
	if result.Analysis != nil {
		resp.Analysis = *result.Analysis
	}
	if result.CorrectAspects != nil {
		resp.CorrectAspects = result.CorrectAspects
	}
	if result.IncorrectAspects != nil {
		resp.IncorrectAspects = result.IncorrectAspects
	}

	for i, src := range result.Sources {
		if src.Title == nil || src.URL == nil || src.Relevance == nil {
			return FactCheckResponse{}, fmt.Errorf("source entry %d is missing a required field", i)
		}
		resp.Sources = append(resp.Sources, Source{
			Title:     *src.Title,
			URL:       *src.URL,
			Relevance: *src.Relevance,
		})
	}

	return resp, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
