package mistral

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the instruction templates sent to Mistral. The text template
// has two slots, filled in order with the content kind label and the content
// itself. The templates are the sole mechanism requesting the response
// schema; the client still validates the reply structurally after the fact.
type Prompts struct {
	TextTemplate  string `yaml:"text_template"`
	ImageTemplate string `yaml:"image_template"`
}

const defaultTextTemplate = `You are an expert fact-checker. Analyze the following %s and provide a comprehensive fact-check.

Content to analyze:
%s

Provide a detailed analysis in the following JSON format:
{
    "rating": <number between 0-10, where 10 is completely factual>,
    "confidence": <number between 0-1 indicating your confidence in this assessment>,
    "explanation": "<brief explanation of the rating>",
    "analysis": "<detailed analysis of the content>",
    "correct_aspects": ["<list of correct or verified claims>"],
    "incorrect_aspects": ["<list of incorrect, misleading, or unverified claims>"],
    "sources": [
        {
            "title": "<source title>",
            "url": "<source url>",
            "relevance": "<why this source is relevant>"
        }
    ]
}

Be thorough, objective, and provide credible sources. If you cannot verify something, mention it in the analysis.`

const defaultImageTemplate = `You are an expert fact-checker. Analyze this image and fact-check any claims, text, or information visible in it.

Provide a detailed analysis in the following JSON format:
{
    "rating": <number between 0-10, where 10 is completely factual>,
    "confidence": <number between 0-1 indicating your confidence in this assessment>,
    "explanation": "<brief explanation of the rating>",
    "analysis": "<detailed analysis of the image content>",
    "correct_aspects": ["<list of correct or verified claims>"],
    "incorrect_aspects": ["<list of incorrect, misleading, or unverified claims>"],
    "sources": [
        {
            "title": "<source title>",
            "url": "<source url>",
            "relevance": "<why this source is relevant>"
        }
    ]
}

Be thorough, objective, and provide credible sources.`

func DefaultPrompts() Prompts {
	return Prompts{
		TextTemplate:  defaultTextTemplate,
		ImageTemplate: defaultImageTemplate,
	}
}

// LoadPrompts reads a YAML override file and merges it over the defaults.
// An empty path or missing file returns the defaults without error.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()

	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No prompts file found, using defaults", "path", path)
			return prompts, nil
		}
		return prompts, err
	}

	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return prompts, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	return prompts, nil
}

// BuildTextPrompt embeds the content into the text instruction template.
// contentKind names what is being analyzed ("text" or "webpage").
func (p Prompts) BuildTextPrompt(content, contentKind string) string {
	return fmt.Sprintf(p.TextTemplate, contentKind, content)
}

// BuildImagePrompt returns the vision instruction. The image itself travels
// separately as a content part.
func (p Prompts) BuildImagePrompt() string {
	return p.ImageTemplate
}
