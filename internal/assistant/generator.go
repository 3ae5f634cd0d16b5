// Package assistant produces the daily verse, verse explanations and answers
// to free-form questions, and tracks the state of each of those workflows.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrGeneratorUnavailable is returned by generators that cannot reach a model.
var ErrGeneratorUnavailable = errors.New("text generation is not configured")

// DailyVerse is a verse chosen by the model for the day.
type DailyVerse struct {
	Reference string `json:"reference" validate:"required"`
	Text      string `json:"text" validate:"required"`
}

// FallbackDailyVerse is shown whenever the daily verse cannot be generated.
var FallbackDailyVerse = DailyVerse{
	Reference: "Genesis 1:1",
	Text:      "In the beginning God created the heavens and the earth.",
}

const (
	ExplanationFallback = "Sorry, I was unable to generate an explanation for this verse. Please try again."
	AnswerFallback      = "Sorry, I encountered an error trying to answer your question. Please check your connection and try again."
)

// Generator is a text generation backend.
type Generator interface {
	DailyVerse(ctx context.Context) (DailyVerse, error)
	Explain(ctx context.Context, reference, text string) (string, error)
	Answer(ctx context.Context, question string) (string, error)
}

var validate = validator.New()

// parseDailyVerse extracts the {reference, text} object from model output and
// checks that both fields are present.
func parseDailyVerse(output string) (DailyVerse, error) {
	jsonStr, err := extractJSON(output)
	if err != nil {
		return DailyVerse{}, err
	}

	var v DailyVerse
	if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
		return DailyVerse{}, fmt.Errorf("decode daily verse: %w", err)
	}
	v.Reference = strings.TrimSpace(v.Reference)
	v.Text = strings.TrimSpace(v.Text)
	if err := validate.Struct(v); err != nil {
		return DailyVerse{}, fmt.Errorf("invalid daily verse: %w", err)
	}
	return v, nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}

// Offline is a Generator used when no model is configured. Every call fails,
// so each workflow shows its fallback.
type Offline struct{}

func (Offline) DailyVerse(context.Context) (DailyVerse, error) {
	return DailyVerse{}, ErrGeneratorUnavailable
}

func (Offline) Explain(context.Context, string, string) (string, error) {
	return "", ErrGeneratorUnavailable
}

func (Offline) Answer(context.Context, string) (string, error) {
	return "", ErrGeneratorUnavailable
}
