// Package translator turns natural-language questions into query plans by
// prompting an external language model and parsing the first JSON object out
// of its reply. Every failure mode is typed: model-side failures tell the
// caller to fall back to the keyword planner, while a reply that arrived but
// contained no plan is a parse error the caller surfaces directly.
package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"propel-insights/internal/domain"
	"propel-insights/internal/planner"
)

// FailureKind classifies why the model produced no usable text.
type FailureKind string

// Failure kinds, in the order they are detected.
const (
	FailureUnavailable FailureKind = "unavailable" // missing credentials or client
	FailureTransport   FailureKind = "transport"   // network, timeout, non-200
	FailureBlocked     FailureKind = "blocked"     // safety-filtered response
	FailureEmpty       FailureKind = "empty"       // no candidates or empty text
)

// Failure is a model-side translation failure. It is recorded for
// observability and always recovered from by the heuristic planner.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("translator %s: %s", f.Kind, f.Detail)
}

// ParseError means the model answered but its text contained no well-formed
// plan. Unlike Failure this is not recovered by the heuristic planner; the
// caller reports it so "model ran but was incoherent" stays distinguishable
// from "model never ran".
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return "translator parse: " + e.Detail
}

// TextModel is the outbound language-model dependency.
type TextModel interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Translator builds plans from question text via a TextModel.
type Translator struct {
	model  TextModel
	logger *slog.Logger
}

// New creates a Translator around the given model.
func New(model TextModel, logger *slog.Logger) *Translator {
	return &Translator{model: model, logger: logger}
}

// Translate sends instructions, the tenant-visible schema, and the question
// to the model, then extracts and normalizes the plan from its reply. The
// error, when non-nil, is either a *Failure or a *ParseError.
func (t *Translator) Translate(ctx context.Context, question string, schema map[string][]domain.FieldDescriptor) (*domain.Plan, error) {
	reply, err := t.model.Generate(ctx, BuildSystemPrompt(schema), question)
	if err != nil {
		var f *Failure
		if !errors.As(err, &f) {
			f = &Failure{Kind: FailureTransport, Detail: err.Error()}
		}
		t.logger.Warn("model translation failed",
			slog.String("kind", string(f.Kind)),
			slog.String("detail", f.Detail))
		return nil, f
	}

	raw, err := planner.ExtractJSON(reply)
	if err != nil {
		return nil, &ParseError{Detail: "no JSON object in model reply"}
	}

	var plan domain.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("malformed plan JSON: %v", err)}
	}
	if plan.Dataset == "" {
		return nil, &ParseError{Detail: "plan is missing a dataset"}
	}

	plan.Normalize()
	return &plan, nil
}
