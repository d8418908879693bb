// Package ask orchestrates one analytics question end to end: translate,
// fall back, resolve the chart type, execute, and assemble the response.
package ask

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"propel-insights/internal/catalog"
	"propel-insights/internal/domain"
	"propel-insights/internal/planner"
	"propel-insights/internal/translator"
)

// PlanTranslator is the model-backed prompt-to-plan dependency.
type PlanTranslator interface {
	Translate(ctx context.Context, question string, schema map[string][]domain.FieldDescriptor) (*domain.Plan, error)
}

// PlanExecutor runs a validated plan for a tenant.
type PlanExecutor interface {
	Execute(ctx context.Context, plan *domain.Plan, tenant *domain.Tenant) *domain.QueryResult
}

// Response is the query endpoint payload.
type Response struct {
	Prompt           string        `json:"prompt"`
	Plan             *domain.Plan  `json:"plan"`
	Answer           *string       `json:"answer"`
	Chart            *domain.Chart `json:"chart"`
	Table            *domain.Table `json:"table"`
	TranslatorFailed bool          `json:"translator_failed,omitempty"`
	TranslatorError  string        `json:"translator_error,omitempty"`

	// Failed marks a genuine backend fault, used by the API layer to pick
	// the response status. Ordinary user mistakes leave it false.
	Failed bool `json:"-"`
}

// Service answers natural-language analytics questions.
type Service struct {
	translator PlanTranslator
	executor   PlanExecutor
	catalog    *catalog.Catalog
	logger     *slog.Logger
}

// New creates the ask service.
func New(tr PlanTranslator, ex PlanExecutor, cat *catalog.Catalog, logger *slog.Logger) *Service {
	return &Service{translator: tr, executor: ex, catalog: cat, logger: logger}
}

var greetings = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"}

const greetingReply = "Hello! Ask me about your projects, bookings, customers, units, employees, marketing campaigns, or revenue."

// Ask answers one question for one tenant.
func (s *Service) Ask(ctx context.Context, tenant *domain.Tenant, prompt string) (*Response, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrValidation("prompt must not be empty")
	}

	if isGreeting(prompt) {
		return &Response{Prompt: prompt, Answer: strPtr(greetingReply)}, nil
	}

	plan, terr := s.translator.Translate(ctx, prompt, s.catalog.Schema())
	resp := &Response{Prompt: prompt}
	switch {
	case terr == nil:

	case isParseError(terr):
		// The model ran but produced nothing plan-shaped. That is a
		// different situation from "model never ran": report it instead
		// of guessing with the keyword planner.
		resp.Answer = strPtr("Could not parse query plan. Please try rephrasing.")
		return resp, nil

	default:
		var f *translator.Failure
		if errors.As(terr, &f) {
			resp.TranslatorError = f.Detail
		} else {
			resp.TranslatorError = terr.Error()
		}
		resp.TranslatorFailed = true
		plan = planner.HeuristicPlan(prompt)
	}

	planner.ResolveChartType(plan, prompt)
	resp.Plan = plan

	result := s.executor.Execute(ctx, plan, tenant)
	if text := result.AnswerText(); text != "" {
		resp.Answer = strPtr(text)
	}
	resp.Chart = result.Chart
	resp.Table = result.Table
	resp.Failed = result.Failed

	s.logger.Info("answered query",
		slog.String("tenant_id", tenant.ID),
		slog.String("dataset", plan.Dataset),
		slog.String("chart_type", string(plan.ChartType)),
		slog.Bool("translator_failed", resp.TranslatorFailed),
		slog.Bool("failed", resp.Failed))

	return resp, nil
}

// SchemaField is one catalog entry in the schema endpoint payload.
type SchemaField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Synonyms []string `json:"synonyms"`
}

// Schema returns the tenant-visible field listing per dataset.
func (s *Service) Schema() map[string][]SchemaField {
	out := map[string][]SchemaField{}
	for dataset, fields := range s.catalog.Schema() {
		list := make([]SchemaField, 0, len(fields))
		for _, d := range fields {
			synonyms := d.Synonyms
			if synonyms == nil {
				synonyms = []string{}
			}
			list = append(list, SchemaField{
				Key:      d.Key,
				Label:    d.Label,
				Type:     string(d.DataType),
				Synonyms: synonyms,
			})
		}
		out[dataset] = list
	}
	return out
}

func isGreeting(prompt string) bool {
	p := strings.ToLower(strings.TrimRight(strings.TrimSpace(prompt), "!. "))
	for _, g := range greetings {
		if p == g {
			return true
		}
	}
	return false
}

func isParseError(err error) bool {
	var pe *translator.ParseError
	return errors.As(err, &pe)
}

func strPtr(s string) *string { return &s }
