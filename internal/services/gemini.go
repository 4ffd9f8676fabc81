package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/pavangundu/ai-helper/internal/models"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/pavangundu/ai-helper/pkg/logger"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when GEMINI_MODEL is empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// planSchema is the minimal shape a generated plan must have before ingestion.
// Numbering uniqueness is checked by IngestPlan.
const planSchema = `{
  "type": "object",
  "required": ["months"],
  "properties": {
    "months": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["month", "weeks"],
        "properties": {
          "month": {"type": "integer", "minimum": 1},
          "weeks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["week", "dailyTasks"],
              "properties": {
                "week": {"type": "integer", "minimum": 1},
                "dailyTasks": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["day", "aptitudeTask", "dsaTask", "coreTask"],
                    "properties": {
                      "day": {"type": "integer", "minimum": 1},
                      "title": {"type": "string"},
                      "description": {"type": "string"},
                      "aptitudeTask": {"type": "string"},
                      "dsaTask": {"type": "string"},
                      "coreTask": {"type": "string"},
                      "resources": {"type": "array", "items": {"type": "string"}}
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var planSchemaDoc = &lazySchema{url: "schema://roadmap-plan.json", src: planSchema}

// lazySchema compiles a JSON Schema document on first use.
type lazySchema struct {
	url string
	src string

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

func (l *lazySchema) compiled() (*jsonschema.Schema, error) {
	l.once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(l.src))
		if err != nil {
			l.err = fmt.Errorf("parse schema %s: %w", l.url, err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(l.url, doc); err != nil {
			l.err = fmt.Errorf("add schema %s: %w", l.url, err)
			return
		}
		l.schema, l.err = c.Compile(l.url)
	})
	return l.schema, l.err
}

// stripFences removes a markdown code fence around the model's JSON, if any.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// decodeValidated checks model output against schema and decodes it into dest.
// what names the payload in error messages.
func decodeValidated(text string, schema *lazySchema, what string, dest interface{}) error {
	raw := stripFences(text)

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return apperrors.BadGateway("Generator returned invalid JSON", err)
	}

	compiled, err := schema.compiled()
	if err != nil {
		return apperrors.Internal(err.Error())
	}
	if err := compiled.Validate(doc); err != nil {
		return apperrors.BadGateway("Generator returned a malformed "+what, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return apperrors.BadGateway("Generator returned a malformed "+what, err)
	}
	return nil
}

// ParsePlan decodes generator output into a plan after checking it against the plan schema.
func ParsePlan(text string) (*models.RoadmapPlan, error) {
	var plan models.RoadmapPlan
	if err := decodeValidated(text, planSchemaDoc, "roadmap", &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// BuildRoadmapPrompt asks for a plan covering the whole goal timeline with one aptitude,
// one DSA and one core-skill task per day.
func BuildRoadmapPrompt(req GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a complete study roadmap for a %q (level: %s).\n", req.TargetRole, req.CurrentLevel)
	fmt.Fprintf(&b, "Core skill: %s. Study time: %d minutes per day. Total duration: %s.\n", req.CoreSkill, req.DailyStudyTime, req.GoalTimeline)
	b.WriteString("Cover every month of the duration, with 7 days per week.\n\n")
	b.WriteString("Each day has three tasks:\n")
	b.WriteString("- aptitudeTask: arithmetic or reasoning (percentages, time and work, series, seating arrangement, clocks, calendars and similar). Never code.\n")
	b.WriteString("- dsaTask: data structures and algorithms (arrays, binary search, strings, linked lists, recursion, stacks and queues, sliding window, heaps, greedy, trees, graphs, dynamic programming, tries).\n")
	fmt.Fprintf(&b, "- coreTask: a topic specific to %s.\n", req.CoreSkill)
	b.WriteString("Write each task as \"Topic: Detail\" and keep all strings short.\n\n")
	b.WriteString(`Return only JSON of this shape:
{"months":[{"month":1,"weeks":[{"week":1,"dailyTasks":[{"day":1,"title":"","description":"","aptitudeTask":"","dsaTask":"","coreTask":"","resources":[]}]}]}]}`)
	return b.String()
}

// TextGenerator sends one prompt to a language model and returns the reply text.
// With asJSON set the model is asked for a JSON response.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, asJSON bool) (string, error)
}

// GeminiClient is the Gemini API implementation of TextGenerator.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string, asJSON bool) (string, error) {
	config := &genai.GenerateContentConfig{}
	if asJSON {
		config.ResponseMIMEType = "application/json"
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", mapGeminiError(err)
	}

	text := result.Text()
	logger.Debug().Str("model", g.model).Int("bytes", len(text)).Bool("json", asJSON).Msg("Gemini response received")
	return text, nil
}

// PlanGenerator generates roadmaps by prompting a TextGenerator for a JSON plan.
type PlanGenerator struct {
	llm TextGenerator
}

func NewPlanGenerator(llm TextGenerator) *PlanGenerator {
	return &PlanGenerator{llm: llm}
}

func (g *PlanGenerator) Generate(ctx context.Context, req GenerationRequest) (*models.RoadmapPlan, error) {
	text, err := g.llm.Complete(ctx, BuildRoadmapPrompt(req), true)
	if err != nil {
		return nil, err
	}
	return ParsePlan(text)
}

// mapGeminiError turns SDK failures into AppErrors. The SDK returns APIError by value;
// the pointer form is matched too in case a caller wrapped its address.
func mapGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.BadGateway("AI request timed out", err)
	}
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}
	if code == http.StatusTooManyRequests {
		return &apperrors.AppError{Code: http.StatusTooManyRequests, Message: "AI service is busy, try again later", Err: err}
	}
	return apperrors.BadGateway("AI request failed", err)
}
