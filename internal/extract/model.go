package extract

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/validate"
)

//go:embed facts.schema.json
var factsSchemaJSON string

// Completion parameters for the extraction prompt.
const (
	MaxTokens   = 2048
	Temperature = 0.0
)

// Completer sends one system+user prompt to a language model and returns
// the raw text of its reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const systemPrompt = `You extract facts about a public swimming pool from Korean web page text and return them as JSON.

Rules:
1. Leave a field null when the text does not state it. Never guess.
2. Prices are integers in won. "3,400원" becomes 3400.
3. Times use 24h "HH:MM-HH:MM". "오전 6시~오후 10시" becomes "06:00-22:00".
4. Split the free swim timetable per day. When all weekdays share a slot, repeat it for 월 through 금.
5. Return null for a pricing category whose prices are all unknown.
6. Reply with the JSON object only, no prose.`

var factsTemplate = fmt.Sprintf(`{
  "pricing": {
    "일일권": {
      "성인": {"평일": null, "주말": null},
      "청소년": {"평일": null, "주말": null},
      "어린이": {"평일": null, "주말": null},
      "경로": {"평일": null, "주말": null}
    },
    "자유수영": {
      "성인": {"평일": null, "주말": null},
      "청소년": {"평일": null, "주말": null},
      "어린이": {"평일": null, "주말": null},
      "경로": {"평일": null, "주말": null}
    },
    "강습_월": {"성인": null, "청소년": null}
  },
  "free_swim_schedule": {
    "월": ["HH:MM-HH:MM"],
    "화": [], "수": [], "목": [], "금": [], "토": [], "일": [],
    "휴관": %q
  },
  "operating_hours": {
    "월": "HH:MM-HH:MM", "화": "", "수": "", "목": "", "금": "",
    "토": "HH:MM-HH:MM", "일": "HH:MM-HH:MM"
  },
  "phone": "02-XXX-XXXX",
  "lanes": %d,
  "pool_size": %q,
  "parking": %t,
  "notes": %q
}`, validate.TemplateClosure, validate.TemplateLanes, validate.TemplatePoolSize,
	validate.TemplateParking, validate.TemplateNotes)

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("facts.schema.json", strings.NewReader(factsSchemaJSON)); err != nil {
			compileErr = eris.Wrap(err, "extract: add schema resource")
			return
		}
		compiledSchema, compileErr = compiler.Compile("facts.schema.json")
		if compileErr != nil {
			compileErr = eris.Wrap(compileErr, "extract: compile schema")
		}
	})
	return compiledSchema, compileErr
}

// Model extracts facts by prompting a language model.
type Model struct {
	completer Completer
	schema    *jsonschema.Schema
	name      string
	timeout   time.Duration
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithCompletionTimeout bounds each completion call. Zero leaves it to the
// caller's context.
func WithCompletionTimeout(d time.Duration) ModelOption {
	return func(m *Model) { m.timeout = d }
}

// NewModel builds the model strategy. name labels the provider in logs.
func NewModel(c Completer, name string, opts ...ModelOption) (*Model, error) {
	if c == nil {
		return nil, eris.New("extract: model strategy needs a completer")
	}
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "model"
	}
	m := &Model{completer: c, schema: schema, name: name}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name implements Extractor.
func (m *Model) Name() string { return m.name }

// Extract implements Extractor. Unparseable or off-schema replies yield
// ErrNoFacts; completion failures are returned wrapped.
func (m *Model) Extract(ctx context.Context, text, name string) (*model.RawFactBundle, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}

	cctx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	reply, err := m.completer.Complete(cctx, systemPrompt, userPrompt(text, name))
	if err != nil {
		return nil, eris.Wrapf(err, "extract: %s completion", m.name)
	}

	raw, err := m.parse(reply)
	if err != nil {
		zap.L().Debug("extract: discarding model reply",
			zap.String("strategy", m.name),
			zap.String("facility", name),
			zap.Error(err),
		)
		return nil, ErrNoFacts
	}
	if raw.IsEmpty() {
		return nil, ErrNoFacts
	}
	return raw, nil
}

func userPrompt(text, name string) string {
	return fmt.Sprintf(`Extract the following JSON from this swimming pool page. Use null for anything the page does not say.

Pool: %s

Schema:
%s

Page text:
%s`, name, factsTemplate, text)
}

func (m *Model) parse(reply string) (*model.RawFactBundle, error) {
	body := cleanJSON(reply)
	if body == "" {
		return nil, eris.New("extract: no JSON object in reply")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, eris.Wrap(err, "extract: decode reply")
	}
	if err := m.schema.Validate(value); err != nil {
		return nil, eris.Wrap(err, "extract: reply does not match schema")
	}

	dec = json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var raw model.RawFactBundle
	if err := dec.Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "extract: decode facts")
	}
	return &raw, nil
}

// cleanJSON strips code fences and slices the reply from the first '{' to
// the last '}'.
func cleanJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
