// Package tools holds the static catalogue of content-generation tools: each
// tool owns a typed input, a typed output, a prompt builder and a deterministic
// fallback synthesizer.
package tools

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
)

// Reserved fields set on every synthesized payload.
const (
	FallbackMarker    = "_fallback"
	GeneratedByField  = "generatedBy"
	GeneratedFallback = "fallback"
)

// Definition is the static description of one tool.
type Definition struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	IncludedInTrial bool   `json:"includedInTrial"`
	MinPlan         string `json:"minPlan"`
	// PatchMissing lets the dispatcher fill absent top-level sections of a model
	// payload from the fallback instead of discarding the whole payload.
	PatchMissing bool `json:"-"`
}

// Prompt is a model-ready generation request.
type Prompt struct {
	System      string
	Instruction string
	Schema      jsonschema.Definition
	Required    []string
}

// Tool is the registry entry for one tool identifier.
type Tool interface {
	Definition() Definition
	Schema() jsonschema.Definition
	// Decode converts the caller's untyped input into the tool's input type
	// with defaults applied.
	Decode(raw map[string]any) (any, error)
	Build(input any) Prompt
	// Fallback never fails and never performs I/O.
	Fallback(input any) map[string]any
}

type normalizer interface {
	normalize()
}

type toolSpec[I any, O any] struct {
	def      Definition
	schema   jsonschema.Definition
	build    func(in *I) string
	system   string
	fallback func(in *I) O
}

func newTool[I any, O any](def Definition, system string, build func(*I) string, fallback func(*I) O) *toolSpec[I, O] {
	var zero O
	schema, err := jsonschema.GenerateSchemaForType(zero)
	if err != nil {
		panic(fmt.Sprintf("tools: schema for %s: %v", def.ID, err))
	}
	return &toolSpec[I, O]{
		def:      def,
		schema:   *schema,
		build:    build,
		system:   system,
		fallback: fallback,
	}
}

func (t *toolSpec[I, O]) Definition() Definition        { return t.def }
func (t *toolSpec[I, O]) Schema() jsonschema.Definition { return t.schema }

func (t *toolSpec[I, O]) Decode(raw map[string]any) (any, error) {
	in := new(I)
	if err := decodeInput(raw, in); err != nil {
		return nil, err
	}
	if n, ok := any(in).(normalizer); ok {
		n.normalize()
	}
	return in, nil
}

func (t *toolSpec[I, O]) input(v any) *I {
	if in, ok := v.(*I); ok && in != nil {
		return in
	}
	in := new(I)
	if n, ok := any(in).(normalizer); ok {
		n.normalize()
	}
	return in
}

func (t *toolSpec[I, O]) Build(v any) Prompt {
	in := t.input(v)
	return Prompt{
		System:      t.system + " " + jsonOnlyRule,
		Instruction: t.build(in) + "\n\n" + schemaBlock(t.schema),
		Schema:      t.schema,
		Required:    append([]string(nil), t.schema.Required...),
	}
}

func (t *toolSpec[I, O]) Fallback(v any) map[string]any {
	out := t.fallback(t.input(v))
	payload, err := toPayload(out)
	if err != nil {
		// O is a plain struct of strings, numbers and slices; marshalling cannot fail.
		payload = map[string]any{}
	}
	payload[FallbackMarker] = true
	payload[GeneratedByField] = GeneratedFallback
	return payload
}

const jsonOnlyRule = "Respond with exactly one JSON object and no prose, markdown or code fences."

func schemaBlock(schema jsonschema.Definition) string {
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return ""
	}
	return "Return a JSON object that matches this JSON schema exactly:\n" + string(b)
}

func toPayload(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Registry resolves tool identifiers. It is built once and read-only afterwards.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools.
func NewRegistry(list ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(list))}
	for _, t := range list {
		id := t.Definition().ID
		if _, dup := r.tools[id]; dup {
			panic("tools: duplicate tool id " + id)
		}
		r.tools[id] = t
		r.order = append(r.order, id)
	}
	return r
}

// Default returns the registry with every built-in tool.
func Default() *Registry {
	return NewRegistry(
		SEOAudit(),
		SocialMedia(),
		BlogWriting(),
		EmailMarketing(),
		ClientReporting(),
		AdCopy(),
		LandingPage(),
		CompetitorAnalysis(),
		ColdOutreach(),
		ReelsScripts(),
		ProductLaunch(),
		BlogToVideo(),
		LocalSEO(),
	)
}

// Lookup returns the tool registered under id.
func (r *Registry) Lookup(id string) (Tool, bool) {
	t, ok := r.tools[id]
	return t, ok
}

// All returns tools in registration order.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tools[id])
	}
	return out
}

// Definitions returns every tool definition in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tools[id].Definition())
	}
	return out
}

// IDs returns the sorted tool identifiers.
func (r *Registry) IDs() []string {
	ids := append([]string(nil), r.order...)
	sort.Strings(ids)
	return ids
}

// trialTool and paidTool keep the catalogue below readable.
func trialTool(id, name, category, description string) Definition {
	return Definition{ID: id, Name: name, Category: category, Description: description,
		IncludedInTrial: true, MinPlan: models.PlanStarter, PatchMissing: true}
}

func paidTool(id, name, category, description, minPlan string) Definition {
	return Definition{ID: id, Name: name, Category: category, Description: description,
		MinPlan: minPlan, PatchMissing: true}
}
