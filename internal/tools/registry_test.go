package tools

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleInputs exercises every tool with a realistic request body.
var sampleInputs = map[string]map[string]any{
	"seo-audit":           {"url": "https://acme.io", "businessName": "Acme", "industry": "SaaS", "keywords": "crm, sales pipeline"},
	"social-media":        {"businessName": "Bean There", "industry": "Cafe", "platforms": []any{"instagram", "tiktok", "x"}, "postCount": "5"},
	"blog-writing":        {"topic": "email deliverability", "keywords": []any{"spf", "dkim"}, "wordCount": 900},
	"email-marketing":     {"businessName": "FitLab", "product": "12-week program", "industry": "gym", "emailCount": 6},
	"client-reporting":    {"clientName": "Northwind", "metrics": map[string]any{"sessions": 12000, "leads": "84"}},
	"ad-copy":             {"product": "Acme CRM", "platform": "google_ads", "usp": "set up in 5 minutes", "variantCount": 5},
	"landing-page":        {"url": "https://acme.io/demo", "goal": "demo bookings"},
	"competitor-analysis": {"businessName": "Acme", "competitors": []any{"HubSpot", "Pipedrive"}},
	"cold-outreach":       {"senderName": "Dana", "company": "Acme", "prospectRole": "VP Sales", "sequenceLength": 6},
	"reels-scripts":       {"topic": "meal prep", "platform": "shorts", "duration": 45, "scriptCount": 6},
	"product-launch":      {"productName": "Acme AI", "launchDate": "2026-03-01", "channels": "Email, Product Hunt"},
	"blog-to-video":       {"blogTitle": "Five pricing mistakes", "blogContent": "Pricing is the most underrated lever in any business. Most founders set a price once and never revisit it. Here is what to do instead."},
	"local-seo":           {"businessName": "Smile Dental", "location": "Austin, TX", "industry": "dental", "services": []any{"cleaning", "whitening"}},
}

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	require.Len(t, reg.All(), 13)

	for _, def := range reg.Definitions() {
		assert.NotEmpty(t, def.Name, def.ID)
		assert.NotEmpty(t, def.MinPlan, def.ID)
		_, ok := sampleInputs[def.ID]
		assert.True(t, ok, "no sample input for %s", def.ID)
	}

	_, ok := reg.Lookup("does-not-exist")
	assert.False(t, ok)
}

func TestTrialCatalogue(t *testing.T) {
	var trial []string
	for _, def := range Default().Definitions() {
		if def.IncludedInTrial {
			trial = append(trial, def.ID)
		}
	}
	assert.ElementsMatch(t, []string{"seo-audit", "social-media", "blog-writing", "email-marketing", "ad-copy"}, trial)
}

func TestNewRegistry_DuplicatePanics(t *testing.T) {
	assert.Panics(t, func() { NewRegistry(SEOAudit(), SEOAudit()) })
}

func TestFallback_TotalAndSchemaComplete(t *testing.T) {
	for _, tool := range Default().All() {
		id := tool.Definition().ID
		cases := map[string]map[string]any{
			"empty":  {},
			"nil":    nil,
			"sample": sampleInputs[id],
		}
		for name, raw := range cases {
			t.Run(id+"/"+name, func(t *testing.T) {
				in, err := tool.Decode(raw)
				require.NoError(t, err)

				payload := tool.Fallback(in)
				assert.Equal(t, true, payload[FallbackMarker])
				assert.Equal(t, GeneratedFallback, payload[GeneratedByField])
				for _, key := range tool.Schema().Required {
					assert.Contains(t, payload, key)
				}
				assert.NoError(t, validate(tool.Schema(), payload, "$"))
			})
		}
	}
}

func TestFallback_NilInput(t *testing.T) {
	for _, tool := range Default().All() {
		payload := tool.Fallback(nil)
		assert.Equal(t, true, payload[FallbackMarker], tool.Definition().ID)
	}
}

func TestFallback_Deterministic(t *testing.T) {
	for _, tool := range Default().All() {
		in, err := tool.Decode(sampleInputs[tool.Definition().ID])
		require.NoError(t, err)
		assert.True(t, reflect.DeepEqual(tool.Fallback(in), tool.Fallback(in)), tool.Definition().ID)
	}
}

func TestBuild_NoPlaceholderLeaks(t *testing.T) {
	for _, tool := range Default().All() {
		for _, raw := range []map[string]any{{}, sampleInputs[tool.Definition().ID]} {
			in, err := tool.Decode(raw)
			require.NoError(t, err)

			p := tool.Build(in)
			text := p.System + p.Instruction
			for _, bad := range []string{"undefined", "<nil>", "%!"} {
				assert.NotContains(t, text, bad, tool.Definition().ID)
			}
			assert.Contains(t, p.Instruction, "JSON schema")
			assert.Equal(t, tool.Schema().Required, p.Required)
			assert.NotEmpty(t, p.Required)
		}
	}
}

func TestBuild_IncludesInputValues(t *testing.T) {
	tool, _ := Default().Lookup("seo-audit")
	in, err := tool.Decode(sampleInputs["seo-audit"])
	require.NoError(t, err)

	p := tool.Build(in)
	assert.Contains(t, p.Instruction, "https://acme.io")
	assert.Contains(t, p.Instruction, "crm, sales pipeline")
	assert.Contains(t, p.Instruction, "SaaS")
}

func TestDecode_WeakTyping(t *testing.T) {
	tool, _ := Default().Lookup("social-media")
	in, err := tool.Decode(map[string]any{"platforms": "instagram, linkedin ,", "postCount": "4"})
	require.NoError(t, err)

	got := in.(*SocialMediaInput)
	assert.Equal(t, []string{"instagram", "linkedin"}, got.Platforms)
	assert.Equal(t, 4, got.PostCount)
	assert.Equal(t, "friendly", got.Tone)
}

func TestDecode_UnconvertibleValuesUseDefaults(t *testing.T) {
	tool, _ := Default().Lookup("social-media")
	in, err := tool.Decode(map[string]any{
		"postCount": "a few",
		"tone":      map[string]any{"mood": "upbeat"},
		"platforms": "linkedin",
	})
	require.NoError(t, err)

	got := in.(*SocialMediaInput)
	assert.Equal(t, 7, got.PostCount)
	assert.Equal(t, "friendly", got.Tone)
	assert.Equal(t, []string{"linkedin"}, got.Platforms)
}

func TestSocialMedia_FallbackRespectsPlatforms(t *testing.T) {
	tool, _ := Default().Lookup("social-media")
	in, _ := tool.Decode(sampleInputs["social-media"])
	payload := tool.Fallback(in)

	posts := payload["posts"].([]any)
	assert.Len(t, posts, 5)
	for _, p := range posts {
		post := p.(map[string]any)
		if post["platform"] == "X (Twitter)" {
			assert.LessOrEqual(t, len(post["caption"].(string)), 280)
		}
	}
}

func TestLookupIndustry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SaaS", "saas"},
		{"e-commerce", "ecommerce"},
		{"Real Estate", "real_estate"},
		{"Food & Beverage", "restaurant"},
		{"  dental ", "healthcare"},
		{"underwater basket weaving", "general"},
		{"", "general"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIndustry(tt.in).Key)
		})
	}
}

func TestIndustryContentMixSumsTo100(t *testing.T) {
	for key, p := range industryProfiles {
		m := p.ContentMix
		assert.Equal(t, 100, m.Educational+m.Promotional+m.Entertaining+m.Community, key)
	}
}

func TestLookupPlatform(t *testing.T) {
	spec, ok := LookupPlatform("X")
	assert.True(t, ok)
	assert.Equal(t, 280, spec.CaptionLimit)

	spec, ok = LookupPlatform("Mastodon")
	assert.False(t, ok)
	assert.Equal(t, "Mastodon", spec.Label)
}

func TestVariationIsStableAndBounded(t *testing.T) {
	a := variation(10, 20, "acme.io")
	assert.Equal(t, a, variation(10, 20, "acme.io"))
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		v := variation(10, 20, s)
		assert.GreaterOrEqual(t, v, 10)
		assert.LessOrEqual(t, v, 20)
	}
}

// validate checks a decoded JSON value against the subset of JSON schema the
// tool outputs use.
func validate(def jsonschema.Definition, v any, path string) error {
	switch def.Type {
	case jsonschema.Object:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %T", path, v)
		}
		for _, key := range def.Required {
			if _, ok := obj[key]; !ok {
				return fmt.Errorf("%s: missing %q", path, key)
			}
		}
		for key, prop := range def.Properties {
			if child, ok := obj[key]; ok {
				if err := validate(prop, child, path+"."+key); err != nil {
					return err
				}
			}
		}
	case jsonschema.Array:
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", path, v)
		}
		if def.Items != nil {
			for i, item := range arr {
				if err := validate(*def.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
	case jsonschema.String:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%s: expected string, got %T", path, v)
		}
	case jsonschema.Integer:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("%s: expected integer, got %v", path, v)
		}
	case jsonschema.Number:
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%s: expected number, got %T", path, v)
		}
	case jsonschema.Boolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %T", path, v)
		}
	default:
		if !strings.EqualFold(string(def.Type), "") {
			return fmt.Errorf("%s: unsupported schema type %s", path, def.Type)
		}
	}
	return nil
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "Café", truncateRunes("Café Ünïcødé", 4))
	assert.Equal(t, "ab", truncateRunes("ab", 10))
	assert.Equal(t, "", truncateRunes("日本語", 0))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}

func TestSocialMedia_FallbackKeepsMultibyteNamesValid(t *testing.T) {
	tool, _ := Default().Lookup("social-media")
	in, err := tool.Decode(map[string]any{
		"businessName": strings.Repeat("Ünïcødé Café ", 40),
		"platforms":    "twitter",
		"postCount":    6,
	})
	require.NoError(t, err)

	posts := tool.Fallback(in)["posts"].([]any)
	require.NotEmpty(t, posts)
	for _, p := range posts {
		caption := p.(map[string]any)["caption"].(string)
		assert.True(t, utf8.ValidString(caption), "caption %q", caption)
		assert.LessOrEqual(t, utf8.RuneCountInString(caption), 280)
	}
}
