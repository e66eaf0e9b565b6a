package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr bool
	}{
		{name: "strict", raw: `{"overview":{"score":72}}`, wantKey: "overview"},
		{name: "surrounding whitespace", raw: "\n  {\"posts\":[]}  \n", wantKey: "posts"},
		{name: "markdown fence", raw: "```json\n{\"subject\":\"Hi\"}\n```", wantKey: "subject"},
		{name: "prose before and after", raw: `Sure! Here is your plan: {"plan":{"steps":["a"]}} Let me know.`, wantKey: "plan"},
		{name: "brace inside string", raw: `Result: {"caption":"use {curly} braces \"wisely\"","n":1} done`, wantKey: "caption"},
		{name: "skips invalid first object", raw: `{not json} then {"ok":true}`, wantKey: "ok"},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "plain prose", raw: "I cannot help with that.", wantErr: true},
		{name: "truncated", raw: `{"overview":{"score":72}`, wantErr: true},
		{name: "unclosed prose brace before object", raw: "Use {curly braces carefully. Result: {\"title\":\"x\"}", wantKey: "title"},
		{name: "unclosed prose brace then invalid", raw: `Note {this and {that`, wantErr: true},
		{name: "object inside array", raw: `[{"a":1}]`, wantKey: "a"},
		{name: "null", raw: "null", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ParseOutput(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedOutput))
				assert.Equal(t, KindMalformed, ErrorKind(err))
				assert.Nil(t, obj)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, obj, tt.wantKey)
		})
	}
}

func TestParseOutput_KeepsTypes(t *testing.T) {
	obj, err := ParseOutput(`{"score":"85","tags":"a,b"}`)
	require.NoError(t, err)
	assert.Equal(t, "85", obj["score"])
	assert.Equal(t, "a,b", obj["tags"])
}

func TestMissingSections(t *testing.T) {
	obj := map[string]any{"overview": map[string]any{}, "keywords": nil, "extra": 1}
	assert.Equal(t, []string{"keywords", "recommendations"},
		MissingSections(obj, []string{"overview", "keywords", "recommendations"}))
	assert.Empty(t, MissingSections(obj, []string{"overview"}))
	assert.Empty(t, MissingSections(obj, nil))
}
