package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/catalyst/pkg/formatting"
)

type sample struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestParse(t *testing.T) {
	t.Run("direct JSON", func(t *testing.T) {
		got, err := formatting.Parse[sample](`{"name":"test","value":42}`)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Name != "test" || got.Value != 42 {
			t.Errorf("Parse = %+v, want {Name:test Value:42}", got)
		}
	})

	t.Run("json fence", func(t *testing.T) {
		got, err := formatting.Parse[sample]("```json\n{\"name\":\"fenced\",\"value\":7}\n```")
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Name != "fenced" || got.Value != 7 {
			t.Errorf("Parse = %+v, want {Name:fenced Value:7}", got)
		}
	})

	t.Run("bare fence", func(t *testing.T) {
		got, err := formatting.Parse[sample]("```\n{\"name\":\"bare\",\"value\":3}\n```")
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got.Name != "bare" {
			t.Errorf("Name = %q, want bare", got.Name)
		}
	})

	t.Run("surrounding prose is not repaired", func(t *testing.T) {
		input := "Here is the result:\n```json\n{\"name\":\"wrapped\",\"value\":5}\n```"
		_, err := formatting.Parse[sample](input)
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})

	t.Run("invalid JSON in fence", func(t *testing.T) {
		_, err := formatting.Parse[sample]("```json\n{broken\n```")
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := formatting.Parse[sample]("")
		if !errors.Is(err, formatting.ErrParseFailed) {
			t.Errorf("error = %v, want ErrParseFailed", err)
		}
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{"json fence", "```json\n{\"x\":1}\n```", map[string]any{"x": float64(1)}},
		{"plain object", `{"x":1}`, map[string]any{"x": float64(1)}},
		{"fence without trailing newline", "```json{\"x\":1}```", map[string]any{"x": float64(1)}},
		{"not json", "not json", nil},
		{"array is not an object", `[1,2]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatting.ExtractJSON(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ExtractJSON() = %v, want nil", got)
				}
				return
			}
			if len(got) != len(tt.want) || got["x"] != tt.want["x"] {
				t.Errorf("ExtractJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", "  {\"a\":1}  ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading only", "```json\n{\"a\":1}", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatting.StripFence(tt.input); got != tt.want {
				t.Errorf("StripFence() = %q, want %q", got, tt.want)
			}
		})
	}
}
