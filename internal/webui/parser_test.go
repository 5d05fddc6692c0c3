package webui

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantPrompt  string
		wantNeg     string
		wantOptions map[string]any
		wantEtc     map[string]any
	}{
		{
			name:        "prompt, negative and options",
			text:        "P1\nNegative prompt: N1\nSteps: 20, Seed: 5",
			wantPrompt:  "P1",
			wantNeg:     "N1",
			wantOptions: map[string]any{"steps": int64(20), "seed": int64(5)},
			wantEtc:     map[string]any{},
		},
		{
			name:       "multi-line prompt",
			text:       "  line one\nline two  \nNegative prompt:   bad hands  \n",
			wantPrompt: "line one\nline two",
			wantNeg:    "bad hands",
			// the trailing empty line produces no parts
			wantOptions: map[string]any{},
			wantEtc:     map[string]any{},
		},
		{
			name:        "no negative prompt line",
			text:        "a cat\nSteps: 20, Seed: 5",
			wantPrompt:  "a cat\nSteps: 20, Seed: 5",
			wantOptions: map[string]any{},
			wantEtc:     map[string]any{},
		},
		{
			name:        "negative prompt on first line",
			text:        "Negative prompt: N\nSteps: 20",
			wantPrompt:  "Negative prompt: N\nSteps: 20",
			wantOptions: map[string]any{},
			wantEtc:     map[string]any{},
		},
		{
			name:       "indented marker",
			text:       "P\n   Negative prompt: N\nSampler: Euler a",
			wantPrompt: "P",
			wantNeg:    "N",
			wantOptions: map[string]any{
				"sampler": "Euler a",
			},
			wantEtc: map[string]any{},
		},
		{
			name:       "aliases, overflow and coercion",
			text:       "P\nNegative prompt: N\nSteps: 28, Sampler: DPM++ 2M, CFG scale: 7.5, Seed: 42, Size: 512x768, Model hash: abc123, Model: anything, Clip skip: 2, Denoising strength: 0.7, Version: v1.6.0, Hires upscale: 2",
			wantPrompt: "P",
			wantNeg:    "N",
			wantOptions: map[string]any{
				"steps":              int64(28),
				"sampler":            "DPM++ 2M",
				"scale":              7.5,
				"seed":               int64(42),
				"size":               "512x768",
				"model_hash":         "abc123",
				"model":              "anything",
				"clip_skip":          int64(2),
				"denoising_strength": 0.7,
			},
			wantEtc: map[string]any{
				"version":       "v1.6.0",
				"hires upscale": int64(2),
			},
		},
		{
			name:        "bare flag and empty value",
			text:        "P\nNegative prompt: N\nSteps: 20, ADetailer, Seed:  , ,",
			wantPrompt:  "P",
			wantNeg:     "N",
			wantOptions: map[string]any{"steps": int64(20), "seed": ""},
			wantEtc:     map[string]any{"ADetailer": ""},
		},
		{
			name:        "colon inside value splits once",
			text:        "P\nNegative prompt: N\nSchedule type: Karras, Lora hashes: \"a: 1\"",
			wantPrompt:  "P",
			wantNeg:     "N",
			wantOptions: map[string]any{"schedule_type": "Karras"},
			wantEtc:     map[string]any{"lora hashes": "\"a: 1\""},
		},
		{
			name:        "crlf line endings",
			text:        "P\r\nNegative prompt: N\r\nSteps: 20",
			wantPrompt:  "P",
			wantNeg:     "N",
			wantOptions: map[string]any{"steps": int64(20)},
			wantEtc:     map[string]any{},
		},
		{
			name:        "empty input",
			text:        "",
			wantOptions: map[string]any{},
			wantEtc:     map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got.Prompt != tt.wantPrompt {
				t.Errorf("Prompt = %q, want %q", got.Prompt, tt.wantPrompt)
			}
			if got.NegativePrompt != tt.wantNeg {
				t.Errorf("NegativePrompt = %q, want %q", got.NegativePrompt, tt.wantNeg)
			}
			if diff := cmp.Diff(tt.wantOptions, got.Options); diff != "" {
				t.Errorf("Options mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantEtc, got.Etc); diff != "" {
				t.Errorf("Etc mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAliasEquivalence(t *testing.T) {
	for _, line := range []string{"Cfg scale: 7.5", "cfg_scale: 7.5"} {
		got := Parse("P\nNegative prompt: N\n" + line)
		if v, ok := got.Options["scale"].(float64); !ok || v != 7.5 {
			t.Errorf("%q: scale = %#v, want 7.5", line, got.Options["scale"])
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"20", int64(20)},
		{" -3 ", int64(-3)},
		{"7.5", 7.5},
		{"7.", 7.0},
		{"7.5.2", "7.5.2"},
		{"Euler a", "Euler a"},
		{"", ""},
		{"1e5", "1e5"},
		{"99999999999999999999", "99999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Coerce(tt.in)); diff != "" {
				t.Errorf("Coerce(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	p := Parse("P\nNegative prompt: N\nSteps: 20, Version: v1")
	want := map[string]any{
		"prompt":  "P",
		"uc":      "N",
		"steps":   int64(20),
		"version": "v1",
	}
	if diff := cmp.Diff(want, p.Record()); diff != "" {
		t.Errorf("Record mismatch (-want +got):\n%s", diff)
	}
}
