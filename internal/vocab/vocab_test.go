package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"Cfg scale", "scale"},
		{"cfg_scale", "scale"},
		{"CFG Scale", "scale"},
		{"clip skip", "clip_skip"},
		{"Clip_Skip", "clip_skip"},
		{"Schedule type", "schedule_type"},
		{"schedule_type", "schedule_type"},
		{"Model hash", "model_hash"},
		{"model_hash", "model_hash"},
		{"Denoising strength", "denoising_strength"},
		{"denoising_strength", "denoising_strength"},
		{"  Steps ", "steps"},
		{"Version", "version"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.key))
		})
	}
}

func TestIsRecognized(t *testing.T) {
	for _, k := range Recognized() {
		assert.True(t, IsRecognized(k), k)
		assert.True(t, IsRecognized(" "+k+" "), k)
	}
	assert.True(t, IsRecognized("Cfg scale"))
	assert.True(t, IsRecognized("SEED"))
	assert.False(t, IsRecognized("prompt"))
	assert.False(t, IsRecognized("uc"))
	assert.False(t, IsRecognized("Version"))
}

func TestIsAlias(t *testing.T) {
	assert.True(t, IsAlias("cfg scale"))
	assert.True(t, IsAlias("cfg_scale"))
	assert.True(t, IsAlias("Clip skip"))
	assert.False(t, IsAlias("scale"))
	assert.False(t, IsAlias("clip_skip"))
	assert.False(t, IsAlias("Steps"))
	assert.False(t, IsAlias("unknown thing"))
}

func TestRecognizedSortedAndComplete(t *testing.T) {
	want := []string{
		"clip_skip", "denoising_strength", "height", "model", "model_hash",
		"n_samples", "sampler", "scale", "schedule_type", "seed", "size",
		"sm", "sm_dyn", "steps", "width",
	}
	assert.Equal(t, want, Recognized())

	// callers get a copy
	got := Recognized()
	got[0] = "mutated"
	assert.Equal(t, "clip_skip", Recognized()[0])
}
