package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LovitraMehta/ChattyBot/internal/language"
)

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name      string
		probs     map[string]float64
		err       error
		want      language.Code
		defaulted bool
	}{
		{name: "hindi wins", probs: map[string]float64{"hi": 0.8, "en": 0.2}, want: language.Hindi},
		{name: "english wins", probs: map[string]float64{"hi": 0.1, "en": 0.7, "ur": 0.2}, want: language.English},
		{name: "unsupported clamps to english", probs: map[string]float64{"fr": 0.99, "hi": 0.01}, want: language.English},
		{name: "tie goes to smaller code", probs: map[string]float64{"hi": 0.5, "en": 0.5}, want: language.English},
		{name: "tie with unsupported", probs: map[string]float64{"hi": 0.5, "bn": 0.5}, want: language.English},
		{name: "single entry", probs: map[string]float64{"hi": 1}, want: language.Hindi},
		{name: "empty distribution", probs: map[string]float64{}, want: language.English, defaulted: true},
		{name: "nil distribution", want: language.English, defaulted: true},
		{name: "backend error", probs: map[string]float64{"hi": 1}, err: errors.New("model crashed"), want: language.English, defaulted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, reason := resolveLanguage(tt.probs, tt.err)
			assert.Equal(t, tt.want, got)
			if tt.defaulted {
				assert.Error(t, reason)
			} else {
				assert.NoError(t, reason)
			}
		})
	}
}

func TestDetectNeverFails(t *testing.T) {
	d := NewDetector(&fakeRecognizer{detectErr: errors.New("connection refused")})
	assert.Equal(t, language.English, d.Detect(context.Background(), "x.wav", discardLogger))

	d = NewDetector(&fakeRecognizer{probs: map[string]float64{"hi": 0.9}})
	assert.Equal(t, language.Hindi, d.Detect(context.Background(), "x.wav", discardLogger))

	d = NewDetector(&fakeRecognizer{probs: map[string]float64{"ja": 0.9}})
	assert.Equal(t, language.English, d.Detect(context.Background(), "x.wav", discardLogger))
}
