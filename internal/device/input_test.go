package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigButtonRegion(t *testing.T) {
	r := ConfigButton(960, 540, 100, 40)

	tests := []struct {
		p    TouchPoint
		want bool
	}{
		{TouchPoint{X: 900, Y: 520}, true},
		{TouchPoint{X: 860, Y: 500}, true},
		{TouchPoint{X: 959, Y: 539}, true},
		{TouchPoint{X: 859, Y: 520}, false},
		{TouchPoint{X: 900, Y: 499}, false},
		{TouchPoint{X: 960, Y: 520}, false},
		{TouchPoint{X: 10, Y: 10}, false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestScriptedInput(t *testing.T) {
	in := &ScriptedInput{Touches: []TouchPoint{{X: 1, Y: 2}}}

	p, ok, err := in.Poll(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, TouchPoint{X: 1, Y: 2}, p)

	_, ok, _ = in.Poll(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 1, in.Polls())
}
