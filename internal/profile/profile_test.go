package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chat-assistant/backend/internal/delay"
	"github.com/chat-assistant/backend/internal/engine"
	"github.com/chat-assistant/backend/pkg/config"
)

func TestLookup(t *testing.T) {
	p, err := Lookup("fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", p.Table.Name)
	assert.Equal(t, 1, p.SuggestMinLength)

	p, err = Lookup("")
	require.NoError(t, err)
	assert.Equal(t, AssistantName, p.Name)

	_, err = Lookup("slow")
	assert.Error(t, err)
}

func TestErrorRecords(t *testing.T) {
	for _, p := range []*Profile{Assistant(), Fast()} {
		assert.Equal(t, 0.1, p.ErrorRecord.Confidence)
		assert.Equal(t, "error", p.ErrorRecord.Intent)
		assert.Equal(t, "greeting", p.Greeting.Intent)
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(`
name: custom
rules:
  - name: ping
    any: [ping]
    message: pong
    confidence: 1
    intent: ping
fallback: {message: "?", confidence: 0.5, intent: general}
`), 0o644))

	p := Fast()
	require.NoError(t, p.Apply(config.ProfileConfig{
		MinLatency: 0,
		MaxLatency: 5 * time.Millisecond,
		Debounce:   time.Millisecond,
		RulesFile:  rules,
	}))

	assert.Equal(t, 5*time.Millisecond, p.MaxLatency)
	assert.Equal(t, time.Millisecond, p.Debounce)
	assert.Equal(t, engine.Record{Message: "pong", Confidence: 1, Intent: "ping"}, p.Table.Classify("PING"))

	err := p.Apply(config.ProfileConfig{RulesFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestPolicies(t *testing.T) {
	p := Assistant()
	assert.IsType(t, delay.Zero{}, p.DebouncePolicy())
	assert.IsType(t, &delay.Uniform{}, p.Latency())

	p.MaxLatency = 0
	assert.IsType(t, delay.Zero{}, p.Latency())
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(config.ProfilesConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"assistant", "fast"}, r.Names())
	p, err := r.Get("")
	require.NoError(t, err)
	assert.Equal(t, "assistant", p.Name)

	_, err = r.Get("nope")
	assert.Error(t, err)
}
