// Package profile bundles everything that differs between the two chatbots:
// rule table, greeting, error reply, canned suggestions and timing.
package profile

import (
	"fmt"
	"sort"
	"time"

	"github.com/chat-assistant/backend/internal/delay"
	"github.com/chat-assistant/backend/internal/engine"
	"github.com/chat-assistant/backend/internal/suggest"
	"github.com/chat-assistant/backend/pkg/config"
)

const (
	AssistantName = "assistant"
	FastName      = "fast"
)

type Profile struct {
	Name        string
	Table       *engine.Table
	Greeting    engine.Record
	ErrorRecord engine.Record

	Suggestions      []string
	SuggestMinLength int

	MinLatency time.Duration
	MaxLatency time.Duration
	Debounce   time.Duration

	// LatencyWindow is how many recent latencies feed the average.
	LatencyWindow int
}

func Assistant() *Profile {
	return &Profile{
		Name:  AssistantName,
		Table: engine.AssistantTable(),
		Greeting: engine.Record{
			Message:    "Hello! I'm your AI assistant. How can I help you today?",
			Confidence: 0.95,
			Intent:     "greeting",
		},
		ErrorRecord: engine.Record{
			Message:    "Sorry, I'm having trouble connecting. Please try again.",
			Confidence: 0.1,
			Intent:     "error",
		},
		Suggestions: []string{
			"What services do you offer?",
			"How much does it cost?",
			"Can you help me with technical support?",
			"Tell me about your AI chatbot features",
		},
		SuggestMinLength: 2,
		MinLatency:       800 * time.Millisecond,
		MaxLatency:       2000 * time.Millisecond,
		LatencyWindow:    10,
	}
}

func Fast() *Profile {
	return &Profile{
		Name:  FastName,
		Table: engine.FastTable(),
		Greeting: engine.Record{
			Message:    "⚡ Fast AI ready! Ask me anything - I respond in milliseconds!",
			Confidence: 0.99,
			Intent:     "greeting",
		},
		ErrorRecord: engine.Record{
			Message:    "⚠️ Connection error - but I'm still fast!",
			Confidence: 0.1,
			Intent:     "error",
		},
		Suggestions: []string{
			"What can you do?",
			"How fast are you?",
			"Tell me about your services",
			"What's your response time?",
		},
		SuggestMinLength: 1,
		MinLatency:       50 * time.Millisecond,
		MaxLatency:       150 * time.Millisecond,
		Debounce:         100 * time.Millisecond,
		LatencyWindow:    10,
	}
}

func Lookup(name string) (*Profile, error) {
	switch name {
	case AssistantName, "":
		return Assistant(), nil
	case FastName:
		return Fast(), nil
	default:
		return nil, fmt.Errorf("unknown profile %q", name)
	}
}

// Apply overlays config onto p. A configured rules file replaces the
// built-in table.
func (p *Profile) Apply(cfg config.ProfileConfig) error {
	if cfg.MinLatency > 0 || cfg.MaxLatency > 0 {
		p.MinLatency, p.MaxLatency = cfg.MinLatency, cfg.MaxLatency
	}
	if cfg.Debounce > 0 {
		p.Debounce = cfg.Debounce
	}
	if cfg.RulesFile != "" {
		table, err := engine.LoadTableFile(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("profile %s: %w", p.Name, err)
		}
		p.Table = table
	}
	return nil
}

func (p *Profile) Latency() delay.Policy {
	if p.MaxLatency <= 0 {
		return delay.Zero{}
	}
	return delay.NewUniform(p.MinLatency, p.MaxLatency, time.Now().UnixNano())
}

func (p *Profile) DebouncePolicy() delay.Policy {
	if p.Debounce <= 0 {
		return delay.Zero{}
	}
	return delay.Fixed{D: p.Debounce}
}

func (p *Profile) Suggester() *suggest.Suggester {
	return suggest.New(p.Suggestions, p.SuggestMinLength)
}

// Registry holds the configured profiles by name.
type Registry struct {
	profiles map[string]*Profile
}

func NewRegistry(cfg config.ProfilesConfig) (*Registry, error) {
	a, f := Assistant(), Fast()
	if err := a.Apply(cfg.Assistant); err != nil {
		return nil, err
	}
	if err := f.Apply(cfg.Fast); err != nil {
		return nil, err
	}
	return &Registry{profiles: map[string]*Profile{a.Name: a, f.Name: f}}, nil
}

func (r *Registry) Get(name string) (*Profile, error) {
	if name == "" {
		name = AssistantName
	}
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
