package suggest

// IntentSuggester proposes follow-up questions based on the intent detected
// in partial input rather than substring matching.
type IntentSuggester struct {
	Detect    func(text string) string
	MinLength int
	Defaults  []string
	ByIntent  map[string][]string
	Fallback  []string
}

func (s *IntentSuggester) Suggest(partial string) []string {
	if len(partial) < s.MinLength || s.Detect == nil {
		return clone(s.Defaults)
	}
	if list, ok := s.ByIntent[s.Detect(partial)]; ok {
		return clone(list)
	}
	return clone(s.Fallback)
}

func NewAssistantIntentSuggester(detect func(string) string) *IntentSuggester {
	return &IntentSuggester{
		Detect:    detect,
		MinLength: 2,
		Defaults: []string{
			"Hello, how can I help you?",
			"What are your services?",
			"How much does it cost?",
			"Can you help me with...",
		},
		ByIntent: map[string][]string{
			"greeting": {
				"Hello! How can I assist you today?",
				"Hi there! What can I help you with?",
			},
			"help": {
				"I need help with my account",
				"Can you help me understand your services?",
				"I need technical support",
			},
			"pricing": {
				"What are your pricing plans?",
				"How much does the premium service cost?",
				"Do you offer discounts?",
			},
		},
		Fallback: []string{
			"Tell me more about your products",
			"What services do you offer?",
			"How can I get started?",
		},
	}
}

func NewFastIntentSuggester(detect func(string) string) *IntentSuggester {
	return &IntentSuggester{
		Detect:    detect,
		MinLength: 2,
		Defaults:  []string{"Hello!", "What services do you offer?", "How much does it cost?", "Can you help me?"},
		ByIntent: map[string][]string{
			"greeting": {"Hello! How can you help?", "Hi there! What do you do?"},
			"help":     {"I need help with...", "Can you assist me with..."},
			"pricing":  {"What are your prices?", "How much do you charge?"},
		},
		Fallback: []string{"Tell me more", "What can you do?", "How does this work?"},
	}
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}
