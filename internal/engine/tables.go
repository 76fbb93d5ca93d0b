package engine

// AssistantTable is the general chatbot's rule ladder.
func AssistantTable() *Table {
	return &Table{
		Name: "assistant",
		Rules: []Rule{
			{
				Name:       "greeting",
				Any:        []string{"hello", "hi"},
				Message:    "Hello! How can I help you today?",
				Confidence: 0.92,
				Intent:     "greeting",
			},
			{
				Name:       "help",
				Any:        []string{"help", "support"},
				Message:    "I'm here to help! What do you need assistance with? I can provide information about our services, pricing, or technical support.",
				Confidence: 0.88,
				Intent:     "help",
			},
			{
				Name:       "product",
				Any:        []string{"service", "product"},
				Message:    "We offer AI chatbot development, web applications, and business automation solutions. Our chatbots use advanced NLP and machine learning for natural conversations. Would you like to know more about any specific service?",
				Confidence: 0.85,
				Intent:     "product_inquiry",
			},
			{
				Name:       "pricing",
				Any:        []string{"price", "cost"},
				Message:    "Our pricing varies based on your specific needs and requirements. We offer flexible packages for different business sizes. Would you like to discuss your project so I can provide more accurate pricing information?",
				Confidence: 0.83,
				Intent:     "pricing",
			},
			{
				Name:       "how-it-works",
				All:        []string{"how", "work"},
				Message:    "Our AI chatbot works using Natural Language Processing (NLP) and machine learning algorithms. It analyzes your input, identifies the intent, extracts relevant information, and generates appropriate responses based on trained data and patterns. The system continuously learns and improves from interactions.",
				Confidence: 0.9,
				Intent:     "technical_explanation",
			},
			{
				Name:       "gratitude",
				Any:        []string{"thank", "thanks"},
				Message:    "You're welcome! I'm happy to help. Is there anything else you'd like to know?",
				Confidence: 0.94,
				Intent:     "gratitude",
			},
			{
				Name:       "goodbye",
				Any:        []string{"bye", "goodbye"},
				Message:    "Goodbye! Feel free to return if you have more questions. Have a great day!",
				Confidence: 0.91,
				Intent:     "goodbye",
			},
		},
		Fallback: Record{
			Message:    "That's an interesting question! Based on what you're asking, I'd be happy to provide more information. Could you be more specific about what you'd like to know? I can help with our services, technical questions, or general inquiries.",
			Confidence: 0.65,
			Intent:     "general",
		},
	}
}

// FastTable is the low-latency chatbot's rule ladder. The performance rule
// carries placeholders filled in by the session.
func FastTable() *Table {
	return &Table{
		Name: "fast",
		Rules: []Rule{
			{
				Name:       "speed",
				Any:        []string{"fast", "speed"},
				Message:    "⚡ I'm optimized for speed! I typically respond in under 100ms with 99%+ accuracy.",
				Confidence: 0.98,
				Intent:     "speed_inquiry",
			},
			{
				Name:       "greeting",
				Any:        []string{"hello", "hi"},
				Message:    "⚡ Hi there! I'm your lightning-fast AI assistant. What can I help you with?",
				Confidence: 0.96,
				Intent:     "greeting",
			},
			{
				Name:       "help",
				Any:        []string{"help"},
				Message:    "🚀 I'm here to help instantly! I can answer questions, provide info, and assist with various tasks - all at blazing speed!",
				Confidence: 0.94,
				Intent:     "help",
			},
			{
				Name:       "services",
				Any:        []string{"service", "do"},
				Message:    "⚡ I offer ultra-fast AI assistance, instant responses, real-time chat, and lightning-quick problem solving!",
				Confidence: 0.92,
				Intent:     "services",
			},
			{
				Name:       "performance",
				Any:        []string{"time", "performance"},
				Message:    "🏃 My average response time is " + VarAvgResponseMS + "ms! I process " + VarMessagesPerSecond + " messages per second.",
				Confidence: 0.95,
				Intent:     "performance",
			},
			{
				Name:       "gratitude",
				Any:        []string{"thank"},
				Message:    "⚡ You're welcome! Speed is my specialty - anything else I can help with quickly?",
				Confidence: 0.97,
				Intent:     "gratitude",
			},
		},
		Fallback: Record{
			Message:    "🚀 I understand! Let me help you with that right away. What specific information do you need?",
			Confidence: 0.85,
			Intent:     "general",
		},
	}
}
