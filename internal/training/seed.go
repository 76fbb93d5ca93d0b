package training

var seedPatterns = []struct {
	pattern   string
	responses []string
}{
	{"hello", []string{
		"Hello! How can I help you today?",
		"Hi there! What can I do for you?",
		"Greetings! How may I assist you?",
	}},
	{"hi", []string{
		"Hi! How can I help you?",
		"Hello! What can I do for you today?",
		"Hey there! How may I assist you?",
	}},
	{"help", []string{
		"I'm here to help! What do you need assistance with?",
		"Sure, I'd be happy to help. What's your question?",
		"How can I assist you today?",
	}},
	{"support", []string{
		"I'm here to provide support. What issue are you facing?",
		"Let me help you with that. What do you need support with?",
		"I'm ready to assist you. What's the problem?",
	}},
	{"what services do you offer", []string{
		"We offer a wide range of services including AI chatbots, web development, and consulting.",
		"Our services include custom software development, AI solutions, and technical consulting.",
		"We provide AI chatbot development, web applications, and business automation solutions.",
	}},
	{"tell me about your products", []string{
		"Our main products include AI-powered chatbots, custom web applications, and automation tools.",
		"We specialize in AI chatbots, business process automation, and custom software solutions.",
		"Our product portfolio includes intelligent chatbots, web platforms, and AI-driven tools.",
	}},
	{"how much does it cost", []string{
		"Our pricing varies based on your specific needs. Would you like to discuss your requirements?",
		"Costs depend on the complexity and features you need. Let's talk about your project!",
		"Pricing is customized for each client. Can you tell me more about what you're looking for?",
	}},
	{"pricing", []string{
		"We offer competitive pricing tailored to your needs. What type of solution are you interested in?",
		"Our pricing is flexible and depends on your requirements. Would you like a quote?",
		"Pricing varies by project scope. Let me know what you need and I can provide more details.",
	}},
	{"how does the chatbot work", []string{
		"Our chatbot uses advanced NLP and machine learning to understand and respond to your questions naturally.",
		"The chatbot processes your messages using AI algorithms to provide relevant and helpful responses.",
		"It works by analyzing your input, understanding the intent, and generating appropriate responses using trained models.",
	}},
	{"what can you do", []string{
		"I can answer questions, provide information about our services, help with support issues, and guide you through our offerings.",
		"I'm designed to assist with inquiries, provide product information, offer support, and help you find what you need.",
		"I can help with general questions, service information, technical support, and connecting you with the right resources.",
	}},
	{"goodbye", []string{
		"Goodbye! Feel free to return if you have more questions.",
		"Thanks for chatting! Have a great day!",
		"See you later! Don't hesitate to reach out if you need help.",
	}},
	{"bye", []string{
		"Bye! It was great helping you today.",
		"See you soon! Take care!",
		"Goodbye! Come back anytime you need assistance.",
	}},
	{"thank you", []string{
		"You're welcome! Happy to help!",
		"My pleasure! Is there anything else I can assist you with?",
		"Glad I could help! Feel free to ask if you have more questions.",
	}},
	{"thanks", []string{
		"You're welcome!",
		"Happy to help!",
		"Anytime! Let me know if you need anything else.",
	}},
}

var seedIntentResponses = []struct {
	intent    string
	responses []string
}{
	{"greeting", []string{
		"Hello! How can I help you today?",
		"Hi there! What can I do for you?",
		"Greetings! How may I assist you?",
		"Welcome! How can I help you?",
	}},
	{"goodbye", []string{
		"Goodbye! Have a great day!",
		"See you later! Take care!",
		"Thanks for chatting! Come back anytime.",
		"Bye! Feel free to return if you have questions.",
	}},
	{"help", []string{
		"I'm here to help! What do you need assistance with?",
		"Sure, I'd be happy to help. What's your question?",
		"How can I assist you today?",
		"What can I help you with?",
	}},
	{"gratitude", []string{
		"You're welcome! Happy to help!",
		"My pleasure! Anything else I can assist with?",
		"Glad I could help!",
		"You're very welcome!",
	}},
	{"pricing", []string{
		"Our pricing varies based on your needs. Would you like to discuss your requirements?",
		"Costs depend on the features you need. Let's talk about your project!",
		"We offer competitive pricing. What type of solution interests you?",
		"Pricing is customized for each client. Can you tell me more about your needs?",
	}},
	{"product_inquiry", []string{
		"We offer AI chatbots, web development, and consulting services. What interests you most?",
		"Our products include intelligent chatbots and custom software solutions. Would you like details?",
		"We specialize in AI solutions and web applications. What would you like to know?",
		"Our main offerings are AI chatbots and business automation tools. Any specific questions?",
	}},
	{"question", []string{
		"That's a great question! Let me help you with that.",
		"I'd be happy to answer that for you.",
		"Let me provide you with information about that.",
		"Good question! Here's what I can tell you...",
	}},
	{"general", []string{
		"I understand. How can I help you with that?",
		"That's interesting. What would you like to know more about?",
		"I see. Is there something specific I can assist you with?",
		"Thanks for sharing. How can I help you today?",
	}},
}

var fastResponses = map[string][]string{
	"greeting": {"Hi! How can I help?", "Hello! What do you need?", "Hey there! How can I assist?"},
	"help":     {"I'm here to help! What do you need?", "What can I assist with?", "How can I help you?"},
	"pricing": {
		"Our pricing is flexible. What are you looking for?",
		"Costs vary by needs. Tell me more?",
		"Let's discuss your requirements!",
	},
	"product": {
		"We offer AI chatbots and web solutions. Interested?",
		"Our products include AI assistants. Want details?",
		"We build smart chatbots. Need one?",
	},
	"gratitude": {"You're welcome!", "Happy to help!", "Anytime!", "Glad I could assist!"},
	"goodbye":   {"Goodbye! Come back anytime!", "See you later!", "Bye! Have a great day!", "Take care!"},
	"question": {
		"Great question! Let me help.",
		"I'd be happy to answer that.",
		"Here's what I know.",
		"Good question! Let me explain.",
	},
	"general": {
		"I understand. How can I help?",
		"Tell me more about that.",
		"Interesting! What would you like to know?",
		"I'm here to assist!",
	},
}
