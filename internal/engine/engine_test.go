package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantTable_Greeting(t *testing.T) {
	table := AssistantTable()

	for _, in := range []string{"hello", "HELLO there", "Hi!", "oh hi"} {
		rec := table.Classify(in)
		assert.Equal(t, Record{
			Message:    "Hello! How can I help you today?",
			Confidence: 0.92,
			Intent:     "greeting",
		}, rec, in)
	}
}

func TestAssistantTable_Rules(t *testing.T) {
	table := AssistantTable()

	tests := []struct {
		in     string
		intent string
		conf   float64
	}{
		{"I need SUPPORT", "help", 0.88},
		{"tell me about your products", "product_inquiry", 0.85},
		{"what does it cost", "pricing", 0.83},
		{"How does it work", "technical_explanation", 0.9},
		{"thanks a lot", "gratitude", 0.94},
		{"goodbye", "goodbye", 0.91},
		{"xyz", "general", 0.65},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rec := table.Classify(tt.in)
			assert.Equal(t, tt.intent, rec.Intent)
			assert.Equal(t, tt.conf, rec.Confidence)
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	table := AssistantTable()

	rec, idx := table.Match("hello, I need help")
	assert.Equal(t, "greeting", rec.Intent)
	assert.Equal(t, 0, idx)

	// "this" contains "hi", so the greeting rule shadows gratitude.
	assert.Equal(t, "greeting", table.Classify("thanks for this").Intent)

	// fast table checks speed before greeting
	assert.Equal(t, "speed_inquiry", FastTable().Classify("hi, how fast are you?").Intent)
}

func TestClassify_AllRequiresEveryKeyword(t *testing.T) {
	table := AssistantTable()

	assert.Equal(t, "general", table.Classify("how are you").Intent)
	assert.Equal(t, "general", table.Classify("work work").Intent)
	assert.Equal(t, "technical_explanation", table.Classify("does the network actually work? how").Intent)
}

func TestClassify_Total(t *testing.T) {
	inputs := []string{"", " ", "ñandú", "12345", strings.Repeat("a", 10000), "\x00\x01", "🚀"}
	for _, table := range []*Table{AssistantTable(), FastTable()} {
		for _, in := range inputs {
			rec := table.Classify(in)
			assert.NotEmpty(t, rec.Intent)
			assert.GreaterOrEqual(t, rec.Confidence, 0.0)
			assert.LessOrEqual(t, rec.Confidence, 1.0)
		}
	}
}

func TestFastTable_Rules(t *testing.T) {
	table := FastTable()

	assert.Equal(t, "greeting", table.Classify("hello").Intent)
	assert.Equal(t, "help", table.Classify("help me").Intent)
	assert.Equal(t, "services", table.Classify("what can you do").Intent)
	assert.Equal(t, "performance", table.Classify("response time?").Intent)
	assert.Equal(t, "gratitude", table.Classify("thank you").Intent)
	assert.Equal(t, Record{
		Message:    "🚀 I understand! Let me help you with that right away. What specific information do you need?",
		Confidence: 0.85,
		Intent:     "general",
	}, table.Classify("qwerty"))
}

func TestBuiltInTablesValidate(t *testing.T) {
	require.NoError(t, AssistantTable().Validate())
	require.NoError(t, FastTable().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	base := func() *Table { return AssistantTable() }

	t1 := base()
	t1.Rules[0].Confidence = 1.5
	assert.ErrorIs(t, t1.Validate(), ErrInvalidTable)

	t2 := base()
	t2.Rules[1].Intent = ""
	assert.ErrorIs(t, t2.Validate(), ErrInvalidTable)

	t3 := base()
	t3.Fallback = Record{}
	assert.ErrorIs(t, t3.Validate(), ErrInvalidTable)

	t4 := base()
	t4.Rules[2].Any = []string{"Service"}
	assert.ErrorIs(t, t4.Validate(), ErrInvalidTable)

	t5 := base()
	t5.Rules[0].Any, t5.Rules[0].All = nil, nil
	assert.ErrorIs(t, t5.Validate(), ErrInvalidTable)
}

func TestRender(t *testing.T) {
	rec := FastTable().Classify("performance")
	out := rec.Render(map[string]string{
		VarAvgResponseMS:     "42",
		VarMessagesPerSecond: "23.8",
	})

	assert.Equal(t, "🏃 My average response time is 42ms! I process 23.8 messages per second.", out.Message)
	assert.Contains(t, rec.Message, VarAvgResponseMS, "render must not mutate the source record")

	plain := Record{Message: "no placeholders"}
	assert.Equal(t, plain, plain.Render(map[string]string{VarAvgResponseMS: "1"}))
}

func TestIntents(t *testing.T) {
	assert.Equal(t, []string{
		"greeting", "help", "product_inquiry", "pricing",
		"technical_explanation", "gratitude", "goodbye", "general",
	}, AssistantTable().Intents())
}

func TestLoadTable_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, FastTable()))

	loaded, err := LoadTable(&buf)
	require.NoError(t, err)

	for _, in := range []string{"fast?", "hello", "help", "do it", "time", "thank u", "nothing"} {
		assert.Equal(t, FastTable().Classify(in), loaded.Classify(in), in)
	}
}

func TestLoadTable_LowercasesKeywords(t *testing.T) {
	src := `
name: custom
rules:
  - name: refund
    any: [Refund, "Money Back"]
    message: Refunds take 5 days.
    confidence: 0.8
    intent: refund
fallback:
  message: Sorry?
  confidence: 0.4
  intent: general
`
	table, err := LoadTable(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "refund", table.Classify("I want my MONEY BACK").Intent)
	assert.Equal(t, "general", table.Classify("hmm").Intent)
}

func TestLoadTable_Invalid(t *testing.T) {
	_, err := LoadTable(strings.NewReader("name: x\nrules: []\nfallback: {message: a, intent: b}\n"))
	assert.ErrorIs(t, err, ErrInvalidTable)

	_, err = LoadTable(strings.NewReader("name: x\nunknown: 1\n"))
	assert.Error(t, err)
}
