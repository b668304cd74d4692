package prompt

import (
	"strings"
	"testing"

	"legal-rag-be/pkg/rag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentPrompt_ListsEveryLabel(t *testing.T) {
	p := IntentPrompt("What is bail?")
	for _, i := range rag.AllIntents() {
		assert.Contains(t, p, i.String())
	}
	assert.Contains(t, p, "What is bail?")
}

func TestSummaryPrompt_TagsEachBlock(t *testing.T) {
	blocks := []rag.ContextBlock{
		{Title: "Criminal Procedure Code", Year: "1973", PageNumber: "12", Text: "Bail is the conditional release."},
		{Title: "Constitution", Year: "1950", PageNumber: "4", Text: "No person shall be deprived of liberty."},
	}

	p := SummaryPrompt("What is bail?", blocks)

	assert.Contains(t, p, "[1] Source: Criminal Procedure Code (1973), page 12")
	assert.Contains(t, p, "[2] Source: Constitution (1950), page 4")
	assert.Contains(t, p, "Bail is the conditional release.")
	assert.Contains(t, p, "No person shall be deprived of liberty.")
	assert.Contains(t, p, "Do not give a legal opinion")
	assert.True(t, strings.HasSuffix(p, "What is bail?\n</question>"))
}

func TestDiscussionMessages(t *testing.T) {
	history := []rag.Turn{
		{Question: "q1", AnswerText: "a1"},
		{Question: "q2", AnswerText: "a2"},
	}

	msgs := DiscussionMessages("and then?", history)

	require.Len(t, msgs, 6)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "q1", msgs[1].Content)
	assert.Equal(t, "a1", msgs[2].Content)
	assert.Equal(t, "assistant", msgs[4].Role)
	assert.Equal(t, "and then?", msgs[5].Content)
}

func TestExpansionPrompt_MentionsLimit(t *testing.T) {
	assert.Contains(t, ExpansionPrompt("What is bail?", 5), "at most 5 short search phrases")
}
