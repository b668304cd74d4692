package prompt

import (
	"fmt"
	"strings"

	"legal-rag-be/pkg/llm"
	"legal-rag-be/pkg/rag"
)

// IntentPrompt asks the model for exactly one label from the closed set.
func IntentPrompt(question string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an intent classifier for a legal research assistant.\n")
	prompt.WriteString("You do NOT answer questions. You only classify them.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<labels>\n")
	prompt.WriteString("GREETING - hello, thanks, small talk with no question\n")
	prompt.WriteString("LEGAL_QUERY - a question about law, statutes, rights, procedure or case law\n")
	prompt.WriteString("CLARIFICATION_NEEDED - too vague to search, e.g. a single word or an incomplete sentence\n")
	prompt.WriteString("IRRELEVANT - unrelated to law (weather, sports, coding, recipes)\n")
	prompt.WriteString("DISCUSSION - a follow-up about the previous answers in this conversation\n")
	prompt.WriteString("</labels>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("Reply with exactly one label from the list above and nothing else.")
	return prompt.String()
}

// ExpansionPrompt asks for up to max short search phrases, one per line.
func ExpansionPrompt(question string, max int) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString(fmt.Sprintf("Rewrite the legal question below into at most %d short search phrases for a document search engine.\n", max))
	prompt.WriteString("Each phrase should target a different angle: the legal concept, the governing statute, the procedure.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("- One phrase per line\n")
	prompt.WriteString("- No numbering, no quotes, no explanations\n")
	prompt.WriteString("- Keep each phrase under 12 words\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>")
	return prompt.String()
}

// SummaryPrompt embeds the question and every excerpt verbatim, each tagged
// with its source and page.
func SummaryPrompt(question string, blocks []rag.ContextBlock) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You explain the law to members of the public using ONLY the excerpts provided.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<excerpts>\n")
	for i, b := range blocks {
		prompt.WriteString(fmt.Sprintf("[%d] Source: %s (%s), page %s\n", i+1, b.Title, b.Year, b.PageNumber))
		prompt.WriteString(b.Text)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</excerpts>\n\n")

	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Answer strictly from the excerpts above. Do not use outside knowledge\n")
	prompt.WriteString("2. Use plain language a non-lawyer can follow\n")
	prompt.WriteString("3. Do not give a legal opinion or advice on what the user should do\n")
	prompt.WriteString("4. Mention the source and page you rely on\n")
	prompt.WriteString("5. If the excerpts do not fully answer the question, say so explicitly\n")
	prompt.WriteString("</guidelines>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>")
	return prompt.String()
}

// DiscussionMessages replays history (oldest first) as chat messages and
// appends the new question.
func DiscussionMessages(question string, history []rag.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(history)*2+2)
	messages = append(messages, llm.Message{
		Role: "system",
		Content: "You are a legal research assistant continuing a conversation. " +
			"Answer the follow-up using only what was already said in this conversation. " +
			"Do not give legal advice. If the earlier answers do not cover it, say so and suggest asking a new legal question.",
	})
	for _, t := range history {
		messages = append(messages,
			llm.Message{Role: "user", Content: t.Question},
			llm.Message{Role: "assistant", Content: t.AnswerText},
		)
	}
	messages = append(messages, llm.Message{Role: "user", Content: question})
	return messages
}

// TitlePrompt asks for a short conversation name.
func TitlePrompt(question string) string {
	var prompt strings.Builder
	prompt.WriteString("Summarize the following question as a conversation title of at most 6 words.\n")
	prompt.WriteString("Reply with the title only, without quotes or punctuation at the end.\n\n")
	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>")
	return prompt.String()
}
