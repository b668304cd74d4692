package response

import "legal-rag-be/pkg/rag"

// Fixed user-facing texts. Tests and clients compare against them verbatim.
const (
	GreetingMessage = "Hello! I can help you find and understand legal provisions. " +
		"Ask me a legal question, for example \"What is bail?\"."

	ClarificationMessage = "Could you tell me a bit more? Please describe the legal issue " +
		"or name the law or situation you are asking about."

	IrrelevantMessage = "I can only help with legal questions. " +
		"Please ask about a law, a right, or a legal procedure."

	NoRelevantDocumentsMessage = "No relevant documents were found for your question. " +
		"Try rephrasing it or naming the specific law you are interested in."

	BlockedMessage = "I can't provide an answer to this question because it was flagged by the content safety policy. " +
		"Please rephrase your question."

	GenerationFailedMessage = "Sorry, the answer could not be generated right now. Please try again in a moment."
)

// CannedAnswer returns the fixed reply for intents that skip retrieval and
// generation. ok is false for intents that need the model.
func CannedAnswer(intent rag.Intent) (string, bool) {
	switch intent {
	case rag.IntentGreeting:
		return GreetingMessage, true
	case rag.IntentClarificationNeeded:
		return ClarificationMessage, true
	case rag.IntentIrrelevant:
		return IrrelevantMessage, true
	case rag.IntentLegalQuery, rag.IntentDiscussion:
		return "", false
	default:
		return "", false
	}
}
