package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "assistant"

	// Response modes recorded on each assistant message.
	ResponseModeStructured = "structured"
	ResponseModeRAG        = "rag"
	ResponseModeNoContext  = "no_context"
	ResponseModeError      = "error"

	// MaxQuestionLength bounds the accepted question body.
	MaxQuestionLength = 1000
)

// NoContextMessage is returned (and persisted) when retrieval yields no
// usable citations. Generation is skipped entirely in that case.
const NoContextMessage = "I couldn't find any relevant information in the regulation documents to answer your question. Please try rephrasing your question or asking about specific aspects of aged care regulations, home care packages, CHSP programs, or retirement village acts."

// GenerationFailedMessage replaces the assistant reply when the generation
// call fails. It is still persisted so the conversation stays continuous.
const GenerationFailedMessage = "I apologize, but I encountered an error while processing your question. Please try again or rephrase your question."
