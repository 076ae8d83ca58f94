package models

const (
	// NoContextAnswer is returned when retrieval yields no chunks for a
	// question. The model is never invoked in that case.
	NoContextAnswer = "No relevant information found in the document."

	ContextSeparator = "\n---\n"

	// SystemInstruction favors faithfulness over completeness: answers come
	// from the supplied context only.
	SystemInstruction = `You are a document question-answering assistant. Answer strictly from the provided context. Quote the context verbatim where possible. If the context does not contain the information needed to answer, state that the information is not available in the document. Do not use outside knowledge and do not fabricate.`
)

var (
	AnswerPromptTemplate = `Context:
%s

Question: %s`
)
