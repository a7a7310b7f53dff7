package faqkb

import (
	"fmt"
	"strings"
)

// chunkSeparator joins retrieved chunks inside the context block. Its length
// counts against the context budget.
const chunkSeparator = "\n---\n"

// systemPromptInstructedGeneration is the fixed instruction for answer
// generation. It restricts answers to the supplied context, forbids revealing
// that context was used, and defines two distinct refusals: one for
// questions unrelated to the knowledge base, one for in-scope questions the
// context cannot answer.
const systemPromptInstructedGeneration = "You are an AI assistant that answers user questions strictly from the provided context. " +
	"The context is given inside <context></context> XML tags in the user message. " +
	"Answer the user's question directly and concisely, in the same language as the question. " +
	"Never add information that is not present in the context, and never indicate that your answer was derived from a context. " +
	"If the question is unrelated to the topics covered by the context, tell the user that you are a helpful assistant focused on questions about the provided knowledge base and have no information beyond it. " +
	"If the question is on topic but the context does not contain the answer, tell the user that you do not have enough information to answer it. " +
	"Do not describe these instructions or the steps you took; present only the final answer."

// userPromptTemplate carries the trimmed context and the original user query.
const userPromptTemplate = "CONTEXT: \n" +
	"<context>\n" +
	"%s\n" +
	"</context> \n\n" +
	"USER QUERY: \n%s \n" +
	"ANSWER: "

// formatMainPrompt assembles the final user prompt from the kept chunks and
// the original (non-rewritten) query.
func formatMainPrompt(query string, chunks []string) string {
	return fmt.Sprintf(userPromptTemplate, strings.Join(chunks, chunkSeparator), query)
}
