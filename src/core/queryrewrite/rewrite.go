package queryrewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// QueryType classifies a cleaned query for FAQ reformulation.
type QueryType string

const (
	QueryTypeQuestion  QueryType = "question"
	QueryTypeStatement QueryType = "statement"
	QueryTypeKeyword   QueryType = "keyword"
)

// historyWindow is the number of trailing chat messages consulted during
// context resolution.
const historyWindow = 5

// topicKeywordCount is how many keywords of the topic turn form the topic
// string.
const topicKeywordCount = 2

// Message is one chat turn, read-only input to the rewriter.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result carries every intermediate form of one rewritten query.
type Result struct {
	OriginalQuery   string    `json:"original_query"`
	ResolvedQuery   string    `json:"resolved_query"`
	CleanedQuery    string    `json:"cleaned_query"`
	OptimizedQuery  string    `json:"optimized_query"`
	Keywords        []string  `json:"keywords"`
	QueryType       QueryType `json:"query_type"`
	ContextResolved bool      `json:"context_resolved"`
}

// Rewriter turns a raw user query plus recent chat history into an optimized
// FAQ retrieval query. It is pure: no I/O, deterministic, and total over any
// input string including the empty string.
type Rewriter struct{}

func NewRewriter() *Rewriter {
	return &Rewriter{}
}

var (
	reDisallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s\-?!.,']`)
	reWhitespace = regexp.MustCompile(`\s+`)
	rePronouns   = regexp.MustCompile(`(?i)\b(` + strings.Join(substitutablePronouns, "|") + `)\b`)
)

// Rewrite runs the full heuristic chain: context resolution, cleaning, type
// detection, keyword extraction and FAQ reformulation.
func (r *Rewriter) Rewrite(query string, history []Message) Result {
	result := Result{
		OriginalQuery: query,
		ResolvedQuery: query,
	}

	if r.needsContextResolution(query) && len(history) > 0 {
		result.ResolvedQuery, result.ContextResolved = r.resolveContext(query, history)
	}

	result.CleanedQuery = cleanText(result.ResolvedQuery)
	result.QueryType = detectType(result.CleanedQuery)
	result.Keywords = extractKeywords(result.CleanedQuery)
	result.OptimizedQuery = reformulate(result.CleanedQuery, result.QueryType, result.Keywords)

	// A non-empty query must always produce a non-empty retrieval query,
	// even when cleaning strips every character.
	if result.OptimizedQuery == "" && strings.TrimSpace(query) != "" {
		result.OptimizedQuery = strings.ToLower(strings.TrimSpace(query))
	}

	return result
}

// needsContextResolution decides whether the query depends on earlier turns.
// This is a heuristic: short non-question queries are deliberately left
// unresolved.
func (r *Rewriter) needsContextResolution(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return false
	}

	tokens := tokenize(lower)
	for _, tok := range tokens {
		if anaphoricWords.contains(tok) {
			return true
		}
	}

	for _, opener := range followUpOpeners {
		if strings.HasPrefix(lower, opener) {
			return true
		}
	}

	for _, tok := range tokens {
		if implicitContextAdjectives.contains(tok) {
			return true
		}
	}

	return len(tokens) <= 3 && strings.Contains(lower, "?")
}

// resolveContext rewrites the query against the topic of the most recent
// standalone user turn. Returns the query unchanged when no topic can be
// derived.
func (r *Rewriter) resolveContext(query string, history []Message) (string, bool) {
	topic := r.topicFromHistory(history)
	if topic == "" {
		return query, false
	}

	lower := strings.ToLower(strings.TrimSpace(query))

	// Follow-up openers splice the topic into a templated question.
	for _, opener := range followUpOpeners {
		if !strings.HasPrefix(lower, opener) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimSuffix(lower[len(opener):], "?"))
		switch {
		case rest == "":
			rest = topic
		case rePronouns.MatchString(rest):
			rest = collapseSpaces(rePronouns.ReplaceAllString(rest, topic))
		default:
			rest = rest + " " + topic
		}
		return fmt.Sprintf("what about %s?", rest), true
	}

	// Plain pronoun substitution.
	if rePronouns.MatchString(lower) {
		return collapseSpaces(rePronouns.ReplaceAllString(lower, topic)), true
	}

	// Short follow-ups get the topic prepended as a prefix.
	if len(strings.Fields(lower)) <= 4 {
		return topic + " " + lower, true
	}

	return query, false
}

// topicFromHistory finds the most recent prior user turn that stands on its
// own and returns its top keywords. Falls back to the earliest user turn in
// the window.
func (r *Rewriter) topicFromHistory(history []Message) string {
	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	var userTurns []string
	for _, msg := range window {
		if msg.Role == "user" {
			userTurns = append(userTurns, msg.Content)
		}
	}
	if len(userTurns) == 0 {
		return ""
	}

	topicTurn := userTurns[0]
	for i := len(userTurns) - 1; i >= 0; i-- {
		if !r.needsContextResolution(userTurns[i]) {
			topicTurn = userTurns[i]
			break
		}
	}

	keywords := extractKeywords(cleanText(topicTurn))
	if len(keywords) > topicKeywordCount {
		keywords = keywords[:topicKeywordCount]
	}
	return strings.Join(keywords, " ")
}

// cleanText lowercases, collapses whitespace and strips everything outside a
// conservative allow-list of letters, digits and light punctuation. The
// allow-list is Unicode-aware so queries in any language survive cleaning.
func cleanText(text string) string {
	lower := strings.ToLower(text)
	lower = reDisallowed.ReplaceAllString(lower, "")
	return collapseSpaces(lower)
}

func collapseSpaces(text string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// detectType classifies a cleaned query.
func detectType(cleaned string) QueryType {
	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return QueryTypeKeyword
	}

	first := strings.Trim(tokens[0], tokenPunctuation)
	if questionStarters.contains(first) || strings.HasSuffix(cleaned, "?") {
		return QueryTypeQuestion
	}
	if len(tokens) <= 3 {
		return QueryTypeKeyword
	}
	return QueryTypeStatement
}

const tokenPunctuation = "-?!.,'"

// extractKeywords tokenizes on whitespace, strips punctuation per token and
// drops stopwords and very short tokens. Order is preserved and duplicates
// are kept.
func extractKeywords(cleaned string) []string {
	var keywords []string
	for _, tok := range strings.Fields(cleaned) {
		word := strings.Trim(tok, tokenPunctuation)
		if len(word) <= 2 {
			continue
		}
		if stopwords.contains(word) {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// reformulate rewrites the cleaned query into FAQ phrasing. Questions keep
// their wording, keyword and statement queries are templated from their
// keywords.
func reformulate(cleaned string, queryType QueryType, keywords []string) string {
	if queryType == QueryTypeQuestion {
		if !strings.HasSuffix(cleaned, "?") {
			return cleaned + "?"
		}
		return cleaned
	}

	if len(keywords) == 0 {
		return cleaned
	}

	joined := strings.Join(keywords, " ")
	if queryType == QueryTypeKeyword {
		return fmt.Sprintf("how do i %s?", joined)
	}

	for _, marker := range problemMarkers {
		if strings.Contains(cleaned, marker) {
			return fmt.Sprintf("how do i %s?", joined)
		}
	}
	return fmt.Sprintf("what is %s?", joined)
}

// tokenize splits a lowercased string into punctuation-stripped tokens.
func tokenize(lower string) []string {
	fields := strings.Fields(lower)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.Trim(f, tokenPunctuation)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
