package queryrewrite

// The rewriting heuristics are driven by fixed word tables rather than a
// grammar. Keeping them as named sets makes them independently testable and
// lets a future model-based rewriter replace the whole package behind the
// same interface.

// anaphoricWords are tokens that usually refer back to an earlier turn.
var anaphoricWords = newWordSet(
	"it", "this", "that", "they", "them", "these", "those", "its", "their",
)

// followUpOpeners mark a query as a continuation of the previous topic.
// Matched as prefixes against the lowercased query.
var followUpOpeners = []string{
	"what about ",
	"how about ",
	"and ",
	"but ",
}

// implicitContextAdjectives appear in queries like "is it included?" where
// the subject lives in an earlier turn.
var implicitContextAdjectives = newWordSet(
	"included", "supported", "available", "compatible", "allowed", "possible",
)

// questionStarters classify a query as a question when one of them is the
// first token.
var questionStarters = newWordSet(
	"what", "how", "why", "when", "where", "who", "which",
	"can", "could", "should", "would", "will",
	"do", "does", "did", "is", "are",
)

// substitutablePronouns get replaced by the topic string during context
// resolution.
var substitutablePronouns = []string{
	"it", "this", "that", "they", "them", "these", "those",
}

// problemMarkers flag a statement as a trouble report, which reformulates to
// a "how do i" question instead of a "what is" question. Matched as
// substrings of the cleaned query.
var problemMarkers = []string{
	"error", "issue", "problem", "fail", "broken", "crash", "bug",
	"cannot", "can't", "not working", "doesn't work", "wrong", "stuck",
}

// stopwords are dropped during keyword extraction: pronouns, auxiliaries,
// question words, glue words and domain-generic verbs that carry no
// retrieval signal in an FAQ corpus.
var stopwords = newWordSet(
	// pronouns
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us",
	"them", "my", "your", "his", "its", "our", "their", "mine", "yours",
	"this", "that", "these", "those",
	// auxiliaries and modals
	"am", "is", "are", "was", "were", "be", "been", "being",
	"do", "does", "did", "done", "have", "has", "had",
	"will", "would", "can", "could", "shall", "should", "may", "might", "must",
	// question words
	"what", "how", "why", "when", "where", "who", "whom", "which",
	// articles, prepositions, conjunctions
	"a", "an", "the", "and", "or", "but", "if", "then", "else",
	"for", "of", "in", "on", "at", "to", "from", "with", "without",
	"into", "onto", "over", "under", "about", "after", "before",
	"there", "here", "all", "any", "some", "no", "not", "only",
	"very", "just", "also", "than", "too", "so", "as", "via",
	// domain-generic verbs and chat filler
	"use", "using", "used", "get", "got", "getting", "need", "needs",
	"want", "wants", "know", "make", "tell", "show", "help", "find",
	"work", "works", "working", "like", "thing", "things",
	"please", "thanks", "thank", "hi", "hello", "hey",
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) contains(word string) bool {
	_, ok := s[word]
	return ok
}
