package textnorm

var stopWords = buildStopWords(
	// English
	"a", "about", "after", "all", "am", "an", "and", "any", "are", "as", "at",
	"be", "been", "before", "being", "but", "by", "can", "could", "did", "do",
	"does", "for", "from", "had", "has", "have", "having", "he", "her", "here",
	"how", "i", "if", "in", "into", "is", "it", "its", "just", "me", "more",
	"my", "no", "not", "of", "on", "or", "our", "she", "so", "some", "than",
	"that", "the", "their", "them", "then", "there", "these", "they", "this",
	"to", "too", "up", "very", "was", "we", "were", "what", "when", "which",
	"while", "who", "will", "with", "would", "yes", "you", "your",

	// Arabic
	"في", "من", "على", "إلى", "عن", "مع", "هل", "أو", "ما", "لا", "نعم",
	"هذا", "هذه", "ذلك", "تلك", "التي", "الذي", "كان", "كانت", "أن", "إن",
	"قد", "لم", "لن", "ثم", "أي", "كل", "بعد", "قبل", "عند", "لدي", "أنا",
)

// buildStopWords folds each word so lookups match folded tokens.
func buildStopWords(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[Fold(w)] = struct{}{}
	}
	return m
}
