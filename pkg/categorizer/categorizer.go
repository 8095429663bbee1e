package categorizer

// Categorizer scores a bag of tokens against the fixed label set it was trained on.
type Categorizer interface {
	// Categorize returns one probability per label, in Labels() order.
	Categorize(tokens []string) []float64
	// BestCategory returns the label with the highest probability.
	BestCategory(probs []float64) string
	// Classify is Categorize followed by BestCategory.
	Classify(tokens []string) (string, float64)
	Labels() []string
}

// Result holds the chosen category for one document
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// featurePrefix marks bag-of-words predicates so other feature generators can
// share the predicate space later without collisions.
const featurePrefix = "bow="
