package usecase

import (
	"regexp"
	"strings"

	"github.com/medalt/backend/internal/logging"
	"golang.org/x/text/unicode/norm"
)

var (
	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)

	// Quotes users paste around a name, e.g. "Panadol"
	wrappingQuotes = "\"'`“”‘’"
)

// QueryPreprocessor cleans free-text medicine names before resolution
type QueryPreprocessor struct {
	enableDebugLogging bool
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebugLogging bool) *QueryPreprocessor {
	return &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
	}
}

// PreprocessQuery applies NFKC, strips wrapping quotes and collapses whitespace.
// Case is preserved; folding is the resolver's decision.
// An empty result means the query carries no usable text.
func (p *QueryPreprocessor) PreprocessQuery(query string) string {
	cleaned := norm.NFKC.String(query)
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, wrappingQuotes)
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if p.enableDebugLogging {
		log := logging.Component("preprocess")
		log.Debug().Str("input", query).Str("output", cleaned).Msg("query preprocessed")
	}

	return cleaned
}
