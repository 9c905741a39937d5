package services

import (
	"strings"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// DomainClassifierService scores free text (a business requirement or a
// single field name) against the known domain vocabularies and returns the
// best match. A confidence near zero means "unclassified"; callers decide
// what to do with that, the classifier never returns an explicit "none".
type DomainClassifierService interface {
	Classify(text string) types.BusinessDomain
}

type domainClassifierService struct {
	log *logger.Logger
}

func NewDomainClassifierService(baseLog *logger.Logger) DomainClassifierService {
	return &domainClassifierService{log: baseLog.With("service", "DomainClassifierService")}
}

func (s *domainClassifierService) Classify(text string) types.BusinessDomain {
	tokens := strings.Fields(strings.ToLower(text))

	best := knownDomains[0]
	bestCount := 0
	var bestMatched []string

	for i, domain := range knownDomains {
		count, matched := matchDomain(tokens, domain.keywords)
		// Strictly greater: on ties the first domain in enumeration order
		// wins.
		if i == 0 || count > bestCount {
			best = domain
			bestCount = count
			bestMatched = matched
		}
	}

	confidence := 0.0
	if len(tokens) > 0 {
		confidence = float64(bestCount) / float64(len(tokens))
	}

	return types.BusinessDomain{
		Name:         best.name,
		Confidence:   confidence,
		Keywords:     bestMatched,
		CommonFields: best.commonFields,
	}
}

// matchDomain counts tokens that loosely match the keyword list. A token
// matches when it contains a keyword or the keyword contains the token;
// each token counts at most once per domain.
func matchDomain(tokens []string, keywords []string) (int, []string) {
	count := 0
	var matched []string
	seen := map[string]bool{}
	for _, token := range tokens {
		for _, kw := range keywords {
			if strings.Contains(token, kw) || strings.Contains(kw, token) {
				count++
				if !seen[kw] {
					seen[kw] = true
					matched = append(matched, kw)
				}
				break
			}
		}
	}
	return count, matched
}

// GeneralDomain returns the unclassified seed domain used by rule-based
// generation when nothing scores.
func GeneralDomain() types.BusinessDomain {
	return types.BusinessDomain{
		Name:         "general",
		Confidence:   0,
		Keywords:     []string{},
		CommonFields: generalCommonFields,
	}
}
