package usecase

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/integration/stripe"
	"github.com/piyapromdee/leaniverse-crm/internal/textsim"
)

const (
	minMatchPct         = 30
	maxSuggestedMatches = 3
	highConfidencePct   = 80
	mediumConfidencePct = 60
)

type SuggestMatchesUseCase struct {
	ProductRepo entity.ProductRepositoryInterface
	Gateway     CatalogGateway
	Logger      *zap.Logger
}

func NewSuggestMatchesUseCase(productRepo entity.ProductRepositoryInterface, gateway CatalogGateway, logger *zap.Logger) *SuggestMatchesUseCase {
	return &SuggestMatchesUseCase{ProductRepo: productRepo, Gateway: gateway, Logger: logger}
}

// Execute reads the organization's unlinked products and the external
// catalog and proposes matches. It writes nothing.
func (uc *SuggestMatchesUseCase) Execute(ctx context.Context, actor entity.Actor) (*SuggestOutput, error) {
	products, err := uc.ProductRepo.ListUnlinked(ctx, actor.OrganizationID)
	if err != nil {
		return nil, &PersistenceError{Op: "list unlinked products", Err: err}
	}

	external, err := uc.Gateway.ListActiveProducts(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list stripe products", Err: err}
	}

	out := SuggestMatches(products, external)
	uc.Logger.Info("catalog suggestions computed",
		zap.String("organization_id", actor.OrganizationID),
		zap.Int("unlinked", out.Stats.TotalUnlinkedProducts),
		zap.Int("stripe_products", out.Stats.TotalStripeProducts),
		zap.Int("auto_link", out.Stats.HighConfidenceMatches),
	)
	return out, nil
}

// SuggestMatches ranks external products for every internal product by name
// similarity. Candidates whose rounded percentage is 30 or less are dropped
// and at most three are kept, ties preserving external catalog order.
func SuggestMatches(products []*entity.Product, external []stripe.Product) *SuggestOutput {
	out := &SuggestOutput{
		Suggestions: make([]ProductSuggestion, 0, len(products)),
		Stats: SuggestStats{
			TotalUnlinkedProducts: len(products),
			TotalStripeProducts:   len(external),
		},
	}

	for _, p := range products {
		s := ProductSuggestion{
			Product: ProductSummary{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				PriceCount:  len(p.Prices),
			},
			SuggestedMatches: rankCandidates(p.Name, external),
		}
		s.Recommendation = recommend(s.SuggestedMatches)

		switch s.Recommendation {
		case RecommendAutoLink:
			out.Stats.HighConfidenceMatches++
		case RecommendReviewSuggested:
			out.Stats.SuggestedMatches++
		default:
			out.Stats.CreateNewRecommended++
		}
		out.Suggestions = append(out.Suggestions, s)
	}

	return out
}

type scoredCandidate struct {
	product stripe.Product
	score   float64
	pct     int
}

func rankCandidates(name string, external []stripe.Product) []SuggestedMatch {
	var candidates []scoredCandidate
	for _, ext := range external {
		score := textsim.Similarity(name, ext.Name)
		pct := int(math.Round(score * 100))
		if pct > minMatchPct {
			candidates = append(candidates, scoredCandidate{product: ext, score: score, pct: pct})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxSuggestedMatches {
		candidates = candidates[:maxSuggestedMatches]
	}

	matches := make([]SuggestedMatch, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, SuggestedMatch{
			ExternalProductID: c.product.ID,
			Name:              c.product.Name,
			Description:       c.product.Description,
			Similarity:        c.pct,
			Confidence:        confidenceFor(c.pct),
		})
	}
	return matches
}

func confidenceFor(pct int) Confidence {
	switch {
	case pct > highConfidencePct:
		return ConfidenceHigh
	case pct > mediumConfidencePct:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func recommend(matches []SuggestedMatch) Recommendation {
	switch {
	case len(matches) == 0:
		return RecommendCreateNew
	case matches[0].Similarity > highConfidencePct:
		return RecommendAutoLink
	default:
		return RecommendReviewSuggested
	}
}
