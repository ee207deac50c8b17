package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"smartpos/internal/ai"
	"smartpos/internal/domain"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recommendation pairs a catalog product with the reason it complements
// a specific cart item.
type Recommendation struct {
	Product *domain.Product `json:"product"`
	Reason  string          `json:"reason"`
	ForItem string          `json:"for_item"`
}

// RecommendationService suggests complementary products for a cart. It
// degrades gracefully: any per-item failure is skipped and an empty list
// is a valid answer.
type RecommendationService interface {
	Recommend(ctx context.Context, productIDs []uuid.UUID) ([]Recommendation, error)
}

type recommendationService struct {
	products  repository.ProductRepository
	generator ai.TextGenerator
	logger    *zap.Logger
}

// NewRecommendationService creates a new instance of RecommendationService
func NewRecommendationService(products repository.ProductRepository, generator ai.TextGenerator, logger *zap.Logger) RecommendationService {
	return &recommendationService{
		products:  products,
		generator: generator,
		logger:    logger,
	}
}

// jsonObjectPattern extracts the first JSON object from a model answer
// that may be wrapped in prose or markdown fences.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type suggestion struct {
	ProductName string `json:"productName"`
	Reason      string `json:"reason"`
}

// Recommend asks the text model for one complementary product per cart
// item and resolves each suggestion against the live catalog, excluding
// products already in the cart and anything out of stock.
func (s *recommendationService) Recommend(ctx context.Context, productIDs []uuid.UUID) ([]Recommendation, error) {
	recommendations := []Recommendation{}
	if len(productIDs) == 0 {
		return recommendations, nil
	}

	for _, id := range productIDs {
		cartProduct, err := s.products.FindByID(ctx, id)
		if err != nil {
			s.logger.Debug("Skipping unknown cart product", zap.String("product_id", id.String()))
			continue
		}

		rec, err := s.recommendFor(ctx, cartProduct, productIDs)
		if err != nil {
			s.logger.Warn("Recommendation failed for cart item",
				zap.String("product", cartProduct.Name),
				zap.Error(err),
			)
			continue
		}
		if rec != nil {
			recommendations = append(recommendations, *rec)
		}
	}

	return recommendations, nil
}

func (s *recommendationService) recommendFor(ctx context.Context, cartProduct *domain.Product, inCart []uuid.UUID) (*Recommendation, error) {
	answer, err := s.generator.GenerateText(ctx, buildPrompt(cartProduct))
	if err != nil {
		return nil, err
	}

	parsed, err := parseSuggestion(answer)
	if err != nil {
		return nil, err
	}

	reason := parsed.Reason
	if reason == "" {
		reason = "AI-recommended complementary product"
	}

	product, err := s.resolveProduct(ctx, parsed.ProductName, inCart)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	return &Recommendation{
		Product: product,
		Reason:  reason,
		ForItem: cartProduct.Name,
	}, nil
}

// resolveProduct looks the suggested name up in the catalog, falling
// back to a per-keyword search when the exact phrase matches nothing.
func (s *recommendationService) resolveProduct(ctx context.Context, name string, exclude []uuid.UUID) (*domain.Product, error) {
	product, err := s.products.FindFirstAvailable(ctx, name, exclude)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, repository.ErrProductNotFound) {
		return nil, err
	}

	for _, keyword := range strings.Fields(name) {
		if len(keyword) < 3 {
			continue
		}
		product, err := s.products.FindFirstAvailable(ctx, keyword, exclude)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

func buildPrompt(p *domain.Product) string {
	return fmt.Sprintf(`You are a helpful retail store assistant. A customer just added %q (category: %s) to their cart.

Based on this specific product, recommend ONE complementary product that would be useful.

Respond in this exact JSON format:
{
  "productName": "exact product name",
  "reason": "brief 1-sentence explanation of why this complements %s"
}`, p.Name, p.Category, p.Name)
}

// parseSuggestion pulls the JSON object out of the model answer
func parseSuggestion(answer string) (*suggestion, error) {
	match := jsonObjectPattern.FindString(answer)
	if match == "" {
		return nil, fmt.Errorf("no JSON object in model answer")
	}

	var parsed suggestion
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model answer: %w", err)
	}
	if parsed.ProductName == "" {
		return nil, fmt.Errorf("model answer missing productName")
	}

	return &parsed, nil
}
