// Package catalog serves product queries and catalog maintenance.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"puntomoda/internal/domain"
	productrepo "puntomoda/internal/repository/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productRepo interface {
	List(ctx context.Context, f productrepo.Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, in productrepo.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in productrepo.UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	AddReview(ctx context.Context, r domain.Review) (*domain.Review, error)
}

type listCache interface {
	GetProducts(ctx context.Context, key string) ([]domain.Product, int64, bool)
	SetProducts(ctx context.Context, version int64, key string, products []domain.Product)
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo   productRepo
	cache  listCache
	logger *zap.Logger
}

type Option func(*Service)

// WithCache enables read-through caching of List results.
func WithCache(c listCache) Option {
	return func(s *Service) { s.cache = c }
}

func New(repo productRepo, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{repo: repo, logger: logger.Named("catalog")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Filter is the parsed form of the listing query string.
type Filter = productrepo.Filter

// ParseFilter builds a Filter from raw query values. Empty values are ignored.
func ParseFilter(category, minPrice, maxPrice, search string) (Filter, error) {
	f := Filter{
		Category: strings.TrimSpace(category),
		Search:   strings.TrimSpace(search),
	}
	var err error
	if f.MinPrice, err = parseBound("minPrice", minPrice); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = parseBound("maxPrice", maxPrice); err != nil {
		return Filter{}, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(f.MaxPrice.Decimal) {
		return Filter{}, domain.Invalidf("minPrice must not exceed maxPrice")
	}
	return f, nil
}

func parseBound(name, raw string) (*domain.Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	m, err := domain.ParseMoney(raw)
	if err != nil || m.IsNegative() {
		return nil, domain.Invalidf("%s must be a non-negative number", name)
	}
	return &m, nil
}

// List returns matching products, newest first, each with its rating summary.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	key := cacheKey(f)
	var version int64
	if s.cache != nil {
		products, v, ok := s.cache.GetProducts(ctx, key)
		if ok {
			return products, nil
		}
		version = v
	}

	products, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	for i := range products {
		applyRating(&products[i])
	}
	if s.cache != nil {
		s.cache.SetProducts(ctx, version, key, products)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalidf("product id is required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyRating(p)
	return p, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

type VariantInput struct {
	SKU           string                    `json:"sku" binding:"required"`
	Price         *domain.Money             `json:"price"`
	StockQuantity int                       `json:"stockQuantity" binding:"gte=0"`
	Attributes    []domain.VariantAttribute `json:"attributes"`
}

type ImageInput struct {
	URL       string `json:"imageUrl" binding:"required"`
	Color     string `json:"color"`
	IsPrimary bool   `json:"isPrimary"`
}

type CreateInput struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Price       domain.Money   `json:"price"`
	SalePrice   *domain.Money  `json:"salePrice"`
	Category    string         `json:"category"`
	Images      []ImageInput   `json:"images" binding:"dive"`
	Variants    []VariantInput `json:"variants" binding:"dive"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalidf("name is required")
	}
	if in.Price.IsNegative() {
		return nil, domain.Invalidf("price must not be negative")
	}
	if in.SalePrice != nil && in.SalePrice.IsNegative() {
		return nil, domain.Invalidf("salePrice must not be negative")
	}

	repoIn := productrepo.CreateInput{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		SalePrice:   in.SalePrice,
		Category:    strings.TrimSpace(in.Category),
	}
	seen := make(map[string]bool, len(in.Variants))
	for _, v := range in.Variants {
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			return nil, domain.Invalidf("variant sku is required")
		}
		if seen[sku] {
			return nil, domain.Invalidf("duplicate sku %s", sku)
		}
		seen[sku] = true
		if v.StockQuantity < 0 {
			return nil, domain.Invalidf("stockQuantity for %s must not be negative", sku)
		}
		if v.Price != nil && v.Price.IsNegative() {
			return nil, domain.Invalidf("price for %s must not be negative", sku)
		}
		repoIn.Variants = append(repoIn.Variants, productrepo.VariantInput{
			SKU:           sku,
			Price:         v.Price,
			StockQuantity: v.StockQuantity,
			Attributes:    v.Attributes,
		})
	}
	for _, img := range in.Images {
		if strings.TrimSpace(img.URL) == "" {
			return nil, domain.Invalidf("imageUrl is required")
		}
		repoIn.Images = append(repoIn.Images, productrepo.ImageInput{URL: strings.TrimSpace(img.URL), Color: img.Color, IsPrimary: img.IsPrimary})
	}

	p, err := s.repo.Create(ctx, repoIn)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	applyRating(p)
	return p, nil
}

type UpdateInput struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Price       *domain.Money `json:"price"`
	SalePrice   *domain.Money `json:"salePrice"`
	// ClearSalePrice removes the sale price; it wins over SalePrice.
	ClearSalePrice bool    `json:"clearSalePrice"`
	Category       *string `json:"category"`
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Invalidf("name must not be empty")
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, domain.Invalidf("price must not be negative")
	}
	if in.SalePrice != nil && in.SalePrice.IsNegative() {
		return nil, domain.Invalidf("salePrice must not be negative")
	}
	p, err := s.repo.Update(ctx, id, productrepo.UpdateInput{
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		SalePrice:      in.SalePrice,
		ClearSalePrice: in.ClearSalePrice,
		Category:       in.Category,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	applyRating(p)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AddReview records a 1..5 rating by userID for the product.
func (s *Service) AddReview(ctx context.Context, productID, userID string, rating int, comment string) (*domain.Review, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if rating < 1 || rating > 5 {
		return nil, domain.Invalidf("rating must be between 1 and 5")
	}
	r, err := s.repo.AddReview(ctx, domain.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return r, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("invalidate catalog cache", zap.Error(err))
	}
}

// applyRating sets AvgRating to the mean rating with one decimal, "0.0" when unrated.
func applyRating(p *domain.Product) {
	if p.ReviewCount == 0 {
		p.AvgRating = "0.0"
		return
	}
	avg := decimal.NewFromInt(int64(p.RatingSum)).Div(decimal.NewFromInt(int64(p.ReviewCount)))
	p.AvgRating = avg.StringFixed(1)
}

func cacheKey(f Filter) string {
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.MinPrice != nil {
		v.Set("min", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		v.Set("max", f.MaxPrice.String())
	}
	if f.Search != "" {
		v.Set("q", strings.ToLower(f.Search))
	}
	if len(v) == 0 {
		return "all"
	}
	return v.Encode()
}
