package seed

import (
	"context"
	"errors"
	"fmt"

	"puntomoda/internal/domain"
	"puntomoda/internal/service/catalog"
	usersvc "puntomoda/internal/service/user"

	"go.uber.org/zap"
)

type productLookup interface {
	GetByName(ctx context.Context, name string) (*domain.Product, error)
}

type productCreator interface {
	Create(ctx context.Context, in catalog.CreateInput) (*domain.Product, error)
}

type userRegistrar interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
}

// Demo user credentials.
const (
	DemoEmail    = "demo@puntomoda.test"
	DemoPassword = "puntomoda-demo"
)

// Result counts what Apply created on this run.
type Result struct {
	ProductsCreated int
	ProductsSkipped int
	UserCreated     bool
}

// Apply inserts the demo catalog and user. Products are matched by name and
// the user by email, so running it twice creates nothing new.
func Apply(ctx context.Context, lookup productLookup, products productCreator, users userRegistrar, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result
	for _, p := range demoCatalog() {
		_, err := lookup.GetByName(ctx, p.Name)
		switch {
		case err == nil:
			res.ProductsSkipped++
			continue
		case !errors.Is(err, domain.ErrNotFound):
			return res, fmt.Errorf("look up product %q: %w", p.Name, err)
		}
		created, err := products.Create(ctx, p)
		if err != nil {
			return res, fmt.Errorf("create product %q: %w", p.Name, err)
		}
		res.ProductsCreated++
		logger.Info("seeded product", zap.String("id", created.ID), zap.String("name", created.Name), zap.Int("variants", len(created.Variants)))
	}

	_, err := users.Register(ctx, usersvc.RegisterInput{Name: "Demo Shopper", Email: DemoEmail, Password: DemoPassword})
	switch {
	case err == nil:
		res.UserCreated = true
		logger.Info("seeded demo user", zap.String("email", DemoEmail))
	case errors.Is(err, domain.ErrAlreadyExists):
	default:
		return res, fmt.Errorf("register demo user: %w", err)
	}
	return res, nil
}

func money(s string) *domain.Money {
	m := domain.MustMoney(s)
	return &m
}

func variant(sku, size, color string, stock int) catalog.VariantInput {
	return catalog.VariantInput{
		SKU:           sku,
		StockQuantity: stock,
		Attributes: []domain.VariantAttribute{
			{Name: "size", Value: size},
			{Name: "color", Value: color},
		},
	}
}

func demoCatalog() []catalog.CreateInput {
	return []catalog.CreateInput{
		{
			Name:        "Remera Básica Algodón",
			Description: "Remera de algodón peinado, corte regular.",
			Price:       domain.MustMoney("12500"),
			Category:    "remeras",
			Images: []catalog.ImageInput{
				{URL: "/img/remera-basica-blanca.jpg", Color: "blanco", IsPrimary: true},
				{URL: "/img/remera-basica-negra.jpg", Color: "negro"},
			},
			Variants: []catalog.VariantInput{
				variant("REM-BAS-S-BLA", "S", "blanco", 20),
				variant("REM-BAS-M-BLA", "M", "blanco", 25),
				variant("REM-BAS-M-NEG", "M", "negro", 15),
				variant("REM-BAS-L-NEG", "L", "negro", 10),
			},
		},
		{
			Name:        "Camisa Oxford",
			Description: "Camisa de oxford con cuello abotonado.",
			Price:       domain.MustMoney("29900"),
			SalePrice:   money("24900"),
			Category:    "camisas",
			Images: []catalog.ImageInput{
				{URL: "/img/camisa-oxford-celeste.jpg", Color: "celeste", IsPrimary: true},
			},
			Variants: []catalog.VariantInput{
				variant("CAM-OXF-M-CEL", "M", "celeste", 8),
				variant("CAM-OXF-L-CEL", "L", "celeste", 6),
			},
		},
		{
			Name:        "Jean Recto Clásico",
			Description: "Jean de denim rígido, tiro medio.",
			Price:       domain.MustMoney("38900"),
			SalePrice:   money("31900"),
			Category:    "pantalones",
			Images: []catalog.ImageInput{
				{URL: "/img/jean-recto-azul.jpg", Color: "azul", IsPrimary: true},
				{URL: "/img/jean-recto-negro.jpg", Color: "negro"},
			},
			Variants: []catalog.VariantInput{
				variant("JEAN-REC-38-AZU", "38", "azul", 12),
				variant("JEAN-REC-40-AZU", "40", "azul", 9),
				variant("JEAN-REC-42-NEG", "42", "negro", 4),
			},
		},
		{
			Name:        "Vestido de Lino",
			Description: "Vestido midi de lino con lazo en la cintura.",
			Price:       domain.MustMoney("54000"),
			Category:    "vestidos",
			Images: []catalog.ImageInput{
				{URL: "/img/vestido-lino-verde.jpg", Color: "verde", IsPrimary: true},
				{URL: "/img/vestido-lino-beige.jpg", Color: "beige"},
			},
			Variants: []catalog.VariantInput{
				variant("VES-LIN-S-VER", "S", "verde", 5),
				variant("VES-LIN-M-VER", "M", "verde", 3),
				variant("VES-LIN-L-BEI", "L", "beige", 2),
			},
		},
	}
}
