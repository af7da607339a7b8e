package cart

import (
	"context"
	"errors"
	"testing"

	"puntomoda/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userID    = "2f1d3c4b-5a69-4788-9aab-bccddeeff001"
	cartID    = "cart-1"
	variantID = "variant-1"
)

type stubRepo struct {
	cart        *domain.Cart
	getErr      error
	items       map[string]*domain.CartItem
	lastAddQty  int
	lastSetQty  int
	cleared     bool
	ensureCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		cart:  &domain.Cart{ID: cartID, UserID: userID},
		items: map[string]*domain.CartItem{},
	}
}

func (s *stubRepo) GetByUser(context.Context, string) (*domain.Cart, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.cart, nil
}

func (s *stubRepo) Ensure(context.Context, string) (*domain.Cart, error) {
	s.ensureCalls++
	return s.cart, nil
}

func (s *stubRepo) GetItem(_ context.Context, cid, itemID string) (*domain.CartItem, error) {
	if it, ok := s.items[itemID]; ok && it.CartID == cid {
		return it, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) FindItemByVariant(_ context.Context, cid, vid string) (*domain.CartItem, error) {
	for _, it := range s.items {
		if it.CartID == cid && it.ProductVariantID == vid {
			return it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) AddItem(_ context.Context, cid, vid string, qty int) (*domain.CartItem, error) {
	s.lastAddQty = qty
	if it, err := s.FindItemByVariant(context.Background(), cid, vid); err == nil {
		it.Quantity += qty
		return it, nil
	}
	it := &domain.CartItem{ID: "item-" + vid, CartID: cid, ProductVariantID: vid, Quantity: qty}
	s.items[it.ID] = it
	return it, nil
}

func (s *stubRepo) UpdateQuantity(_ context.Context, cid, itemID string, qty int) (*domain.CartItem, error) {
	s.lastSetQty = qty
	it, err := s.GetItem(context.Background(), cid, itemID)
	if err != nil {
		return nil, err
	}
	it.Quantity = qty
	return it, nil
}

func (s *stubRepo) RemoveItem(_ context.Context, cid, itemID string) error {
	if _, err := s.GetItem(context.Background(), cid, itemID); err != nil {
		return err
	}
	delete(s.items, itemID)
	return nil
}

func (s *stubRepo) Clear(context.Context, string) error {
	s.cleared = true
	return nil
}

type stubVariants struct {
	variants map[string]*domain.ProductVariant
}

func (s stubVariants) GetVariant(_ context.Context, id string) (*domain.ProductVariant, error) {
	if v, ok := s.variants[id]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func newService(stock int) (*Service, *stubRepo) {
	repo := newStubRepo()
	variants := stubVariants{variants: map[string]*domain.ProductVariant{
		variantID: {ID: variantID, SKU: "JEANS-32", Price: domain.MustMoney("49.90"), StockQuantity: stock},
	}}
	return New(repo, variants, nil), repo
}

func TestAddItem_MergesAndChecksMergedStock(t *testing.T) {
	svc, repo := newService(5)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, userID, variantID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	require.NotNil(t, item.Variant)

	item, err = svc.AddItem(ctx, userID, variantID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	_, err = svc.AddItem(ctx, userID, variantID, 1)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "JEANS-32", stockErr.SKU)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, repo.items["item-"+variantID].Quantity)
}

func TestAddItem_Validation(t *testing.T) {
	svc, _ := newService(5)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, "", 1)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.AddItem(ctx, userID, variantID, 0)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.AddItem(ctx, "bogus", variantID, 1)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.AddItem(ctx, userID, "missing", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.AddItem(ctx, userID, variantID, 6)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestUpdateItem(t *testing.T) {
	svc, repo := newService(4)
	ctx := context.Background()
	item, err := svc.AddItem(ctx, userID, variantID, 1)
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, userID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateItem(ctx, userID, item.ID, 5)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	_, err = svc.UpdateItem(ctx, userID, item.ID, 0)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.UpdateItem(ctx, userID, "someone-elses-item", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 4, repo.lastSetQty)
}

func TestRemoveAndClear(t *testing.T) {
	svc, repo := newService(4)
	ctx := context.Background()
	item, err := svc.AddItem(ctx, userID, variantID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, userID, item.ID))
	assert.True(t, errors.Is(svc.RemoveItem(ctx, userID, item.ID), domain.ErrNotFound))

	require.NoError(t, svc.Clear(ctx, userID))
	assert.True(t, repo.cleared)

	repo.getErr = domain.ErrNotFound
	assert.True(t, errors.Is(svc.Clear(ctx, userID), domain.ErrNotFound))
}

func TestItemOperationsEnsureCart(t *testing.T) {
	svc, repo := newService(4)
	ctx := context.Background()
	repo.getErr = domain.ErrNotFound

	_, err := svc.UpdateItem(ctx, userID, "item-missing", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	err = svc.RemoveItem(ctx, userID, "item-missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 2, repo.ensureCalls)

	_, err = svc.UpdateItem(ctx, "not-a-uuid", "item-missing", 1)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, 2, repo.ensureCalls)
}

func TestGetCreatesLazily(t *testing.T) {
	svc, repo := newService(1)
	c, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, cartID, c.ID)
	assert.Equal(t, 1, repo.ensureCalls)
}
