package order

import (
	"context"
	"fmt"

	"puntomoda/internal/domain"
	orderrepo "puntomoda/internal/repository/order"
)

type fakeVariant struct {
	sku   string
	price domain.Money
	stock int
}

type fakeItem struct {
	id        string
	variantID string
	qty       int
}

type fakeState struct {
	variants map[string]fakeVariant
	carts    map[string]string // userID -> cartID
	items    map[string][]fakeItem
	orders   []domain.Order
}

func (s fakeState) clone() fakeState {
	out := fakeState{
		variants: make(map[string]fakeVariant, len(s.variants)),
		carts:    make(map[string]string, len(s.carts)),
		items:    make(map[string][]fakeItem, len(s.items)),
		orders:   make([]domain.Order, len(s.orders)),
	}
	for k, v := range s.variants {
		out.variants[k] = v
	}
	for k, v := range s.carts {
		out.carts[k] = v
	}
	for k, v := range s.items {
		out.items[k] = append([]fakeItem(nil), v...)
	}
	for i, o := range s.orders {
		o.Items = append([]domain.OrderItem(nil), o.Items...)
		out.orders[i] = o
	}
	return out
}

// fakeStore is an in-memory order repository whose WithTx restores a snapshot
// when the callback fails.
type fakeStore struct {
	state fakeState
	seq   int

	failInsertItem  error
	failGetByID     error
	stealStockOnSKU string
	commits         int
	rollbacks       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: fakeState{
		variants: map[string]fakeVariant{},
		carts:    map[string]string{},
		items:    map[string][]fakeItem{},
	}}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) addVariant(id, sku, price string, stock int) {
	f.state.variants[id] = fakeVariant{sku: sku, price: domain.MustMoney(price), stock: stock}
}

func (f *fakeStore) addCart(userID string) string {
	cartID := "cart-" + userID
	f.state.carts[userID] = cartID
	return cartID
}

func (f *fakeStore) addItem(cartID, variantID string, qty int) {
	f.state.items[cartID] = append(f.state.items[cartID], fakeItem{id: f.nextID("item"), variantID: variantID, qty: qty})
}

func (f *fakeStore) stock(variantID string) int { return f.state.variants[variantID].stock }

func (f *fakeStore) WithTx(ctx context.Context, fn func(orderrepo.Tx) error) error {
	snapshot := f.state.clone()
	if err := fn(&fakeTx{store: f}); err != nil {
		f.state = snapshot
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if f.failGetByID != nil {
		return nil, f.failGetByID
	}
	for _, o := range f.state.orders {
		if o.ID == id {
			out := o
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	for i := len(f.state.orders) - 1; i >= 0; i-- {
		if o := f.state.orders[i]; o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) LoadCart(_ context.Context, userID string) (*domain.Cart, error) {
	cartID, ok := t.store.state.carts[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := &domain.Cart{ID: cartID, UserID: userID, Items: []domain.CartItem{}}
	for _, it := range t.store.state.items[cartID] {
		v := t.store.state.variants[it.variantID]
		c.Items = append(c.Items, domain.CartItem{
			ID:               it.id,
			CartID:           cartID,
			ProductVariantID: it.variantID,
			Quantity:         it.qty,
			Variant:          &domain.ProductVariant{ID: it.variantID, SKU: v.sku, Price: v.price, StockQuantity: v.stock},
		})
	}
	return c, nil
}

func (t *fakeTx) InsertOrder(_ context.Context, userID string, total domain.Money) (*domain.Order, error) {
	o := domain.Order{ID: t.store.nextID("order"), UserID: userID, TotalAmount: total, Items: []domain.OrderItem{}}
	t.store.state.orders = append(t.store.state.orders, o)
	return &o, nil
}

func (t *fakeTx) InsertItem(_ context.Context, item domain.OrderItem) (*domain.OrderItem, error) {
	if t.store.failInsertItem != nil {
		return nil, t.store.failInsertItem
	}
	item.ID = t.store.nextID("order-item")
	for i := range t.store.state.orders {
		if t.store.state.orders[i].ID == item.OrderID {
			t.store.state.orders[i].Items = append(t.store.state.orders[i].Items, item)
			return &item, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *fakeTx) DecrementStock(_ context.Context, variantID string, qty int) error {
	v, ok := t.store.state.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	if v.sku == t.store.stealStockOnSKU {
		// Simulates a concurrent checkout draining stock after the pre-check.
		v.stock = 0
	}
	if v.stock < qty {
		t.store.state.variants[variantID] = v
		return domain.ErrInsufficientStock
	}
	v.stock -= qty
	t.store.state.variants[variantID] = v
	return nil
}

func (t *fakeTx) ClearCart(_ context.Context, cartID string) error {
	delete(t.store.state.items, cartID)
	return nil
}

func (f *fakeStore) cartItems(userID string) int {
	return len(f.state.items[f.state.carts[userID]])
}
