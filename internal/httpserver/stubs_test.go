package httpserver

import (
	"context"

	"puntomoda/internal/domain"
	"puntomoda/internal/service/catalog"
	usersvc "puntomoda/internal/service/user"
)

type stubCatalog struct {
	products   []domain.Product
	product    *domain.Product
	categories []string
	lastFilter catalog.Filter
	lastReview struct {
		productID, userID string
		rating            int
	}
	err error
}

func (s *stubCatalog) List(_ context.Context, f catalog.Filter) ([]domain.Product, error) {
	s.lastFilter = f
	return s.products, s.err
}

func (s *stubCatalog) Get(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubCatalog) Categories(context.Context) ([]string, error) { return s.categories, s.err }

func (s *stubCatalog) Create(_ context.Context, in catalog.CreateInput) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: "p-new", Name: in.Name, Price: in.Price}, nil
}

func (s *stubCatalog) Update(_ context.Context, id string, _ catalog.UpdateInput) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubCatalog) Delete(context.Context, string) error { return s.err }

func (s *stubCatalog) AddReview(_ context.Context, productID, userID string, rating int, comment string) (*domain.Review, error) {
	s.lastReview.productID, s.lastReview.userID, s.lastReview.rating = productID, userID, rating
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Review{ID: "r1", ProductID: productID, UserID: userID, Rating: rating, Comment: comment}, nil
}

type stubUsers struct {
	user      *domain.User
	token     string
	session   *domain.Session
	loggedOut *domain.Session
	err       error
}

func (s *stubUsers) Register(_ context.Context, in usersvc.RegisterInput) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: "u-new", Name: in.Name, Email: in.Email}, nil
}

func (s *stubUsers) Get(context.Context, string) (*domain.User, error) { return s.user, s.err }

func (s *stubUsers) Update(context.Context, string, usersvc.UpdateInput) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubUsers) Login(context.Context, string, string) (*domain.User, string, *domain.Session, error) {
	if s.err != nil {
		return nil, "", nil, s.err
	}
	return s.user, s.token, s.session, nil
}

func (s *stubUsers) Logout(_ context.Context, sess *domain.Session) error {
	s.loggedOut = sess
	return s.err
}

type stubCarts struct {
	cart        *domain.Cart
	addedQty    int
	addedVariant string
	err         error
}

func (s *stubCarts) Get(context.Context, string) (*domain.Cart, error) { return s.cart, s.err }

func (s *stubCarts) AddItem(_ context.Context, _ string, variantID string, quantity int) (*domain.CartItem, error) {
	s.addedVariant, s.addedQty = variantID, quantity
	if s.err != nil {
		return nil, s.err
	}
	return &domain.CartItem{ID: "i1", ProductVariantID: variantID, Quantity: quantity}, nil
}

func (s *stubCarts) UpdateItem(_ context.Context, _, itemID string, quantity int) (*domain.CartItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.CartItem{ID: itemID, Quantity: quantity}, nil
}

func (s *stubCarts) RemoveItem(context.Context, string, string) error { return s.err }
func (s *stubCarts) Clear(context.Context, string) error              { return s.err }

type stubOrders struct {
	order       *domain.Order
	orders      []domain.Order
	checkoutFor string
	err         error
}

func (s *stubOrders) Checkout(_ context.Context, userID string) (*domain.Order, error) {
	s.checkoutFor = userID
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrders) Get(context.Context, string) (*domain.Order, error) { return s.order, s.err }

func (s *stubOrders) ListByUser(context.Context, string) ([]domain.Order, error) {
	return s.orders, s.err
}

// stubVerifier accepts tokens of the form "token-<userID>".
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (*domain.Session, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Session{ID: "s-" + token, UserID: token[len(prefix):]}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
