package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"puntomoda/internal/domain"
	userrepo "puntomoda/internal/repository/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubRepo struct {
	byEmail    map[string]*domain.User
	lastCreate domain.User
	lastUpdate userrepo.UpdateInput
	updateErr  error
}

func newStubRepo() *stubRepo { return &stubRepo{byEmail: map[string]*domain.User{}} }

func (s *stubRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	s.lastCreate = u
	u.ID = "u-1"
	u.CartID = "c-1"
	s.byEmail[u.Email] = &u
	return &u, nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) Update(_ context.Context, id string, in userrepo.UpdateInput) (*domain.User, error) {
	s.lastUpdate = in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.GetByID(context.Background(), id)
}

type stubTokens struct {
	issued  int
	revoked []string
}

func (s *stubTokens) Issue(_ context.Context, userID string) (string, *domain.Session, error) {
	s.issued++
	return "token", &domain.Session{ID: "s-1", UserID: userID}, nil
}

func (s *stubTokens) Revoke(_ context.Context, id string) error {
	s.revoked = append(s.revoked, id)
	return nil
}

func newService() (*Service, *stubRepo, *stubTokens) {
	repo := newStubRepo()
	tokens := &stubTokens{}
	svc := New(repo, tokens, nil)
	svc.hashCost = bcrypt.MinCost
	return svc, repo, tokens
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, repo, _ := newService()
	u, err := svc.Register(context.Background(), RegisterInput{Name: " Ana ", Email: " Ana@Example.COM ", Password: "secret-pass"})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "c-1", u.CartID)
	assert.NotEqual(t, "secret-pass", repo.lastCreate.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.lastCreate.PasswordHash), []byte("secret-pass")))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newService()
	cases := []RegisterInput{
		{Name: "", Email: "a@b.co", Password: "longenough"},
		{Name: "A", Email: "", Password: "longenough"},
		{Name: "A", Email: "not-an-email", Password: "longenough"},
		{Name: "A", Email: "a@b.co", Password: "short"},
	}
	for i, in := range cases {
		_, err := svc.Register(context.Background(), in)
		assert.True(t, errors.Is(err, domain.ErrValidation), "case %d: %v", i, err)
	}
}

func TestRegisterPasswordLengthLimit(t *testing.T) {
	svc, repo, _ := newService()

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 73)})
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
	assert.Empty(t, repo.lastCreate.Email)

	// The limit is in bytes: 37 two-byte runes are 74 bytes.
	_, err = svc.Register(context.Background(), RegisterInput{Name: "A", Email: "b@b.co", Password: strings.Repeat("ñ", 37)})
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "A", Email: "c@b.co", Password: strings.Repeat("x", 72)})
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newService()
	in := RegisterInput{Name: "A", Email: "a@b.co", Password: "longenough"}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
}

func TestLogin(t *testing.T) {
	svc, _, tokens := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "longenough"})
	require.NoError(t, err)

	u, token, sess, err := svc.Login(ctx, "a@b.co", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "token", token)
	assert.Equal(t, "u-1", sess.UserID)

	_, _, _, err = svc.Login(ctx, "a@b.co", "wrong-password")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	_, _, _, err = svc.Login(ctx, "nobody@b.co", "longenough")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, 1, tokens.issued)

	require.NoError(t, svc.Logout(ctx, sess))
	assert.Equal(t, []string{"s-1"}, tokens.revoked)
	assert.True(t, errors.Is(svc.Logout(ctx, nil), domain.ErrUnauthorized))
}

func TestUpdate(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "longenough"})
	require.NoError(t, err)

	email := " NEW@b.co "
	_, err = svc.Update(ctx, "u-1", UpdateInput{Email: &email})
	require.NoError(t, err)
	require.NotNil(t, repo.lastUpdate.Email)
	assert.Equal(t, "new@b.co", *repo.lastUpdate.Email)
	assert.Nil(t, repo.lastUpdate.Name)

	blank := "  "
	_, err = svc.Update(ctx, "u-1", UpdateInput{Name: &blank})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	repo.updateErr = domain.ErrAlreadyExists
	_, err = svc.Update(ctx, "u-1", UpdateInput{Email: &email})
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
}
