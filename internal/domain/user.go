package domain

import "time"

// User is a registered shopper. Every user owns exactly one cart.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CartID       string    `json:"cartId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session is the authenticated caller of a request, derived from a verified token.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Owns reports whether the session belongs to userID.
func (s *Session) Owns(userID string) bool {
	return s != nil && s.UserID == userID
}
