package adapter

import "context"

// User is the slice of the auth provider's session we consume. Sign-up,
// sign-in and session refresh all live with the provider; we only ever ask
// "who is the current user".
type User struct {
	ID    string
	Email string
	Phone string
}

// Identity resolves the currently authenticated user.
// Returns domain.ErrAuthRequired when there is none.
type Identity interface {
	CurrentUser(ctx context.Context) (*User, error)
}
