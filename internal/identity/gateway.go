// Package identity wraps the external identity provider. Password checks,
// token signing and verification all live on the provider side; this package
// only translates between its API and the backend's error taxonomy.
package identity

import "context"

// Identity is the provider's view of an authenticated principal.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// SignInResult is returned by a successful password sign-in. AccessToken is
// the provider-issued short-lived bearer token.
type SignInResult struct {
	UID         string
	Email       string
	AccessToken string
}

type NewUser struct {
	Email       string
	Password    string
	DisplayName string
}

type Gateway interface {
	// VerifyAccessToken checks a bearer token and returns its identity.
	VerifyAccessToken(ctx context.Context, token string) (*Identity, error)
	// SignIn verifies an email/password credential.
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	// CreateUser registers a new account and returns its assigned identity.
	CreateUser(ctx context.Context, u NewUser) (*Identity, error)
	// GetUser resolves a uid to its current identity.
	GetUser(ctx context.Context, uid string) (*Identity, error)
	// IssueAccessToken mints a fresh short-lived access token for uid.
	IssueAccessToken(ctx context.Context, uid string) (string, error)
	// SendPasswordReset triggers the provider's reset-password email.
	SendPasswordReset(ctx context.Context, email string) error
}

// TokenVerifier is the subset of Gateway the auth middleware needs.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*Identity, error)
}
