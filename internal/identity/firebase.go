package identity

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

// FirebaseGateway implements Gateway on Firebase Authentication. Admin-side
// operations (token verification, account creation, custom tokens) go through
// the Admin SDK; password sign-in, custom-token exchange and reset emails go
// through the Identity Toolkit API, which is the server-side equivalent of
// the client SDK calls.
type FirebaseGateway struct {
	auth         *fbauth.Client
	toolkit      *identitytoolkit.RelyingpartyService
	allowExpired bool
	logger       pkglog.Logger
}

func NewFirebaseGateway(authClient *fbauth.Client, toolkit *identitytoolkit.Service, allowExpired bool, logger pkglog.Logger) *FirebaseGateway {
	return &FirebaseGateway{
		auth:         authClient,
		toolkit:      toolkit.Relyingparty,
		allowExpired: allowExpired,
		logger:       logger,
	}
}

func (g *FirebaseGateway) VerifyAccessToken(ctx context.Context, token string) (*Identity, error) {
	decoded, err := g.auth.VerifyIDToken(ctx, token)
	if err != nil {
		// Local-dev escape hatch: accept an expired token's claims without
		// verification so stale clients keep working. Off in production.
		if g.allowExpired && fbauth.IsIDTokenExpired(err) {
			if id, derr := unverifiedIdentity(token); derr == nil {
				g.logger.Warn().Str("uid", id.UID).Msg("accepted expired access token")
				return id, nil
			}
		}
		return nil, apperr.Wrap(apperr.Unauthorized, "Invalid or expired token", err)
	}

	id := &Identity{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}

// unverifiedIdentity decodes token claims without checking the signature.
func unverifiedIdentity(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	uid, _ := claims["user_id"].(string)
	if uid == "" {
		uid, _ = claims["sub"].(string)
	}
	if uid == "" {
		return nil, errors.New("token carries no user id")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return &Identity{UID: uid, Email: email, Name: name}, nil
}

func (g *FirebaseGateway) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	resp, err := g.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		switch code := toolkitCode(err); {
		case strings.HasPrefix(code, "EMAIL_NOT_FOUND"):
			return nil, apperr.New(apperr.NotFound, "User not found")
		case strings.HasPrefix(code, "INVALID_PASSWORD"), strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"):
			return nil, apperr.New(apperr.Unauthorized, "Invalid password")
		case strings.HasPrefix(code, "INVALID_EMAIL"):
			return nil, apperr.New(apperr.BadRequest, "Invalid email format")
		case strings.HasPrefix(code, "TOO_MANY_ATTEMPTS_TRY_LATER"):
			return nil, apperr.New(apperr.RateLimited, "Too many failed login attempts. Please try again later.")
		}
		return nil, apperr.Wrap(apperr.Internal, "Login failed", err)
	}
	return &SignInResult{
		UID:         resp.LocalId,
		Email:       resp.Email,
		AccessToken: resp.IdToken,
	}, nil
}

func (g *FirebaseGateway) CreateUser(ctx context.Context, u NewUser) (*Identity, error) {
	params := (&fbauth.UserToCreate{}).
		Email(u.Email).
		Password(u.Password).
		DisplayName(u.DisplayName)

	record, err := g.auth.CreateUser(ctx, params)
	if err != nil {
		switch {
		case fbauth.IsEmailAlreadyExists(err):
			return nil, apperr.New(apperr.Conflict, "Email already in use")
		case strings.Contains(err.Error(), "email"):
			return nil, apperr.New(apperr.BadRequest, "Invalid email format")
		case strings.Contains(err.Error(), "password"):
			return nil, apperr.New(apperr.BadRequest, "Password is too weak")
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to register user", err)
	}
	return &Identity{UID: record.UID, Email: record.Email, Name: record.DisplayName}, nil
}

func (g *FirebaseGateway) GetUser(ctx context.Context, uid string) (*Identity, error) {
	record, err := g.auth.GetUser(ctx, uid)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch user", err)
	}
	return &Identity{UID: record.UID, Email: record.Email, Name: record.DisplayName}, nil
}

func (g *FirebaseGateway) IssueAccessToken(ctx context.Context, uid string) (string, error) {
	custom, err := g.auth.CustomToken(ctx, uid)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "Failed to refresh token", err)
	}
	resp, err := g.toolkit.VerifyCustomToken(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyCustomTokenRequest{
		Token:             custom,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "Failed to refresh token", err)
	}
	return resp.IdToken, nil
}

func (g *FirebaseGateway) SendPasswordReset(ctx context.Context, email string) error {
	_, err := g.toolkit.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		switch code := toolkitCode(err); {
		case strings.HasPrefix(code, "EMAIL_NOT_FOUND"):
			return apperr.New(apperr.NotFound, "No user found with this email")
		case strings.HasPrefix(code, "INVALID_EMAIL"):
			return apperr.New(apperr.BadRequest, "Invalid email format")
		}
		return apperr.Wrap(apperr.Internal, "Failed to send password reset email", err)
	}
	return nil
}

// toolkitCode extracts the Identity Toolkit error code ("EMAIL_NOT_FOUND",
// "INVALID_PASSWORD", ...) carried in the API error message.
func toolkitCode(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return ""
}
