package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/identity"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

// Refresh tokens live for a year unless rotated away first.
const refreshTokenTTL = 365 * 24 * time.Hour

// SessionService owns the credential-to-identity translation and the
// refresh/access token pair. A refresh token is strictly single-use: a
// successful presentation always deletes its record and mints a replacement,
// and an expired or unknown token always fails closed.
type SessionService struct {
	gateway identity.Gateway
	store   store.Store
	logger  pkglog.Logger
	now     func() time.Time
}

func NewSessionService(gateway identity.Gateway, st store.Store, logger pkglog.Logger) *SessionService {
	return &SessionService{
		gateway: gateway,
		store:   st,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *SessionService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	id, err := s.gateway.CreateUser(ctx, identity.NewUser{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.FullName,
	})
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UID:          id.UID,
		Email:        id.Email,
		FullName:     req.FullName,
		Gender:       req.Gender,
		ProfileImage: models.ProfileImageFor(req.Gender),
		CreatedAt:    s.now(),
	}
	if err := s.store.Set(ctx, store.UserDoc(user.UID), userDocData(user)); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to register user", err)
	}

	s.logger.Info().Str("uid", user.UID).Msg("user registered")
	return user, nil
}

func (s *SessionService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	signIn, err := s.gateway.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.mintRefreshToken(ctx, signIn.UID, signIn.Email)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		User:               models.AuthUser{UID: signIn.UID, Email: signIn.Email},
		AccessToken:        signIn.AccessToken,
		RefreshToken:       token,
		RefreshTokenExpiry: expiresAt.Format(time.RFC3339),
	}, nil
}

// Refresh rotates a refresh token: validate, mint a new access/refresh pair,
// then delete the presented record so replay fails. Store-new-then-delete-old
// is not atomic; concurrent replays of the same token can race, which is a
// known gap of the check-then-mutate storage model.
func (s *SessionService) Refresh(ctx context.Context, req *models.RefreshTokenRequest) (*models.TokenResponse, error) {
	oldPath := store.RefreshTokenDoc(req.RefreshToken)
	doc, err := s.store.Get(ctx, oldPath)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, apperr.New(apperr.Unauthorized, "Invalid refresh token")
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to refresh token", err)
	}

	record := refreshRecordFromDocument(doc)
	if record.Expired(s.now()) {
		if err := s.store.Delete(ctx, oldPath); err != nil {
			s.logger.Error().Err(err).Msg("failed to delete expired refresh token")
		}
		return nil, apperr.New(apperr.Unauthorized, "Refresh token expired")
	}

	owner, err := s.gateway.GetUser(ctx, record.UID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.New(apperr.Unauthorized, "Invalid refresh token")
		}
		return nil, err
	}

	accessToken, err := s.gateway.IssueAccessToken(ctx, owner.UID)
	if err != nil {
		return nil, err
	}

	newToken, expiresAt, err := s.mintRefreshToken(ctx, owner.UID, owner.Email)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, oldPath); err != nil {
		// The old record must not stay valid after rotation succeeds.
		return nil, apperr.Wrap(apperr.Internal, "Failed to refresh token", err)
	}

	return &models.TokenResponse{
		AccessToken:        accessToken,
		RefreshToken:       newToken,
		RefreshTokenExpiry: expiresAt.Format(time.RFC3339),
	}, nil
}

// ResolveUser verifies an access token and loads the user record behind it.
// A verified identity without a stored record gets a default record created
// on the spot: the identity provider and the document store can drift apart
// (accounts created out-of-band), and that inconsistency heals here rather
// than failing the request.
func (s *SessionService) ResolveUser(ctx context.Context, accessToken string) (*models.User, error) {
	id, err := s.gateway.VerifyAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.Get(ctx, store.UserDoc(id.UID))
	if err == nil {
		return userFromDocument(doc), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch user profile", err)
	}

	user := &models.User{
		UID:          id.UID,
		Email:        id.Email,
		FullName:     displayNameFor(id),
		Gender:       models.GenderMale,
		ProfileImage: models.MaleProfileImage,
		CreatedAt:    s.now(),
	}
	if err := s.store.Set(ctx, store.UserDoc(id.UID), userDocData(user)); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch user profile", err)
	}
	s.logger.Info().Str("uid", id.UID).Msg("created missing user record for verified identity")
	return user, nil
}

func (s *SessionService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	return s.gateway.SendPasswordReset(ctx, req.Email)
}

func (s *SessionService) mintRefreshToken(ctx context.Context, uid, email string) (string, time.Time, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.Internal, "Failed to issue refresh token", err)
	}
	token := hex.EncodeToString(buf)

	now := s.now()
	expiresAt := now.Add(refreshTokenTTL)
	data := map[string]interface{}{
		"uid":       uid,
		"email":     email,
		"createdAt": now,
		"expiresAt": expiresAt,
	}
	if err := s.store.Set(ctx, store.RefreshTokenDoc(token), data); err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.Internal, "Failed to issue refresh token", err)
	}
	return token, expiresAt, nil
}

func displayNameFor(id *identity.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	if at := strings.Index(id.Email, "@"); at > 0 {
		return id.Email[:at]
	}
	return "User"
}

func refreshRecordFromDocument(doc *store.Document) *models.RefreshTokenRecord {
	return &models.RefreshTokenRecord{
		Token:     doc.ID,
		UID:       store.StringField(doc, "uid"),
		Email:     store.StringField(doc, "email"),
		CreatedAt: store.TimeField(doc, "createdAt"),
		ExpiresAt: store.TimeField(doc, "expiresAt"),
	}
}
