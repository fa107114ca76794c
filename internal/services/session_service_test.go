package services

import (
	"context"
	"testing"
	"time"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/identity"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
)

func newSessionFixture(t *testing.T) (*SessionService, *fakeGateway, *store.MemStore, *fakeClock) {
	t.Helper()
	st := store.NewMemStore()
	gw := &fakeGateway{
		signInFn: func(email, password string) (*identity.SignInResult, error) {
			if password != "secret123" {
				return nil, apperr.New(apperr.Unauthorized, "Invalid password")
			}
			return &identity.SignInResult{UID: "uid-1", Email: email, AccessToken: "access-initial"}, nil
		},
		getUserFn: func(uid string) (*identity.Identity, error) {
			return &identity.Identity{UID: uid, Email: "jo@example.com", Name: "Jo"}, nil
		},
	}
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewSessionService(gw, st, testLogger())
	svc.now = clock.Now
	return svc, gw, st, clock
}

func TestLoginMintsStoredRefreshToken(t *testing.T) {
	svc, _, st, _ := newSessionFixture(t)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{Email: "jo@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken != "access-initial" {
		t.Errorf("access token = %q", resp.AccessToken)
	}
	if len(resp.RefreshToken) != 128 {
		t.Errorf("refresh token length = %d, want 128 hex chars", len(resp.RefreshToken))
	}

	doc, err := st.Get(context.Background(), store.RefreshTokenDoc(resp.RefreshToken))
	if err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if got := store.StringField(doc, "uid"); got != "uid-1" {
		t.Errorf("record uid = %q", got)
	}
	expiresAt := store.TimeField(doc, "expiresAt")
	createdAt := store.TimeField(doc, "createdAt")
	if want := createdAt.Add(365 * 24 * time.Hour); !expiresAt.Equal(want) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, want)
	}
}

func TestLoginPropagatesGatewayErrors(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)

	_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "jo@example.com", Password: "wrong"})
	if apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("kind = %v, want Unauthorized", apperr.KindOf(err))
	}
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "jo@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	first, err := svc.Refresh(ctx, &models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if first.RefreshToken == login.RefreshToken {
		t.Error("rotation returned the same refresh token")
	}

	// Replay of the consumed token must fail closed.
	if _, err := svc.Refresh(ctx, &models.RefreshTokenRequest{RefreshToken: login.RefreshToken}); apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("replay kind = %v, want Unauthorized", apperr.KindOf(err))
	}

	// The replacement stays usable.
	if _, err := svc.Refresh(ctx, &models.RefreshTokenRequest{RefreshToken: first.RefreshToken}); err != nil {
		t.Fatalf("rotated token refresh: %v", err)
	}
}

func TestRefreshExpiredTokenDeletesRecord(t *testing.T) {
	svc, _, st, clock := newSessionFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "jo@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	clock.Advance(366 * 24 * time.Hour)

	_, err = svc.Refresh(ctx, &models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("expired kind = %v, want Unauthorized", apperr.KindOf(err))
	}
	if apperr.PublicMessage(err) != "Refresh token expired" {
		t.Errorf("message = %q", apperr.PublicMessage(err))
	}

	// The record is gone, so the next attempt fails as unknown, not expired.
	if _, err := st.Get(ctx, store.RefreshTokenDoc(login.RefreshToken)); err != store.ErrNotFound {
		t.Fatalf("record still present after expiry: %v", err)
	}
	_, err = svc.Refresh(ctx, &models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if apperr.PublicMessage(err) != "Invalid refresh token" {
		t.Errorf("second attempt message = %q", apperr.PublicMessage(err))
	}
}

func TestRefreshUnknownTokenFails(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)

	_, err := svc.Refresh(context.Background(), &models.RefreshTokenRequest{RefreshToken: "deadbeef"})
	if apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("kind = %v, want Unauthorized", apperr.KindOf(err))
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	svc, gw, _, _ := newSessionFixture(t)
	gw.createUserFn = func(u identity.NewUser) (*identity.Identity, error) {
		return &identity.Identity{UID: "uid-new", Email: u.Email, Name: u.DisplayName}, nil
	}
	gw.verifyFn = func(token string) (*identity.Identity, error) {
		return &identity.Identity{UID: "uid-new", Email: "amy@example.com", Name: "Amy Lee"}, nil
	}

	user, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:    "amy@example.com",
		Password: "secret123",
		FullName: "Amy Lee",
		Gender:   models.GenderFemale,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.UID != "uid-new" || user.Email != "amy@example.com" {
		t.Errorf("identity fields = %q/%q", user.UID, user.Email)
	}
	if user.ProfileImage != models.FemaleProfileImage {
		t.Errorf("profileImage = %q, want female placeholder", user.ProfileImage)
	}

	// The record resolved through an access token equals what was submitted.
	resolved, err := svc.ResolveUser(context.Background(), "any-token")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.FullName != "Amy Lee" || resolved.Gender != models.GenderFemale {
		t.Errorf("resolved = %+v", resolved)
	}
	if resolved.ProfileImage != models.FemaleProfileImage {
		t.Errorf("resolved profileImage = %q", resolved.ProfileImage)
	}
}

func TestResolveUserCreatesMissingRecord(t *testing.T) {
	svc, gw, st, _ := newSessionFixture(t)
	gw.verifyFn = func(token string) (*identity.Identity, error) {
		if token != "good-token" {
			return nil, apperr.New(apperr.Unauthorized, "Invalid or expired token")
		}
		return &identity.Identity{UID: "uid-orphan", Email: "orphan@example.com"}, nil
	}

	user, err := svc.ResolveUser(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Gender != models.GenderMale || user.ProfileImage != models.MaleProfileImage {
		t.Errorf("defaults = %q/%q", user.Gender, user.ProfileImage)
	}
	if user.FullName != "orphan" {
		t.Errorf("fullName = %q, want email local part", user.FullName)
	}
	if _, err := st.Get(context.Background(), store.UserDoc("uid-orphan")); err != nil {
		t.Fatalf("healed record not stored: %v", err)
	}

	if _, err := svc.ResolveUser(context.Background(), "bad-token"); apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("bad token kind = %v, want Unauthorized", apperr.KindOf(err))
	}
}
