package services

import (
	"context"
	"sync"
	"time"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/genchat"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/identity"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

func testLogger() pkglog.Logger {
	return pkglog.New("test")
}

// fakeClock hands out strictly increasing timestamps so message ordering is
// deterministic in tests.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start, step: time.Millisecond}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeGateway struct {
	verifyFn     func(token string) (*identity.Identity, error)
	signInFn     func(email, password string) (*identity.SignInResult, error)
	createUserFn func(u identity.NewUser) (*identity.Identity, error)
	getUserFn    func(uid string) (*identity.Identity, error)
	issueTokenFn func(uid string) (string, error)
	sendResetFn  func(email string) error
	issuedTokens int
	mu           sync.Mutex
}

func (g *fakeGateway) VerifyAccessToken(_ context.Context, token string) (*identity.Identity, error) {
	if g.verifyFn != nil {
		return g.verifyFn(token)
	}
	return nil, apperr.New(apperr.Unauthorized, "Invalid or expired token")
}

func (g *fakeGateway) SignIn(_ context.Context, email, password string) (*identity.SignInResult, error) {
	return g.signInFn(email, password)
}

func (g *fakeGateway) CreateUser(_ context.Context, u identity.NewUser) (*identity.Identity, error) {
	return g.createUserFn(u)
}

func (g *fakeGateway) GetUser(_ context.Context, uid string) (*identity.Identity, error) {
	return g.getUserFn(uid)
}

func (g *fakeGateway) IssueAccessToken(_ context.Context, uid string) (string, error) {
	g.mu.Lock()
	g.issuedTokens++
	g.mu.Unlock()
	if g.issueTokenFn != nil {
		return g.issueTokenFn(uid)
	}
	return "access-" + uid, nil
}

func (g *fakeGateway) SendPasswordReset(_ context.Context, email string) error {
	if g.sendResetFn != nil {
		return g.sendResetFn(email)
	}
	return nil
}

type fakeGenerator struct {
	generateFn     func(prompt string, history []genchat.Turn) (string, error)
	generateOnceFn func(prompt string) (string, error)
	calls          int
	mu             sync.Mutex
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, history []genchat.Turn) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.generateFn != nil {
		return f.generateFn(prompt, history)
	}
	return "assistant reply", nil
}

func (f *fakeGenerator) GenerateOnce(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.generateOnceFn != nil {
		return f.generateOnceFn(prompt)
	}
	return "generated text", nil
}
