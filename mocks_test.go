package tasks_test

import (
	"context"
	"testing"

	tasks "github.com/goliatone/go-tasks"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testConfig struct {
	signingKey      string
	cookieName      string
	secureCookies   bool
	tokenExpiration int
	adminSecret     string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		cookieName:      "access_token",
		tokenExpiration: 24,
		adminSecret:     "test-admin-secret",
	}
}

func (c *testConfig) GetSigningKey() string   { return c.signingKey }
func (c *testConfig) GetCookieName() string   { return c.cookieName }
func (c *testConfig) GetSecureCookies() bool  { return c.secureCookies }
func (c *testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c *testConfig) GetAdminSecret() string  { return c.adminSecret }

// MockUsers implements tasks.Users for testing
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Register(ctx context.Context, user *tasks.User) (*tasks.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.User), args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *tasks.User) (*tasks.User, error) {
	args := m.Called(ctx, tx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.User), args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*tasks.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.User), args.Error(1)
}

func (m *MockUsers) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*tasks.User, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.User), args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*tasks.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.User), args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*tasks.User, error) {
	args := m.Called(ctx, tx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.User), args.Error(1)
}

func (m *MockUsers) List(ctx context.Context) ([]*tasks.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tasks.User), args.Error(1)
}

func newTestAuther(t *testing.T, service tasks.TokenService) *tasks.Auther {
	t.Helper()
	auther := tasks.NewAuthenticator(&MockUsers{}, newTestConfig())
	if service != nil {
		auther.WithTokenService(service)
	}
	return auther
}
