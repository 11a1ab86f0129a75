package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) ExchangeCode(ctx context.Context, code, verifier string) (*Session, error) {
	args := m.Called(ctx, code, verifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockProvider) AuthorizeURL(idp, redirectTo, challenge string) (string, error) {
	args := m.Called(idp, redirectTo, challenge)
	return args.String(0), args.Error(1)
}
