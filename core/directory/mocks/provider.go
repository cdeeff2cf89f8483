package mocks

import (
	"context"

	"guild-sync/core/directory"

	"github.com/stretchr/testify/mock"
)

// Provider is a mock implementation of directory.Provider
type Provider struct {
	mock.Mock
}

func (m *Provider) Member(ctx context.Context, guildID, userID string) (*directory.Member, error) {
	args := m.Called(ctx, guildID, userID)
	if member, ok := args.Get(0).(*directory.Member); ok {
		return member, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) Members(ctx context.Context, guildID string) ([]*directory.Member, error) {
	args := m.Called(ctx, guildID)
	if members, ok := args.Get(0).([]*directory.Member); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) Bans(ctx context.Context, guildID string) <-chan directory.BanRecord {
	args := m.Called(ctx, guildID)
	if ch, ok := args.Get(0).(<-chan directory.BanRecord); ok {
		return ch
	}
	ch := make(chan directory.BanRecord)
	close(ch)
	return ch
}

func (m *Provider) FindBan(ctx context.Context, guildID, userID string) (*directory.BanRecord, error) {
	args := m.Called(ctx, guildID, userID)
	if rec, ok := args.Get(0).(*directory.BanRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) Kick(ctx context.Context, guildID, userID, reason string) error {
	return m.Called(ctx, guildID, userID, reason).Error(0)
}

func (m *Provider) Ban(ctx context.Context, guildID, userID, reason string) error {
	return m.Called(ctx, guildID, userID, reason).Error(0)
}

func (m *Provider) Unban(ctx context.Context, guildID, userID, reason string) error {
	return m.Called(ctx, guildID, userID, reason).Error(0)
}

func (m *Provider) GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	return m.Called(ctx, guildID, userID, roleIDs, reason).Error(0)
}

func (m *Provider) RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	return m.Called(ctx, guildID, userID, roleIDs, reason).Error(0)
}

func (m *Provider) SetDisplayName(ctx context.Context, guildID, userID, name, reason string) error {
	return m.Called(ctx, guildID, userID, name, reason).Error(0)
}
