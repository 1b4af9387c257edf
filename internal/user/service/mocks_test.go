package service

import (
	"context"

	"github.com/avlasov/userhub/internal/user/domain"
	"github.com/avlasov/userhub/internal/user/repository"
)

type mockRepo struct {
	createFunc           func(ctx context.Context, user domain.User) (int64, error)
	findByIDFunc         func(ctx context.Context, id int64) (domain.User, error)
	findByOpaqueIDFunc   func(ctx context.Context, opaqueID string) (domain.User, error)
	findByUsernameFunc   func(ctx context.Context, username string) (domain.User, error)
	setOpaqueIDFunc      func(ctx context.Context, id int64, opaqueID string) error
	searchByUsernameFunc func(ctx context.Context, query string, limit int) ([]domain.Summary, error)
}

func (m *mockRepo) Create(ctx context.Context, user domain.User) (int64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return 1, nil
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (domain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockRepo) FindByOpaqueID(ctx context.Context, opaqueID string) (domain.User, error) {
	if m.findByOpaqueIDFunc != nil {
		return m.findByOpaqueIDFunc(ctx, opaqueID)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockRepo) SetOpaqueID(ctx context.Context, id int64, opaqueID string) error {
	if m.setOpaqueIDFunc != nil {
		return m.setOpaqueIDFunc(ctx, id, opaqueID)
	}
	return nil
}

func (m *mockRepo) SearchByUsername(ctx context.Context, query string, limit int) ([]domain.Summary, error) {
	if m.searchByUsernameFunc != nil {
		return m.searchByUsernameFunc(ctx, query, limit)
	}
	return nil, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}
