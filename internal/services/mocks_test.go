package services

import (
	"context"

	"feedbackapp/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockFeedbackStore struct {
	mock.Mock
}

func (m *mockFeedbackStore) CreateFeedback(ctx context.Context, f *models.Feedback) (*models.Feedback, error) {
	args := m.Called(ctx, f)
	if fn, ok := args.Get(0).(func(context.Context, *models.Feedback) *models.Feedback); ok {
		return fn(ctx, f), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

func (m *mockFeedbackStore) GetFeedbackByID(ctx context.Context, id string) (*models.Feedback, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

func (m *mockFeedbackStore) ListFeedbackByEmail(ctx context.Context, email string) ([]models.Feedback, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

func (m *mockFeedbackStore) ListAllFeedback(ctx context.Context) ([]models.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

func (m *mockFeedbackStore) UpdateFeedbackStatus(ctx context.Context, id string, status models.FeedbackStatus) (*models.Feedback, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

type mockProductCatalog struct {
	mock.Mock
}

func (m *mockProductCatalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *mockProductCatalog) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type mockIdentityResolver struct {
	mock.Mock
}

func (m *mockIdentityResolver) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
