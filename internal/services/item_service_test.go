package services_test

import (
	"context"
	"fmt"
	"testing"

	"lapak/internal/apperrors"
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a mock implementation of repositories.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	args := m.Called(ids)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) LockByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	args := m.Called(ids)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	args := m.Called(filter)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockItemRepository) DecrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	args := m.Called(id, quantity)
	return args.Bool(0), args.Error(1)
}

// MockStoreLookup is a mock implementation of services.StoreLookup
type MockStoreLookup struct {
	mock.Mock
}

func (m *MockStoreLookup) GetByID(ctx context.Context, id string) (*models.Store, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func TestItemService_ListItems(t *testing.T) {
	mockRepo := new(MockItemRepository)
	mockStores := new(MockStoreLookup)
	service := services.NewItemService(mockRepo, mockStores)
	ctx := context.Background()

	expectedItems := []models.Item{
		{ID: "1", Name: "Item A", Price: 10000, Stock: 100, StoreID: "store-1"},
		{ID: "2", Name: "Item B", Price: 20000, Stock: 0, StoreID: "store-1"},
	}

	// Test unfiltered listing
	mockRepo.On("List", models.ItemFilter{}).Return(expectedItems, nil).Once()
	items, err := service.ListItems(ctx, models.ItemFilter{})
	assert.NoError(t, err)
	assert.Equal(t, expectedItems, items)
	mockRepo.AssertExpectations(t)

	// Test store filter checks the store first
	byStore := models.ItemFilter{StoreID: "store-1", InStock: true}
	mockStores.On("GetByID", "store-1").Return(&models.Store{ID: "store-1"}, nil).Once()
	mockRepo.On("List", byStore).Return(expectedItems[:1], nil).Once()
	items, err = service.ListItems(ctx, byStore)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	mockRepo.AssertExpectations(t)
	mockStores.AssertExpectations(t)

	// Test unknown store
	mockStores.On("GetByID", "store-9").Return(nil, fmt.Errorf("store with ID store-9: %w", repositories.ErrNotFound)).Once()
	_, err = service.ListItems(ctx, models.ItemFilter{StoreID: "store-9"})
	assert.ErrorIs(t, err, apperrors.ErrStoreNotFound)
	mockStores.AssertExpectations(t)

	// Test inverted price range never reaches the repository
	lo, hi := int64(5000), int64(1000)
	_, err = service.ListItems(ctx, models.ItemFilter{MinPrice: &lo, MaxPrice: &hi})
	assert.ErrorIs(t, err, apperrors.ErrInvalidField)
	mockRepo.AssertNumberOfCalls(t, "List", 2)
}

func TestItemService_GetItem(t *testing.T) {
	mockRepo := new(MockItemRepository)
	service := services.NewItemService(mockRepo, new(MockStoreLookup))
	ctx := context.Background()

	expectedItem := &models.Item{ID: "1", Name: "Item A", Price: 10000, Stock: 100}

	// Test successful retrieval
	mockRepo.On("GetByID", "1").Return(expectedItem, nil).Once()
	item, err := service.GetItem(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedItem, item)
	mockRepo.AssertExpectations(t)

	// Test item not found
	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("item with ID 99: %w", repositories.ErrNotFound)).Once()
	item, err = service.GetItem(ctx, "99")
	assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
	assert.Nil(t, item)
	mockRepo.AssertExpectations(t)

	// Test repository failure
	mockRepo.On("GetByID", "2").Return(nil, fmt.Errorf("connection reset")).Once()
	_, err = service.GetItem(ctx, "2")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrItemNotFound)
	mockRepo.AssertExpectations(t)
}
