package services_test

import (
	"context"
	"testing"

	"lapak/internal/database"
	"lapak/internal/metrics"
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/pkg/rabbitmq"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(event rabbitmq.OrderEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// fixture is a seeded in-memory database with the services wired on top of it.
type fixture struct {
	db        *gorm.DB
	uow       *repositories.GORMUnitOfWork
	publisher *MockPublisher
	orders    *services.OrderService
	carts     *services.CartService

	buyer models.User
	other models.User

	// bakery charges 3500 delivery, florist 2000
	bakery  models.Store
	florist models.Store

	bread  models.Item // 5000, stock 20, bakery
	cake   models.Item // 12000, stock 5, bakery
	tulips models.Item // 8000, stock 3, florist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(database.Config{
		Driver:   database.DriverSQLite,
		DSN:      ":memory:",
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	nullLogger, _ := test.NewNullLogger()
	entry := log.NewEntry(nullLogger)

	f := &fixture{
		db:        db,
		uow:       repositories.NewGORMUnitOfWork(db),
		publisher: new(MockPublisher),
	}
	orderMetrics := metrics.NewOrderMetricsWithRegisterer(prometheus.NewRegistry())
	f.orders = services.NewOrderService(f.uow, nil, f.publisher, orderMetrics, entry)
	f.carts = services.NewCartService(f.uow, f.orders, nil, orderMetrics, entry)

	ctx := context.Background()
	repos := f.uow.Repos()

	f.buyer = models.User{Email: "buyer@example.com", Nickname: "buyer"}
	f.other = models.User{Email: "other@example.com", Nickname: "other"}
	require.NoError(t, repos.Users.Create(ctx, &f.buyer))
	require.NoError(t, repos.Users.Create(ctx, &f.other))

	f.bakery = models.Store{Name: "Bakery", DeliveryFee: 3500, OwnerID: f.other.ID}
	f.florist = models.Store{Name: "Florist", DeliveryFee: 2000, OwnerID: f.other.ID}
	require.NoError(t, repos.Stores.Create(ctx, &f.bakery))
	require.NoError(t, repos.Stores.Create(ctx, &f.florist))

	f.bread = models.Item{Name: "Bread", Price: 5000, Stock: 20, StoreID: f.bakery.ID}
	f.cake = models.Item{Name: "Cake", Price: 12000, Stock: 5, StoreID: f.bakery.ID}
	f.tulips = models.Item{Name: "Tulips", Price: 8000, Stock: 3, StoreID: f.florist.ID}
	for _, item := range []*models.Item{&f.bread, &f.cake, &f.tulips} {
		require.NoError(t, repos.Items.Create(ctx, item))
	}

	return f
}

// expectEvents lets every order event through.
func (f *fixture) expectEvents() {
	f.publisher.On("PublishOrderEvent", mock.Anything).Return(nil).Maybe()
}

func (f *fixture) stock(t *testing.T, itemID string) int {
	t.Helper()
	item, err := f.uow.Repos().Items.GetByID(context.Background(), itemID)
	require.NoError(t, err)
	return item.Stock
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (f *fixture) countOrderLines(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.OrderLine{}).Count(&n).Error)
	return n
}

func sumStoreTotals(details []models.OrderDetail) int64 {
	var sum int64
	for _, d := range details {
		sum += d.StoreTotalPrice
	}
	return sum
}
