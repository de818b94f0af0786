package repositories_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"lapak/internal/database"
	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
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
	return db
}

// openPostgres connects to LAPAK_POSTGRES_TEST_DSN and skips the test when it is unset.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("LAPAK_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("LAPAK_POSTGRES_TEST_DSN is not set")
	}
	db, err := database.Open(database.Config{
		Driver:   database.DriverPostgres,
		DSN:      dsn,
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type seeded struct {
	user  models.User
	store models.Store
	items []models.Item
}

// seed creates a user and a store with one item per stock value. Names are unique so
// the same database can be seeded by several tests.
func seed(t *testing.T, repos *repositories.Registry, stocks ...int) seeded {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.New().String()[:8]

	s := seeded{
		user:  models.User{Email: "user-" + suffix + "@example.com"},
		store: models.Store{Name: "store-" + suffix, DeliveryFee: 1000},
	}
	require.NoError(t, repos.Users.Create(ctx, &s.user))
	s.store.OwnerID = s.user.ID
	require.NoError(t, repos.Stores.Create(ctx, &s.store))

	for i, stock := range stocks {
		item := models.Item{Name: "item-" + suffix, Price: int64(1000 * (i + 1)), Stock: stock, StoreID: s.store.ID}
		require.NoError(t, repos.Items.Create(ctx, &item))
		s.items = append(s.items, item)
	}
	return s
}

func TestRepositories_SQLite(t *testing.T) {
	runRepositoryTests(t, openSQLite)
}

func TestRepositories_Postgres(t *testing.T) {
	runRepositoryTests(t, openPostgres)
}

func runRepositoryTests(t *testing.T, open func(t *testing.T) *gorm.DB) {
	t.Run("not found is wrapped", func(t *testing.T) {
		repos := repositories.NewGORMUnitOfWork(open(t)).Repos()
		ctx := context.Background()
		missing := uuid.New().String()

		_, err := repos.Users.GetByID(ctx, missing)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repos.Stores.GetByID(ctx, missing)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repos.Stores.GetByOwnerID(ctx, missing)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repos.Items.GetByID(ctx, missing)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repos.Carts.Get(ctx, missing, missing)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repos.Orders.GetByID(ctx, missing)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		err = repos.Orders.UpdateStatus(ctx, missing, models.OrderStatusCanceled)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("decrement stock is conditional", func(t *testing.T) {
		repos := repositories.NewGORMUnitOfWork(open(t)).Repos()
		ctx := context.Background()
		s := seed(t, repos, 3)
		id := s.items[0].ID

		ok, err := repos.Items.DecrementStock(ctx, id, 2)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repos.Items.DecrementStock(ctx, id, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repos.Items.DecrementStock(ctx, id, 1)
		require.NoError(t, err)
		assert.True(t, ok)

		item, err := repos.Items.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, item.Stock)

		ok, err = repos.Items.DecrementStock(ctx, uuid.New().String(), 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent decrements never go negative", func(t *testing.T) {
		repos := repositories.NewGORMUnitOfWork(open(t)).Repos()
		ctx := context.Background()
		s := seed(t, repos, 10)
		id := s.items[0].ID

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			sold int
		)
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repos.Items.DecrementStock(ctx, id, 1)
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					sold++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, sold)
		item, err := repos.Items.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, item.Stock)
	})

	t.Run("items by ids and filters", func(t *testing.T) {
		repos := repositories.NewGORMUnitOfWork(open(t)).Repos()
		ctx := context.Background()
		s := seed(t, repos, 5, 0, 7)

		found, err := repos.Items.GetByIDs(ctx, []string{s.items[0].ID, s.items[2].ID, uuid.New().String()})
		require.NoError(t, err)
		assert.Len(t, found, 2)

		locked, err := repos.Items.LockByIDs(ctx, []string{s.items[1].ID})
		require.NoError(t, err)
		assert.Len(t, locked, 1)

		empty, err := repos.Items.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)

		inStock, err := repos.Items.List(ctx, models.ItemFilter{StoreID: s.store.ID, InStock: true})
		require.NoError(t, err)
		assert.Len(t, inStock, 2)

		minPrice, maxPrice := int64(2000), int64(2000)
		priced, err := repos.Items.List(ctx, models.ItemFilter{StoreID: s.store.ID, MinPrice: &minPrice, MaxPrice: &maxPrice})
		require.NoError(t, err)
		require.Len(t, priced, 1)
		assert.Equal(t, s.items[1].ID, priced[0].ID)

		owned, err := repos.Stores.GetByOwnerID(ctx, s.user.ID)
		require.NoError(t, err)
		assert.Equal(t, s.store.ID, owned.ID)
	})

	t.Run("cart upsert overwrites quantity", func(t *testing.T) {
		repos := repositories.NewGORMUnitOfWork(open(t)).Repos()
		ctx := context.Background()
		s := seed(t, repos, 5, 5)

		require.NoError(t, repos.Carts.Upsert(ctx, &models.CartLine{UserID: s.user.ID, ItemID: s.items[1].ID, Quantity: 2}))
		time.Sleep(2 * time.Millisecond)
		require.NoError(t, repos.Carts.Upsert(ctx, &models.CartLine{UserID: s.user.ID, ItemID: s.items[0].ID, Quantity: 1}))
		require.NoError(t, repos.Carts.Upsert(ctx, &models.CartLine{UserID: s.user.ID, ItemID: s.items[1].ID, Quantity: 4}))

		lines, err := repos.Carts.ListByUser(ctx, s.user.ID)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, s.items[1].ID, lines[0].ItemID)
		assert.Equal(t, 4, lines[0].Quantity)
		assert.Equal(t, s.items[0].ID, lines[1].ItemID)

		require.NoError(t, repos.Carts.Delete(ctx, s.user.ID, s.items[1].ID))
		require.NoError(t, repos.Carts.Delete(ctx, s.user.ID, s.items[1].ID))
		lines, err = repos.Carts.ListByUser(ctx, s.user.ID)
		require.NoError(t, err)
		assert.Len(t, lines, 1)

		require.NoError(t, repos.Carts.DeleteByUser(ctx, s.user.ID))
		lines, err = repos.Carts.ListByUser(ctx, s.user.ID)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("orders keep line order", func(t *testing.T) {
		repos := repositories.NewGORMUnitOfWork(open(t)).Repos()
		ctx := context.Background()
		s := seed(t, repos, 5, 5, 5)

		order := &models.Order{
			UserID:     s.user.ID,
			Status:     models.OrderStatusOrdered,
			TotalPrice: 9000,
			Lines: []models.OrderLine{
				{ItemID: s.items[2].ID, Quantity: 1, Seq: 0},
				{ItemID: s.items[0].ID, Quantity: 2, Seq: 1},
				{ItemID: s.items[1].ID, Quantity: 3, Seq: 2},
			},
		}
		require.NoError(t, repos.Orders.Create(ctx, order))
		assert.NotEmpty(t, order.ID)

		got, err := repos.Orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(9000), got.TotalPrice)
		require.Len(t, got.Lines, 3)
		for i, line := range got.Lines {
			assert.Equal(t, order.Lines[i].ItemID, line.ItemID)
			assert.Equal(t, order.ID, line.OrderID)
		}

		require.NoError(t, repos.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted))
		listed, err := repos.Orders.ListByUser(ctx, s.user.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, models.OrderStatusCompleted, listed[0].Status)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		uow := repositories.NewGORMUnitOfWork(open(t))
		ctx := context.Background()
		s := seed(t, uow.Repos(), 5)
		boom := errors.New("boom")

		err := uow.WithinTransaction(ctx, func(r *repositories.Registry) error {
			ok, err := r.Items.DecrementStock(ctx, s.items[0].ID, 5)
			require.NoError(t, err)
			require.True(t, ok)

			locked, err := r.Orders.LockByID(ctx, uuid.New().String())
			assert.Nil(t, locked)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		item, err := uow.Repos().Items.GetByID(ctx, s.items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 5, item.Stock)
	})
}
