package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GORMUnitOfWork is the GORM implementation of UnitOfWork.
type GORMUnitOfWork struct {
	db    *gorm.DB
	repos *Registry
}

// NewGORMUnitOfWork creates a new GORMUnitOfWork over db.
func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{
		db:    db,
		repos: NewGORMRegistry(db),
	}
}

// NewGORMRegistry binds every GORM repository to db.
func NewGORMRegistry(db *gorm.DB) *Registry {
	return &Registry{
		Users:  NewGORMUserRepository(db),
		Stores: NewGORMStoreRepository(db),
		Items:  NewGORMItemRepository(db),
		Carts:  NewGORMCartRepository(db),
		Orders: NewGORMOrderRepository(db),
	}
}

// Repos returns repositories on the shared handle.
func (u *GORMUnitOfWork) Repos() *Registry {
	return u.repos
}

// WithinTransaction runs fn inside a database transaction.
func (u *GORMUnitOfWork) WithinTransaction(ctx context.Context, fn func(r *Registry) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMRegistry(tx))
	})
}
