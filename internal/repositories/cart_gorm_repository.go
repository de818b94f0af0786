package repositories

import (
	"context"
	"errors"
	"fmt"

	"lapak/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// Get retrieves the cart line of userID for itemID.
func (r *GORMCartRepository) Get(ctx context.Context, userID, itemID string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart line %s/%s: %w", userID, itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart line %s/%s: %w", userID, itemID, err)
	}
	return &line, nil
}

// Upsert inserts the line, or overwrites the quantity when (user_id, item_id) already exists.
func (r *GORMCartRepository) Upsert(ctx context.Context, line *models.CartLine) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(line).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cart line %s/%s: %w", line.UserID, line.ItemID, err)
	}
	return nil
}

// Delete removes the cart line of userID for itemID. Removing a missing line is not an error.
func (r *GORMCartRepository) Delete(ctx context.Context, userID, itemID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cart line %s/%s: %w", userID, itemID, err)
	}
	return nil
}

// ListByUser retrieves a user's cart lines in the order they were first added.
func (r *GORMCartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Order("item_id").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines of user %s: %w", userID, err)
	}
	return lines, nil
}

// DeleteByUser removes every cart line of userID.
func (r *GORMCartRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart of user %s: %w", userID, err)
	}
	return nil
}
