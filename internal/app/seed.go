package app

import (
	"context"
	"fmt"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	log "github.com/sirupsen/logrus"
)

// SeedDemo fills an empty database with a demo buyer, two stores and their items,
// and logs a day-long bearer token for the buyer. A database that already has users is left alone.
func (a *App) SeedDemo(ctx context.Context) error {
	var users int64
	if err := a.DB.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if users > 0 {
		a.logger.Info("database already has users, skipping demo seed")
		return nil
	}

	var buyer models.User
	err := a.uow.WithinTransaction(ctx, func(r *repositories.Registry) error {
		buyer = models.User{Email: "buyer@lapak.test", Nickname: "buyer"}
		seller := models.User{Email: "seller@lapak.test", Nickname: "seller"}
		for _, u := range []*models.User{&buyer, &seller} {
			if err := r.Users.Create(ctx, u); err != nil {
				return err
			}
		}

		catalogue := []struct {
			store models.Store
			items []models.Item
		}{
			{
				store: models.Store{Name: "Toko Roti", DeliveryFee: 3500, OwnerID: seller.ID},
				items: []models.Item{
					{Name: "Roti Tawar", Price: 5000, Stock: 40},
					{Name: "Bolu Pandan", Price: 45000, Stock: 8},
				},
			},
			{
				store: models.Store{Name: "Kebun Bunga", DeliveryFee: 12000, OwnerID: seller.ID},
				items: []models.Item{
					{Name: "Mawar Merah", Price: 15000, Stock: 25},
					{Name: "Anggrek Bulan", Price: 120000, Stock: 3},
				},
			},
		}
		for i := range catalogue {
			store := &catalogue[i].store
			if err := r.Stores.Create(ctx, store); err != nil {
				return err
			}
			for j := range catalogue[i].items {
				item := &catalogue[i].items[j]
				item.StoreID = store.ID
				if err := r.Items.Create(ctx, item); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": buyer.ID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}).SignedString([]byte(a.cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("failed to sign demo token: %w", err)
	}

	a.logger.WithFields(log.Fields{
		"user_id": buyer.ID,
		"token":   token,
	}).Info("demo data seeded")
	return nil
}
