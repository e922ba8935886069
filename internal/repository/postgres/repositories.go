package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db, logger),
		Order:      NewOrderRepository(db, logger),
		OrderItem:  NewOrderItemRepository(db, logger),
		Cart:       NewCartRepository(db, logger),
		OrderEvent: NewOrderEventRepository(db, logger),
	}
}
