package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// OperatorKeyLookupHash returns the SHA256 hex used to index operator API keys.
// bcrypt hashes are salted and unsearchable, so a deterministic lookup column
// narrows the row before the bcrypt verification happens.
func OperatorKeyLookupHash(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, name, is_admin, created_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// GetByOperatorKeyLookup finds an admin user by the SHA256 lookup hash of an
// operator API key. Returns the user and the stored bcrypt hash; the caller
// must still verify the presented key against the hash.
func (r *userRepository) GetByOperatorKeyLookup(ctx context.Context, lookupHash string) (*domain.User, string, error) {
	query := `
		SELECT id, email, name, is_admin, operator_key_hash, created_at
		FROM users
		WHERE is_admin = true AND operator_key_lookup = $1
	`

	var user domain.User
	var keyHash sql.NullString
	err := r.db.QueryRowContext(ctx, query, lookupHash).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.IsAdmin,
		&keyHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, "", &errors.ErrNotFound{Resource: "operator", ID: lookupHash}
	}
	if err != nil {
		r.logger.Error("Failed to look up operator key", zap.Error(err))
		return nil, "", err
	}
	return &user, keyHash.String, nil
}
