package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vidyadoc/slc-api/internal/models"
)

// UserRepository resolves actors for authentication and auditing.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, translateError(err, "user")
	}
	return user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&user).Error
	if err != nil {
		return models.User{}, translateError(err, "user")
	}
	return user, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
	return translateError(err, "user")
}

// Delete permanently removes a user. Audit rows referencing the account keep
// their history; the changed_by column is nulled by the FK constraint.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if tx.Error != nil {
		return translateError(tx.Error, "user")
	}
	if tx.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "user")
	}
	return nil
}
