package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"leadbook-backend/internal/todo/domain"
)

// gormDismissalRepository implements DismissalRepository using GORM
type gormDismissalRepository struct {
	db *gorm.DB
}

// NewDismissalRepository creates a new GORM-based DismissalRepository
func NewDismissalRepository(db *gorm.DB) DismissalRepository {
	return &gormDismissalRepository{db: db}
}

// Dismiss is idempotent: dismissing twice keeps the first timestamp
func (r *gormDismissalRepository) Dismiss(userID, day string) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.BannerDismissal{
		UserID:      userID,
		Date:        day,
		DismissedAt: time.Now(),
	}).Error
}

func (r *gormDismissalRepository) IsDismissed(userID, day string) (bool, error) {
	var d domain.BannerDismissal
	err := r.db.Where("user_id = ? AND date = ?", userID, day).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
