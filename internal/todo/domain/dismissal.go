package domain

import "time"

// BannerDismissal records that a user acknowledged the late-items banner for one day
type BannerDismissal struct {
	UserID      string    `json:"user_id" gorm:"primaryKey"`
	Date        string    `json:"date" gorm:"primaryKey;size:10"`
	DismissedAt time.Time `json:"dismissed_at"`
}
