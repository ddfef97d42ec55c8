package db

import "time"

type Answer struct {
	ID          uint      `gorm:"primaryKey"`
	RoundID     uint      `gorm:"index;not null"`
	PlayerID    *uint     `gorm:"index"`
	PlayerUID   string    `gorm:"size:64;not null"`
	Username    string    `gorm:"size:64;not null"`
	Guess       string    `gorm:"size:512"`
	IsGambling  bool      `gorm:"not null;default:false"`
	Score       int       `gorm:"not null;default:0"`
	BonusPoints int       `gorm:"not null;default:0"`
	Reason      string    `gorm:"size:512"`
	SubmittedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
