package db

import "time"

type Round struct {
	ID              uint      `gorm:"primaryKey"`
	GameID          uint      `gorm:"index;not null;uniqueIndex:idx_rounds_game_number"`
	Number          int       `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	Theme           string    `gorm:"size:128"`
	Prompt          string    `gorm:"size:512;not null"`
	ImageURL        string    `gorm:"size:1024"`
	PlayerGenerated bool      `gorm:"not null;default:false"`
	AuthorUID       string    `gorm:"size:64"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
	Answers         []Answer
}
