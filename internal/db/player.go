package db

import "time"

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"index;not null;uniqueIndex:idx_players_game_uid"`
	PlayerUID string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_uid"`
	Username  string    `gorm:"size:64;not null"`
	Avatar    string    `gorm:"size:256"`
	IsHost    bool      `gorm:"not null;default:false"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Answers   []Answer
}
