package db

import "time"

type Game struct {
	ID          uint      `gorm:"primaryKey"`
	RoomCode    string    `gorm:"size:12;index;not null"`
	Status      string    `gorm:"size:32;not null"`
	Mode        string    `gorm:"size:16;not null;default:classic"`
	TotalRounds int       `gorm:"not null;default:0"`
	MaxPlayers  int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Players     []Player
	Rounds      []Round
	Events      []Event
}
