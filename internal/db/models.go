package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID             uint       `gorm:"primaryKey"`
	RoomID         string     `gorm:"size:36;uniqueIndex;not null"`
	Code           string     `gorm:"size:12;uniqueIndex;not null"`
	Status         string     `gorm:"size:16;not null"`
	TurnCounter    int        `gorm:"not null;default:0"`
	CurrentWord    string     `gorm:"size:64"`
	RoundStartedAt *time.Time
	RoundsPerGame  int       `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	Players        []Player
	Chats          []Chat
	Events         []Event
}

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"not null;uniqueIndex:idx_players_room_name;uniqueIndex:idx_players_room_order"`
	PlayerID  string    `gorm:"size:36;uniqueIndex;not null"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_players_room_name"`
	TurnOrder int       `gorm:"not null;uniqueIndex:idx_players_room_order"`
	Score     int       `gorm:"not null;default:0"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Chat struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null"`
	PlayerID  *uint     `gorm:"index"`
	Message   string    `gorm:"size:280;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type WordEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Category  string    `gorm:"size:32;not null;uniqueIndex:idx_words_category_text"`
	Text      string    `gorm:"size:64;not null;uniqueIndex:idx_words_category_text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    uint           `gorm:"index;not null"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
