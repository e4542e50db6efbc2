package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	GameStatusLobby   = "lobby"
	GameStatusPlaying = "playing"
	GameStatusEnded   = "ended"
)

type Game struct {
	ID             uint       `gorm:"primaryKey"`
	Status         string     `gorm:"size:32;not null;index"`
	CurrentImageID *uint      `gorm:"index"`
	StartedAt      *time.Time ``
	EndedAt        *time.Time ``
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
	Players        []Player
	GameImages     []GameImage
	Events         []Event
}

type Player struct {
	ID        string    `gorm:"primaryKey;size:36"`
	GameID    uint      `gorm:"index;not null;uniqueIndex:idx_players_game_name"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_name"`
	Score     int       `gorm:"not null;default:0"`
	IsActive  bool      `gorm:"not null;default:true"`
	JoinedAt  time.Time `gorm:"not null"`
	LastSeen  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Answers   []Answer
}

type PoolImage struct {
	ID        uint      `gorm:"primaryKey"`
	Filename  string    `gorm:"size:255;not null;uniqueIndex"`
	URL       string    `gorm:"size:1024;not null"`
	IsStart   bool      `gorm:"not null;default:false"`
	IsEnd     bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type GameImage struct {
	ID            uint      `gorm:"primaryKey"`
	GameID        uint      `gorm:"index;not null;uniqueIndex:idx_game_images_game_image"`
	ImageID       uint      `gorm:"index;not null;uniqueIndex:idx_game_images_game_image"`
	CorrectAnswer string    `gorm:"size:255;not null"`
	DisplayOrder  int       `gorm:"not null;default:0"`
	IsPlayed      bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

type Answer struct {
	ID           uint      `gorm:"primaryKey"`
	PlayerID     string    `gorm:"size:36;index;not null;uniqueIndex:idx_answers_player_image"`
	ImageID      uint      `gorm:"index;not null;uniqueIndex:idx_answers_player_image"`
	Text         string    `gorm:"size:255;not null"`
	LockedAt     int64     `gorm:"not null"`
	IsCorrect    *bool     ``
	PointsEarned int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type ImageState struct {
	ID          uint       `gorm:"primaryKey"`
	GameID      uint       `gorm:"index;not null;uniqueIndex:idx_image_states_game_image"`
	ImageID     uint       `gorm:"index;not null;uniqueIndex:idx_image_states_game_image"`
	StartedAt   time.Time  `gorm:"not null"`
	EndedAt     *time.Time ``
	RevealCount int        `gorm:"not null;default:0"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

type Setting struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"size:1024;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type WordList struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:64;not null;uniqueIndex"`
	Words     datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    *uint          `gorm:"index"`
	PlayerID  *string        `gorm:"size:36;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
