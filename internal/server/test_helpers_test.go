package server

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"beamer-quiz/internal/config"
	"beamer-quiz/internal/db"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	cfg.AdminToken = "test-token"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(conn, cfg, logger)
}

func bootstrapGame(t *testing.T, s *Server) *db.Game {
	t.Helper()
	game, err := db.EnsureActiveGame(s.db)
	if err != nil {
		t.Fatalf("bootstrap game: %v", err)
	}
	return game
}

func addPoolImage(t *testing.T, s *Server, filename string) *db.PoolImage {
	t.Helper()
	image := db.PoolImage{Filename: filename, URL: "/images/" + filename}
	if err := s.db.Create(&image).Error; err != nil {
		t.Fatalf("create pool image: %v", err)
	}
	return &image
}

func assignImage(t *testing.T, s *Server, game *db.Game, image *db.PoolImage, correctAnswer string) *db.GameImage {
	t.Helper()
	record := db.GameImage{
		GameID:        game.ID,
		ImageID:       image.ID,
		CorrectAnswer: correctAnswer,
	}
	if err := s.db.Create(&record).Error; err != nil {
		t.Fatalf("assign game image: %v", err)
	}
	return &record
}

func joinTestPlayer(t *testing.T, s *Server, name string) *db.Player {
	t.Helper()
	player, _, err := s.joinPlayer(name)
	if err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	return player
}

func setLastSeen(t *testing.T, s *Server, playerID string, at time.Time) {
	t.Helper()
	err := s.db.Model(&db.Player{}).Where("id = ?", playerID).Update("last_seen", at).Error
	if err != nil {
		t.Fatalf("set last_seen: %v", err)
	}
}

func loadPlayer(t *testing.T, s *Server, playerID string) *db.Player {
	t.Helper()
	var player db.Player
	if err := s.db.Where("id = ?", playerID).First(&player).Error; err != nil {
		t.Fatalf("load player: %v", err)
	}
	return &player
}
