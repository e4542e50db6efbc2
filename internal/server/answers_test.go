package server

import (
	"errors"
	"testing"

	"beamer-quiz/internal/db"
)

func TestLockAnswerUpsertIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")
	player := joinTestPlayer(t, s, "Anna")
	if _, err := s.startGame(image.ID); err != nil {
		t.Fatalf("start game: %v", err)
	}

	if _, err := s.lockAnswer(player.ID, image.ID, "Pear", 1000); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := s.lockAnswer(player.ID, image.ID, "Apple", 2000); err != nil {
		t.Fatalf("second lock: %v", err)
	}

	var answers []db.Answer
	if err := s.db.Where("player_id = ?", player.ID).Find(&answers).Error; err != nil {
		t.Fatalf("load answers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected exactly one answer row, got %d", len(answers))
	}
	if answers[0].Text != "Apple" || answers[0].LockedAt != 2000 {
		t.Fatalf("expected second lock to win, got %+v", answers[0])
	}
	if answers[0].IsCorrect != nil || answers[0].PointsEarned != 0 {
		t.Fatalf("expected unjudged answer, got %+v", answers[0])
	}
}

func TestLockAnswerRejectedBeforeStart(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")
	player := joinTestPlayer(t, s, "Anna")

	_, err := s.lockAnswer(player.ID, image.ID, "Apple", 1000)
	if !errors.Is(err, errGameNotRunning) {
		t.Fatalf("expected game-not-running, got %v", err)
	}
}

func TestLockAnswerRejectedAfterReveal(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")
	player := joinTestPlayer(t, s, "Anna")
	if _, err := s.startGame(image.ID); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, _, err := s.revealImage(image.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	_, err := s.lockAnswer(player.ID, image.ID, "Apple", 3000)
	if !errors.Is(err, errImageAlreadyPlayed) {
		t.Fatalf("expected image-already-played, got %v", err)
	}
	// The rejection rolls back; no unjudged row may linger after a reveal.
	var count int64
	if err := s.db.Model(&db.Answer{}).Where("player_id = ?", player.ID).Count(&count).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no answer row after rejected lock, got %d", count)
	}
}

func TestLockAnswerValidatesText(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")
	player := joinTestPlayer(t, s, "Anna")
	if _, err := s.startGame(image.ID); err != nil {
		t.Fatalf("start game: %v", err)
	}

	if _, err := s.lockAnswer(player.ID, image.ID, "   ", 1000); err == nil {
		t.Fatal("expected empty answer to be rejected")
	}
	if _, err := s.lockAnswer(player.ID, image.ID, "café", 1000); err == nil {
		t.Fatal("expected non-ascii answer to be rejected")
	}
}

func TestLockAnswerUnknownPlayer(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")
	joinTestPlayer(t, s, "Anna")
	if _, err := s.startGame(image.ID); err != nil {
		t.Fatalf("start game: %v", err)
	}

	_, err := s.lockAnswer("missing-id", image.ID, "Apple", 1000)
	if !errors.Is(err, errPlayerNotFound) {
		t.Fatalf("expected player-not-found, got %v", err)
	}
}
