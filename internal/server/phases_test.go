package server

import (
	"errors"
	"testing"

	"beamer-quiz/internal/db"
)

func TestStartGameRequiresLobby(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")

	if _, err := s.startGame(image.ID); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := s.startGame(image.ID)
	if !errors.Is(err, errGameAlreadyStarted) {
		t.Fatalf("expected already-started, got %v", err)
	}
}

func TestStartGameNeedsUnplayedImage(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)

	_, err := s.startGame(1)
	if !errors.Is(err, errNoUnplayedImages) {
		t.Fatalf("expected no-unplayed-images with empty set, got %v", err)
	}
}

func TestStartGameUnknownImage(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")

	_, err := s.startGame(image.ID + 99)
	if !errors.Is(err, errImageNotFound) {
		t.Fatalf("expected image-not-found, got %v", err)
	}
}

func TestNextImageRequiresPlaying(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")

	_, err := s.nextImage(image.ID)
	if !errors.Is(err, errGameNotRunning) {
		t.Fatalf("expected game-not-running from lobby, got %v", err)
	}
}

func TestNextImageSkipsPlayedImages(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	first := addPoolImage(t, s, "apple.jpg")
	second := addPoolImage(t, s, "pear.jpg")
	assignImage(t, s, game, first, "Apple")
	assignImage(t, s, game, second, "Pear")
	if _, err := s.startGame(first.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := s.revealImage(first.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	if _, err := s.nextImage(first.ID); !errors.Is(err, errImageAlreadyPlayed) {
		t.Fatalf("expected revealed image to be unselectable, got %v", err)
	}
	game, err := s.nextImage(second.ID)
	if err != nil {
		t.Fatalf("advance to fresh image: %v", err)
	}
	if game.CurrentImageID == nil || *game.CurrentImageID != second.ID {
		t.Fatalf("expected current image %d, got %+v", second.ID, game.CurrentImageID)
	}
}

func TestEndGameFromLobbyAborts(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)

	game, err := s.endGame()
	if err != nil {
		t.Fatalf("end from lobby: %v", err)
	}
	if game.Status != db.GameStatusEnded {
		t.Fatalf("expected ended status, got %q", game.Status)
	}
	if game.EndedAt == nil {
		t.Fatal("expected ended_at to be stamped")
	}
	if game.CurrentImageID != nil {
		t.Fatal("expected current image cleared")
	}
}

func TestEndGameRejectsWhenNoneActive(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)
	if _, err := s.endGame(); err != nil {
		t.Fatalf("end: %v", err)
	}

	_, err := s.endGame()
	if !errors.Is(err, errNoActiveGame) {
		t.Fatalf("expected no-active-game on repeat end, got %v", err)
	}
}
