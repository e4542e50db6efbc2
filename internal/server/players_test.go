package server

import (
	"errors"
	"testing"
	"time"
)

func TestJoinValidatesName(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)

	if _, _, err := s.joinPlayer("A"); err == nil {
		t.Fatal("expected single-character name to be rejected")
	}
	if _, _, err := s.joinPlayer("this name is way way too long"); err == nil {
		t.Fatal("expected overlong name to be rejected")
	}
	if _, _, err := s.joinPlayer("Анна"); err == nil {
		t.Fatal("expected non-ascii name to be rejected")
	}
	player, _, err := s.joinPlayer("  Anna   Banana ")
	if err != nil {
		t.Fatalf("expected normalized join to succeed, got %v", err)
	}
	if player.Name != "Anna Banana" {
		t.Fatalf("expected normalized name, got %q", player.Name)
	}
}

func TestJoinRejectsDuplicateName(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)
	joinTestPlayer(t, s, "Anna")

	_, _, err := s.joinPlayer("anna")
	if !errors.Is(err, errNameTaken) {
		t.Fatalf("expected name-taken, got %v", err)
	}
}

func TestJoinRequiresActiveGame(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)
	if _, err := s.endGame(); err != nil {
		t.Fatalf("end game: %v", err)
	}

	_, _, err := s.joinPlayer("Anna")
	if !errors.Is(err, errNoActiveGame) {
		t.Fatalf("expected no-active-game after end, got %v", err)
	}
}

func TestReconnectRestoresPlayer(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)
	player := joinTestPlayer(t, s, "Anna")
	if err := s.leavePlayer(player.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if loadPlayer(t, s, player.ID).IsActive {
		t.Fatal("expected voluntary leave to deactivate immediately")
	}

	restored, err := s.reconnectPlayer(player.ID)
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if !restored.IsActive {
		t.Fatal("expected reconnect to reactivate player")
	}
}

func TestReconnectUnknownIDForcesRejoin(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)

	_, err := s.reconnectPlayer("never-issued")
	if !errors.Is(err, errPlayerNotFound) {
		t.Fatalf("expected player-not-found, got %v", err)
	}
}

func TestLivenessSweepGraceWindow(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)
	fresh := joinTestPlayer(t, s, "Fresh")
	stale := joinTestPlayer(t, s, "Stale")

	now := time.Now().UTC()
	setLastSeen(t, s, fresh.ID, now.Add(-59*time.Second))
	setLastSeen(t, s, stale.ID, now.Add(-61*time.Second))

	if swept := s.sweepInactive(now); swept != 1 {
		t.Fatalf("expected exactly one player swept, got %d", swept)
	}
	if !loadPlayer(t, s, fresh.ID).IsActive {
		t.Fatal("expected 59s-old player to stay active")
	}
	if loadPlayer(t, s, stale.ID).IsActive {
		t.Fatal("expected 61s-old player to be swept")
	}
}

func TestKeepAliveDefersSweep(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)
	player := joinTestPlayer(t, s, "Anna")

	now := time.Now().UTC()
	setLastSeen(t, s, player.ID, now.Add(-2*time.Minute))
	s.touchPlayer(player.ID)
	if swept := s.sweepInactive(time.Now().UTC()); swept != 0 {
		t.Fatalf("expected keep-alive to defer the sweep, swept %d", swept)
	}
}

func TestPurgePlayerRemovesRowAndAnswers(t *testing.T) {
	s := newTestServer(t)
	game := bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")
	assignImage(t, s, game, image, "Apple")
	player := joinTestPlayer(t, s, "Anna")
	if _, err := s.startGame(image.ID); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := s.lockAnswer(player.ID, image.ID, "Apple", 1000); err != nil {
		t.Fatalf("lock: %v", err)
	}

	if err := s.purgePlayer(player.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}
	_, err := s.reconnectPlayer(player.ID)
	if !errors.Is(err, errPlayerNotFound) {
		t.Fatalf("expected purged player to be gone, got %v", err)
	}
}
