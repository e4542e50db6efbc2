package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"beamer-quiz/internal/db"
)

func apiRequest(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestJoinQRReturnsPNG(t *testing.T) {
	s := newTestServer(t)
	rec := apiRequest(t, s, http.MethodGet, "/api/join-qr", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("expected PNG magic bytes")
	}
}

func TestCreateImageRequiresToken(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"filename": "apple.jpg", "url": "/images/apple.jpg"}

	if rec := apiRequest(t, s, http.MethodPost, "/api/images", body, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := apiRequest(t, s, http.MethodPost, "/api/images", body, "wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
	if rec := apiRequest(t, s, http.MethodPost, "/api/images", body, "test-token"); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStartMarkerIsUnique(t *testing.T) {
	s := newTestServer(t)
	first := map[string]any{"filename": "welcome.jpg", "url": "/images/welcome.jpg", "isStart": true}
	if rec := apiRequest(t, s, http.MethodPost, "/api/images", first, "test-token"); rec.Code != http.StatusCreated {
		t.Fatalf("expected first start frame accepted, got %d", rec.Code)
	}

	second := map[string]any{"filename": "intro.jpg", "url": "/images/intro.jpg", "isStart": true}
	if rec := apiRequest(t, s, http.MethodPost, "/api/images", second, "test-token"); rec.Code != http.StatusConflict {
		t.Fatalf("expected second start frame rejected with 409, got %d", rec.Code)
	}

	// The end marker is an independent slot.
	third := map[string]any{"filename": "bye.jpg", "url": "/images/bye.jpg", "isEnd": true}
	if rec := apiRequest(t, s, http.MethodPost, "/api/images", third, "test-token"); rec.Code != http.StatusCreated {
		t.Fatalf("expected end frame accepted, got %d", rec.Code)
	}
}

func TestUpdateImageMovesMarker(t *testing.T) {
	s := newTestServer(t)
	image := addPoolImage(t, s, "apple.jpg")

	path := fmt.Sprintf("/api/images/%d", image.ID)
	rec := apiRequest(t, s, http.MethodPatch, path, map[string]any{"isStart": true}, "test-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected marker update accepted, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated db.PoolImage
	if err := s.db.First(&updated, image.ID).Error; err != nil {
		t.Fatalf("reload image: %v", err)
	}
	if !updated.IsStart {
		t.Fatal("expected start marker persisted")
	}
}

func TestAssignGameImageRejectsMarkerFrames(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)
	start := db.PoolImage{Filename: "welcome.jpg", URL: "/images/welcome.jpg", IsStart: true}
	if err := s.db.Create(&start).Error; err != nil {
		t.Fatalf("create start frame: %v", err)
	}

	body := map[string]any{"imageId": start.ID, "correctAnswer": "Welcome"}
	rec := apiRequest(t, s, http.MethodPost, "/api/games/current/images", body, "test-token")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for marker frame, got %d", rec.Code)
	}
}

func TestAssignGameImageOncePerImage(t *testing.T) {
	s := newTestServer(t)
	bootstrapGame(t, s)
	image := addPoolImage(t, s, "apple.jpg")

	body := map[string]any{"imageId": image.ID, "correctAnswer": "Apple"}
	if rec := apiRequest(t, s, http.MethodPost, "/api/games/current/images", body, "test-token"); rec.Code != http.StatusCreated {
		t.Fatalf("expected first assignment accepted, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := apiRequest(t, s, http.MethodPost, "/api/games/current/images", body, "test-token"); rec.Code != http.StatusConflict {
		t.Fatalf("expected duplicate assignment rejected, got %d", rec.Code)
	}
}

func TestWordListRoundTrip(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"name": "fruits", "words": []string{"apple", "pear", "plum"}}
	if rec := apiRequest(t, s, http.MethodPost, "/api/wordlists", body, "test-token"); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := apiRequest(t, s, http.MethodGet, "/api/wordlists", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		WordLists []db.WordList `json:"wordlists"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(payload.WordLists) != 1 || payload.WordLists[0].Name != "fruits" {
		t.Fatalf("expected the stored list back, got %+v", payload.WordLists)
	}
	var words []string
	if err := json.Unmarshal(payload.WordLists[0].Words, &words); err != nil {
		t.Fatalf("decode words: %v", err)
	}
	if len(words) != 3 || words[0] != "apple" {
		t.Fatalf("expected words round-tripped, got %v", words)
	}
}
