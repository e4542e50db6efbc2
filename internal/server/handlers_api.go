package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"beamer-quiz/internal/db"

	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// REST collaborators around the core: image pool and word-list content
// management plus the join QR. They feed the engine but hold no game logic.

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func (s *Server) requireTokenHeader(w http.ResponseWriter, r *http.Request) bool {
	if s.checkToken(r.Header.Get("X-Admin-Token")) {
		return true
	}
	writeError(w, http.StatusUnauthorized, "invalid")
	return false
}

func pathID(r *http.Request) (uint, bool) {
	value, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func (s *Server) handleJoinQR(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimRight(s.cfg.PublicURL, "/") + "/join"
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	var images []db.PoolImage
	if err := s.db.Order("id ASC").Find(&images).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": images})
}

type imageRequest struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	IsStart  *bool  `json:"isStart,omitempty"`
	IsEnd    *bool  `json:"isEnd,omitempty"`
}

func (s *Server) handleCreateImage(w http.ResponseWriter, r *http.Request) {
	if !s.requireTokenHeader(w, r) {
		return
	}
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	if strings.TrimSpace(req.Filename) == "" || strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "filename and url are required")
		return
	}
	image := db.PoolImage{
		Filename: strings.TrimSpace(req.Filename),
		URL:      strings.TrimSpace(req.URL),
	}
	if req.IsStart != nil {
		image.IsStart = *req.IsStart
	}
	if req.IsEnd != nil {
		image.IsEnd = *req.IsEnd
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkMarkerUnique(tx, 0, image.IsStart, image.IsEnd); err != nil {
			return err
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		if errors.Is(err, errMarkerTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, image)
}

func (s *Server) handleUpdateImage(w http.ResponseWriter, r *http.Request) {
	if !s.requireTokenHeader(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	var image db.PoolImage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&image, id).Error; err != nil {
			return err
		}
		if req.Filename != "" {
			image.Filename = strings.TrimSpace(req.Filename)
		}
		if req.URL != "" {
			image.URL = strings.TrimSpace(req.URL)
		}
		if req.IsStart != nil {
			image.IsStart = *req.IsStart
		}
		if req.IsEnd != nil {
			image.IsEnd = *req.IsEnd
		}
		if err := checkMarkerUnique(tx, image.ID, image.IsStart, image.IsEnd); err != nil {
			return err
		}
		return tx.Save(&image).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "image not found")
		case errors.Is(err, errMarkerTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, image)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	if !s.requireTokenHeader(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}
	if err := s.db.Delete(&db.PoolImage{}, id).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

var errMarkerTaken = errors.New("another image already carries that marker")

// checkMarkerUnique enforces that at most one pool image is flagged as the
// start frame and at most one as the end frame.
func checkMarkerUnique(tx *gorm.DB, selfID uint, isStart, isEnd bool) error {
	if isStart {
		var count int64
		if err := tx.Model(&db.PoolImage{}).
			Where("is_start = ? AND id <> ?", true, selfID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errMarkerTaken
		}
	}
	if isEnd {
		var count int64
		if err := tx.Model(&db.PoolImage{}).
			Where("is_end = ? AND id <> ?", true, selfID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errMarkerTaken
		}
	}
	return nil
}

func (s *Server) handleImageAnswers(w http.ResponseWriter, r *http.Request) {
	if !s.requireTokenHeader(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}
	var answers []db.Answer
	err := s.db.Where("image_id = ?", id).
		Order("locked_at ASC").
		Order("id ASC").
		Find(&answers).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answers": answers})
}

type assignImageRequest struct {
	ImageID       uint   `json:"imageId"`
	CorrectAnswer string `json:"correctAnswer"`
	DisplayOrder  int    `json:"displayOrder"`
}

func (s *Server) handleAssignGameImage(w http.ResponseWriter, r *http.Request) {
	if !s.requireTokenHeader(w, r) {
		return
	}
	var req assignImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	answer, err := validateAnswer(req.CorrectAnswer)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := s.activeGame(s.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if game == nil {
		writeError(w, http.StatusConflict, errNoActiveGame.Error())
		return
	}
	var image db.PoolImage
	if err := s.db.First(&image, req.ImageID).Error; err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	if image.IsStart || image.IsEnd {
		writeError(w, http.StatusConflict, "start and end frames are not playable")
		return
	}
	record := db.GameImage{
		GameID:        game.ID,
		ImageID:       req.ImageID,
		CorrectAnswer: answer,
		DisplayOrder:  req.DisplayOrder,
	}
	if err := s.db.Create(&record).Error; err != nil {
		writeError(w, http.StatusConflict, "image already assigned")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListGameImages(w http.ResponseWriter, r *http.Request) {
	if !s.requireTokenHeader(w, r) {
		return
	}
	game, err := s.activeGame(s.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if game == nil {
		writeError(w, http.StatusConflict, errNoActiveGame.Error())
		return
	}
	var images []db.GameImage
	err = s.db.Where("game_id = ?", game.ID).
		Order("display_order ASC").
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": images})
}

type wordListRequest struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
}

func (s *Server) handleListWordLists(w http.ResponseWriter, r *http.Request) {
	var lists []db.WordList
	if err := s.db.Order("name ASC").Find(&lists).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wordlists": lists})
}

func (s *Server) handleCreateWordList(w http.ResponseWriter, r *http.Request) {
	if !s.requireTokenHeader(w, r) {
		return
	}
	var req wordListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	name := normalizeText(req.Name)
	if name == "" || len(req.Words) == 0 {
		writeError(w, http.StatusBadRequest, "name and words are required")
		return
	}
	words, err := json.Marshal(req.Words)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	record := db.WordList{Name: name, Words: words, CreatedAt: time.Now().UTC()}
	if err := s.db.Create(&record).Error; err != nil {
		writeError(w, http.StatusConflict, "word list already exists")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleDeleteWordList(w http.ResponseWriter, r *http.Request) {
	if !s.requireTokenHeader(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid word list id")
		return
	}
	if err := s.db.Delete(&db.WordList{}, id).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
