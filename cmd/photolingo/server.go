package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/photolingo-project/photolingo/bot"
)

// server is the thin HTTP stand-in for the chat transport: it turns requests
// into photo/command events and hands them to the core.
type server struct {
	core   *bot.Bot
	logger *zap.Logger
}

func runServer(core *bot.Bot, port int, logger *zap.Logger) {
	s := &server{core: core, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /photo", s.handlePhoto)
	mux.HandleFunc("POST /command", s.handleCommand)

	logger.Info("photolingo listening", zap.Int("port", port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// handlePhoto accepts raw image bytes. The upload is spooled through a temp
// file, mirroring transport-level downloads; the file is removed whether or
// not processing succeeds. Processing runs on its own goroutine and the
// reply goes out through the sink, so the response is just an ack.
func (s *server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid user_id", http.StatusBadRequest)
		return
	}
	groupKey := r.URL.Query().Get("group_key")

	imageBytes, err := spoolBody(r.Body)
	if err != nil {
		s.logger.Error("failed to spool upload", zap.Error(err))
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	event := bot.PhotoEvent{UserID: userID, GroupKey: groupKey, ImageBytes: imageBytes}
	go func() {
		if err := s.core.OnPhoto(context.Background(), event); err != nil {
			s.logger.Error("photo processing failed", zap.Int64("userID", userID), zap.Error(err))
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (s *server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var event bot.CommandEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid command payload", http.StatusBadRequest)
		return
	}

	reply := s.core.OnCommand(r.Context(), event)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"body": reply.Body}); err != nil {
		s.logger.Error("failed to write command reply", zap.Error(err))
	}
}

// spoolBody writes the upload to a temp file and reads it back, removing the
// file regardless of the result.
func spoolBody(body io.Reader) ([]byte, error) {
	path := filepath.Join(os.TempDir(), "photolingo-"+uuid.NewString())
	defer os.Remove(path)

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
