package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// okResponse — ответ на удаление: отсутствующий id тоже считается успехом.
type okResponse struct {
	OK bool `json:"ok"`
}

// errorResponse — единственное поле сообщения, без структурированных кодов.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(log *slog.Logger, w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondError(log *slog.Logger, w http.ResponseWriter, status int, msg string) {
	respondJSON(log, w, status, errorResponse{Error: msg})
}

// idParam извлекает числовой идентификатор из URL.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
