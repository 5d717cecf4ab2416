package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/service"
)

// AuthRequest представляет структуру запроса для аутентификации с тегами валидации
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse представляет структуру ответа с JWT-токеном
type AuthResponse struct {
	Token string `json:"token"`
}

// AuthHandler – HTTP-обработчик для аутентификации, принимает логгер и экземпляр AuthService
func AuthHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "invalid request")
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "validation error")
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Warn("login failed", slog.Any("error", err))
			respondError(log, w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		respondJSON(log, w, http.StatusOK, AuthResponse{Token: token})
	}
}

// LoginCheckHandler обрабатывает легаси-эндпоинт GET /usuarios?email&password.
// Успех — массив из одного пользователя без учётных данных,
// несовпадение пароля — пустой массив, как в исходном контракте.
func LoginCheckHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginCheckHandler"
		logger := log.With(slog.String("op", op))

		email := r.URL.Query().Get("email")
		password := r.URL.Query().Get("password")
		if email == "" || password == "" {
			respondError(log, w, http.StatusBadRequest, "email and password are required")
			return
		}

		user, err := authService.CheckCredentials(r.Context(), email, password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				respondJSON(log, w, http.StatusOK, []*models.User{})
				return
			}
			logger.Error("failed to check credentials", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}

		respondJSON(log, w, http.StatusOK, []*models.User{user})
	}
}
