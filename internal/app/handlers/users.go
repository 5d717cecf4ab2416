package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/tech-store/internal/service"
	"github.com/linemk/tech-store/internal/storage"
)

// CreateUserRequest — тело POST /usuarios
type CreateUserRequest struct {
	Name     string `json:"nombre" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"rol" validate:"omitempty,oneof=admin user"`
	Active   *bool  `json:"activo"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest — тело PUT /usuarios/{id}; отсутствующие поля не трогаются
type UpdateUserRequest struct {
	Name     *string `json:"nombre"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"rol" validate:"omitempty,oneof=admin user"`
	Active   *bool   `json:"activo"`
	Password *string `json:"password"`
}

// ListUsersHandler обрабатывает GET /usuarios/all (только админ).
func ListUsersHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := userService.List(r.Context())
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, users)
	}
}

// CreateUserHandler обрабатывает POST /usuarios (только админ).
func CreateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateUserHandler"
		logger := log.With(slog.String("op", op))

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "validation error")
			return
		}

		// отсутствующий флаг активности трактуем как активного пользователя
		active := true
		if req.Active != nil {
			active = *req.Active
		}

		user, err := userService.Create(r.Context(), service.NewUser{
			Name:     req.Name,
			Email:    req.Email,
			Role:     req.Role,
			Active:   active,
			Password: req.Password,
		})
		if err != nil {
			logger.Error("failed to create user", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, user)
	}
}

// UpdateUserHandler обрабатывает PUT /usuarios/{id} (только админ): частичное слияние, 404 при отсутствии.
func UpdateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateUserHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			respondError(log, w, http.StatusBadRequest, "invalid id")
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(log, w, http.StatusBadRequest, "validation error")
			return
		}

		user, err := userService.Update(r.Context(), id, service.UserUpdate{
			Name:     req.Name,
			Email:    req.Email,
			Role:     req.Role,
			Active:   req.Active,
			Password: req.Password,
		})
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				respondError(log, w, http.StatusNotFound, "user not found")
				return
			}
			logger.Error("failed to update user", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, user)
	}
}

// DeleteUserHandler обрабатывает DELETE /usuarios/{id} (только админ): отсутствующий id — тоже успех.
func DeleteUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteUserHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			respondError(log, w, http.StatusBadRequest, "invalid id")
			return
		}

		if err := userService.Delete(r.Context(), id); err != nil {
			logger.Error("failed to delete user", slog.Any("error", err))
			respondError(log, w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(log, w, http.StatusOK, okResponse{OK: true})
	}
}
