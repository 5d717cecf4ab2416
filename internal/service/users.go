package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// NewUser — данные для создания пользователя администратором.
type NewUser struct {
	Name     string
	Email    string
	Role     string
	Active   bool
	Password string
}

// UserUpdate — частичное обновление пользователя, nil-поля не трогаются.
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *string
	Active   *bool
	Password *string
}

// UserService определяет административные операции над пользователями.
type UserService interface {
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, nu NewUser) (*models.User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage) UserService {
	return &userService{log: log, userRepo: userRepo}
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	const op = "service.UserService.List"

	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Create хэширует пароль через bcrypt и сохраняет пользователя;
// пустая роль трактуется как обычный пользователь.
func (s *userService) Create(ctx context.Context, nu NewUser) (*models.User, error) {
	const op = "service.UserService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("email", nu.Email))

	passHash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	role := nu.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Name:     nu.Name,
		Email:    nu.Email,
		Role:     role,
		Active:   nu.Active,
		PassHash: passHash,
	}
	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user created", slog.Int64("userID", created.ID))
	return created, nil
}

// Update выполняет частичное слияние; новый пароль хэшируется перед записью.
func (s *userService) Update(ctx context.Context, id int64, upd UserUpdate) (*models.User, error) {
	const op = "service.UserService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id))

	patch := storage.UserPatch{
		Name:   upd.Name,
		Email:  upd.Email,
		Role:   upd.Role,
		Active: upd.Active,
	}
	if upd.Password != nil {
		passHash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("failed to hash password", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
		}
		patch.PassHash = passHash
	}

	updated, err := s.userRepo.UpdateUser(ctx, id, patch)
	if err != nil {
		logger.Error("failed to update user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update user: %w", op, err)
	}
	return updated, nil
}

// Delete удаляет пользователя; его заказы остаются (каскада нет).
func (s *userService) Delete(ctx context.Context, id int64) error {
	const op = "service.UserService.Delete"

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		s.log.Error("failed to delete user", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
