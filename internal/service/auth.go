package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/tech-store/internal/config"
	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/security"
	"github.com/linemk/tech-store/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials — неверная пара email/пароль либо неактивный пользователь.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokenTTL time.Duration
	seed     config.SeedConfig
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration, seed config.SeedConfig) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		tokenTTL: tokenTTL,
		seed:     seed,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (string, error)
	CheckCredentials(ctx context.Context, email, password string) (*models.User, error)
}

// Login осуществляет аутентификацию пользователя.
// Введённый пароль сравнивается с сохранённым bcrypt-хэшем, после успешной
// проверки генерируется JWT-токен с ролью (секрет берётся из переменной окружения).
// Пользователи никогда не создаются на этом пути — только администратором.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.CheckCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("invalid credentials")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to check credentials", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to check credentials: %w", op, err)
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}

// CheckCredentials — проверка логина для легаси-эндпоинта GET /usuarios:
// отбор идет по паре email+пароль, поэтому при совпадающих email перебираются
// все записи и возвращается первая (по id) с подошедшим паролем.
// Проверка хэша всегда выполняется на сервере.
func (a *AuthService) CheckCredentials(ctx context.Context, email, password string) (*models.User, error) {
	const op = "auth.CheckCredentials"

	users, err := a.userRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}

	for _, user := range users {
		if !user.Active {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err == nil {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
}

// EnsureSeedAdmin создаёт учетную запись администратора при пустой таблице
// пользователей, чтобы в свежей установке было с чего залогиниться.
func (a *AuthService) EnsureSeedAdmin(ctx context.Context) error {
	const op = "auth.EnsureSeedAdmin"
	logger := a.log.With(slog.String("op", op))

	count, err := a.userRepo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to count users: %w", op, err)
	}
	if count > 0 {
		return nil
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(a.seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	admin := &models.User{
		Name:     a.seed.AdminName,
		Email:    a.seed.AdminEmail,
		Role:     models.RoleAdmin,
		Active:   true,
		PassHash: passHash,
	}
	if _, err := a.userRepo.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("%s: failed to create admin: %w", op, err)
	}

	logger.Info("seed admin created", slog.String("email", a.seed.AdminEmail))
	return nil
}
