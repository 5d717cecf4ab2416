package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/tech-store/internal/domain/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserPatch — частичное обновление пользователя: nil-поля не трогаются.
type UserPatch struct {
	Name     *string
	Email    *string
	Role     *string
	Active   *bool
	PassHash []byte // nil — хэш пароля не меняется
}

type UserStorage interface {
	List(ctx context.Context) ([]*models.User, error)
	ListByEmail(ctx context.Context, email string) ([]*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserStorage {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, nombre, email, rol, activo, pass_hash FROM usuarios ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Active, &user.PassHash); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByEmail возвращает всех пользователей с указанным email (по порядку id).
// Уникальность email хранилищем не гарантируется, как и в исходном контракте,
// поэтому проверка пароля идет по всем совпавшим записям.
func (r *userRepository) ListByEmail(ctx context.Context, email string) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, nombre, email, rol, activo, pass_hash FROM usuarios WHERE email = $1 ORDER BY id", email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Active, &user.PassHash); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, nombre, email, rol, activo, pass_hash FROM usuarios WHERE id = $1", id)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Active, &user.PassHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO usuarios (nombre, email, rol, activo, pass_hash) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		user.Name, user.Email, user.Role, user.Active, user.PassHash,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// UpdateUser выполняет частичное слияние: строка блокируется, nil-поля патча
// сохраняют прежние значения, затем строка перезаписывается целиком.
func (r *userRepository) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	user := &models.User{}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT id, nombre, email, rol, activo, pass_hash FROM usuarios WHERE id = $1 FOR UPDATE", id)
		if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Active, &user.PassHash); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}

		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		if patch.Role != nil {
			user.Role = *patch.Role
		}
		if patch.Active != nil {
			user.Active = *patch.Active
		}
		if patch.PassHash != nil {
			user.PassHash = patch.PassHash
		}

		_, err := tx.ExecContext(ctx,
			"UPDATE usuarios SET nombre = $1, email = $2, rol = $3, activo = $4, pass_hash = $5 WHERE id = $6",
			user.Name, user.Email, user.Role, user.Active, user.PassHash, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser удаляет пользователя; отсутствующий id — не ошибка.
func (r *userRepository) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM usuarios WHERE id = $1", id)
	return err
}

func (r *userRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	row := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios")
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
