package repositories

import (
	"database/sql"
	"time"

	"factory_crm_backend/internal/models"

	"github.com/lib/pq"
)

// UserRepository defines the interface for user account operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error)
	FindByUsername(username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindByID(userID int64) (*models.User, error)
	// ListActiveByRoles returns active users holding any of the roles.
	ListActiveByRoles(roles []string) ([]models.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, full_name, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, TRUE, $5, $5)
	          RETURNING id`
	now := time.Now()
	if err := executor.QueryRow(query, user.Username, hashedPassword, user.FullName, user.Role, now).Scan(&user.ID); err != nil {
		return 0, wrapDBError("creating user", err)
	}
	user.IsActive = true
	user.CreatedAt, user.UpdatedAt = now, now
	return user.ID, nil
}

func (r *userRepository) FindByUsername(username string) (*models.User, string, error) {
	var u models.User
	var hash string
	query := `SELECT id, username, password_hash, full_name, role, is_active, created_at, updated_at
	          FROM users WHERE username = $1`
	err := r.db.QueryRow(query, username).Scan(&u.ID, &u.Username, &hash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, "", wrapDBError("finding user by username", err)
	}
	return &u, hash, nil
}

func (r *userRepository) FindByID(userID int64) (*models.User, error) {
	var u models.User
	query := `SELECT id, username, full_name, role, is_active, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.QueryRow(query, userID).Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapDBError("finding user by id", err)
	}
	return &u, nil
}

func (r *userRepository) ListActiveByRoles(roles []string) ([]models.User, error) {
	query := `SELECT id, username, full_name, role, is_active, created_at, updated_at
	          FROM users WHERE is_active AND role = ANY($1)
	          ORDER BY id`
	rows, err := r.db.Query(query, pq.Array(roles))
	if err != nil {
		return nil, wrapDBError("listing users by role", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, wrapDBError("scanning user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating users", err)
	}
	return users, nil
}
