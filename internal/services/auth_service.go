package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"
	"factory_crm_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameExists     = errors.New("username already exists")
	ErrRoleNotFound       = errors.New("specified role not found")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest DTO
type CreateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName *string `json:"fullName"`
	Role     string  `json:"role" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// --- AuthService Interface ---
type AuthService interface {
	CreateUser(req CreateUserRequest) (*models.User, error)
	Login(req LoginRequest) (*AuthResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
	// EnsureAdmin creates the given admin account when no active admin exists.
	// It reports whether an account was created.
	EnsureAdmin(username, password string) (bool, error)
}

// --- authService Implementation ---
type authService struct {
	userRepo repositories.UserRepository
	tx       repositories.TxRunner
	hashCost int
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository, tx repositories.TxRunner) AuthService {
	return &authService{userRepo: userRepo, tx: tx, hashCost: bcrypt.DefaultCost}
}

// CreateUser registers a staff account with one of the known roles.
func (s *authService) CreateUser(req CreateUserRequest) (*models.User, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("%w: '%s'", ErrRoleNotFound, req.Role)
	}
	if utils.IsEmpty(req.Username) {
		return nil, validationErr("username is required")
	}
	username := strings.TrimSpace(req.Username)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, FullName: req.FullName, Role: role}
	err = s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		_, err := s.userRepo.CreateUser(exec, user, string(hashed))
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	return user, nil
}

// Login checks the password and issues an access token.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, hash, err := s.userRepo.FindByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &AuthResponse{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) EnsureAdmin(username, password string) (bool, error) {
	if utils.IsEmpty(username) || password == "" {
		return false, nil
	}
	admins, err := s.userRepo.ListActiveByRoles([]string{models.RoleAdmin})
	if err != nil {
		return false, err
	}
	if len(admins) > 0 {
		return false, nil
	}
	if len(password) < 8 {
		return false, validationErr("admin password must be at least 8 characters")
	}
	if _, err := s.CreateUser(CreateUserRequest{Username: username, Password: password, Role: models.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}
