package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"acqplan/internal/access"
	"acqplan/internal/apperr"
	"acqplan/internal/config"
	"acqplan/internal/model"
	"acqplan/internal/repository"
	"acqplan/internal/workflow"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role" binding:"required"`
	DepartmentID string `json:"department_id" binding:"required"`
}

type UpdateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email" binding:"omitempty,email"`
	Password     string `json:"password" binding:"omitempty,min=6"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
	IsActive     *bool  `json:"is_active"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserListQuery struct {
	Search       string `form:"search"`
	Role         string `form:"role"`
	DepartmentID string `form:"departmentId"`
	IsActive     *bool  `form:"isActive"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	DepartmentID uuid.UUID      `json:"department_id"`
	Department   *DepartmentRef `json:"department,omitempty"`
	IsActive     bool           `json:"is_active"`
	LastLogin    *string        `json:"last_login"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// SessionClaims are the JWT claims of an access token.
type SessionClaims struct {
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
	jwt.RegisteredClaims
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, actor access.Actor, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, q UserListQuery, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	DeactivateUser(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

type userService struct {
	repo        repository.UserRepository
	departments repository.DepartmentRepository
	audit       AuditService
	jwt         config.JWTConfig
	now         func() time.Time
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, departments repository.DepartmentRepository, audit AuditService, jwtCfg config.JWTConfig) UserService {
	return &userService{repo: repo, departments: departments, audit: audit, jwt: jwtCfg, now: time.Now}
}

func validateRole(role string) error {
	if _, ok := workflow.ParseRole(role); !ok {
		return apperr.Validation("invalid role: must be USER, MANAGER, APPROVER or ADMIN")
	}
	return nil
}

func mapToResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
		IsActive:     user.IsActive,
		LastLogin:    formatTimePtr(user.LastLogin),
		CreatedAt:    formatTime(user.CreatedAt),
		UpdatedAt:    formatTime(user.UpdatedAt),
	}
	if user.Department != nil {
		ref := toDepartmentRef(user.Department)
		resp.Department = &ref
	}
	return resp
}

func (s *userService) resolveDepartment(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := ParseID(raw, "department")
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.departments.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperr.Validation("department %s does not exist", id)
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (s *userService) emailTaken(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return apperr.Conflict("email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, actor access.Actor, req CreateUserRequest) (*UserResponse, error) {
	if err := validateRole(req.Role); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.emailTaken(ctx, email); err != nil {
		return nil, err
	}
	deptID, err := s.resolveDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Password:     string(hashedPassword),
		Role:         req.Role,
		DepartmentID: deptID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.Record(ctx, actor.ID, model.ActionCreateUser, user.ID.String(), user.Name, map[string]string{
		"email": user.Email,
		"role":  user.Role,
	})
	return s.GetUserByID(ctx, user.ID)
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated("user account is inactive")
	}

	now := s.now()
	expiresAt := now.Add(s.jwt.AccessTokenExpire)
	claims := SessionClaims{
		Role:         user.Role,
		DepartmentID: user.DepartmentID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.jwt.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	return &LoginResponse{
		Token:     tokenString,
		ExpiresAt: formatTime(expiresAt),
		User:      *mapToResponse(user),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, q UserListQuery, page, limit int) ([]UserResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	filter := repository.UserFilter{
		Search:   strings.TrimSpace(q.Search),
		IsActive: q.IsActive,
	}
	if q.Role != "" {
		if err := validateRole(q.Role); err != nil {
			return nil, 0, err
		}
		filter.Role = q.Role
	}
	deptID, err := parseOptionalID(&q.DepartmentID, "department")
	if err != nil {
		return nil, 0, err
	}
	filter.DepartmentID = deptID

	users, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user")
	}

	if req.Role != "" {
		if err := validateRole(req.Role); err != nil {
			return nil, err
		}
		user.Role = req.Role
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if err := s.emailTaken(ctx, email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if req.DepartmentID != "" {
		deptID, err := s.resolveDepartment(ctx, req.DepartmentID)
		if err != nil {
			return nil, err
		}
		user.DepartmentID = deptID
	}

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.audit.Record(ctx, actor.ID, model.ActionUpdateUser, user.ID.String(), user.Name, map[string]string{
		"email": user.Email,
		"role":  user.Role,
	})
	return s.GetUserByID(ctx, id)
}

// DeactivateUser only flips isActive; requests and history keep their author.
func (s *userService) DeactivateUser(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if actor.ID == id {
		return apperr.Conflict("cannot deactivate your own account")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return lookupErr(err, "user")
	}
	user.IsActive = false
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.audit.Record(ctx, actor.ID, model.ActionDeactivateUser, user.ID.String(), user.Name, nil)
	return nil
}
