package service

import (
	"context"
	"errors"

	"centrale/internal/auth"
	"centrale/internal/model"
)

// ErrInvalidCredentials hides whether the username or the password was
// wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserRepo is the user persistence surface, implemented by
// repository.UserRepository.
type UserRepo interface {
	Insert(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

type UserService struct {
	repo      UserRepo
	jwtSecret string
}

func NewUserService(repo UserRepo, jwtSecret string) *UserService {
	return &UserService{repo: repo, jwtSecret: jwtSecret}
}

// Login checks credentials and returns a signed token plus the user.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := auth.GenerateJWT(u.Username, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Profile returns the public profile of one user.
func (s *UserService) Profile(ctx context.Context, username string) (*model.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Entrepreneurs lists every entrepreneur account for the directory pages.
func (s *UserService) Entrepreneurs(ctx context.Context) ([]model.User, error) {
	return s.repo.ListByRole(ctx, model.RoleEntrepreneur)
}

// Coaches lists every coach account.
func (s *UserService) Coaches(ctx context.Context) ([]model.User, error) {
	return s.repo.ListByRole(ctx, model.RoleCoach)
}
