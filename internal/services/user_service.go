package services

import (
	"context"
	"errors"
	"fmt"

	"campus_portal/internal/auth"
	"campus_portal/internal/forms"
	"campus_portal/internal/models"
	"campus_portal/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService is the account authority; it satisfies auth.Backend.
type UserService interface {
	auth.Backend
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetAllUsers(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id uint, role models.UserRole, serviceType string) (*models.User, error)
	Deactivate(ctx context.Context, id uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) SignUp(ctx context.Context, input auth.SignUpInput) (*models.User, error) {
	if err := forms.Validate(input); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, auth.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      string(models.Users),
		IsActive:  true,
	}
	if err := s.CreateUser(ctx, user, input.Password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrUserNotFound
	}
	return user, err
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	return s.userRepo.Create(ctx, user)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *userService) UpdateRole(ctx context.Context, id uint, role models.UserRole, serviceType string) (*models.User, error) {
	switch role {
	case models.SuperAdmin, models.Admin, models.Vendor, models.Users:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = string(role)
	user.ServiceType = ""
	if role == models.Vendor {
		user.ServiceType = serviceType
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Deactivate(ctx context.Context, id uint) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.userRepo.Update(ctx, user)
}
