package service

import (
	"context"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actor model.Actor) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actor model.Actor) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	GetRoles(ctx context.Context) ([]model.Role, error)
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"max=20"`
	RoleID   uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string  `json:"full_name" validate:"required"`
	Phone    string  `json:"phone" validate:"max=20"`
	RoleID   uint    `json:"role_id" validate:"required"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		log:      log.Named("user"),
	}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actor model.Actor) (*model.UserResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, errors.Wrapf(ErrConflict, "email %s", req.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "check email")
	}

	if _, err := s.roleRepo.FindByID(ctx, req.RoleID); err != nil {
		return nil, lookupErr(err, "role")
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		RoleID:   &req.RoleID,
		IsActive: true,
	}
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	s.log.Info("user created", zap.String("email", user.Email), zap.String("actor", actor.ID))
	return s.GetUserByID(ctx, user.ID)
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actor model.Actor) (*model.UserResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if _, err := s.roleRepo.FindByID(ctx, req.RoleID); err != nil {
		return nil, lookupErr(err, "role")
	}

	user.FullName = req.FullName
	user.Phone = req.Phone
	user.RoleID = &req.RoleID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.ID

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "update user")
	}

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
			return nil, errors.Wrap(err, "update password")
		}
	}

	s.log.Info("user updated", zap.String("email", user.Email), zap.String("actor", actor.ID))
	return s.GetUserByID(ctx, userID)
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return lookupErr(err, "user")
	}
	return errors.Wrap(s.userRepo.Delete(ctx, userID), "delete user")
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) GetRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	return roles, errors.Wrap(err, "list roles")
}
