package service

import (
	"context"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/pkg/jwt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	// SetPassword overwrites a password without the old one. Used by the admin CLI.
	SetPassword(ctx context.Context, email, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

// Actor is the identity passed to the stock and order services.
func (r *TokenValidationResponse) Actor() model.Actor {
	elevated := false
	for _, p := range r.Privileges {
		if p == model.PrivStockOutApprove {
			elevated = true
			break
		}
	}
	return model.Actor{ID: r.User.ID.String(), Name: r.User.FullName, Elevated: elevated}
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log.Named("auth"),
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// single session: a new version invalidates every older token
	version := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, errors.Wrap(err, "update session")
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.FullName, roleCode, user.PrivilegeCodes(), version)
	if err != nil {
		return nil, errors.Wrap(err, "generate token")
	}

	s.log.Info("user logged in", zap.String("email", user.Email))
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return lookupErr(err, "user")
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	return s.storePassword(ctx, user, newPassword)
}

func (s *authService) SetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return lookupErr(err, "user")
	}
	return s.storePassword(ctx, user, newPassword)
}

func (s *authService) storePassword(ctx context.Context, user *model.User, password string) error {
	if len(password) < 6 {
		return errors.Wrap(ErrValidation, "password must be at least 6 characters")
	}
	if err := user.SetPassword(password); err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return errors.Wrap(err, "update password")
	}
	// log out every session
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
		return errors.Wrap(err, "reset session")
	}
	s.log.Info("password changed", zap.String("email", user.Email))
	return nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, jwt.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}
