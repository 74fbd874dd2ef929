// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/config"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/dto"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	userRepo    contract.UserRepository
	accountRepo contract.AccountRepository
	cfg         *config.Config
	logger      logger.ILogger
}

func NewAuthService(userRepo contract.UserRepository, accountRepo contract.AccountRepository, cfg *config.Config, logger logger.ILogger) IAuthService {
	return &authService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	existing, _ := s.userRepo.FindByUsername(ctx, req.Username)
	if existing != nil {
		return nil, errors.New("username already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Every demo user starts with a funded savings account so the
	// assistant has something to report on the first balance inquiry.
	account := &entity.Account{
		Id:            uuid.New(),
		UserId:        user.Id,
		AccountNumber: newAccountNumber(),
		AccountType:   "savings",
		Balance:       12450.75,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("AuthService", "user registered", map[string]interface{}{
		"user_id":  user.Id.String(),
		"username": user.Username,
	})

	return &dto.RegisterResponse{Id: user.Id, Username: user.Username}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	if user.Status == entity.UserStatusBlocked {
		return nil, errors.New("user account is blocked")
	}

	expiry := time.Duration(s.cfg.Auth.TokenTTLHours) * time.Hour
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     time.Now().Add(expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.Auth.JwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:    signedToken,
		UserId:   user.Id,
		FullName: user.FullName,
	}, nil
}

// newAccountNumber returns a 12-digit pseudo account number derived
// from a fresh UUID. Collisions are guarded by the unique index.
func newAccountNumber() string {
	id := uuid.New()
	digits := make([]byte, 0, 12)
	for _, b := range id {
		digits = append(digits, '0'+b%10)
		if len(digits) == 12 {
			break
		}
	}
	return string(digits)
}
