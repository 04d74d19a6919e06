package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"
	"zawawiya-store/internal/token"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	VerifyCode(ctx context.Context, req *dto.VerifyCodeRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	issuer   *token.Issuer
	otp      *OTPStore
	mailer   Mailer
	userRepo repository.UserRepository
	cartRepo repository.CartRepository
}

func NewAuthService(
	db *gorm.DB,
	log *zap.Logger,
	issuer *token.Issuer,
	otp *OTPStore,
	mailer Mailer,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
) AuthService {
	return &authServiceImpl{
		db:       db,
		log:      log,
		issuer:   issuer,
		otp:      otp,
		mailer:   mailer,
		userRepo: userRepo,
		cartRepo: cartRepo,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Gender:       req.Gender,
		Newsletter:   req.Newsletter,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			if isDuplicate(err) {
				return apperror.Conflict("email is already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}
		if _, err := s.cartRepo.GetOrCreateActive(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("create cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	signed, err := s.issuer.Sign(user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Token: signed, User: user}, nil
}

// ForgotPassword behaves the same whether or not the email is registered.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	code, err := s.otp.Issue(user.Email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendResetCode(ctx, user.Email, code); err != nil {
		s.log.Error("send reset code failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return nil
}

func (s *authServiceImpl) VerifyCode(ctx context.Context, req *dto.VerifyCodeRequest) error {
	if !s.otp.Verify(req.Email, req.Code) {
		return apperror.InvalidRequest("invalid or expired code")
	}

	return nil
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if !s.otp.Verify(email, req.Code) {
		return apperror.InvalidRequest("invalid or expired code")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return lookupErr(err, "user not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if !s.otp.Consume(email, req.Code) {
		return apperror.InvalidRequest("invalid or expired code")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return lookupErr(err, "user not found")
	}

	s.log.Info("password reset", zap.Uint("user_id", user.ID))
	return nil
}
