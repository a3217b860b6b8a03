package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
	"watchpay-back/pkg/jwt"
	"watchpay-back/pkg/redis"
)

type AuthService struct {
	log             *zap.Logger
	publicKey       *ecdsa.PublicKey
	privateKey      *ecdsa.PrivateKey
	userRepo        UserRepository
	rdb             redis.Redis
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(
	log *zap.Logger,
	publicKey *ecdsa.PublicKey,
	privateKey *ecdsa.PrivateKey,
	userRepo UserRepository,
	rdb redis.Redis,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		log:             log,
		publicKey:       publicKey,
		privateKey:      privateKey,
		userRepo:        userRepo,
		rdb:             rdb,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password hash: %w", err)
	}

	user := &model.User{
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: passHash,
		Role:           model.RoleVisitor,
		WalletAddress:  req.WalletAddress,
		AgentURL:       req.AgentURL,
	}

	user, err = s.userRepo.InsertUser(ctx, nil, user)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.SelectUserByEmail(ctx, nil, email)
	if err != nil {
		return "", "", fmt.Errorf("failed to select user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return "", "", apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.rdb.Client().Del(ctx, refreshToken).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, err error) {
	userID, err := s.rdb.Client().Get(ctx, refreshToken).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", "", apperrors.ErrRefreshTokenExpired
		}

		return "", "", fmt.Errorf("failed to get refresh token: %w", err)
	}

	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse refresh token payload: %w", err)
	}

	user, err := s.userRepo.SelectUserByID(ctx, nil, uid)
	if err != nil {
		return "", "", fmt.Errorf("failed to select user: %w", err)
	}

	newAccessToken, err = jwt.NewToken(s.privateKey, s.accessTokenTTL,
		jwt.WithClaim(model.UserUIDKey, user.ID),
		jwt.WithClaim(model.UserEmailKey, user.Email),
		jwt.WithClaim(model.UserNameKey, user.Name),
		jwt.WithClaim(model.UserRoleKey, user.Role),
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	rdbPipe := s.rdb.Client().TxPipeline()
	newRefreshToken = uuid.New().String()

	rdbPipe.Del(ctx, refreshToken)
	rdbPipe.Set(ctx, newRefreshToken, strconv.FormatInt(user.ID, 10), s.refreshTokenTTL)

	if _, err := rdbPipe.Exec(ctx); err != nil {
		return "", "", fmt.Errorf("failed to exec transaction: %w", err)
	}

	return newAccessToken, newRefreshToken, nil
}

// TestLogin creates a throwaway account with a funded simulated wallet.
// Demo environments only.
func (s *AuthService) TestLogin(ctx context.Context) (accessToken, refreshToken string, err error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(gofakeit.Password(true, true, true, true, true, 15)), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate password hash: %w", err)
	}

	user := &model.User{
		Name:           gofakeit.Username(),
		Email:          gofakeit.Email(),
		HashedPassword: passHash,
		Role:           model.RoleVisitor,
		WalletAddress:  gofakeit.HexUint(160),
	}

	user, err = s.userRepo.InsertUser(ctx, nil, user)
	if err != nil {
		return "", "", fmt.Errorf("failed to insert test user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = jwt.NewToken(s.privateKey, s.accessTokenTTL,
		jwt.WithClaim(model.UserUIDKey, user.ID),
		jwt.WithClaim(model.UserEmailKey, user.Email),
		jwt.WithClaim(model.UserNameKey, user.Name),
		jwt.WithClaim(model.UserRoleKey, user.Role),
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken = uuid.New().String()

	if err := s.rdb.Client().Set(ctx, refreshToken, strconv.FormatInt(user.ID, 10), s.refreshTokenTTL).Err(); err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}
