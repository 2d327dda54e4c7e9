package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"note-app/src/config"
	"note-app/src/models"
	"note-app/src/repository"
)

// AuthService 認証サービスのインターフェース
type AuthService interface {
	Register(req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(req *models.LoginRequest) (*models.AuthResponse, error)
	RefreshToken(refreshToken string) (*models.AuthResponse, error)
}

// authService 認証サービスの実装
type authService struct {
	userRepo   repository.UserRepository
	jwtService JWTService
	config     *config.Config
}

// NewAuthService 認証サービスを作成
func NewAuthService(userRepo repository.UserRepository, jwtService JWTService, cfg *config.Config) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		config:     cfg,
	}
}

// Register 新規ユーザー登録
func (s *authService) Register(req *models.RegisterRequest) (*models.AuthResponse, error) {
	// メールアドレスの重複チェック
	exists, err := s.userRepo.IsEmailExists(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email already exists")
	}

	// ユーザー名の重複チェック
	exists, err = s.userRepo.IsUsernameExists(req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("username already exists")
	}

	// パスワードハッシュ化
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// ユーザー作成
	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// トークン生成
	return s.generateAuthResponse(user)
}

// Login ユーザーログイン
func (s *authService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	// ユーザー取得
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	// アカウント有効性チェック
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	// パスワード認証
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	// 最終ログイン時刻更新（失敗してもログインは継続）
	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		fmt.Printf("Warning: failed to update last login: %v\n", err)
	}

	// トークン生成
	return s.generateAuthResponse(user)
}

// RefreshToken リフレッシュトークンで新しいトークンを生成
func (s *authService) RefreshToken(refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	return s.generateAuthResponse(user)
}

// generateAuthResponse 認証レスポンスを生成
func (s *authService) generateAuthResponse(user *models.User) (*models.AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &models.AuthResponse{
		User:         user.ToPublic(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.Auth.JWTExpiresIn.Seconds()),
	}, nil
}
