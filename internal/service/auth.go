package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"newsnexus/internal/config"
	"newsnexus/internal/models"
)

// AuthService issues and validates bearer tokens for the route layer.
type AuthService struct {
	db       *gorm.DB
	logger   *zap.Logger
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(cfg config.AuthConfig, db *gorm.DB, logger *zap.Logger) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: jwt_secret is required")
	}
	ttl, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token_ttl: %w", err)
	}
	return &AuthService{
		db:       db,
		logger:   logger,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: ttl,
	}, nil
}

var ErrInvalidCredentials = errors.New("invalid email or password")

func (a *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.issueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (a *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", user.ID),
		"email": user.Email,
		"admin": user.IsAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(a.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthService) parseToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	var userID uint
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return userID, nil
}

// Middleware authenticates Bearer tokens and stores the user id on the
// request context.
func (a *AuthService) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		userID, err := a.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.logger.Warn("token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// BootstrapAdminUsers creates the configured admin accounts if they do not
// exist yet. The default password is meant to be changed on first login.
func (a *AuthService) BootstrapAdminUsers(ctx context.Context, cfg config.AdminConfig) error {
	for _, email := range cfg.BootstrapEmails {
		var existing models.User
		err := a.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup admin user %s: %w", email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash default password: %w", err)
		}
		user := models.User{
			Username: strings.Split(email, "@")[0],
			Email:    email,
			Password: string(hash),
			IsAdmin:  true,
		}
		if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("create admin user %s: %w", email, err)
		}
		a.logger.Info("created admin user", zap.String("email", email))
	}
	return nil
}
