package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/internal/tenantctx"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

// Service issues credentials and manages user affiliation.
type Service struct {
	db     *gorm.DB
	tokens *jwtutil.JWTUtil
}

// NewService creates an auth service.
func NewService(db *gorm.DB, tokens *jwtutil.JWTUtil) *Service {
	return &Service{db: db, tokens: tokens}
}

// HashPassword hashes a plain-text password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login authenticates email/password against the tenant bound to ctx.
// An unaffiliated user is affiliated to that tenant permanently; a user
// affiliated elsewhere is refused.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromContext(ctx)

	tenantID, err := tenantctx.Current(ctx)
	if err != nil {
		return nil, err
	}

	email = normalizeEmail(email)

	defer prometheus.TrackDBOperation("user", "query")()
	var user model.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("Login for unknown email", zap.String("email", email))
		prometheus.RecordAuth("login", "user_not_found")
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive {
		log.Warn("Login for inactive user", zap.String("user_id", user.ID))
		prometheus.RecordAuth("login", "user_inactive")
		return nil, apperr.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Warn("Invalid password", zap.String("user_id", user.ID))
		prometheus.RecordAuth("login", "invalid_password")
		return nil, apperr.ErrInvalidCredentials
	}

	if err := s.affiliate(ctx, &user, tenantID); err != nil {
		log.Warn("Tenant access denied",
			zap.String("user_id", user.ID),
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		prometheus.RecordAuth("login", apperr.Code(err))
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, tenantID, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	log.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", tenantID))
	prometheus.RecordAuth("login", "ok")

	return &LoginResult{AccessToken: token, User: &user}, nil
}

// affiliate commits an unaffiliated user to tenantID. The update only
// matches a NULL affiliation, so of two concurrent first logins for
// different tenants exactly one wins and the other is refused.
func (s *Service) affiliate(ctx context.Context, user *model.User, tenantID string) error {
	if !user.IsAffiliated() {
		result := s.db.WithContext(ctx).Model(&model.User{}).
			Where("id = ? AND tenant_id IS NULL", user.ID).
			Update("tenant_id", tenantID)
		if result.Error != nil {
			return fmt.Errorf("affiliate user: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			// someone else affiliated the user first
			if err := s.db.WithContext(ctx).Where("id = ?", user.ID).First(user).Error; err != nil {
				return fmt.Errorf("reload user: %w", err)
			}
		} else {
			user.TenantID = &tenantID
			logger.FromContext(ctx).Info("User affiliated with tenant",
				zap.String("user_id", user.ID),
				zap.String("tenant_id", tenantID))
		}
	}

	if user.TenantID == nil || *user.TenantID != tenantID {
		return fmt.Errorf("%w: %s", apperr.ErrUserAlreadyAffiliatedElsewhere, tenantID)
	}
	return nil
}

// Register creates a user affiliated with the tenant bound to ctx, or
// affiliates an existing unaffiliated user with the same email.
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	log := logger.FromContext(ctx)

	tenantID, err := tenantctx.Current(ctx)
	if err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") || password == "" {
		prometheus.RecordAuth("register", "invalid_input")
		return nil, fmt.Errorf("%w: a valid email and a password are required", apperr.ErrInvalidInput)
	}

	defer prometheus.TrackDBOperation("user", "insert")()

	var user model.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hashed, err := HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user = model.User{
				Email:    email,
				Password: hashed,
				TenantID: &tenantID,
				IsActive: true,
				Roles:    []string{model.RoleUser},
			}
			return tx.Create(&user).Error
		case err != nil:
			return err
		case !user.IsAffiliated():
			user.TenantID = &tenantID
			return tx.Model(&user).Update("tenant_id", tenantID).Error
		case *user.TenantID == tenantID:
			return fmt.Errorf("%w: %s", apperr.ErrUserAlreadyExists, email)
		default:
			return fmt.Errorf("%w: %s", apperr.ErrUserAlreadyAffiliatedElsewhere, tenantID)
		}
	})
	if err != nil {
		log.Warn("Registration refused", zap.String("email", email), zap.Error(err))
		prometheus.RecordAuth("register", apperr.Code(err))
		return nil, err
	}

	log.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", tenantID))
	prometheus.RecordAuth("register", "ok")
	return &user, nil
}
