package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Muntazir86/short-it/internal/auth"
	"github.com/Muntazir86/short-it/internal/config"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidURL         = errors.New("invalid url")
	ErrInvalidCode        = errors.New("invalid custom code")
	ErrPremiumRequired    = errors.New("premium account required")
	ErrNotOwner           = errors.New("url belongs to another user")
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")
)

const (
	charset        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxGenAttempts = 10
	cacheTTL       = 24 * time.Hour
)

var customCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// Codes that collide with route segments or invite abuse.
var reservedCodes = map[string]bool{
	"api":       true,
	"admin":     true,
	"auth":      true,
	"login":     true,
	"register":  true,
	"metrics":   true,
	"health":    true,
	"dashboard": true,
	"analytics": true,
	"urls":      true,
	"qrcode":    true,
}

type URLService interface {
	Create(ctx context.Context, caller auth.Identity, input *models.CreateURLInput) (*models.URL, error)
	List(ctx context.Context, input models.ListURLsInput) ([]models.URL, int64, error)
	GetByShortCode(ctx context.Context, code string) (*models.URL, error)
	GetOwnedByShortCode(ctx context.Context, caller auth.Identity, code string) (*models.URL, error)
	Resolve(ctx context.Context, code string) (*models.URL, error)
	Update(ctx context.Context, caller auth.Identity, id string, input *models.UpdateURLInput) (*models.URL, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
}

type urlService struct {
	urlRepo   repository.URLRepository
	cacheRepo repository.CacheRepository
	cfg       config.ShortenerConfig
	logger    *zap.Logger
}

func NewURLService(urlRepo repository.URLRepository, cacheRepo repository.CacheRepository, cfg config.ShortenerConfig, logger *zap.Logger) URLService {
	return &urlService{
		urlRepo:   urlRepo,
		cacheRepo: cacheRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *urlService) Create(ctx context.Context, caller auth.Identity, input *models.CreateURLInput) (*models.URL, error) {
	if err := validateURL(input.OriginalURL); err != nil {
		return nil, err
	}

	expiry := s.cfg.DefaultExpiry
	if caller.IsPremium {
		expiry = s.cfg.PremiumExpiry
	}
	expiresAt := time.Now().Add(expiry)

	u := &models.URL{
		UserID:      caller.ID,
		OriginalURL: input.OriginalURL,
		IsPrivate:   input.IsPrivate,
		ExpiresAt:   &expiresAt,
	}

	if input.CustomCode != "" {
		if !caller.IsPremium {
			return nil, ErrPremiumRequired
		}
		if err := validateCustomCode(input.CustomCode); err != nil {
			return nil, err
		}
		u.ShortCode = input.CustomCode

		// Custom codes never retry: the caller picked the value, a
		// collision is their 409 to resolve.
		if err := s.urlRepo.Create(ctx, u); err != nil {
			return nil, err
		}
	} else {
		if err := s.createWithGeneratedCode(ctx, u); err != nil {
			return nil, err
		}
	}

	if err := s.cacheRepo.Set(ctx, u.ShortCode, u, s.cacheTTLFor(u)); err != nil {
		s.logger.Warn("failed to cache url", zap.String("short_code", u.ShortCode), zap.Error(err))
	}

	return u, nil
}

// createWithGeneratedCode retries generation on collision. The unique
// constraint in storage is the backstop for concurrent winners.
func (s *urlService) createWithGeneratedCode(ctx context.Context, u *models.URL) error {
	for attempt := 0; attempt < maxGenAttempts; attempt++ {
		code, err := s.generateShortCode()
		if err != nil {
			return fmt.Errorf("failed to generate code: %w", err)
		}

		exists, err := s.urlRepo.ExistsByShortCode(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		u.ShortCode = code
		err = s.urlRepo.Create(ctx, u)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrCodeExists) {
			continue
		}
		return err
	}

	return ErrCodeSpaceExhausted
}

func (s *urlService) List(ctx context.Context, input models.ListURLsInput) ([]models.URL, int64, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 || input.Limit > 100 {
		input.Limit = 10
	}
	return s.urlRepo.ListByUser(ctx, input)
}

// GetByShortCode serves the public details route. Private URLs are
// only visible to their owner.
func (s *urlService) GetByShortCode(ctx context.Context, code string) (*models.URL, error) {
	u, err := s.urlRepo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if u.IsPrivate {
		caller, ok := auth.FromContext(ctx)
		if !ok || caller.ID != u.UserID {
			return nil, ErrNotOwner
		}
	}
	return u, nil
}

func (s *urlService) GetOwnedByShortCode(ctx context.Context, caller auth.Identity, code string) (*models.URL, error) {
	u, err := s.urlRepo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if u.UserID != caller.ID {
		return nil, ErrNotOwner
	}
	return u, nil
}

// Resolve looks up a URL for redirect, cache first.
func (s *urlService) Resolve(ctx context.Context, code string) (*models.URL, error) {
	if u, err := s.cacheRepo.Get(ctx, code); err == nil {
		return u, nil
	}

	u, err := s.urlRepo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.Set(ctx, code, u, s.cacheTTLFor(u)); err != nil {
		s.logger.Warn("failed to cache url", zap.String("short_code", code), zap.Error(err))
	}

	return u, nil
}

func (s *urlService) Update(ctx context.Context, caller auth.Identity, id string, input *models.UpdateURLInput) (*models.URL, error) {
	if !caller.IsPremium {
		return nil, ErrPremiumRequired
	}

	u, err := s.urlRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.UserID != caller.ID {
		return nil, ErrNotOwner
	}

	oldCode := u.ShortCode
	if input.CustomCode != nil && *input.CustomCode != oldCode {
		if err := validateCustomCode(*input.CustomCode); err != nil {
			return nil, err
		}
		u.ShortCode = *input.CustomCode
	}
	if input.IsPrivate != nil {
		u.IsPrivate = *input.IsPrivate
	}
	if input.ExpiresAt != nil {
		u.ExpiresAt = input.ExpiresAt
	}

	if err := s.urlRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	// Stale cache entries would keep redirecting the old code.
	if err := s.cacheRepo.Delete(ctx, oldCode); err != nil {
		s.logger.Warn("failed to invalidate cache", zap.String("short_code", oldCode), zap.Error(err))
	}

	return u, nil
}

func (s *urlService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	u, err := s.urlRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.UserID != caller.ID {
		return ErrNotOwner
	}

	if err := s.cacheRepo.Delete(ctx, u.ShortCode); err != nil {
		s.logger.Warn("failed to invalidate cache", zap.String("short_code", u.ShortCode), zap.Error(err))
	}

	return s.urlRepo.Delete(ctx, id)
}

func (s *urlService) cacheTTLFor(u *models.URL) time.Duration {
	ttl := cacheTTL
	if u.ExpiresAt != nil {
		if until := time.Until(*u.ExpiresAt); until < ttl {
			ttl = until
		}
	}
	return ttl
}

func (s *urlService) generateShortCode() (string, error) {
	length := s.cfg.CodeLength
	if length <= 0 {
		length = 6
	}

	result := make([]byte, length)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}
	if parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

func validateCustomCode(code string) error {
	if !customCodePattern.MatchString(code) {
		return ErrInvalidCode
	}
	// The pattern admits uppercase, and routes match case-sensitively,
	// but "API" squatting on /api is still off the table.
	if reservedCodes[strings.ToLower(code)] {
		return ErrInvalidCode
	}
	return nil
}
