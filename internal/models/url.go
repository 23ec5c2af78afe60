package models

import (
	"time"
)

type URL struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	OriginalURL string     `json:"originalUrl"`
	ShortCode   string     `json:"shortCode"`
	IsPrivate   bool       `json:"isPrivate"`
	Clicks      int64      `json:"clicks"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateURLInput struct {
	OriginalURL string `json:"originalUrl" binding:"required"`
	CustomCode  string `json:"customCode,omitempty"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
}

type UpdateURLInput struct {
	CustomCode *string    `json:"customCode,omitempty"`
	IsPrivate  *bool      `json:"isPrivate,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// ListURLsInput carries pagination and ordering for a user's URL listing.
// SortBy and Order are validated against a whitelist in the repository.
type ListURLsInput struct {
	UserID string
	Page   int
	Limit  int
	SortBy string
	Order  string
}

type Pagination struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type URLPage struct {
	URLs       []*URLRecord `json:"urls"`
	Pagination Pagination   `json:"pagination"`
}

// URLRecord is the API projection of a URL with its resolved short link.
type URLRecord struct {
	ID          string     `json:"id"`
	OriginalURL string     `json:"originalUrl"`
	ShortCode   string     `json:"shortCode"`
	ShortURL    string     `json:"shortUrl"`
	IsPrivate   bool       `json:"isPrivate"`
	Clicks      int64      `json:"clicks"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (u *URL) Record(baseURL string) *URLRecord {
	return &URLRecord{
		ID:          u.ID,
		OriginalURL: u.OriginalURL,
		ShortCode:   u.ShortCode,
		ShortURL:    baseURL + "/" + u.ShortCode,
		IsPrivate:   u.IsPrivate,
		Clicks:      u.Clicks,
		ExpiresAt:   u.ExpiresAt,
		CreatedAt:   u.CreatedAt,
	}
}

// Expired reports whether the URL has an expiration timestamp in the past.
func (u *URL) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && u.ExpiresAt.Before(now)
}
