// Package mocks provides in-memory fakes of the repository interfaces
// for service tests.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/repository"
)

// MockUserRepository implements repository.UserRepository.
type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[string]*models.User // id -> user
	nextID int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	user.ID = fmt.Sprintf("user-%d", m.nextID)
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

// MockURLRepository implements repository.URLRepository.
type MockURLRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.URL
	byCode map[string]*models.URL
	nextID int
}

func NewMockURLRepository() *MockURLRepository {
	return &MockURLRepository{
		byID:   make(map[string]*models.URL),
		byCode: make(map[string]*models.URL),
		nextID: 1,
	}
}

func (m *MockURLRepository) Create(_ context.Context, url *models.URL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byCode[url.ShortCode]; exists {
		return repository.ErrCodeExists
	}

	url.ID = fmt.Sprintf("url-%d", m.nextID)
	m.nextID++
	url.CreatedAt = time.Now()
	url.UpdatedAt = url.CreatedAt
	m.byID[url.ID] = url
	m.byCode[url.ShortCode] = url
	return nil
}

// Lookups return copies so callers mutating the result do not reach
// into the stored rows, matching real database behavior.
func (m *MockURLRepository) GetByShortCode(_ context.Context, code string) (*models.URL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byCode[code]
	if !ok {
		return nil, repository.ErrURLNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockURLRepository) GetByID(_ context.Context, id string) (*models.URL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrURLNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockURLRepository) ExistsByShortCode(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byCode[code]
	return ok, nil
}

func (m *MockURLRepository) ListByUser(_ context.Context, input models.ListURLsInput) ([]models.URL, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var owned []models.URL
	for _, u := range m.byID {
		if u.UserID == input.UserID {
			owned = append(owned, *u)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	total := int64(len(owned))
	start := (input.Page - 1) * input.Limit
	if start >= len(owned) {
		return nil, total, nil
	}
	end := start + input.Limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], total, nil
}

func (m *MockURLRepository) Update(_ context.Context, url *models.URL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[url.ID]
	if !ok {
		return repository.ErrURLNotFound
	}
	if other, exists := m.byCode[url.ShortCode]; exists && other.ID != url.ID {
		return repository.ErrCodeExists
	}

	delete(m.byCode, existing.ShortCode)
	url.UpdatedAt = time.Now()
	m.byID[url.ID] = url
	m.byCode[url.ShortCode] = url
	return nil
}

func (m *MockURLRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return repository.ErrURLNotFound
	}
	delete(m.byCode, u.ShortCode)
	delete(m.byID, id)
	return nil
}

func (m *MockURLRepository) IncrementClicks(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return repository.ErrURLNotFound
	}
	u.Clicks++
	return nil
}

// MockCacheRepository implements repository.CacheRepository.
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.URL
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{cache: make(map[string]*models.URL)}
}

func (m *MockCacheRepository) Get(_ context.Context, code string) (*models.URL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.cache[code]
	if !ok {
		return nil, repository.ErrURLNotFound
	}
	return u, nil
}

func (m *MockCacheRepository) Set(_ context.Context, code string, url *models.URL, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[code] = url
	return nil
}

func (m *MockCacheRepository) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, code)
	return nil
}

// MockClickRepository implements repository.ClickRepository over a
// plain click slice, computing aggregates on demand.
type MockClickRepository struct {
	mu     sync.RWMutex
	clicks []*models.Click
	owners map[string]string // url id -> user id
	nextID int64
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{
		owners: make(map[string]string),
		nextID: 1,
	}
}

// SetOwner registers url ownership for the per-user aggregates.
func (m *MockClickRepository) SetOwner(urlID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[urlID] = userID
}

func (m *MockClickRepository) Record(_ context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	click.ID = m.nextID
	m.nextID++
	m.clicks = append(m.clicks, click)
	return nil
}

func (m *MockClickRepository) Clicks() []*models.Click {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Click(nil), m.clicks...)
}

func (m *MockClickRepository) inRange(c *models.Click, tr repository.TimeRange) bool {
	if !tr.Start.IsZero() && c.ClickedAt.Before(tr.Start) {
		return false
	}
	if !tr.End.IsZero() && c.ClickedAt.After(tr.End) {
		return false
	}
	return true
}

func (m *MockClickRepository) CountClicks(_ context.Context, urlID string, tr repository.TimeRange) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, c := range m.clicks {
		if c.URLID == urlID && m.inRange(c, tr) {
			total++
		}
	}
	return total, nil
}

func (m *MockClickRepository) ClicksByDate(_ context.Context, urlID string, tr repository.TimeRange) ([]models.DateClicks, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.groupByDate(func(c *models.Click) bool {
		return c.URLID == urlID && m.inRange(c, tr)
	}), nil
}

func (m *MockClickRepository) TopReferrers(_ context.Context, urlID string, tr repository.TimeRange, limit int) ([]models.ReferrerClicks, error) {
	counts := m.groupBy(func(c *models.Click) (string, bool) {
		return c.Referrer, c.URLID == urlID && m.inRange(c, tr)
	}, limit)

	out := make([]models.ReferrerClicks, 0, len(counts))
	for _, kv := range counts {
		out = append(out, models.ReferrerClicks{Source: kv.key, Clicks: kv.count})
	}
	return out, nil
}

func (m *MockClickRepository) TopCountries(_ context.Context, urlID string, tr repository.TimeRange, limit int) ([]models.CountryClicks, error) {
	counts := m.groupBy(func(c *models.Click) (string, bool) {
		return c.Country, c.URLID == urlID && m.inRange(c, tr)
	}, limit)

	out := make([]models.CountryClicks, 0, len(counts))
	for _, kv := range counts {
		out = append(out, models.CountryClicks{Country: kv.key, Clicks: kv.count})
	}
	return out, nil
}

func (m *MockClickRepository) TopBrowsers(_ context.Context, urlID string, tr repository.TimeRange, limit int) ([]models.BrowserClicks, error) {
	counts := m.groupBy(func(c *models.Click) (string, bool) {
		return c.Browser, c.URLID == urlID && m.inRange(c, tr)
	}, limit)

	out := make([]models.BrowserClicks, 0, len(counts))
	for _, kv := range counts {
		out = append(out, models.BrowserClicks{Name: kv.key, Clicks: kv.count})
	}
	return out, nil
}

func (m *MockClickRepository) DeviceBreakdown(_ context.Context, urlID string, tr repository.TimeRange) ([]models.DeviceClicks, error) {
	counts := m.groupBy(func(c *models.Click) (string, bool) {
		return c.DeviceType, c.URLID == urlID && m.inRange(c, tr)
	}, 0)

	out := make([]models.DeviceClicks, 0, len(counts))
	for _, kv := range counts {
		out = append(out, models.DeviceClicks{Type: kv.key, Clicks: kv.count})
	}
	return out, nil
}

func (m *MockClickRepository) CountURLsByUser(_ context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, owner := range m.owners {
		if owner == userID {
			total++
		}
	}
	return total, nil
}

func (m *MockClickRepository) CountClicksByUser(_ context.Context, userID string, tr repository.TimeRange) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, c := range m.clicks {
		if m.owners[c.URLID] == userID && m.inRange(c, tr) {
			total++
		}
	}
	return total, nil
}

func (m *MockClickRepository) TopURLsByUser(_ context.Context, userID string, tr repository.TimeRange, limit int) ([]models.TopURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for urlID, owner := range m.owners {
		if owner == userID {
			counts[urlID] = 0
		}
	}
	for _, c := range m.clicks {
		if m.owners[c.URLID] == userID && m.inRange(c, tr) {
			counts[c.URLID]++
		}
	}

	var top []models.TopURL
	for urlID, n := range counts {
		top = append(top, models.TopURL{ID: urlID, Clicks: n})
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Clicks > top[j].Clicks })
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (m *MockClickRepository) ClicksByDateForUser(_ context.Context, userID string, tr repository.TimeRange) ([]models.DateClicks, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.groupByDate(func(c *models.Click) bool {
		return m.owners[c.URLID] == userID && m.inRange(c, tr)
	}), nil
}

func (m *MockClickRepository) TopReferrersByUser(_ context.Context, userID string, tr repository.TimeRange, limit int) ([]models.ReferrerClicks, error) {
	counts := m.groupBy(func(c *models.Click) (string, bool) {
		return c.Referrer, m.owners[c.URLID] == userID && m.inRange(c, tr)
	}, limit)

	out := make([]models.ReferrerClicks, 0, len(counts))
	for _, kv := range counts {
		out = append(out, models.ReferrerClicks{Source: kv.key, Clicks: kv.count})
	}
	return out, nil
}

func (m *MockClickRepository) TopCountriesByUser(_ context.Context, userID string, tr repository.TimeRange, limit int) ([]models.CountryClicks, error) {
	counts := m.groupBy(func(c *models.Click) (string, bool) {
		return c.Country, m.owners[c.URLID] == userID && m.inRange(c, tr)
	}, limit)

	out := make([]models.CountryClicks, 0, len(counts))
	for _, kv := range counts {
		out = append(out, models.CountryClicks{Country: kv.key, Clicks: kv.count})
	}
	return out, nil
}

type keyCount struct {
	key   string
	count int64
}

func (m *MockClickRepository) groupBy(classify func(*models.Click) (string, bool), limit int) []keyCount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, c := range m.clicks {
		if key, ok := classify(c); ok {
			counts[key]++
		}
	}

	out := make([]keyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, keyCount{key: k, count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].count > out[j].count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *MockClickRepository) groupByDate(match func(*models.Click) bool) []models.DateClicks {
	counts := make(map[string]int64)
	for _, c := range m.clicks {
		if match(c) {
			counts[c.ClickedAt.Format("2006-01-02")]++
		}
	}

	out := make([]models.DateClicks, 0, len(counts))
	for date, n := range counts {
		out = append(out, models.DateClicks{Date: date, Clicks: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
