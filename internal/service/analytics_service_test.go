package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/repository"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/Muntazir86/short-it/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRange_Presets(t *testing.T) {
	now := time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		period    string
		wantStart time.Time
		openStart bool
	}{
		{period: "day", wantStart: time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{period: "week", wantStart: now.AddDate(0, 0, -7)},
		{period: "month", wantStart: now.AddDate(0, -1, 0)},
		{period: "year", wantStart: now.AddDate(-1, 0, 0)},
		{period: "all", openStart: true},
		{period: "", wantStart: now.AddDate(0, -1, 0)}, // absent defaults to month
		{period: "bogus", openStart: true},             // unrecognized behaves like all
	}

	for _, tt := range tests {
		t.Run("period_"+tt.period, func(t *testing.T) {
			tr := service.ResolveRange(models.AnalyticsQuery{Period: tt.period}, now)
			if tt.openStart {
				assert.True(t, tr.Start.IsZero(), "must have no lower bound")
			} else {
				assert.Equal(t, tt.wantStart, tr.Start)
			}
			assert.True(t, tr.End.IsZero())
		})
	}
}

func TestResolveRange_ExplicitDatesOverride(t *testing.T) {
	now := time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	tr := service.ResolveRange(models.AnalyticsQuery{
		Period:    "day",
		StartDate: &start,
		EndDate:   &end,
	}, now)

	assert.Equal(t, start, tr.Start)
	assert.Equal(t, end, tr.End)
}

func setupAnalytics(t *testing.T) (service.AnalyticsService, *mocks.MockURLRepository, *mocks.MockClickRepository, *models.URL) {
	t.Helper()

	urlRepo := mocks.NewMockURLRepository()
	clickRepo := mocks.NewMockClickRepository()
	svc := service.NewAnalyticsService(urlRepo, clickRepo)

	u := &models.URL{
		UserID:      regularCaller.ID,
		OriginalURL: "https://example.com",
		ShortCode:   "abc123",
	}
	require.NoError(t, urlRepo.Create(context.Background(), u))
	clickRepo.SetOwner(u.ID, u.UserID)

	return svc, urlRepo, clickRepo, u
}

func recordClick(t *testing.T, repo *mocks.MockClickRepository, urlID string, at time.Time, referrer, country, browser, device string) {
	t.Helper()
	require.NoError(t, repo.Record(context.Background(), &models.Click{
		URLID:      urlID,
		ClickedAt:  at,
		Referrer:   referrer,
		Country:    country,
		Browser:    browser,
		DeviceType: device,
	}))
}

func TestAnalyticsService_URLAnalytics(t *testing.T) {
	svc, _, clickRepo, u := setupAnalytics(t)

	now := time.Now()
	recordClick(t, clickRepo, u.ID, now.Add(-time.Hour), "direct", "US", "Chrome", "desktop")
	recordClick(t, clickRepo, u.ID, now.Add(-2*time.Hour), "google.com", "US", "Firefox", "mobile")
	// Outside the month window, must not count.
	recordClick(t, clickRepo, u.ID, now.AddDate(0, -2, 0), "direct", "DE", "Safari", "desktop")

	got, err := svc.URLAnalytics(context.Background(), regularCaller, u.ID, models.AnalyticsQuery{Period: "month"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalClicks)
	assert.Len(t, got.Devices, 2)
}

func TestAnalyticsService_URLAnalytics_PeriodAll(t *testing.T) {
	svc, _, clickRepo, u := setupAnalytics(t)

	now := time.Now()
	recordClick(t, clickRepo, u.ID, now.Add(-time.Hour), "direct", "US", "Chrome", "desktop")
	recordClick(t, clickRepo, u.ID, now.AddDate(-2, 0, 0), "direct", "US", "Chrome", "desktop")

	got, err := svc.URLAnalytics(context.Background(), regularCaller, u.ID, models.AnalyticsQuery{Period: "all"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalClicks, "period=all imposes no lower bound")
}

func TestAnalyticsService_URLAnalytics_NotOwner(t *testing.T) {
	svc, _, _, u := setupAnalytics(t)

	_, err := svc.URLAnalytics(context.Background(), premiumCaller, u.ID, models.AnalyticsQuery{})
	assert.ErrorIs(t, err, service.ErrNotOwner)
}

func TestAnalyticsService_URLAnalytics_UnknownURL(t *testing.T) {
	svc, _, _, _ := setupAnalytics(t)

	_, err := svc.URLAnalytics(context.Background(), regularCaller, "missing", models.AnalyticsQuery{})
	assert.ErrorIs(t, err, repository.ErrURLNotFound)
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	svc, urlRepo, clickRepo, u := setupAnalytics(t)

	second := &models.URL{
		UserID:      regularCaller.ID,
		OriginalURL: "https://example.com/two",
		ShortCode:   "def456",
	}
	require.NoError(t, urlRepo.Create(context.Background(), second))
	clickRepo.SetOwner(second.ID, second.UserID)

	now := time.Now()
	recordClick(t, clickRepo, u.ID, now.Add(-time.Hour), "direct", "US", "Chrome", "desktop")
	recordClick(t, clickRepo, u.ID, now.Add(-2*time.Hour), "google.com", "DE", "Chrome", "desktop")
	recordClick(t, clickRepo, second.ID, now.Add(-3*time.Hour), "direct", "US", "Firefox", "mobile")

	got, err := svc.Dashboard(context.Background(), regularCaller)

	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalURLs)
	assert.Equal(t, int64(3), got.TotalClicks)
	require.NotEmpty(t, got.TopURLs)
	assert.Equal(t, u.ID, got.TopURLs[0].ID, "most clicked url first")
}

// The caller's identity scopes every dashboard number.
func TestAnalyticsService_Dashboard_ScopedToCaller(t *testing.T) {
	svc, urlRepo, clickRepo, u := setupAnalytics(t)

	other := &models.URL{
		UserID:      premiumCaller.ID,
		OriginalURL: "https://example.com/other",
		ShortCode:   "zzz999",
	}
	require.NoError(t, urlRepo.Create(context.Background(), other))
	clickRepo.SetOwner(other.ID, other.UserID)

	now := time.Now()
	recordClick(t, clickRepo, u.ID, now.Add(-time.Hour), "direct", "US", "Chrome", "desktop")
	recordClick(t, clickRepo, other.ID, now.Add(-time.Hour), "direct", "US", "Chrome", "desktop")

	got, err := svc.Dashboard(context.Background(), regularCaller)

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalURLs)
	assert.Equal(t, int64(1), got.TotalClicks)
}
