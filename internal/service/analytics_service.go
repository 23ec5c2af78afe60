package service

import (
	"context"
	"time"

	"github.com/Muntazir86/short-it/internal/auth"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/repository"
)

const (
	topReferrersPerURL = 10
	topCountriesPerURL = 10
	topBrowsersPerURL  = 10
	dashboardTopN      = 5
	dashboardDays      = 7
)

type AnalyticsService interface {
	URLAnalytics(ctx context.Context, caller auth.Identity, urlID string, query models.AnalyticsQuery) (*models.URLAnalytics, error)
	Dashboard(ctx context.Context, caller auth.Identity) (*models.Dashboard, error)
}

type analyticsService struct {
	urlRepo   repository.URLRepository
	clickRepo repository.ClickRepository
	now       func() time.Time
}

func NewAnalyticsService(urlRepo repository.URLRepository, clickRepo repository.ClickRepository) AnalyticsService {
	return &analyticsService{
		urlRepo:   urlRepo,
		clickRepo: clickRepo,
		now:       time.Now,
	}
}

// ResolveRange turns a period preset into time bounds. Explicit
// start/end dates override the preset. An absent period means month;
// "all" and unrecognized presets leave the range open.
func ResolveRange(query models.AnalyticsQuery, now time.Time) repository.TimeRange {
	tr := repository.TimeRange{}

	switch query.Period {
	case "day":
		tr.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		tr.Start = now.AddDate(0, 0, -7)
	case "month", "":
		tr.Start = now.AddDate(0, -1, 0)
	case "year":
		tr.Start = now.AddDate(-1, 0, 0)
	default:
		// "all" and anything unrecognized: no lower bound
	}

	if query.StartDate != nil {
		tr.Start = *query.StartDate
	}
	if query.EndDate != nil {
		tr.End = *query.EndDate
	}

	return tr
}

func (s *analyticsService) URLAnalytics(ctx context.Context, caller auth.Identity, urlID string, query models.AnalyticsQuery) (*models.URLAnalytics, error) {
	u, err := s.urlRepo.GetByID(ctx, urlID)
	if err != nil {
		return nil, err
	}
	if u.UserID != caller.ID {
		return nil, ErrNotOwner
	}

	tr := ResolveRange(query, s.now())

	total, err := s.clickRepo.CountClicks(ctx, urlID, tr)
	if err != nil {
		return nil, err
	}
	byDate, err := s.clickRepo.ClicksByDate(ctx, urlID, tr)
	if err != nil {
		return nil, err
	}
	referrers, err := s.clickRepo.TopReferrers(ctx, urlID, tr, topReferrersPerURL)
	if err != nil {
		return nil, err
	}
	countries, err := s.clickRepo.TopCountries(ctx, urlID, tr, topCountriesPerURL)
	if err != nil {
		return nil, err
	}
	browsers, err := s.clickRepo.TopBrowsers(ctx, urlID, tr, topBrowsersPerURL)
	if err != nil {
		return nil, err
	}
	devices, err := s.clickRepo.DeviceBreakdown(ctx, urlID, tr)
	if err != nil {
		return nil, err
	}

	return &models.URLAnalytics{
		TotalClicks:  total,
		ClicksByDate: byDate,
		Referrers:    referrers,
		Locations:    countries,
		Devices:      devices,
		Browsers:     browsers,
	}, nil
}

// Dashboard aggregates the caller's account. Totals are all-time;
// clicksOverTime covers the trailing week.
func (s *analyticsService) Dashboard(ctx context.Context, caller auth.Identity) (*models.Dashboard, error) {
	all := repository.TimeRange{}
	lastWeek := repository.TimeRange{Start: s.now().AddDate(0, 0, -dashboardDays)}

	totalURLs, err := s.clickRepo.CountURLsByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	totalClicks, err := s.clickRepo.CountClicksByUser(ctx, caller.ID, all)
	if err != nil {
		return nil, err
	}
	topURLs, err := s.clickRepo.TopURLsByUser(ctx, caller.ID, all, dashboardTopN)
	if err != nil {
		return nil, err
	}
	overTime, err := s.clickRepo.ClicksByDateForUser(ctx, caller.ID, lastWeek)
	if err != nil {
		return nil, err
	}
	referrers, err := s.clickRepo.TopReferrersByUser(ctx, caller.ID, all, dashboardTopN)
	if err != nil {
		return nil, err
	}
	locations, err := s.clickRepo.TopCountriesByUser(ctx, caller.ID, all, dashboardTopN)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		TotalURLs:      totalURLs,
		TotalClicks:    totalClicks,
		TopURLs:        topURLs,
		ClicksOverTime: overTime,
		TopReferrers:   referrers,
		TopLocations:   locations,
	}, nil
}
