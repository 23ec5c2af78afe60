package models

import (
	"time"
)

// AnalyticsQuery resolves a named period or an explicit date range into the
// bounds applied to click aggregates. Zero-value Start means no lower bound.
type AnalyticsQuery struct {
	Period    string
	StartDate *time.Time
	EndDate   *time.Time
}

type DateClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type ReferrerClicks struct {
	Source string `json:"source"`
	Clicks int64  `json:"clicks"`
}

type CountryClicks struct {
	Country string `json:"country"`
	Clicks  int64  `json:"clicks"`
}

type DeviceClicks struct {
	Type   string `json:"type"`
	Clicks int64  `json:"clicks"`
}

type BrowserClicks struct {
	Name   string `json:"name"`
	Clicks int64  `json:"clicks"`
}

type URLAnalytics struct {
	TotalClicks  int64            `json:"totalClicks"`
	ClicksByDate []DateClicks     `json:"clicksByDate"`
	Referrers    []ReferrerClicks `json:"referrers"`
	Locations    []CountryClicks  `json:"locations"`
	Devices      []DeviceClicks   `json:"devices"`
	Browsers     []BrowserClicks  `json:"browsers"`
}

type TopURL struct {
	ID        string `json:"id"`
	ShortCode string `json:"shortCode"`
	ShortURL  string `json:"shortUrl"`
	Clicks    int64  `json:"clicks"`
}

type Dashboard struct {
	TotalURLs      int64            `json:"totalUrls"`
	TotalClicks    int64            `json:"totalClicks"`
	TopURLs        []TopURL         `json:"topUrls"`
	ClicksOverTime []DateClicks     `json:"clicksOverTime"`
	TopReferrers   []ReferrerClicks `json:"topReferrers"`
	TopLocations   []CountryClicks  `json:"topLocations"`
}
