package models

import (
	"time"
)

type Click struct {
	ID         int64     `json:"id"`
	URLID      string    `json:"urlId"`
	ClickedAt  time.Time `json:"clickedAt"`
	IPAddress  string    `json:"ipAddress"`
	Country    string    `json:"country"`
	City       string    `json:"city"`
	Referrer   string    `json:"referrer"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	DeviceType string    `json:"deviceType"`
}

// ClickEvent is the raw redirect event handed to the click processor.
// User-agent parsing and geolocation happen on the worker side.
type ClickEvent struct {
	URLID      string
	ShortCode  string
	IPAddress  string
	UserAgent  string
	Referrer   string
	OccurredAt time.Time
}
