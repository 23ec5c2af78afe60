// Package geoip resolves request IPs to coarse locations. The service ships
// with a static resolver; a real provider plugs in behind the same interface.
package geoip

import (
	"context"
)

type Location struct {
	Country string
	City    string
}

// Locator is invoked by the click workers before each click insert.
type Locator interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// StaticLocator returns a fixed location for every lookup.
type StaticLocator struct {
	Country string
	City    string
}

func NewStaticLocator() *StaticLocator {
	return &StaticLocator{Country: "US", City: "New York"}
}

func (l *StaticLocator) Locate(_ context.Context, _ string) (Location, error) {
	return Location{Country: l.Country, City: l.City}, nil
}
