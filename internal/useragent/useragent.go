// Package useragent classifies raw User-Agent strings into coarse
// browser, OS and device-type buckets via substring matching.
package useragent

import (
	"strings"
)

type Info struct {
	Browser    string
	OS         string
	DeviceType string
}

// Parse applies first-match-wins substring rules. The match order is part of
// the contract: Edge and Chrome both advertise "Safari", and Android user
// agents carry "Linux", so reordering the checks changes the buckets.
func Parse(ua string) Info {
	return Info{
		Browser:    browser(ua),
		OS:         operatingSystem(ua),
		DeviceType: deviceType(ua),
	}
}

func browser(ua string) string {
	switch {
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	case strings.Contains(ua, "MSIE") || strings.Contains(ua, "Trident/"):
		return "Internet Explorer"
	default:
		return "Other"
	}
}

func operatingSystem(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac OS"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iOS"), strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		return "iOS"
	default:
		return "Other"
	}
}

func deviceType(ua string) string {
	switch {
	case strings.Contains(ua, "Mobile"), strings.Contains(ua, "Android"), strings.Contains(ua, "iPhone"):
		return "mobile"
	case strings.Contains(ua, "iPad") || strings.Contains(ua, "Tablet"):
		return "tablet"
	default:
		return "desktop"
	}
}
