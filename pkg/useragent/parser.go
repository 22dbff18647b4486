package useragent

import (
	"fmt"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser wraps the User-Agent parser with enhanced device type detection.
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information.
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
	Raw        string // Original User-Agent string
}

// NewParser creates a new User-Agent parser instance. When regexFilePath
// is empty, the definitions compiled into uap-go are used, so the parser
// works without any external asset.
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	var (
		parser *uaparser.Parser
		err    error
	)

	if regexFilePath == "" {
		parser = uaparser.NewFromSaved()
		log.Info("User-Agent parser initialized with embedded definitions")
	} else {
		parser, err = uaparser.New(regexFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create User-Agent parser from %s: %w", regexFilePath, err)
		}
		log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))
	}

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// ParseUserAgent parses a User-Agent string and returns detailed device
// information. Unrecognized input degrades to "unknown" fields, never an
// error.
func (p *Parser) ParseUserAgent(userAgent string) *DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return &DeviceInfo{
			DeviceType: "unknown",
			Browser:    "unknown",
			OS:         "unknown",
			Raw:        userAgent,
		}
	}

	client := p.parser.Parse(userAgent)

	info := &DeviceInfo{
		Browser: formatFamily(client.UserAgent.Family),
		OS:      formatFamily(client.Os.Family),
		Raw:     userAgent,
	}
	info.DeviceType = p.determineDeviceType(client, userAgent)

	p.log.Debug("parsed User-Agent",
		zap.String("device_type", info.DeviceType),
		zap.String("browser", info.Browser),
		zap.String("os", info.OS),
	)

	return info
}

// determineDeviceType classifies the client as bot, tablet, mobile,
// desktop or unknown, checking the most specific signals first.
func (p *Parser) determineDeviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client, userAgent) {
		return "bot"
	}

	deviceFamily := client.Device.Family
	if deviceFamily != "" && deviceFamily != "Other" {
		if isTabletDevice(deviceFamily) {
			return "tablet"
		}
		if isMobileDevice(deviceFamily) {
			return "mobile"
		}
	}

	osFamily := client.Os.Family
	if isMobileOS(osFamily) {
		if isTabletOS(osFamily, userAgent) {
			return "tablet"
		}
		return "mobile"
	}

	if isDesktopOS(osFamily) {
		return "desktop"
	}

	return "unknown"
}

func isBot(client *uaparser.Client, userAgent string) bool {
	botIndicators := []string{
		"Googlebot", "Bingbot", "Slurp", "DuckDuckBot", "Baiduspider",
		"YandexBot", "facebookexternalhit", "Twitterbot", "LinkedInBot",
		"WhatsApp", "Telegram", "bot", "crawler", "spider", "scraper",
	}

	for _, indicator := range botIndicators {
		if containsFold(client.UserAgent.Family, indicator) || containsFold(userAgent, indicator) {
			return true
		}
	}
	return false
}

func isMobileDevice(deviceFamily string) bool {
	for _, device := range []string{"iPhone", "Android", "BlackBerry", "Windows Phone", "Mobile", "Phone"} {
		if containsFold(deviceFamily, device) {
			return true
		}
	}
	return false
}

func isTabletDevice(deviceFamily string) bool {
	for _, device := range []string{"iPad", "Tablet", "Kindle", "Surface"} {
		if containsFold(deviceFamily, device) {
			return true
		}
	}
	return false
}

func isMobileOS(osFamily string) bool {
	for _, os := range []string{"iOS", "Android", "Windows Phone", "BlackBerry OS", "Firefox OS", "Sailfish OS"} {
		if containsFold(osFamily, os) {
			return true
		}
	}
	return false
}

func isTabletOS(osFamily, userAgent string) bool {
	// iOS: the iPad identifies itself in the User-Agent.
	if containsFold(osFamily, "iOS") {
		return containsFold(userAgent, "iPad")
	}

	// Android tablets typically omit "Mobile" from the User-Agent.
	if containsFold(osFamily, "Android") {
		return !containsFold(userAgent, "Mobile")
	}

	return false
}

func isDesktopOS(osFamily string) bool {
	for _, os := range []string{"Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD", "OpenBSD", "NetBSD"} {
		if containsFold(osFamily, os) {
			return true
		}
	}
	return false
}

// containsFold checks if a string contains a substring, case-insensitive.
func containsFold(str, substr string) bool {
	if str == "" || substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}

// formatFamily normalizes parser output, replacing empty/Other with "unknown".
func formatFamily(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}
