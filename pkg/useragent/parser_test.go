package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseUserAgent_DeviceClasses(t *testing.T) {
	parser, err := NewParser("", zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name       string
		userAgent  string
		deviceType string
	}{
		{
			"iphone",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			"mobile",
		},
		{
			"android phone",
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			"mobile",
		},
		{
			"android tablet without Mobile token",
			"Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"tablet",
		},
		{
			"ipad",
			"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			"tablet",
		},
		{
			"windows desktop",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"desktop",
		},
		{
			"mac desktop",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			"desktop",
		},
		{
			"googlebot",
			"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			"bot",
		},
		{
			"gibberish",
			"totally made up agent string",
			"unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := parser.ParseUserAgent(tt.userAgent)
			assert.Equal(t, tt.deviceType, info.DeviceType)
		})
	}
}

func TestParseUserAgent_Empty(t *testing.T) {
	parser, err := NewParser("", zap.NewNop())
	require.NoError(t, err)

	info := parser.ParseUserAgent("")
	assert.Equal(t, "unknown", info.DeviceType)
	assert.Equal(t, "unknown", info.Browser)
	assert.Equal(t, "unknown", info.OS)
}

func TestParseUserAgent_BrowserAndOS(t *testing.T) {
	parser, err := NewParser("", zap.NewNop())
	require.NoError(t, err)

	info := parser.ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0")
	assert.Equal(t, "Firefox", info.Browser)
	assert.Contains(t, info.OS, "Windows")
}

func TestNewParser_MissingFile(t *testing.T) {
	_, err := NewParser("/nonexistent/regexes.yaml", zap.NewNop())
	assert.Error(t, err)
}
