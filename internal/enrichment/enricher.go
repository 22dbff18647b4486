package enrichment

import (
	"Shortly-Backend/pkg/useragent"
	"strings"

	"go.uber.org/zap"
)

// Enrichment is the best-effort derivation of request metadata. Every
// field is independently nullable: a failed parse or lookup leaves its
// fields nil without affecting the rest.
type Enrichment struct {
	Device  *string
	Browser *string
	OS      *string
	Country *string
	City    *string
}

// Enricher derives device/browser/OS and geography from raw request
// signals. It never fails: panics in parsing are recovered and the
// caller always receives a usable struct.
type Enricher struct {
	ua      *useragent.Parser
	locator Locator
	log     *zap.Logger
}

func NewEnricher(ua *useragent.Parser, locator Locator, log *zap.Logger) *Enricher {
	return &Enricher{
		ua:      ua,
		locator: locator,
		log:     log,
	}
}

// Enrich parses the user agent and looks up the IP's geography. An
// empty user agent yields nil UA fields; a missing GeoIP database
// yields nil geo fields. Neither is an error.
func (e *Enricher) Enrich(userAgent, ip string) (result Enrichment) {
	defer func() {
		if r := recover(); r != nil {
			// Whatever fields were filled before the panic survive.
			e.log.Error("enrichment panicked", zap.Any("panic", r))
		}
	}()

	if strings.TrimSpace(userAgent) != "" && e.ua != nil {
		info := e.ua.ParseUserAgent(userAgent)
		result.Device = strPtr(info.DeviceType)
		result.Browser = nullable(info.Browser)
		result.OS = nullable(info.OS)
	}

	if ip != "" && e.locator != nil {
		result.Country, result.City = e.locator.Locate(ip)
	}

	return result
}

func strPtr(s string) *string {
	return &s
}

// nullable converts the parser's "unknown" placeholder to nil so that
// categorical breakdowns do not accumulate a synthetic bucket.
func nullable(s string) *string {
	if s == "" || s == "unknown" {
		return nil
	}
	return &s
}
