package enrichment

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// Locator resolves an IP address to a country and city. Both return
// values are independently nullable: an unresolvable address is not an
// error condition.
type Locator interface {
	Locate(ip string) (country, city *string)
	Close() error
}

// NopLocator is used when no GeoIP database is configured. Lookups
// always yield nothing, which keeps the enrichment contract uniform.
type NopLocator struct{}

func (NopLocator) Locate(string) (*string, *string) { return nil, nil }
func (NopLocator) Close() error                     { return nil }

// GeoIPLocator answers lookups from a local MaxMind city database.
type GeoIPLocator struct {
	reader *geoip2.Reader
	log    *zap.Logger
}

// NewLocator opens the GeoIP database at dbPath, or returns a NopLocator
// when dbPath is empty.
func NewLocator(dbPath string, log *zap.Logger) (Locator, error) {
	if dbPath == "" {
		log.Info("no GeoIP database configured, geo enrichment disabled")
		return NopLocator{}, nil
	}

	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database %s: %w", dbPath, err)
	}

	log.Info("GeoIP database opened", zap.String("path", dbPath))
	return &GeoIPLocator{reader: reader, log: log}, nil
}

func (l *GeoIPLocator) Locate(ip string) (*string, *string) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, nil
	}

	record, err := l.reader.City(parsed)
	if err != nil {
		l.log.Debug("GeoIP lookup failed", zap.String("ip", ip), zap.Error(err))
		return nil, nil
	}

	var country, city *string
	if name := record.Country.Names["en"]; name != "" {
		country = &name
	}
	if name := record.City.Names["en"]; name != "" {
		city = &name
	}
	return country, city
}

func (l *GeoIPLocator) Close() error {
	return l.reader.Close()
}
