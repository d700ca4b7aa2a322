package geolocation

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mindwell-care/mindwell-backend-go/internal/config"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/oschwald/geoip2-golang"
	"github.com/sirupsen/logrus"
)

// Location is the normalized result of an IP lookup.
type Location struct {
	CountryCode string `json:"country_code"`
	Timezone    string `json:"timezone"`
}

// Provider resolves an IP address to a Location. Implementations must
// return an error rather than a partial result without a country code.
type Provider interface {
	Name() string
	Lookup(ip string) (*Location, error)
}

// Service maps client IPs to locations and locales. Lookups go through
// a bounded TTL cache and a fixed ordered provider list; provider
// failures are logged and skipped, never surfaced to callers.
type Service struct {
	registry  *i18n.Registry
	providers []Provider
	cache     *ttlCache
	logger    *logrus.Logger
}

// NewService builds the resolver from configuration. When a MaxMind
// database path is configured and readable, the local database is
// consulted before any HTTP provider.
func NewService(cfg config.GeolocationConfig, registry *i18n.Registry, logger *logrus.Logger) *Service {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var providers []Provider
	if cfg.MaxMindDBPath != "" {
		if p, err := newMaxMindProvider(cfg.MaxMindDBPath); err != nil {
			logger.WithError(err).Warn("MaxMind database unavailable, continuing with HTTP providers")
		} else {
			providers = append(providers, p)
		}
	}
	providers = append(providers,
		&httpProvider{
			name:   "ipinfo.io",
			url:    "https://ipinfo.io/%s/json",
			client: client,
			parse:  parseIPInfo,
		},
		&httpProvider{
			name:   "ip-api.com",
			url:    "http://ip-api.com/json/%s",
			client: client,
			parse:  parseIPAPI,
		},
	)

	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Service{
		registry:  registry,
		providers: providers,
		cache:     newTTLCache(cfg.CacheSize, ttl),
		logger:    logger,
	}
}

// NewServiceWithProviders builds a resolver with an explicit provider
// list. Used by tests and callers that manage providers themselves.
func NewServiceWithProviders(providers []Provider, cacheSize int, cacheTTL time.Duration, registry *i18n.Registry, logger *logrus.Logger) *Service {
	return &Service{
		registry:  registry,
		providers: providers,
		cache:     newTTLCache(cacheSize, cacheTTL),
		logger:    logger,
	}
}

// Resolve maps an IP address to a Location, or nil when the address is
// private/invalid or every provider failed. Private, loopback and
// reserved addresses never reach a provider and never enter the cache.
func (s *Service) Resolve(ip string) *Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		s.logger.WithField("ip", ip).Warn("Invalid IP address for geolocation")
		return nil
	}
	if isNonPublic(parsed) {
		s.logger.WithField("ip", ip).Debug("Skipping geolocation for private/reserved IP")
		return nil
	}

	if loc, ok := s.cache.get(ip); ok {
		return loc
	}

	for _, provider := range s.providers {
		loc, err := provider.Lookup(ip)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"provider": provider.Name(),
				"ip":       ip,
			}).Warn("Geolocation provider failed")
			continue
		}
		if loc == nil || loc.CountryCode == "" {
			s.logger.WithFields(logrus.Fields{
				"provider": provider.Name(),
				"ip":       ip,
			}).Warn("Geolocation provider returned no country")
			continue
		}

		s.cache.set(ip, loc)
		return loc
	}

	s.logger.WithField("ip", ip).Error("All geolocation providers failed")
	return nil
}

// LocaleForIP maps the resolved country through the registry's region
// table. Any failure yields the registry default, never an error.
func (s *Service) LocaleForIP(ip string) string {
	loc := s.Resolve(ip)
	if loc == nil {
		return s.registry.DefaultLocale()
	}
	return s.registry.LocaleForRegion(loc.CountryCode)
}

// TimezoneForIP returns the resolved timezone, defaulting to UTC.
func (s *Service) TimezoneForIP(ip string) string {
	loc := s.Resolve(ip)
	if loc == nil || loc.Timezone == "" {
		return "UTC"
	}
	return loc.Timezone
}

// ClientIP extracts the caller's address from the request: the first
// X-Forwarded-For entry when valid, else the direct peer address, else
// a loopback placeholder.
func (s *Service) ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) != nil {
		return host
	}
	return "127.0.0.1"
}

func isNonPublic(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast()
}

// httpProvider queries one external HTTP geolocation API. Each
// provider carries its own response-shape parser.
type httpProvider struct {
	name   string
	url    string
	client *http.Client
	parse  func([]byte) (*Location, error)
}

func (p *httpProvider) Name() string { return p.name }

func (p *httpProvider) Lookup(ip string) (*Location, error) {
	resp, err := p.client.Get(fmt.Sprintf(p.url, ip))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return p.parse(body)
}

func parseIPInfo(body []byte) (*Location, error) {
	var data struct {
		Country  string `json:"country"`
		Timezone string `json:"timezone"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &Location{CountryCode: data.Country, Timezone: data.Timezone}, nil
}

func parseIPAPI(body []byte) (*Location, error) {
	var data struct {
		Status      string `json:"status"`
		CountryCode string `json:"countryCode"`
		Timezone    string `json:"timezone"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if data.Status != "success" {
		return nil, fmt.Errorf("lookup status %q", data.Status)
	}
	return &Location{CountryCode: data.CountryCode, Timezone: data.Timezone}, nil
}

// maxMindProvider reads a local GeoLite2/GeoIP2 country database.
type maxMindProvider struct {
	reader *geoip2.Reader
}

func newMaxMindProvider(path string) (*maxMindProvider, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MaxMind database: %w", err)
	}
	return &maxMindProvider{reader: reader}, nil
}

func (p *maxMindProvider) Name() string { return "maxmind" }

func (p *maxMindProvider) Lookup(ip string) (*Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ip)
	}

	record, err := p.reader.City(parsed)
	if err != nil {
		return nil, err
	}
	return &Location{
		CountryCode: record.Country.IsoCode,
		Timezone:    record.Location.TimeZone,
	}, nil
}

// Close releases provider resources (the MaxMind reader).
func (s *Service) Close() {
	for _, p := range s.providers {
		if mm, ok := p.(*maxMindProvider); ok {
			mm.reader.Close()
		}
	}
}
