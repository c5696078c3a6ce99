package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWeeks        = 2
	DefaultUTCOffset    = "+01:00"
	DefaultDayStart     = "07:00"
	DefaultDayEnd       = "22:00"
	DefaultPoolCap      = 15
	DefaultGeocodeDelay = time.Second
)

// DefaultExcludedShiftNames are placeholder/administrative shift names that
// never become vehicles.
var DefaultExcludedShiftNames = []string{"", "-", "n/a", "na", "none", "placeholder", "admin", "administration", "vakant", "ej planerad", "unassigned"}

// Planning is the explicit configuration every expansion entry point receives.
type Planning struct {
	// StartDate is the first day of the planning window (YYYY-MM-DD); it is
	// moved back to its Monday. Empty means the next Monday.
	StartDate string `yaml:"start_date" json:"start_date"`
	Weeks     int    `yaml:"weeks" json:"weeks" validate:"gte=1,lte=52"`
	// UTCOffset is the fixed offset of the service region, e.g. "+01:00".
	UTCOffset string `yaml:"utc_offset" json:"utc_offset" validate:"required"`
	// DayStart/DayEnd bound full-period windows.
	DayStart           string        `yaml:"day_start" json:"day_start" validate:"required"`
	DayEnd             string        `yaml:"day_end" json:"day_end" validate:"required"`
	PoolCap            int           `yaml:"pool_cap" json:"pool_cap" validate:"gte=1"`
	GeocodeDelay       time.Duration `yaml:"geocode_delay" json:"geocode_delay" validate:"gte=0"`
	ExcludedShiftNames []string      `yaml:"excluded_shift_names" json:"excluded_shift_names"`
}

type GeocoderConfig struct {
	// Provider is "ors" or "none".
	Provider string `yaml:"provider" validate:"oneof=ors none"`
	BaseURL  string `yaml:"base_url"`
	Country  string `yaml:"country"`
	APIKey   string `yaml:"-"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	// Addr enables the Redis geocode cache when set.
	Addr string        `yaml:"addr"`
	TTL  time.Duration `yaml:"ttl"`
}

type Config struct {
	Planning Planning       `yaml:"planning"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	// GeocodeCache picks where a run keeps its lookups: "memory", "sql"
	// (the model store) or "redis".
	GeocodeCache string      `yaml:"geocode_cache" validate:"oneof=memory sql redis"`
	Store        StoreConfig `yaml:"store"`
	Redis        RedisConfig `yaml:"redis"`
	Port         string      `yaml:"port"`
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadEnv loads a .env file when present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Planning:     DefaultPlanning(),
		Geocoder:     GeocoderConfig{Provider: "none", BaseURL: "https://api.openrouteservice.org", Country: "SE"},
		GeocodeCache: "memory",
		Store:        StoreConfig{Driver: "sqlite", DSN: "data/models.db"},
		Redis:        RedisConfig{TTL: 6 * time.Hour},
		Port:         "8080",
	}
	return cfg
}

func DefaultPlanning() Planning {
	return Planning{
		Weeks:              DefaultWeeks,
		UTCOffset:          DefaultUTCOffset,
		DayStart:           DefaultDayStart,
		DayEnd:             DefaultDayEnd,
		PoolCap:            DefaultPoolCap,
		GeocodeDelay:       DefaultGeocodeDelay,
		ExcludedShiftNames: append([]string(nil), DefaultExcludedShiftNames...),
	}
}

// Load reads the YAML file at path (missing file means defaults), applies
// environment overrides, fills defaults and validates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Printf("config file not found path=%s (using defaults)", path)
		case err != nil:
			return nil, fmt.Errorf("load config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("load config: parse %q: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Planning.StartDate = Get("PLANNING_START", c.Planning.StartDate)
	if v, err := strconv.Atoi(Get("PLANNING_WEEKS", "")); err == nil {
		c.Planning.Weeks = v
	}
	c.Planning.UTCOffset = Get("PLANNING_UTC_OFFSET", c.Planning.UTCOffset)
	if v, err := strconv.Atoi(Get("POOL_CAP", "")); err == nil {
		c.Planning.PoolCap = v
	}
	if v, err := time.ParseDuration(Get("GEOCODE_DELAY", "")); err == nil {
		c.Planning.GeocodeDelay = v
	}

	c.Geocoder.APIKey = Get("ORS_API_KEY", c.Geocoder.APIKey)
	c.Geocoder.Provider = Get("GEOCODER", c.Geocoder.Provider)
	c.Store.Driver = Get("STORE_DRIVER", c.Store.Driver)
	c.Store.DSN = Get("DATABASE_URL", c.Store.DSN)
	c.Redis.Addr = Get("REDIS_ADDR", c.Redis.Addr)
	c.GeocodeCache = Get("GEOCODE_CACHE", c.GeocodeCache)
	c.Port = Get("PORT", c.Port)
}

// Normalize fills in missing/zero values so partially-filled files still work.
func (c *Config) Normalize() {
	c.Planning.Normalize()
	if c.Geocoder.Provider == "" {
		c.Geocoder.Provider = "none"
	}
	if c.GeocodeCache == "" {
		c.GeocodeCache = "memory"
		if c.Redis.Addr != "" {
			c.GeocodeCache = "redis"
		}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 6 * time.Hour
	}
	if c.Port == "" {
		c.Port = "8080"
	}
}

// Normalize fills zero planning values with defaults.
func (p *Planning) Normalize() {
	if p.Weeks == 0 {
		p.Weeks = DefaultWeeks
	}
	if p.UTCOffset == "" {
		p.UTCOffset = DefaultUTCOffset
	}
	if p.DayStart == "" {
		p.DayStart = DefaultDayStart
	}
	if p.DayEnd == "" {
		p.DayEnd = DefaultDayEnd
	}
	if p.PoolCap == 0 {
		p.PoolCap = DefaultPoolCap
	}
	if p.ExcludedShiftNames == nil {
		p.ExcludedShiftNames = append([]string(nil), DefaultExcludedShiftNames...)
	}
}

var validate = validator.New()

// Validate checks struct constraints and parses the derived values once so
// bad offsets or dates fail at load time.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Planning.Validate(); err != nil {
		return err
	}
	if c.Geocoder.Provider == "ors" && strings.TrimSpace(c.Geocoder.APIKey) == "" {
		return errors.New("config: ORS_API_KEY is required for the ors geocoder")
	}
	if c.GeocodeCache == "redis" && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("config: REDIS_ADDR is required for the redis geocode cache")
	}
	return nil
}

// Validate checks the planning values.
func (p Planning) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("planning config: %w", err)
	}
	if _, err := ParseUTCOffset(p.UTCOffset); err != nil {
		return fmt.Errorf("planning config: %w", err)
	}
	if p.StartDate != "" {
		if _, err := time.Parse("2006-01-02", p.StartDate); err != nil {
			return fmt.Errorf("planning config: start_date %q: %w", p.StartDate, err)
		}
	}
	return nil
}

// Location returns the fixed zone of the service region.
func (p Planning) Location() *time.Location {
	loc, err := ParseUTCOffset(p.UTCOffset)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PlanningStart returns the Monday 00:00 that opens the planning window.
func (p Planning) PlanningStart() time.Time {
	loc := p.Location()

	var day time.Time
	if p.StartDate != "" {
		if d, err := time.ParseInLocation("2006-01-02", p.StartDate, loc); err == nil {
			day = d
		}
	}
	if day.IsZero() {
		now := time.Now().In(loc)
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		// Next Monday, never today.
		day = day.AddDate(0, 0, 1)
		for day.Weekday() != time.Monday {
			day = day.AddDate(0, 0, 1)
		}
		return day
	}

	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// PinStart fixes an empty start date to the Monday it resolves to now, so
// every stage of one run sees the same planning window.
func (p *Planning) PinStart() {
	if p.StartDate == "" {
		p.StartDate = p.PlanningStart().Format("2006-01-02")
	}
}

// PlanningEnd returns the exclusive end of the planning window.
func (p Planning) PlanningEnd() time.Time {
	return p.PlanningStart().AddDate(0, 0, 7*p.Weeks)
}

// ParseUTCOffset converts "+01:00", "-0530" or "Z" into a fixed zone.
func ParseUTCOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Z" || strings.EqualFold(s, "UTC") {
		return time.FixedZone("UTC", 0), nil
	}

	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, fmt.Errorf("utc offset %q: must start with + or -", s)
	}

	body := strings.ReplaceAll(s[1:], ":", "")
	if len(body) != 4 && len(body) != 2 {
		return nil, fmt.Errorf("utc offset %q: expected hh:mm", s)
	}
	h, err := strconv.Atoi(body[:2])
	if err != nil {
		return nil, fmt.Errorf("utc offset %q: %w", s, err)
	}
	m := 0
	if len(body) == 4 {
		if m, err = strconv.Atoi(body[2:]); err != nil {
			return nil, fmt.Errorf("utc offset %q: %w", s, err)
		}
	}
	if h > 14 || m > 59 {
		return nil, fmt.Errorf("utc offset %q: out of range", s)
	}

	return time.FixedZone(s, sign*(h*3600+m*60)), nil
}
