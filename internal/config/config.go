package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	// DatabaseURL serves both the route registry and the forecast store;
	// they share one pool.
	DatabaseURL string

	// Terrain elevation lookup for ad-hoc GPS targets.
	TerrainBaseURL   string
	TerrainTimeout   time.Duration
	TerrainCacheSize int
	TerrainCacheTTL  time.Duration

	// Region names the forecast grid this deployment answers for.
	Region string

	// Hazard and derived-value thresholds.
	LapseRate          float64
	CAPEPossible       float64
	CAPELikely         float64
	BlindCloudCoverPct float64
	WindTiers          map[string]float64
	WindSevereKmh      float64
	PrecipRainMM       float64
	PrecipSnowCM       float64

	// Zone grouping deltas.
	ZoneTempC    float64
	ZonePrecipMM float64
	ZoneWindKmh  float64

	// Message compilation budgets.
	LineChars            int
	SingleSegmentSeptets int
	ConcatSegmentSeptets int
	ForecastRows         int

	// Disambiguation sessions.
	SessionTTL      time.Duration
	SessionCapacity int

	// Concurrent grid-cell fetches per route summary.
	FetchConcurrency int

	// Per-segment billing rates by region.
	CostTable         map[string]CostRate
	DefaultCostRegion string
}

// CostRate is the per-segment price in one billing region.
type CostRate struct {
	Currency string
	Amount   float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	terrainTimeout, err := parseDuration("TERRAIN_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	terrainCacheTTL, err := parseDuration("TERRAIN_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	sessionTTL, err := parseDuration("SESSION_TTL", "30m")
	if err != nil {
		return nil, err
	}

	terrainCacheSize, err := parsePositiveInt("TERRAIN_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	lineChars, err := parsePositiveInt("LINE_CHARS", 42)
	if err != nil {
		return nil, err
	}
	singleSeptets, err := parsePositiveInt("SEGMENT_SEPTETS", 160)
	if err != nil {
		return nil, err
	}
	concatSeptets, err := parsePositiveInt("CONCAT_SEGMENT_SEPTETS", 153)
	if err != nil {
		return nil, err
	}
	forecastRows, err := parsePositiveInt("FORECAST_ROWS", 6)
	if err != nil {
		return nil, err
	}
	sessionCapacity, err := parsePositiveInt("SESSION_CAPACITY", 1024)
	if err != nil {
		return nil, err
	}
	fetchConcurrency, err := parsePositiveInt("FETCH_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}

	lapseRate, err := parsePositiveFloat("LAPSE_RATE", 0.65)
	if err != nil {
		return nil, err
	}
	capePossible, err := parseFloat("CAPE_POSSIBLE", 200)
	if err != nil {
		return nil, err
	}
	capeLikely, err := parseFloat("CAPE_LIKELY", 400)
	if err != nil {
		return nil, err
	}
	blindCover, err := parseFloat("BLIND_CLOUD_COVER_PCT", 90)
	if err != nil {
		return nil, err
	}
	windSevere, err := parsePositiveFloat("WIND_SEVERE_KMH", 90)
	if err != nil {
		return nil, err
	}
	precipRain, err := parsePositiveFloat("PRECIP_RAIN_MM", 5)
	if err != nil {
		return nil, err
	}
	precipSnow, err := parsePositiveFloat("PRECIP_SNOW_CM", 5)
	if err != nil {
		return nil, err
	}
	zoneTemp, err := parsePositiveFloat("ZONE_TEMP_C", 2)
	if err != nil {
		return nil, err
	}
	zonePrecip, err := parsePositiveFloat("ZONE_PRECIP_MM", 2)
	if err != nil {
		return nil, err
	}
	zoneWind, err := parsePositiveFloat("ZONE_WIND_KMH", 5)
	if err != nil {
		return nil, err
	}

	windTiers, err := parseTierTable("WIND_TIERS", "cautious:50,standard:60,expert:75")
	if err != nil {
		return nil, err
	}
	costTable, err := parseCostTable("COST_TABLE", "us:USD:0.0075")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: envOrDefault("KAFKA_SOURCE_TOPIC", "sms-inbound"),
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "sms-outbound"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "forecast-sms"),
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,

		DatabaseURL: envOrDefault("DATABASE_URL", "postgres://localhost:5432/forecast_sms"),

		TerrainBaseURL:   envOrDefault("TERRAIN_BASE_URL", "https://api.open-elevation.com/api/v1/lookup"),
		TerrainTimeout:   terrainTimeout,
		TerrainCacheSize: terrainCacheSize,
		TerrainCacheTTL:  terrainCacheTTL,

		Region: envOrDefault("REGION", "sierra"),

		LapseRate:          lapseRate,
		CAPEPossible:       capePossible,
		CAPELikely:         capeLikely,
		BlindCloudCoverPct: blindCover,
		WindTiers:          windTiers,
		WindSevereKmh:      windSevere,
		PrecipRainMM:       precipRain,
		PrecipSnowCM:       precipSnow,

		ZoneTempC:    zoneTemp,
		ZonePrecipMM: zonePrecip,
		ZoneWindKmh:  zoneWind,

		LineChars:            lineChars,
		SingleSegmentSeptets: singleSeptets,
		ConcatSegmentSeptets: concatSeptets,
		ForecastRows:         forecastRows,

		SessionTTL:      sessionTTL,
		SessionCapacity: sessionCapacity,

		FetchConcurrency: fetchConcurrency,

		CostTable:         costTable,
		DefaultCostRegion: envOrDefault("DEFAULT_COST_REGION", "us"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.CAPELikely <= cfg.CAPEPossible {
		return nil, errors.New("CAPE_LIKELY must exceed CAPE_POSSIBLE")
	}
	if cfg.ConcatSegmentSeptets > cfg.SingleSegmentSeptets {
		return nil, errors.New("CONCAT_SEGMENT_SEPTETS must not exceed SEGMENT_SEPTETS")
	}
	if _, ok := cfg.WindTiers["standard"]; !ok {
		return nil, errors.New("WIND_TIERS must define the standard tier")
	}
	if _, ok := cfg.CostTable[cfg.DefaultCostRegion]; !ok {
		return nil, fmt.Errorf("COST_TABLE has no entry for DEFAULT_COST_REGION %q", cfg.DefaultCostRegion)
	}

	return cfg, nil
}

// WindDangerKmh resolves the gust threshold for a subscriber tier, falling
// back to the standard tier for unknown values.
func (c *Config) WindDangerKmh(tier string) float64 {
	if v, ok := c.WindTiers[tier]; ok {
		return v
	}
	return c.WindTiers["standard"]
}

// CostFor resolves the per-segment rate for a billing region, falling back
// to the default region for unknown values.
func (c *Config) CostFor(region string) CostRate {
	if r, ok := c.CostTable[region]; ok {
		return r
	}
	return c.CostTable[c.DefaultCostRegion]
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	v, err := parseFloat(key, def)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

// parseTierTable reads "name:kmh" pairs separated by commas.
func parseTierTable(key, def string) (map[string]float64, error) {
	table := map[string]float64{}
	for _, entry := range strings.Split(envOrDefault(key, def), ",") {
		name, val, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid %s", key)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid %s", key)
		}
		table[name] = v
	}
	return table, nil
}

// parseCostTable reads "region:currency:amount" entries separated by commas.
func parseCostTable(key, def string) (map[string]CostRate, error) {
	table := map[string]CostRate{}
	for _, entry := range strings.Split(envOrDefault(key, def), ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid %s", key)
		}
		amount, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || amount < 0 {
			return nil, fmt.Errorf("invalid %s", key)
		}
		table[parts[0]] = CostRate{Currency: parts[1], Amount: amount}
	}
	return table, nil
}
