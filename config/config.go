package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"nyc_buildings/models"
)

const DefaultWatchFile = "config/watch.yaml"

type Config struct {
	BaseURL     string
	OutputDir   string
	DebugDir    string
	DBPath      string
	DatabaseURL string
	Log         LogConfig
	Browser     BrowserConfig
	S3          S3Config
	Watch       WatchConfig
}

type LogConfig struct {
	Level  string
	Format string // "json" or "console"
	File   string
}

type BrowserConfig struct {
	Headless          bool
	NavigationTimeout time.Duration
	PageWait          time.Duration
	MapWait           time.Duration
	FootprintCropPx   int
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type WatchConfig struct {
	Cron       string
	RatePerMin int
	File       string
	Buildings  []models.WatchedBuilding
}

type watchFile struct {
	Cron      string                   `yaml:"cron"`
	Buildings []models.WatchedBuilding `yaml:"buildings"`
}

// Load reads .env (if present) and the environment, then the watch list.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:     getEnv("MARKETPROOF_BASE_URL", "https://nyc.marketproof.com"),
		OutputDir:   getEnv("OUTPUT_DIR", "scraped_buildings"),
		DebugDir:    os.Getenv("DEBUG_DIR"),
		DBPath:      getEnv("DB_PATH", "scraper.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
			File:   getEnv("LOG_FILE", "scraper.log"),
		},
		Browser: BrowserConfig{
			Headless:          getEnvBool("HEADLESS", true),
			NavigationTimeout: 60 * time.Second,
			PageWait:          time.Duration(getEnvInt("PAGE_WAIT_MS", 5000)) * time.Millisecond,
			MapWait:           time.Duration(getEnvInt("MAP_WAIT_MS", 3000)) * time.Millisecond,
			FootprintCropPx:   getEnvInt("FOOTPRINT_CROP_PX", 50),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Watch: WatchConfig{
			Cron:       os.Getenv("WATCH_CRON"),
			RatePerMin: getEnvInt("WATCH_RATE_PER_MIN", 2),
			File:       getEnv("WATCH_FILE", DefaultWatchFile),
		},
	}

	if err := cfg.loadWatchList(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadWatchList reads the YAML watch list. A missing file leaves the list
// empty; WATCH_CRON overrides the file's schedule.
func (c *Config) loadWatchList() error {
	data, err := os.ReadFile(c.Watch.File)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "config: read %s", c.Watch.File)
	}

	var wf watchFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return eris.Wrapf(err, "config: parse %s", c.Watch.File)
	}

	for i, b := range wf.Buildings {
		if strings.TrimSpace(b.URL) == "" && strings.TrimSpace(b.Address) == "" {
			return eris.Errorf("config: watch entry %d has neither url nor address", i)
		}
	}

	c.Watch.Buildings = wf.Buildings
	if c.Watch.Cron == "" {
		c.Watch.Cron = wf.Cron
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
