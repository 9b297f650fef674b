package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Telegram struct {
		Token            string  `yaml:"token"`
		AdminIDs         []int64 `yaml:"admin_ids"`
		CommentGroupID   int64   `yaml:"comment_group_id"`
		CommentGroupLink string  `yaml:"comment_group_link"`
	} `yaml:"telegram"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Gate struct {
		Interval int    `yaml:"interval"`
		Reason   string `yaml:"reason"`
	} `yaml:"gate"`
	Quiz struct {
		QuestionsFile string `yaml:"questions_file"`
		ImagesDir     string `yaml:"images_dir"`
		DocumentsDir  string `yaml:"documents_dir"`
		ReportTTL     string `yaml:"report_ttl"`
	} `yaml:"quiz"`
	Analytics struct {
		MixpanelToken string `yaml:"mixpanel_token"`
	} `yaml:"analytics"`
}

// Load reads YAML config from path. The telegram token may also come from the
// BOT_TOKEN environment variable, which wins over the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Postgres.URL = dbURL
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
