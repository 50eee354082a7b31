package bot

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Auth struct {
		Enabled  bool   `toml:"enabled"`
		RedisURL string `toml:"redis_url"`
	} `toml:"auth"`
	Bot struct {
		Token    string  `toml:"token"`
		AdminIDs []int64 `toml:"admin_ids"`
	} `toml:"bot"`
	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`
	Report struct {
		LessonWeekday       string `toml:"lesson_weekday"`
		AttendanceCriterion string `toml:"attendance_criterion"`
	} `toml:"report"`
}

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func ReadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("Failed to load config: %v", err)
	}

	if cfg.Report.LessonWeekday == "" {
		cfg.Report.LessonWeekday = "Friday"
	}
	if _, ok := weekdays[cfg.Report.LessonWeekday]; !ok {
		return nil, fmt.Errorf("unknown lesson_weekday %q", cfg.Report.LessonWeekday)
	}
	if cfg.Report.AttendanceCriterion == "" {
		cfg.Report.AttendanceCriterion = "attendance"
	}

	return &cfg, nil
}

func (c *Config) LessonWeekday() time.Weekday {
	return weekdays[c.Report.LessonWeekday]
}
