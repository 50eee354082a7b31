package app

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type HeaderConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type GSheetConfig struct {
	CredentialsPath string `toml:"credentials_path"`
	SheetID         string `toml:"sheet_id"`
	SheetName       string `toml:"sheet_name"`
	StudentsRange   string `toml:"students_range"`
	ReportColumn    string `toml:"report_column"`
	Schedule        string `toml:"schedule"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
	} `toml:"auth"`

	API struct {
		TeacherIDHeader string         `toml:"teacher_id_header"`
		RequiredHeaders []HeaderConfig `toml:"required_headers"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	// Report encodes the expected-lesson policy: lessons happen weekly
	// on a fixed weekday, and the monthly denominator is the number of
	// those weekdays in the month regardless of what dates exist in
	// storage.
	Report struct {
		LessonWeekday       string `toml:"lesson_weekday"`
		AttendanceCriterion string `toml:"attendance_criterion"`
	} `toml:"report"`

	GSheet map[string][]GSheetConfig `toml:"gsheet"`

	EmojiVariants []string `toml:"emoji_variants"`
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

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Report.LessonWeekday == "" {
		config.Report.LessonWeekday = "Friday"
	}
	if _, ok := weekdays[config.Report.LessonWeekday]; !ok {
		return nil, fmt.Errorf("unknown lesson_weekday %q, use full English names like Friday", config.Report.LessonWeekday)
	}
	if config.Report.AttendanceCriterion == "" {
		config.Report.AttendanceCriterion = "attendance"
	}

	logger.Debug.Printf("Loaded report config: %+v", config.Report)

	return &config, nil
}

// LessonWeekday returns the configured expected-lesson weekday.
func (c *Config) LessonWeekday() time.Weekday {
	return weekdays[c.Report.LessonWeekday]
}
