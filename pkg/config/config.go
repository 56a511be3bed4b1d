package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Log       LogConfig
	Scheduler SchedulerConfig
	Export    ExportConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries the timetable engine defaults applied when a
// request leaves the corresponding fields empty.
type SchedulerConfig struct {
	LessonDuration    int
	StudentBreakAfter int
	TeacherBreakAfter int
	DayStart          string
	DayEnd            string
	ResultTTL         time.Duration
}

// ExportConfig tunes rendered timetable documents.
type ExportConfig struct {
	PDFTitle string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		LessonDuration:    v.GetInt("LESSON_DURATION_MINUTES"),
		StudentBreakAfter: v.GetInt("STUDENT_BREAK_AFTER"),
		TeacherBreakAfter: v.GetInt("TEACHER_BREAK_AFTER"),
		DayStart:          v.GetString("DAY_START"),
		DayEnd:            v.GetString("DAY_END"),
		ResultTTL:         parseDuration(v.GetString("RESULT_TTL"), 30*time.Minute),
	}

	cfg.Export = ExportConfig{
		PDFTitle: v.GetString("EXPORT_PDF_TITLE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LESSON_DURATION_MINUTES", 45)
	v.SetDefault("STUDENT_BREAK_AFTER", 4)
	v.SetDefault("TEACHER_BREAK_AFTER", 4)
	v.SetDefault("DAY_START", "08:00")
	v.SetDefault("DAY_END", "18:00")
	v.SetDefault("RESULT_TTL", "30m")

	v.SetDefault("EXPORT_PDF_TITLE", "Lesson Timetable")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
