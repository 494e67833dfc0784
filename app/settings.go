package app

import (
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// DefaultAuditUser is written to CreateUser when a seeded row carries none.
const DefaultAuditUser = "txreport"

// ReportSettings is the `report` section of application.yml.
type ReportSettings struct {
	User       string `mapstructure:"user"`
	DateColumn string `mapstructure:"date_column"`
	Table      string `mapstructure:"table"`
	Window     int    `mapstructure:"window"`
	Reference  string `mapstructure:"reference"`
}

// ReferenceDate parses Reference as YYYY-MM-DD. It is absent when Reference is blank.
func (s ReportSettings) ReferenceDate() (mo.Option[time.Time], error) {
	if s.Reference == "" {
		return mo.None[time.Time](), nil
	}
	t, err := time.Parse(time.DateOnly, s.Reference)
	if err != nil {
		return mo.None[time.Time](), fmt.Errorf("report.reference %q: %w", s.Reference, err)
	}
	return mo.Some(t), nil
}

// LogSettings is the `log` section of application.yml.
type LogSettings struct {
	Level string `mapstructure:"level"`
	SQL   bool   `mapstructure:"sql"`
}

// Report returns the report settings, falling back to defaults when no config is loaded.
func Report() ReportSettings {
	v := settings()
	return ReportSettings{
		User:       v.GetString("report.user"),
		DateColumn: v.GetString("report.date_column"),
		Table:      v.GetString("report.table"),
		Window:     v.GetInt("report.window"),
		Reference:  v.GetString("report.reference"),
	}
}

// Log returns the log settings.
func Log() LogSettings {
	v := settings()
	return LogSettings{
		Level: v.GetString("log.level"),
		SQL:   v.GetBool("log.sql"),
	}
}

// settings reads keys one by one: viper does not merge defaults into nested
// sections returned by UnmarshalKey.
func settings() *viper.Viper {
	if v := Config().OrElse(nil); v != nil {
		return v
	}
	v := viper.New()
	setDefaults(v)
	return v
}
