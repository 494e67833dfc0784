package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

const (
	cfgName     = "application"
	testCfgName = "application_test"
)

var (
	cfg  *viper.Viper
	once sync.Once
)

// Config loads the application configuration.
//
// Rules:
//  1. Under `go test`, application_test.yml is preferred.
//  2. Otherwise application.yml is used.
//  3. The project root (nearest go.mod) and the working directory are searched,
//     each with its ./config subdirectory.
//
// A missing file is not an error: defaults still apply.
func Config() mo.Result[*viper.Viper] {
	once.Do(func() {
		cfg, _ = loadViper(false)
	})
	return lo.If(cfg == nil, mo.Err[*viper.Viper](fmt.Errorf("can not load %s.yml", cfgName))).Else(mo.Ok(cfg))
}

func loadViper(required bool) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	names := []string{cfgName}
	if testing.Testing() {
		names = []string{testCfgName, cfgName}
	}
	for _, name := range names {
		for _, dir := range searchDirs() {
			path := filepath.Join(dir, name+".yml")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			return v, nil
		}
	}
	if required {
		return nil, fmt.Errorf("%s.yml not found in %v", cfgName, searchDirs())
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.sql", false)
	v.SetDefault("report.user", DefaultAuditUser)
	v.SetDefault("report.date_column", "CreateDate")
	v.SetDefault("report.table", "ReportingTable")
	v.SetDefault("report.window", 18)
}

// searchDirs lists the module root (nearest go.mod above the working directory)
// and the working directory, each followed by its config subdir.
func searchDirs() []string {
	cwd, err := os.Getwd()
	if err != nil {
		return []string{".", "config"}
	}
	dirs := []string{cwd, filepath.Join(cwd, "config")}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			if dir != cwd {
				dirs = append([]string{dir, filepath.Join(dir, "config")}, dirs...)
			}
			break
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	return dirs
}
