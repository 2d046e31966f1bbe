//----------------------------------------------------------------------
// This file is part of wifiRemote.
// Copyright (C) 2024-present Bernd Fix   >Y<
//
// wifiRemote is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// wifiRemote is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL3.0-or-later
//----------------------------------------------------------------------

// Package config loads the host settings of the bridge. Values are
// layered: built-in defaults, an optional config file, WIFIREMOTE_*
// environment variables and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"

	wifiremote "github.com/henper/wifiRemote"
)

// EnvPrefix of environment overrides (e.g. WIFIREMOTE_HTTP_PORT)
const EnvPrefix = "WIFIREMOTE"

// LogConfig selects level and destination of the diagnostics.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty: stderr only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Settings of the host program
type Settings struct {
	wifiremote.Config `mapstructure:",squash"`

	Log LogConfig `mapstructure:"log"`

	// print effective settings and exit
	PrintConfig bool `mapstructure:"print_config"`

	v *viper.Viper
}

// Load settings from the given command-line arguments (without program
// name). Errors wrap wifiremote.ErrConfig or pflag.ErrHelp.
func Load(args []string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("wifiremote", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	cfgFile := flags.StringP("config", "c", "", "configuration file")
	flags.String("ssid", "", "WiFi network name")
	flags.String("passwd", "", "WiFi passphrase")
	flags.String("hostname", v.GetString("hostname"), "DHCP hostname")
	flags.String("ip", "", "requested IP address")
	flags.String("interface", "", "network interface that must be up")
	flags.Uint16("http-port", wifiremote.DefaultHTTPPort, "REST port")
	flags.Uint16("ninep-port", wifiremote.DefaultNinePPort, "9p diagnostics port (0: off)")
	flags.String("lirc-device", "", "LIRC device (e.g. /dev/lirc0)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "rotated log file")
	flags.Bool("print-config", false, "print effective settings and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", wifiremote.ErrConfig, err)
	}
	for key, name := range map[string]string{
		"ssid":         "ssid",
		"passwd":       "passwd",
		"hostname":     "hostname",
		"ip":           "ip",
		"interface":    "interface",
		"http_port":    "http-port",
		"ninep_port":   "ninep-port",
		"lirc_device":  "lirc-device",
		"log.level":    "log-level",
		"log.file":     "log-file",
		"print_config": "print-config",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("%w: %v", wifiremote.ErrConfig, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(*cfgFile) > 0 {
		v.SetConfigFile(*cfgFile)
	} else {
		v.SetConfigName("wifiremote")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/wifiremote")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing file is only an error if it was asked for
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || len(*cfgFile) > 0 {
			return nil, fmt.Errorf("%w: %v", wifiremote.ErrConfig, err)
		}
	}

	s := &Settings{v: v}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("%w: %v", wifiremote.ErrConfig, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	def := wifiremote.DefaultConfig()
	v.SetDefault("ssid", def.SSID)
	v.SetDefault("passwd", def.Passwd)
	v.SetDefault("hostname", def.Hostname)
	v.SetDefault("ip", def.IP)
	v.SetDefault("interface", def.Interface)
	v.SetDefault("http_port", def.HTTPPort)
	v.SetDefault("ninep_port", def.NinePPort)
	v.SetDefault("join_attempts", def.JoinAttempts)
	v.SetDefault("join_interval", def.JoinInterval)
	v.SetDefault("poll_interval", def.PollInterval)
	v.SetDefault("gap_timeout", def.GapTimeout)
	v.SetDefault("capture_size", def.CaptureSize)
	v.SetDefault("lirc_device", def.LIRCDevice)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("print_config", false)
}

// Validate the settings.
func (s *Settings) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	if _, err := ParseLevel(s.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel of a log level name.
func ParseLevel(name string) (lvl slog.Level, err error) {
	if err = lvl.UnmarshalText([]byte(name)); err != nil {
		err = fmt.Errorf("%w: log level '%s'", wifiremote.ErrConfig, name)
	}
	return
}

// ConfigFile returns the file the settings were read from (if any).
func (s *Settings) ConfigFile() string {
	if s.v == nil {
		return ""
	}
	return s.v.ConfigFileUsed()
}

// Dump writes the effective settings as YAML; the passphrase is masked.
func (s *Settings) Dump(w io.Writer) error {
	all := s.v.AllSettings()
	if pw, ok := all["passwd"].(string); ok && len(pw) > 0 {
		all["passwd"] = "********"
	}
	delete(all, "print_config")
	data, err := yaml.Marshal(all)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Logger creates the program logger: stderr, plus a rotated file if
// one is configured. The returned closer releases the file.
func (s *Settings) Logger() (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(s.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	if len(s.Log.File) == 0 {
		return wifiremote.NewLogger(os.Stderr, lvl), io.NopCloser(nil), nil
	}
	rot := &lumberjack.Logger{
		Filename:   s.Log.File,
		MaxSize:    s.Log.MaxSizeMB,
		MaxBackups: s.Log.MaxBackups,
		MaxAge:     s.Log.MaxAgeDays,
		LocalTime:  true,
		Compress:   s.Log.Compress,
	}
	return wifiremote.NewLogger(io.MultiWriter(os.Stderr, rot), lvl), rot, nil
}
