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

package wifiremote

import (
	"errors"
	"fmt"
	"time"

	"github.com/henper/wifiRemote/ir"
)

// Defaults
const (
	DefaultHTTPPort     = 80
	DefaultNinePPort    = 564
	DefaultJoinAttempts = 10
	DefaultJoinInterval = 500 * time.Millisecond
	DefaultPollInterval = 2 * time.Millisecond
	DefaultGapTimeout   = ir.DefaultGapTimeout * time.Millisecond
)

// Error codes
var (
	ErrConfig = errors.New("invalid configuration")
)

// Config of the bridge. On the host it is read from file, environment
// and flags; on the board it is compiled in.
type Config struct {
	// station-mode credentials
	SSID   string `mapstructure:"ssid"`
	Passwd string `mapstructure:"passwd"`

	// DHCP hostname and requested (or fallback static) address
	Hostname string `mapstructure:"hostname"`
	IP       string `mapstructure:"ip"`

	// network interface that must be up (host only, optional)
	Interface string `mapstructure:"interface"`

	HTTPPort  uint16 `mapstructure:"http_port"`
	NinePPort uint16 `mapstructure:"ninep_port"` // 0 disables 9p

	JoinAttempts int           `mapstructure:"join_attempts"`
	JoinInterval time.Duration `mapstructure:"join_interval"`
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// receiver: silence ending a message and capture buffer entries
	GapTimeout  time.Duration `mapstructure:"gap_timeout"`
	CaptureSize int           `mapstructure:"capture_size"`

	// LIRC device (host only); empty for no IR hardware
	LIRCDevice string `mapstructure:"lirc_device"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Hostname:     "wifiremote",
		HTTPPort:     DefaultHTTPPort,
		NinePPort:    DefaultNinePPort,
		JoinAttempts: DefaultJoinAttempts,
		JoinInterval: DefaultJoinInterval,
		PollInterval: DefaultPollInterval,
		GapTimeout:   DefaultGapTimeout,
		CaptureSize:  ir.DefaultCaptureSize,
	}
}

// Validate the configuration.
func (cfg *Config) Validate() error {
	switch {
	case cfg.HTTPPort == 0:
		return fmt.Errorf("%w: http port must be set", ErrConfig)
	case cfg.NinePPort != 0 && cfg.NinePPort == cfg.HTTPPort:
		return fmt.Errorf("%w: http and 9p share port %d", ErrConfig, cfg.HTTPPort)
	case cfg.JoinAttempts < 1:
		return fmt.Errorf("%w: join attempts %d < 1", ErrConfig, cfg.JoinAttempts)
	case cfg.JoinInterval <= 0:
		return fmt.Errorf("%w: join interval must be positive", ErrConfig)
	case cfg.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be positive", ErrConfig)
	case cfg.GapTimeout <= 0:
		return fmt.Errorf("%w: gap timeout must be positive", ErrConfig)
	case cfg.CaptureSize < 16:
		return fmt.Errorf("%w: capture size %d too small", ErrConfig, cfg.CaptureSize)
	}
	return nil
}
