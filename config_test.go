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
	"testing"
)

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	for name, mod := range map[string]func(*Config){
		"http port":     func(c *Config) { c.HTTPPort = 0 },
		"shared port":   func(c *Config) { c.NinePPort = c.HTTPPort },
		"attempts":      func(c *Config) { c.JoinAttempts = 0 },
		"join interval": func(c *Config) { c.JoinInterval = 0 },
		"poll interval": func(c *Config) { c.PollInterval = -1 },
		"gap":           func(c *Config) { c.GapTimeout = 0 },
		"capture":       func(c *Config) { c.CaptureSize = 4 },
	} {
		cfg := DefaultConfig()
		mod(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: %v", name, err)
		}
	}
	cfg := DefaultConfig()
	cfg.NinePPort = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("9p off: %v", err)
	}
}
