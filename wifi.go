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
	"context"
	"log/slog"
	"time"
)

// LinkState of the network association
type LinkState int

// Link states
const (
	Disconnected LinkState = iota
	Connecting
	Connected
)

// String returns the state name.
func (s LinkState) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	}
	return "INVALID"
}

// Associate joins the configured network with a fixed number of attempts
// at a fixed interval. It never fails: if all attempts are used up the
// state is Disconnected and the caller carries on without network.
func Associate(ctx context.Context, link Link, cfg *Config, log *slog.Logger) LinkState {
	log = orDiscard(log)
	log.Info("Connecting to WiFi", slog.String("ssid", cfg.SSID), slog.String("state", Connecting.String()))
	for attempt := 1; attempt <= cfg.JoinAttempts; attempt++ {
		err := link.Join(cfg.SSID, cfg.Passwd)
		if err == nil {
			log.Info("Connected", slog.String("ssid", cfg.SSID), slog.String("ip", link.Addr()), slog.Int("attempts", attempt))
			return Connected
		}
		log.Debug("#", slog.Int("attempt", attempt), slog.String("err", err.Error()))
		if attempt == cfg.JoinAttempts {
			break
		}
		select {
		case <-ctx.Done():
			log.Error("Error connecting", slog.String("ssid", cfg.SSID), slog.String("err", ctx.Err().Error()))
			return Disconnected
		case <-time.After(cfg.JoinInterval):
		}
	}
	log.Error("Error connecting", slog.String("ssid", cfg.SSID), slog.String("state", Disconnected.String()))
	return Disconnected
}
