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
	"log/slog"
)

// Service is an entry in the startup report.
type Service struct {
	Name string    // service name
	At   slog.Attr // where it runs (pin, device or address)
}

// IRWiring is implemented by devices that know where their IR hardware
// is attached.
type IRWiring interface {
	IRWiring() (rx, tx slog.Attr)
}

// IRServices lists the receiver and sender of a device.
func IRServices(dev Device) []Service {
	rx, tx := slog.String("device", "none"), slog.String("device", "none")
	if w, ok := dev.(IRWiring); ok {
		rx, tx = w.IRWiring()
	}
	return []Service{
		{Name: "IR Receiver", At: rx},
		{Name: "IR Sender", At: tx},
	}
}

// LogServices reports the services a bridge runs.
func LogServices(log *slog.Logger, services []Service) {
	log = orDiscard(log)
	log.Info("Starting services:")
	for _, s := range services {
		log.Info(s.Name, s.At)
	}
	log.Info("Services started!")
}
