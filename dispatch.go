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
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/henper/wifiRemote/ir"
)

// Command is a device command accepted by the REST surface.
type Command string

// Known commands
const (
	CmdOK    Command = "ok"
	CmdRight Command = "right"
	CmdLeft  Command = "left"
)

// Transmission parameters for a command.
type Transmission struct {
	Protocol ir.Protocol
	Code     uint64
	Bits     uint16
	Repeat   uint16
}

// String returns a human-readable representation of the transmission.
func (t Transmission) String() string {
	return fmt.Sprintf("%s 0x%02x/%d x%d", t.Protocol, t.Code, t.Bits, t.Repeat)
}

// DefaultTable returns the command set of a Multibrackets remote.
func DefaultTable() map[Command]Transmission {
	return map[Command]Transmission{
		CmdOK:    {Protocol: ir.Multibrackets, Code: 0xd4, Bits: 8, Repeat: 1},
		CmdRight: {Protocol: ir.Multibrackets, Code: 0xfa, Bits: 8, Repeat: 1},
		CmdLeft:  {Protocol: ir.Multibrackets, Code: 0xf5, Bits: 8, Repeat: 1},
	}
}

// Dispatcher maps command payloads to transmissions. The table is fixed
// at construction.
type Dispatcher struct {
	tx    Transmitter
	table map[Command]Transmission
	log   *slog.Logger

	requests uint64
	matched  uint64
	failed   uint64
}

// NewDispatcher for the default command table.
func NewDispatcher(tx Transmitter, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		tx:    tx,
		table: DefaultTable(),
		log:   orDiscard(log),
	}
}

// Dispatch transmits the signal for an exactly matching (case-sensitive)
// payload. Anything else is ignored. It reports if the payload matched;
// transmission errors are logged only.
func (d *Dispatcher) Dispatch(payload string) bool {
	d.requests++
	t, ok := d.table[Command(payload)]
	if !ok {
		return false
	}
	d.matched++
	d.log.Info("IR transmission command", slog.String("t", Stamp()), slog.String("cmd", payload), slog.Uint64("code", t.Code))
	if err := d.tx.Send(t.Protocol, t.Code, t.Bits, t.Repeat); err != nil {
		d.failed++
		d.log.Warn("IR transmission failed", slog.String("cmd", payload), slog.String("err", err.Error()))
	}
	return true
}

// Table returns a copy of the command table.
func (d *Dispatcher) Table() map[Command]Transmission {
	return maps.Clone(d.table)
}

// Commands returns the known commands in sorted order.
func (d *Dispatcher) Commands() []Command {
	return slices.Sorted(maps.Keys(d.table))
}
