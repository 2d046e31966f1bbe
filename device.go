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
	"net"

	"github.com/henper/wifiRemote/ir"
)

// Device is a hardware abstraction
type Device interface {
	Link

	// LED on or off (if applicable)
	LED(on bool)

	// Transmitter drives the IR LED.
	Transmitter() Transmitter

	// Receiver reads the IR demodulator.
	Receiver() Receiver

	// Listen returns a TCP listener on the given port. Only meaningful
	// once the link is up.
	Listen(port uint16) (net.Listener, error)
}

// Link is the network association of a device.
type Link interface {
	// Join the named network (station mode).
	Join(ssid, passwd string) error

	// Addr returns the assigned IP address (if known).
	Addr() string
}

// Transmitter emits encoded infrared signals.
type Transmitter interface {
	// Send a signal once plus 'repeat' more times.
	Send(proto ir.Protocol, code uint64, bits, repeat uint16) error
}

// Receiver captures and decodes infrared signals. After Decode reported
// a signal, the receiver stays idle until Resume is called.
type Receiver interface {
	// Decode polls the receiver without blocking.
	Decode(res *ir.Signal) bool

	// Resume listening for the next message.
	Resume()
}

// ErrReporter is implemented by receivers that can fail while polling.
type ErrReporter interface {
	// Err returns (and clears) the last error.
	Err() error
}

//----------------------------------------------------------------------

// NopTransmitter validates and encodes signals but emits nothing.
type NopTransmitter struct {
	Log *slog.Logger
}

// Send implementation: encode only.
func (t *NopTransmitter) Send(proto ir.Protocol, code uint64, bits, repeat uint16) error {
	raw, err := ir.Encode(ir.Signal{Protocol: proto, Value: code, Bits: bits}, repeat)
	if err != nil {
		return err
	}
	if t.Log != nil {
		t.Log.Debug("IR send (no device)", slog.String("protocol", proto.String()), slog.Int("entries", len(raw)))
	}
	return nil
}

// NopReceiver never receives anything.
type NopReceiver struct{}

// Decode implementation: no signal.
func (NopReceiver) Decode(*ir.Signal) bool { return false }

// Resume implementation: nothing to do.
func (NopReceiver) Resume() {}
