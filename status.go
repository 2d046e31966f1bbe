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
	"log/slog"
	"sync/atomic"
	"time"
)

// status codes (number of LED blinks)
const (
	StatUNK     = iota // unknown status (init)
	StatOK             // processing active
	StatDEV            // device failure
	StatNS             // diagnostics namespace construction failed
	StatSRV            // can't serve HTTP or 9p
	StatIP             // invalid IP address
	StatWIFI           // can't initialize WiFi chip
	StatWPA2           // WPA2 failed (running without network)
	StatDHCP1          // DHCP request failed
	StatDHCP2          // no DHCP reply
	StatLISTEN1        // failed to create listener
	StatLISTEN2        // failed to initialize listener
	StatPORT           // invalid port specified
	StatTX             // retransmission failed
	StatEXCP           // exception (panic) occured
)

// Error codes reported by devices during bring-up
var (
	ErrIP      = errors.New("invalid IP address")
	ErrWiFi    = errors.New("wifi init failed")
	ErrWPA2    = errors.New("wpa2 join failed")
	ErrDHCP    = errors.New("dhcp request failed")
	ErrLease   = errors.New("no dhcp lease")
	ErrListen  = errors.New("can't create listener")
	ErrListen2 = errors.New("can't start listener")
	ErrNoLink  = errors.New("network not connected")
)

// StatusOf maps a bring-up error to its status code.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return StatOK
	case errors.Is(err, ErrIP):
		return StatIP
	case errors.Is(err, ErrWiFi):
		return StatWIFI
	case errors.Is(err, ErrWPA2), errors.Is(err, ErrNoLink):
		return StatWPA2
	case errors.Is(err, ErrDHCP):
		return StatDHCP1
	case errors.Is(err, ErrLease):
		return StatDHCP2
	case errors.Is(err, ErrListen):
		return StatLISTEN1
	case errors.Is(err, ErrListen2):
		return StatLISTEN2
	}
	return StatDEV
}

// Status handler.
// Show current status depending on hardware device.
type Status struct {
	dev    Device       // reference to device
	log    *slog.Logger // diagnostics
	curr   atomic.Int32 // current state
	repeat atomic.Int32 // current repeat counter
	last   atomic.Int32 // lasting state shown after a temporary one
}

// NewStatus creates a new status display
func NewStatus(dev Device, log *slog.Logger) (state *Status) {
	state = new(Status)
	state.dev = dev
	state.log = orDiscard(log)
	state.curr.Store(StatOK)
	state.last.Store(StatOK)
	go func() {
		// blink LED <state>; <repeat> times
		for {
			time.Sleep(5 * time.Second)
			num := state.curr.Load()
			for num > 5 {
				dev.LED(true)
				time.Sleep(1000 * time.Millisecond)
				dev.LED(false)
				time.Sleep(300 * time.Millisecond)
				num -= 5
			}
			for range num {
				dev.LED(true)
				time.Sleep(150 * time.Millisecond)
				dev.LED(false)
				time.Sleep(150 * time.Millisecond)
			}
			state.blinked()
		}
	}()
	return
}

// blinked counts down a temporary state; the lasting state returns
// once it is shown often enough.
func (state *Status) blinked() {
	if state.repeat.Add(-1) == 0 {
		state.curr.Store(state.last.Load())
	}
}

// Set status and repeat <num> times (0: until changed). A temporary
// status is shown on top of the lasting one.
func (state *Status) Set(flag, num int) {
	if state == nil {
		return
	}
	if num <= 0 {
		state.last.Store(int32(flag))
	}
	state.curr.Store(int32(flag))
	state.repeat.Store(int32(num))
}

// Get current state and repeat counter
func (state *Status) Get() (int, int) {
	return int(state.curr.Load()), int(state.repeat.Load())
}

// Trap critical failures (panic)
func (state *Status) Trap(t time.Duration) {
	s, _ := state.Get()
	if r := recover(); r != nil {
		state.log.Error("EXCP", slog.Any("panic", r))
		if s == StatOK {
			state.Set(StatEXCP, 0)
		}
	} else if s == StatOK {
		state.Set(StatUNK, 0)
	}
	time.Sleep(t)
}
