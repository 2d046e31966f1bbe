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
	"testing"
)

func TestStatusOf(t *testing.T) {
	for _, tc := range []struct {
		err  error
		stat int
	}{
		{nil, StatOK},
		{fmt.Errorf("%w: bad", ErrIP), StatIP},
		{ErrWiFi, StatWIFI},
		{fmt.Errorf("%w: auth", ErrWPA2), StatWPA2},
		{ErrNoLink, StatWPA2},
		{ErrDHCP, StatDHCP1},
		{ErrLease, StatDHCP2},
		{fmt.Errorf("%w: busy", ErrListen), StatLISTEN1},
		{ErrListen2, StatLISTEN2},
		{errors.New("other"), StatDEV},
	} {
		if s := StatusOf(tc.err); s != tc.stat {
			t.Errorf("%v: status %d, want %d", tc.err, s, tc.stat)
		}
	}
}

type ledDevice struct {
	Device
}

func (ledDevice) LED(bool) {}

func TestStatusSet(t *testing.T) {
	state := NewStatus(ledDevice{}, nil)
	if s, _ := state.Get(); s != StatOK {
		t.Fatalf("initial %d", s)
	}
	state.Set(StatTX, 3)
	if s, n := state.Get(); s != StatTX || n != 3 {
		t.Fatalf("state %d/%d", s, n)
	}
	var none *Status
	none.Set(StatTX, 1)
}

func TestStatusTemporary(t *testing.T) {
	state := NewStatus(ledDevice{}, nil)
	state.Set(StatWPA2, 0)
	state.blinked()
	state.Set(StatTX, 3)
	for range 2 {
		state.blinked()
		if s, _ := state.Get(); s != StatTX {
			t.Fatalf("temporary status ended early: %d", s)
		}
	}
	state.blinked()
	if s, _ := state.Get(); s != StatWPA2 {
		t.Fatalf("lasting status not restored: %d", s)
	}

	// a temporary status on top of a temporary one
	state.Set(StatOK, 0)
	state.Set(StatSRV, 3)
	state.Set(StatTX, 1)
	state.blinked()
	if s, _ := state.Get(); s != StatOK {
		t.Fatalf("status %d, want %d", s, StatOK)
	}
}
