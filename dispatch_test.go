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
	"slices"
	"testing"

	"github.com/henper/wifiRemote/ir"
)

func TestDispatch(t *testing.T) {
	tx := new(fakeTx)
	d := NewDispatcher(tx, nil)
	for _, tc := range []struct {
		payload string
		code    uint64
	}{
		{"ok", 0xd4},
		{"right", 0xfa},
		{"left", 0xf5},
	} {
		if !d.Dispatch(tc.payload) {
			t.Fatalf("%s not matched", tc.payload)
		}
		s := tx.Sent()
		want := sent{ir.Multibrackets, tc.code, 8, 1}
		if s[len(s)-1] != want {
			t.Fatalf("%s: sent %+v", tc.payload, s[len(s)-1])
		}
	}
	if n := len(tx.Sent()); n != 3 {
		t.Fatalf("%d sends", n)
	}
}

func TestDispatchNoMatch(t *testing.T) {
	tx := new(fakeTx)
	d := NewDispatcher(tx, nil)
	for _, p := range []string{"OK", "Left", "", "ok ", "ok\n", "up", "okright"} {
		if d.Dispatch(p) {
			t.Errorf("%q matched", p)
		}
	}
	if len(tx.Sent()) != 0 {
		t.Fatal("unexpected send")
	}
	if d.requests != 7 || d.matched != 0 {
		t.Fatalf("counters %d/%d", d.requests, d.matched)
	}
}

func TestDispatchSendError(t *testing.T) {
	tx := &fakeTx{fail: true}
	d := NewDispatcher(tx, nil)
	if !d.Dispatch("ok") {
		t.Fatal("not matched")
	}
	if d.failed != 1 || len(tx.Sent()) != 1 {
		t.Fatalf("failed %d, sends %d", d.failed, len(tx.Sent()))
	}
}

func TestDispatchTable(t *testing.T) {
	d := NewDispatcher(new(fakeTx), nil)
	if got := d.Commands(); !slices.Equal(got, []Command{CmdLeft, CmdOK, CmdRight}) {
		t.Fatalf("commands %v", got)
	}
	table := d.Table()
	delete(table, CmdOK)
	if len(d.Table()) != 3 {
		t.Fatal("table not copied")
	}
	if s := DefaultTable()[CmdOK].String(); s != "MULTIBRACKETS 0xd4/8 x1" {
		t.Fatalf("transmission %q", s)
	}
}

func TestDefaultTableEncodes(t *testing.T) {
	for cmd, tr := range DefaultTable() {
		if _, err := ir.Encode(ir.Signal{Protocol: tr.Protocol, Value: tr.Code, Bits: tr.Bits}, tr.Repeat); err != nil {
			t.Errorf("%s: %v", cmd, err)
		}
	}
}
