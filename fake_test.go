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
	"sync"

	"github.com/henper/wifiRemote/ir"
)

var errTx = errors.New("tx failed")

type sent struct {
	proto        ir.Protocol
	code         uint64
	bits, repeat uint16
}

// fakeTx records every send.
type fakeTx struct {
	sync.Mutex
	sent []sent
	fail bool
}

func (tx *fakeTx) Send(proto ir.Protocol, code uint64, bits, repeat uint16) error {
	tx.Lock()
	defer tx.Unlock()
	tx.sent = append(tx.sent, sent{proto, code, bits, repeat})
	if tx.fail {
		return errTx
	}
	return nil
}

func (tx *fakeTx) Sent() []sent {
	tx.Lock()
	defer tx.Unlock()
	return append([]sent(nil), tx.sent...)
}

// fakeRx hands out queued signals; like real hardware it stays idle
// after a decode until resumed.
type fakeRx struct {
	sync.Mutex
	queue   []ir.Signal
	held    bool
	resumes int
}

func (rx *fakeRx) Push(sig ir.Signal) {
	rx.Lock()
	defer rx.Unlock()
	rx.queue = append(rx.queue, sig)
}

func (rx *fakeRx) Decode(res *ir.Signal) bool {
	rx.Lock()
	defer rx.Unlock()
	if rx.held || len(rx.queue) == 0 {
		return false
	}
	*res = rx.queue[0]
	rx.queue = rx.queue[1:]
	rx.held = true
	return true
}

func (rx *fakeRx) Resume() {
	rx.Lock()
	defer rx.Unlock()
	rx.held = false
	rx.resumes++
}

func (rx *fakeRx) Resumes() int {
	rx.Lock()
	defer rx.Unlock()
	return rx.resumes
}
