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

	"github.com/henper/wifiRemote/ir"
)

// Relay retransmits every signal the receiver decodes. If the IR LED is
// in sight of the receiver, each retransmission is captured again and
// the signal repeats indefinitely.
type Relay struct {
	rx  Receiver
	tx  Transmitter
	log *slog.Logger
	res ir.Signal // decode buffer, overwritten on every message

	relayed uint64
	failed  uint64
	last    ir.Signal
	hasLast bool
	lastErr error

	onError func(sig ir.Signal, err error)
}

// NewRelay between a receiver and a transmitter.
func NewRelay(rx Receiver, tx Transmitter, log *slog.Logger) *Relay {
	return &Relay{
		rx:  rx,
		tx:  tx,
		log: orDiscard(log),
	}
}

// Poll the receiver once. If a signal was decoded, it is sent again and
// the receiver resumes listening. A failed retransmission is logged and
// otherwise ignored. Returns true if a signal was handled.
func (r *Relay) Poll() bool {
	if !r.rx.Decode(&r.res) {
		if rep, ok := r.rx.(ErrReporter); ok {
			if err := rep.Err(); err != nil {
				r.log.Warn("receiver failed", slog.String("err", err.Error()))
			}
		}
		return false
	}
	t := Stamp()
	sig := r.res

	// retransmit, then receive the next value
	err := r.tx.Send(sig.Protocol, sig.Value, sig.Bits, 1)
	r.rx.Resume()

	r.last, r.hasLast, r.lastErr = sig, true, err
	prefix := ""
	if err != nil {
		r.failed++
		prefix = "un"
		if r.onError != nil {
			r.onError(sig, err)
		}
	} else {
		r.relayed++
	}
	attrs := []any{
		slog.String("t", t),
		slog.Int("bits", int(sig.Bits)),
		slog.String("protocol", sig.Protocol.String()),
		slog.String("value", fmt.Sprintf("0x%02x", sig.Value)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	r.log.Info(fmt.Sprintf("message was %ssuccessfully retransmitted", prefix), attrs...)
	return true
}
