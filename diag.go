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
	"fmt"
	"strings"
	"time"
)

// diagnostics files never wait longer than this for the loop
const diagTimeout = 2 * time.Second

// NewDiagnostics builds the 9p namespace exposing the bridge state:
//
//	/readme     welcome text
//	/commands   command table
//	/status     link state and request counters
//	/ir/last    last relayed signal
//	/ir/stats   relay counters
func NewDiagnostics(b *Bridge, user string) (ns *Namespace, err error) {
	ns = NewNamespace(user, user)
	stats := func(fcn func(st Stats) string) File {
		return NewFuncFile(func() ([]byte, error) {
			ctx, cancel := context.WithTimeout(context.Background(), diagTimeout)
			defer cancel()
			st, err := b.Stats(ctx)
			if err != nil {
				return nil, err
			}
			return []byte(fcn(st)), nil
		})
	}
	if err = ns.NewFile("/readme", 0444, NewTextFile(WelcomeText+"\n")); err != nil {
		return
	}
	if err = ns.NewFile("/commands", 0444, NewTextFile(commandList(b))); err != nil {
		return
	}
	if err = ns.NewFile("/status", 0444, stats(formatStatus)); err != nil {
		return
	}
	if err = ns.NewDir("/ir", 0555); err != nil {
		return
	}
	if err = ns.NewFile("/ir/last", 0444, stats(formatLast)); err != nil {
		return
	}
	err = ns.NewFile("/ir/stats", 0444, stats(formatRelay))
	return
}

func commandList(b *Bridge) string {
	table := b.Table()
	buf := new(strings.Builder)
	for _, cmd := range b.Commands() {
		fmt.Fprintf(buf, "%s\t%s\n", cmd, table[cmd])
	}
	return buf.String()
}

func formatStatus(st Stats) string {
	return fmt.Sprintf("link %s\nuptime %s\nrequests %d\nmatched %d\ntxfailed %d\n",
		st.Link, Stamp(), st.Requests, st.Matched, st.TxFailed)
}

func formatLast(st Stats) string {
	if st.Last == nil {
		return "none\n"
	}
	s := st.Last.String()
	if st.LastErr != nil {
		s += " (" + st.LastErr.Error() + ")"
	}
	return s + "\n"
}

func formatRelay(st Stats) string {
	return fmt.Sprintf("relayed %d\nfailed %d\n", st.Relayed, st.RelayFails)
}
