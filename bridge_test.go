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
	"errors"
	"testing"
	"time"

	"github.com/henper/wifiRemote/ir"
)

func runBridge(t *testing.T, tx Transmitter, rx Receiver, opts ...Option) (*Bridge, context.CancelFunc, <-chan error) {
	t.Helper()
	opts = append([]Option{WithPollInterval(time.Millisecond)}, opts...)
	b := NewBridge(tx, rx, nil, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(cancel)
	return b, cancel, done
}

// wait until cond holds or fail
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBridgeDispatch(t *testing.T) {
	tx := new(fakeTx)
	b, _, _ := runBridge(t, tx, NopReceiver{})
	ctx := context.Background()
	for _, p := range []string{"ok", "OK", "left"} {
		if _, err := b.Dispatch(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	s := tx.Sent()
	if len(s) != 2 || s[0].code != 0xd4 || s[1].code != 0xf5 {
		t.Fatalf("sent %+v", s)
	}
	st, err := b.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Requests != 3 || st.Matched != 2 || st.TxFailed != 0 || st.Last != nil {
		t.Fatalf("stats %+v", st)
	}
}

func TestBridgeRelay(t *testing.T) {
	tx, rx := new(fakeTx), new(fakeRx)
	b, _, _ := runBridge(t, tx, rx, WithLinkState(Connected))
	rx.Push(ir.Signal{Protocol: ir.Multibrackets, Value: 0xd4, Bits: 8})
	eventually(t, func() bool { return rx.Resumes() == 1 })

	st, err := b.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Link != Connected || st.Relayed != 1 || st.Last == nil || st.Last.Value != 0xd4 {
		t.Fatalf("stats %+v", st)
	}
	if s := tx.Sent(); len(s) != 1 || s[0].repeat != 1 {
		t.Fatalf("sent %+v", s)
	}
}

func TestBridgeOnError(t *testing.T) {
	tx, rx := &fakeTx{fail: true}, new(fakeRx)
	reported := make(chan ir.Signal, 1)
	b, _, _ := runBridge(t, tx, rx, WithOnError(func(sig ir.Signal, err error) {
		reported <- sig
	}))
	rx.Push(ir.Signal{Protocol: ir.Multibrackets, Value: 0xfa, Bits: 8})
	select {
	case sig := <-reported:
		if sig.Value != 0xfa {
			t.Fatalf("reported %s", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("failure not reported")
	}
	st, err := b.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.RelayFails != 1 || !errors.Is(st.LastErr, errTx) {
		t.Fatalf("stats %+v", st)
	}
}

// requests and relay share the loop: both are serviced, in any order
func TestBridgeInterleaved(t *testing.T) {
	tx, rx := new(fakeTx), new(fakeRx)
	b, _, _ := runBridge(t, tx, rx)
	for i := range 10 {
		rx.Push(ir.Signal{Protocol: ir.Multibrackets, Value: uint64(i), Bits: 8})
		if _, err := b.Dispatch(context.Background(), "right"); err != nil {
			t.Fatal(err)
		}
	}
	eventually(t, func() bool { return rx.Resumes() == 10 })
	if n := len(tx.Sent()); n != 20 {
		t.Fatalf("%d sends", n)
	}
}

func TestBridgeStopped(t *testing.T) {
	b, cancel, done := runBridge(t, new(fakeTx), NopReceiver{})
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("run: %v", err)
	}
	if _, err := b.Dispatch(context.Background(), "ok"); !errors.Is(err, ErrStopped) {
		t.Fatalf("dispatch after stop: %v", err)
	}
}

func TestBridgeDoTimeout(t *testing.T) {
	// never running loop
	b := NewBridge(new(fakeTx), NopReceiver{}, nil, WithJobBuffer(0))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := b.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("do: %v", err)
	}
}

func TestBridgeRoutes(t *testing.T) {
	tx := new(fakeTx)
	b, _, _ := runBridge(t, tx, NopReceiver{})
	routes := b.Routes()
	ctx := context.Background()

	r, ok := Lookup(routes, MethodGet, PathRoot)
	if !ok {
		t.Fatal("no welcome route")
	}
	if rep := r.Handle(ctx, nil); rep.Status != StatusOK || string(rep.Body) != WelcomeText || rep.ContentType != "text/html" {
		t.Fatalf("welcome %+v", rep)
	}
	r, ok = Lookup(routes, MethodPost, PathMultibrackets)
	if !ok {
		t.Fatal("no multibrackets route")
	}
	for _, body := range []string{"ok", "nope"} {
		if rep := r.Handle(ctx, []byte(body)); rep.Status != StatusOK || len(rep.Body) != 0 {
			t.Fatalf("%s: %+v", body, rep)
		}
	}
	if len(tx.Sent()) != 1 {
		t.Fatalf("%d sends", len(tx.Sent()))
	}
	if _, ok = Lookup(routes, MethodGet, PathMultibrackets); ok {
		t.Fatal("GET on multibrackets routed")
	}
	if rep := NotFound("/x"); rep.Status != StatusNotFound || string(rep.Body) != "Not found: /x" {
		t.Fatalf("not found %+v", rep)
	}
}
