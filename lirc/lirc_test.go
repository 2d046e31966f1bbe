//go:build linux

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

package lirc

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/henper/wifiRemote/ir"
)

type fakeSource struct {
	batches [][]Sample
	err     error
}

func (f *fakeSource) ReadSamples(buf []Sample) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := copy(buf, f.batches[0])
	f.batches = f.batches[1:]
	return n, nil
}

func pulse(us uint32) Sample { return Sample(mode2Pulse | us) }
func space(us uint32) Sample { return Sample(mode2Space | us) }

func frame(t *testing.T, code uint64) []Sample {
	t.Helper()
	raw, err := ir.EncodeMultibrackets(code, 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	var out []Sample
	for i, v := range raw {
		if i%2 == 0 {
			out = append(out, pulse(v))
		} else {
			out = append(out, space(v))
		}
	}
	return out
}

func TestSampleKind(t *testing.T) {
	cases := map[Sample]Kind{
		pulse(560):                 KindPulse,
		space(560):                 KindSpace,
		Sample(mode2Timeout | 500): KindTimeout,
		Sample(mode2Overflow):      KindOverflow,
		Sample(mode2Frequency):     KindOther,
	}
	for s, k := range cases {
		if s.Kind() != k {
			t.Errorf("%08x: got kind %d, want %d", uint32(s), s.Kind(), k)
		}
	}
	if pulse(1234).Value() != 1234 {
		t.Fatal("value mask")
	}
}

func TestReceiverTimeoutSample(t *testing.T) {
	samples := append(frame(t, 0xd4), Sample(mode2Timeout|50000))
	src := &fakeSource{batches: [][]Sample{samples}}
	rx := NewReceiver(src, 0, 50*time.Millisecond)

	var sig ir.Signal
	if !rx.Decode(&sig) {
		t.Fatal("message not decoded")
	}
	if sig.Protocol != ir.Multibrackets || sig.Value != 0xd4 || sig.Bits != 8 {
		t.Fatalf("got %s", sig)
	}
	// frozen until resumed
	src.batches = [][]Sample{frame(t, 0xfa), {Sample(mode2Timeout)}}
	if rx.Decode(&sig) {
		t.Fatal("decode before resume")
	}
	rx.Resume()
	if rx.Decode(&sig) {
		t.Fatal("message without end decoded")
	}
	if !rx.Decode(&sig) || sig.Value != 0xfa {
		t.Fatalf("second message: %s", sig)
	}
}

func TestReceiverSilence(t *testing.T) {
	now := time.Unix(1000, 0)
	src := &fakeSource{batches: [][]Sample{frame(t, 0xf5)}}
	rx := NewReceiver(src, 0, 50*time.Millisecond)
	rx.now = func() time.Time { return now }

	var sig ir.Signal
	if rx.Decode(&sig) {
		t.Fatal("decoded while message may continue")
	}
	now = now.Add(10 * time.Millisecond)
	if rx.Decode(&sig) {
		t.Fatal("decoded before gap elapsed")
	}
	now = now.Add(50 * time.Millisecond)
	if !rx.Decode(&sig) || sig.Value != 0xf5 {
		t.Fatalf("got %s", sig)
	}
}

func TestReceiverNoise(t *testing.T) {
	src := &fakeSource{batches: [][]Sample{{pulse(300), space(300), Sample(mode2Timeout)}}}
	rx := NewReceiver(src, 0, 50*time.Millisecond)
	var sig ir.Signal
	if rx.Decode(&sig) {
		t.Fatalf("noise decoded as %s", sig)
	}
	if rx.capture.Len() != 0 {
		t.Fatal("noise not discarded")
	}
}

func TestReceiverError(t *testing.T) {
	boom := errors.New("boom")
	rx := NewReceiver(&fakeSource{err: boom}, 0, 50*time.Millisecond)
	var sig ir.Signal
	if rx.Decode(&sig) {
		t.Fatal("decoded on error")
	}
	if !errors.Is(rx.Err(), boom) || rx.Err() != nil {
		t.Fatal("error not reported once")
	}
}

func TestTransmit(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	dev := &Device{f: w, fd: int(w.Fd()), path: "pipe"}
	tx := NewTransmitter(dev)

	if err := tx.Send(ir.Multibrackets, 0xd4, 8, 0); err != nil {
		t.Fatal(err)
	}
	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	// trailing footer space is not written
	want := []uint32{25000, 5000, 5000, 5000, 5000}
	if len(data) != 4*len(want) {
		t.Fatalf("got %d bytes", len(data))
	}
	for i, v := range want {
		if got := binary.LittleEndian.Uint32(data[4*i:]); got != v {
			t.Errorf("entry %d: got %d, want %d", i, got, v)
		}
	}
	if err := tx.Send(ir.Unknown, 1, 8, 0); !errors.Is(err, ir.ErrUnsupportedProtocol) {
		t.Fatalf("expected ErrUnsupportedProtocol, got %v", err)
	}
}
