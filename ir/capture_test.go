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

package ir

import (
	"slices"
	"testing"
)

func TestCaptureMerge(t *testing.T) {
	c := NewCapture(8)
	c.Add(false, 700) // leading space dropped
	c.Add(true, 100)
	c.Add(true, 50)
	c.Add(false, 200)
	c.Add(true, 300)
	want := Raw{150, 200, 300}
	if !slices.Equal(c.Raw(), want) {
		t.Fatalf("got %v, want %v", c.Raw(), want)
	}
	c.Reset()
	if c.Len() != 0 || c.Overflow() {
		t.Fatal("reset failed")
	}
}

func TestCaptureOverflow(t *testing.T) {
	c := NewCapture(2)
	c.Add(true, 100)
	c.Add(false, 100)
	c.Add(false, 100)
	if c.Overflow() {
		t.Fatal("merge into last entry is no overflow")
	}
	c.Add(true, 100)
	if !c.Overflow() || c.Len() != 2 {
		t.Fatalf("expected overflow, got %v", c.Raw())
	}
}

func TestCaptureDecode(t *testing.T) {
	raw, _ := EncodeMultibrackets(0xf5, 8, 1)
	c := NewCapture(DefaultCaptureSize)
	for i, d := range raw {
		// a receiver may split long segments
		c.Add(i%2 == 0, d/2)
		c.Add(i%2 == 0, d-d/2)
	}
	sig, ok := Decode(c.Raw())
	if !ok || sig.Value != 0xf5 || sig.Protocol != Multibrackets {
		t.Fatalf("got %s (%v)", sig, ok)
	}
}
