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

import "math"

// Multibrackets is a level-width protocol: every bit occupies one tick,
// a set bit as mark and a cleared bit as space. A frame is framed by a
// long header mark and a long footer space.
const (
	MultibracketsBits = 8

	mbTick        = 5000 // microseconds
	mbHdrTicks    = 3
	mbFooterTicks = 6
	mbTolerance   = 30 // percent
)

// EncodeMultibrackets returns the raw timings of 'nbits' bits of 'value'
// (MSB first). The frame is sent once plus 'repeat' additional times.
func EncodeMultibrackets(value uint64, nbits, repeat uint16) (Raw, error) {
	if nbits == 0 || nbits > 64 {
		return nil, ErrInvalidBits
	}
	b := new(builder)
	for r := 0; r <= int(repeat); r++ {
		b.mark(mbHdrTicks * mbTick)
		for bit := nbits; bit > 0; bit-- {
			if (value>>(bit-1))&1 == 1 {
				b.mark(mbTick)
			} else {
				b.space(mbTick)
			}
		}
		b.space(mbFooterTicks * mbTick)
	}
	return b.raw, nil
}

// DecodeMultibrackets decodes the first frame in a capture. Receivers
// scale the timing of a whole frame, so the capture is matched against
// every possible frame with a common scale and the closest one wins.
func DecodeMultibrackets(raw Raw) (sig Signal, ok bool) {
	if len(raw) == 0 {
		return
	}
	var runs [mbMaxRuns]int
	best := math.MaxFloat64
	for v := uint64(0); v < 1<<MultibracketsBits; v++ {
		n := mbFrame(v, &runs)
		dev, fits := mbFit(raw, runs[:n])
		if fits && dev < best {
			best = dev
			sig = Signal{
				Protocol: Multibrackets,
				Value:    v,
				Bits:     MultibracketsBits,
			}
			ok = true
		}
	}
	return
}

// mbMaxRuns bounds the segments of a frame: header, bit runs and footer.
const mbMaxRuns = MultibracketsBits + 2

// mbFrame lists the segment lengths (in ticks) of a frame for 'value'.
// Segments alternate starting with the header mark; the last one is
// the footer space.
func mbFrame(value uint64, runs *[mbMaxRuns]int) int {
	n, mark := 0, true
	runs[0] = mbHdrTicks
	for bit := MultibracketsBits; bit > 0; bit-- {
		one := (value>>(bit-1))&1 == 1
		if one == mark {
			runs[n]++
			continue
		}
		n++
		runs[n], mark = 1, one
	}
	if mark {
		n++
		runs[n] = mbFooterTicks
	} else {
		runs[n] += mbFooterTicks
	}
	return n + 1
}

// mbFit matches the start of a capture against the segments of a frame
// and returns the squared deviation (in ticks) after scaling. The footer
// may be missing (cut off by the end-of-message gap) or, as the last
// segment captured, be reported short of its real length.
func mbFit(raw Raw, runs []int) (float64, bool) {
	n := len(runs)
	fixed, open := n, false
	switch {
	case len(raw) == n-1:
		fixed = n - 1
	case len(raw) == n:
		fixed, open = n-1, true
	case len(raw) < n:
		return 0, false
	}
	var got, want float64
	for i := range fixed {
		got += float64(raw[i])
		want += float64(runs[i] * mbTick)
	}
	const tol = mbTolerance / 100.0
	scale := got / want
	if scale < 1-tol || scale > 1+tol {
		return 0, false
	}
	var dev float64
	for i := range fixed {
		d := math.Abs(float64(raw[i])/scale/mbTick - float64(runs[i]))
		if d > 0.5 || d > float64(runs[i])*tol {
			return 0, false
		}
		dev += d * d
	}
	if open && float64(raw[n-1])/scale < float64(runs[n-1]*mbTick)*(1-tol) {
		return 0, false
	}
	return dev, true
}
