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

// Capture defaults
const (
	DefaultCaptureSize = 1024 // entries; room for messages up to 512 bits
	DefaultGapTimeout  = 50   // milliseconds of silence that end a message
	UnknownThreshold   = 5    // minimum entries for an unknown message
)

// Capture collects the timings of one message as reported by a receiver.
// Segments of the same level are merged, a leading space is dropped and
// entries beyond the capacity are discarded (Overflow reports it).
type Capture struct {
	b        builder
	size     int
	overflow bool
}

// NewCapture returns a capture buffer for 'size' entries.
func NewCapture(size int) *Capture {
	if size <= 0 {
		size = DefaultCaptureSize
	}
	return &Capture{
		b:    builder{raw: make(Raw, 0, size)},
		size: size,
	}
}

// Add a mark or space of 'us' microseconds.
func (c *Capture) Add(mark bool, us uint32) {
	n := len(c.b.raw)
	if n == c.size {
		// merging into the last entry is still fine
		if last := (n-1)%2 == 0; last != mark {
			c.overflow = true
			return
		}
	}
	c.b.add(mark, us)
}

// Len returns the number of entries captured.
func (c *Capture) Len() int {
	return len(c.b.raw)
}

// Overflow is true if the message did not fit the buffer.
func (c *Capture) Overflow() bool {
	return c.overflow
}

// Raw returns the captured timings. The slice is reused after Reset.
func (c *Capture) Raw() Raw {
	return c.b.raw
}

// Reset empties the buffer for the next message.
func (c *Capture) Reset() {
	c.b.raw = c.b.raw[:0]
	c.overflow = false
}

//----------------------------------------------------------------------

// FNV-1 parameters used to hash unknown messages.
const (
	fnvPrime32 = 16777619
	fnvBasis32 = 2166136261
)

// decodeHash turns an unknown message into a value that is stable across
// captures of the same button: each entry is compared with the entry of
// the same level two places later and the trend (shorter, equal, longer)
// is hashed.
func decodeHash(raw Raw) (sig Signal, ok bool) {
	if len(raw) < UnknownThreshold {
		return
	}
	hash := uint32(fnvBasis32)
	for i := 0; i+2 < len(raw); i++ {
		hash = (hash * fnvPrime32) ^ trend(raw[i], raw[i+2])
	}
	sig = Signal{
		Protocol: Unknown,
		Value:    uint64(hash),
		Bits:     uint16((len(raw) + 1) / 2),
	}
	return sig, true
}

// trend compares two durations with a 20% margin.
func trend(prev, next uint32) uint32 {
	switch {
	case uint64(next)*10 < uint64(prev)*8:
		return 0
	case uint64(prev)*10 < uint64(next)*8:
		return 2
	}
	return 1
}
