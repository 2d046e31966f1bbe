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

// Package ir converts between decoded infrared signals and the raw
// mark/space timings a transmitter emits or a receiver captures.
package ir

import (
	"errors"
	"fmt"
)

// Error codes
var (
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrInvalidBits         = errors.New("invalid bit length")
)

// CarrierFreq is the modulation frequency (Hz) of all supported protocols.
const CarrierFreq = 38000

// Protocol identifies an infrared encoding scheme.
type Protocol int

// Known protocols
const (
	Unknown Protocol = iota - 1
	Unused
	Multibrackets
)

// String returns the protocol name as printed in diagnostics.
func (p Protocol) String() string {
	switch p {
	case Unknown:
		return "UNKNOWN"
	case Unused:
		return "UNUSED"
	case Multibrackets:
		return "MULTIBRACKETS"
	}
	return fmt.Sprintf("PROTOCOL(%d)", int(p))
}

// Signal is a decoded infrared message.
type Signal struct {
	Protocol Protocol
	Value    uint64
	Bits     uint16
}

// String returns a human-readable representation of the signal.
func (s Signal) String() string {
	return fmt.Sprintf("%d-bit %s 0x%02x", s.Bits, s.Protocol, s.Value)
}

// Raw holds alternating mark and space durations in microseconds,
// starting with a mark.
type Raw []uint32

// Encode returns the raw timings for a signal. The frame is sent once
// plus 'repeat' additional times.
func Encode(sig Signal, repeat uint16) (Raw, error) {
	switch sig.Protocol {
	case Multibrackets:
		return EncodeMultibrackets(sig.Value, sig.Bits, repeat)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedProtocol, sig.Protocol)
}

// Decode tries all known protocols on a captured message. Messages no
// protocol claims are reported as Unknown with a hash value, unless they
// are too short to be anything but noise.
func Decode(raw Raw) (sig Signal, ok bool) {
	if sig, ok = DecodeMultibrackets(raw); ok {
		return
	}
	return decodeHash(raw)
}

//----------------------------------------------------------------------

// builder assembles raw timings, merging adjacent segments of the same
// level.
type builder struct {
	raw Raw
}

func (b *builder) mark(us uint32) {
	b.add(true, us)
}

func (b *builder) space(us uint32) {
	b.add(false, us)
}

func (b *builder) add(mark bool, us uint32) {
	if us == 0 {
		return
	}
	n := len(b.raw)
	if n == 0 {
		if !mark {
			// leading space carries no information
			return
		}
		b.raw = append(b.raw, us)
		return
	}
	// even index is a mark, odd index a space
	if last := (n-1)%2 == 0; last == mark {
		b.raw[n-1] += us
		return
	}
	b.raw = append(b.raw, us)
}
