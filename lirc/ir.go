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
	"time"

	"github.com/henper/wifiRemote/ir"
)

// Transmitter encodes signals and sends them through a LIRC device.
type Transmitter struct {
	dev *Device
}

// NewTransmitter for an opened device
func NewTransmitter(dev *Device) *Transmitter {
	return &Transmitter{dev: dev}
}

// Send a signal once plus 'repeat' more times.
func (t *Transmitter) Send(proto ir.Protocol, code uint64, bits, repeat uint16) error {
	raw, err := ir.Encode(ir.Signal{Protocol: proto, Value: code, Bits: bits}, repeat)
	if err != nil {
		return err
	}
	return t.dev.Transmit(raw)
}

//----------------------------------------------------------------------

// SampleReader delivers mode2 samples without blocking.
type SampleReader interface {
	ReadSamples(buf []Sample) (int, error)
}

// Receiver assembles mode2 samples into messages and decodes them. After
// a successful Decode it ignores input until Resume is called.
type Receiver struct {
	src     SampleReader
	capture *ir.Capture
	samples []Sample
	gap     time.Duration
	last    time.Time
	ready   bool
	err     error

	now func() time.Time
}

// NewReceiver reads from 'src'; a message ends after 'gap' of silence.
func NewReceiver(src SampleReader, size int, gap time.Duration) *Receiver {
	return &Receiver{
		src:     src,
		capture: ir.NewCapture(size),
		samples: make([]Sample, 256),
		gap:     gap,
		now:     time.Now,
	}
}

// Decode polls the device; it returns true if a complete message was
// decoded into 'res'.
func (r *Receiver) Decode(res *ir.Signal) bool {
	if r.ready {
		return false
	}
	n, err := r.src.ReadSamples(r.samples)
	if err != nil {
		r.err = err
		return false
	}
	now := r.now()
	gapUS := uint32(r.gap / time.Microsecond)
	complete := false
	for _, s := range r.samples[:n] {
		switch s.Kind() {
		case KindPulse:
			r.capture.Add(true, s.Value())
		case KindSpace:
			if r.capture.Len() > 0 && gapUS > 0 && s.Value() >= gapUS {
				complete = true
			} else {
				r.capture.Add(false, s.Value())
			}
		case KindTimeout:
			complete = r.capture.Len() > 0
		case KindOverflow:
			r.capture.Reset()
		}
		if complete {
			// the rest belongs to a message we are not listening for
			break
		}
	}
	if n > 0 {
		r.last = now
	} else if r.capture.Len() > 0 && now.Sub(r.last) >= r.gap {
		complete = true
	}
	if !complete {
		return false
	}
	sig, ok := ir.Decode(r.capture.Raw())
	if !ok {
		r.capture.Reset()
		return false
	}
	*res = sig
	r.ready = true
	return true
}

// Resume listening for the next message.
func (r *Receiver) Resume() {
	r.capture.Reset()
	r.ready = false
}

// Err returns (and clears) the last read error.
func (r *Receiver) Err() (err error) {
	err, r.err = r.err, nil
	return
}
