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

// Package lirc drives a kernel infrared device (/dev/lircN) in raw
// pulse/space mode.
package lirc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/henper/wifiRemote/ir"
)

// ioctl requests (_IOW('i', nr, __u32))
const (
	setSendMode          = 0x40046911
	setRecMode           = 0x40046912
	setSendCarrier       = 0x40046913
	setSendDutyCycle     = 0x40046915
	setRecTimeout        = 0x40046918
	setRecTimeoutReports = 0x40046919
)

// modes
const (
	modePulse = 0x00000002
	modeMode2 = 0x00000004
)

// mode2 sample layout
const (
	mode2Space     = 0x00000000
	mode2Pulse     = 0x01000000
	mode2Frequency = 0x02000000
	mode2Timeout   = 0x03000000
	mode2Overflow  = 0x04000000
	mode2Mask      = 0xff000000
	valueMask      = 0x00ffffff
)

// Error codes
var (
	ErrEmpty = errors.New("empty pulse sequence")
)

// Kind of a receiver sample.
type Kind int

// Sample kinds
const (
	KindSpace Kind = iota
	KindPulse
	KindTimeout
	KindOverflow
	KindOther
)

// Sample is a single mode2 value read from the device.
type Sample uint32

// Kind of sample
func (s Sample) Kind() Kind {
	switch uint32(s) & mode2Mask {
	case mode2Space:
		return KindSpace
	case mode2Pulse:
		return KindPulse
	case mode2Timeout:
		return KindTimeout
	case mode2Overflow:
		return KindOverflow
	}
	return KindOther
}

// Value in microseconds
func (s Sample) Value() uint32 {
	return uint32(s) & valueMask
}

// Device is an opened LIRC character device.
type Device struct {
	f    *os.File
	fd   int
	path string
	rbuf []byte
}

// Open the device at 'path' for non-blocking raw send and receive. Mode
// settings are best effort: drivers that cannot receive (or send) still
// open fine.
func Open(path string, gapTimeout uint32) (dev *Device, err error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	dev = &Device{
		f:    os.NewFile(uintptr(fd), path),
		fd:   fd,
		path: path,
		rbuf: make([]byte, 4*256),
	}
	_ = unix.IoctlSetPointerInt(fd, setSendMode, modePulse)
	_ = unix.IoctlSetPointerInt(fd, setRecMode, modeMode2)
	_ = unix.IoctlSetPointerInt(fd, setSendCarrier, ir.CarrierFreq)
	_ = unix.IoctlSetPointerInt(fd, setSendDutyCycle, 50)
	if gapTimeout > 0 {
		_ = unix.IoctlSetPointerInt(fd, setRecTimeout, int(gapTimeout))
		_ = unix.IoctlSetPointerInt(fd, setRecTimeoutReports, 1)
	}
	return dev, nil
}

// Path of the device
func (dev *Device) Path() string {
	return dev.path
}

// Transmit raw timings. The kernel expects an odd number of values
// starting and ending with a pulse, so a trailing space is dropped.
func (dev *Device) Transmit(raw ir.Raw) error {
	n := len(raw)
	if n%2 == 0 {
		n--
	}
	if n <= 0 {
		return ErrEmpty
	}
	buf := make([]byte, 4*n)
	for i, v := range raw[:n] {
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	if _, err := unix.Write(dev.fd, buf); err != nil {
		return fmt.Errorf("write %s: %w", dev.path, err)
	}
	return nil
}

// ReadSamples fills 'buf' with pending receiver samples and returns their
// number. It never blocks: no pending data yields 0 and no error.
func (dev *Device) ReadSamples(buf []Sample) (int, error) {
	want := 4 * len(buf)
	if want > len(dev.rbuf) {
		dev.rbuf = make([]byte, want)
	}
	n, err := unix.Read(dev.fd, dev.rbuf[:want])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", dev.path, err)
	}
	count := n / 4
	for i := range count {
		buf[i] = Sample(binary.LittleEndian.Uint32(dev.rbuf[4*i:]))
	}
	return count, nil
}

// Close the device.
func (dev *Device) Close() error {
	return dev.f.Close()
}
