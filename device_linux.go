//go:build !rp2350

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
	"log/slog"
	"net"

	"github.com/henper/wifiRemote/lirc"
)

// LinuxDevice runs the bridge on a host whose network is managed by the
// system. IR goes through a LIRC device if one is configured.
type LinuxDevice struct {
	iface string
	lirc  *lirc.Device
	tx    Transmitter
	rx    Receiver
}

// InitDevice opens the configured IR hardware. A missing or unusable
// LIRC device is logged and replaced by a no-op IR pair.
func InitDevice(cfg *Config, log *slog.Logger) Device {
	log = orDiscard(log)
	dev := &LinuxDevice{
		iface: cfg.Interface,
		tx:    &NopTransmitter{Log: log},
		rx:    NopReceiver{},
	}
	if len(cfg.LIRCDevice) == 0 {
		log.Info("no IR device configured")
		return dev
	}
	gap := uint32(cfg.GapTimeout.Microseconds())
	d, err := lirc.Open(cfg.LIRCDevice, gap)
	if err != nil {
		log.Error("IR device unusable", slog.String("err", err.Error()))
		return dev
	}
	log.Info("IR device opened", slog.String("path", d.Path()))
	dev.lirc = d
	dev.tx = lirc.NewTransmitter(d)
	dev.rx = lirc.NewReceiver(d, cfg.CaptureSize, cfg.GapTimeout)
	return dev
}

// IRWiring names the LIRC device used for both directions.
func (dev *LinuxDevice) IRWiring() (rx, tx slog.Attr) {
	path := "none"
	if dev.lirc != nil {
		path = dev.lirc.Path()
	}
	return slog.String("device", path), slog.String("device", path)
}

// LED on or off (not applicable)
func (dev *LinuxDevice) LED(on bool) {}

// Join checks the configured interface is up and addressed; the
// association itself is the system's business.
func (dev *LinuxDevice) Join(_, _ string) error {
	if len(dev.iface) == 0 {
		return nil
	}
	ifc, err := net.InterfaceByName(dev.iface)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoLink, err)
	}
	if ifc.Flags&net.FlagUp == 0 {
		return fmt.Errorf("%w: %s is down", ErrNoLink, dev.iface)
	}
	if len(dev.Addr()) == 0 {
		return fmt.Errorf("%w: %s has no address", ErrNoLink, dev.iface)
	}
	return nil
}

// Addr returns the first address of the configured interface.
func (dev *LinuxDevice) Addr() string {
	if len(dev.iface) == 0 {
		return ""
	}
	ifc, err := net.InterfaceByName(dev.iface)
	if err != nil {
		return ""
	}
	addrs, err := ifc.Addrs()
	if err != nil || len(addrs) == 0 {
		return ""
	}
	if ipn, ok := addrs[0].(*net.IPNet); ok {
		return ipn.IP.String()
	}
	return addrs[0].String()
}

// Transmitter of the device
func (dev *LinuxDevice) Transmitter() Transmitter {
	return dev.tx
}

// Receiver of the device
func (dev *LinuxDevice) Receiver() Receiver {
	return dev.rx
}

// Listen returns a TCP listener on the given port.
func (dev *LinuxDevice) Listen(port uint16) (net.Listener, error) {
	cfg := new(net.ListenConfig)
	lst, err := cfg.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListen, err)
	}
	return lst, nil
}

// Close the IR hardware.
func (dev *LinuxDevice) Close() error {
	if dev.lirc != nil {
		return dev.lirc.Close()
	}
	return nil
}
