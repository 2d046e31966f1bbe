//go:build rp2350

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
	"fmt"
	"io"
	"log/slog"
	"machine"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/seqs/eth/dhcp"
	"github.com/soypat/seqs/stacks"

	"github.com/henper/wifiRemote/ir"
)

// board wiring
const (
	RecvPin  = machine.GPIO14 // IR demodulator output (active low)
	IrLedPin = machine.GPIO4  // IR LED driver (PWM slice 2, channel A)
)

// Raspberry Pico2 W  [RP2350]
type Pico2WDevice struct {
	ref    *cyw43439.Device   // reference to device
	cfg    *Config            // bridge configuration
	log    *slog.Logger       // diagnostics
	stack  *stacks.PortStack  // TCP/IP stack (after join)
	dhcp   *stacks.DHCPClient // DHCP client of the stack
	addr   netip.Addr         // assigned address
	inited bool               // WiFi chip initialized
	tx     *pwmTransmitter
	rx     *pinReceiver
}

// InitDevice sets up the WiFi chip handle and the IR hardware.
func InitDevice(cfg *Config, log *slog.Logger) Device {
	dev := &Pico2WDevice{
		ref: cyw43439.NewPicoWDevice(),
		cfg: cfg,
		log: orDiscard(log),
	}
	dev.tx = newPWMTransmitter(machine.PWM2, IrLedPin)
	dev.rx = newPinReceiver(RecvPin, cfg.CaptureSize, cfg.GapTimeout)
	return dev
}

// IRWiring returns the GPIO pins of the IR hardware.
func (dev *Pico2WDevice) IRWiring() (rx, tx slog.Attr) {
	return slog.Int("pin", int(RecvPin)), slog.Int("pin", int(IrLedPin))
}

// LED on or off (if applicable)
func (dev *Pico2WDevice) LED(on bool) {
	dev.ref.GPIOSet(0, on)
}

// Transmitter of the device
func (dev *Pico2WDevice) Transmitter() Transmitter {
	return dev.tx
}

// Receiver of the device
func (dev *Pico2WDevice) Receiver() Receiver {
	return dev.rx
}

// Join a WPA2 (or open) network and obtain an address via DHCP. If DHCP
// fails, a configured IP is used as static address. A failed join can be
// retried; completed steps are not repeated.
func (dev *Pico2WDevice) Join(ssid, passwd string) (err error) {
	logger := dev.log
	if dev.addr.IsValid() {
		return nil
	}
	var reqAddr netip.Addr
	if len(dev.cfg.IP) > 0 {
		if reqAddr, err = netip.ParseAddr(dev.cfg.IP); err != nil {
			return fmt.Errorf("%w: %v", ErrIP, err)
		}
	}
	if !dev.inited {
		wificfg := cyw43439.DefaultWifiConfig()
		wificfg.Logger = logger
		logger.Info("initializing pico W device...")
		devInitTime := time.Now()
		if err = dev.ref.Init(wificfg); err != nil {
			return fmt.Errorf("%w: %v", ErrWiFi, err)
		}
		logger.Info("cyw43439:Init", slog.Duration("duration", time.Since(devInitTime)))
		dev.inited = true
	}
	if dev.stack == nil {
		if len(passwd) == 0 {
			logger.Info("joining open network:", slog.String("ssid", ssid))
		} else {
			logger.Info("joining WPA secure network", slog.String("ssid", ssid), slog.Int("passlen", len(passwd)))
		}
		if err = dev.ref.JoinWPA2(ssid, passwd); err != nil {
			return fmt.Errorf("%w: %v", ErrWPA2, err)
		}
		mac, _ := dev.ref.HardwareAddr6()
		logger.Info("wifi join success!", slog.String("mac", net.HardwareAddr(mac[:]).String()))
		dev.stack = newStack(dev.ref, mac, logger)
		dev.dhcp = stacks.NewDHCPClient(dev.stack, dhcp.DefaultClientPort)
	}
	dev.addr, err = requestAddr(dev.stack, dev.dhcp, reqAddr, dev.cfg.Hostname, logger)
	return
}

// Addr returns the assigned IP address
func (dev *Pico2WDevice) Addr() string {
	if !dev.addr.IsValid() {
		return ""
	}
	return dev.addr.String()
}

// Listen returns a TCP listener on the given port.
func (dev *Pico2WDevice) Listen(port uint16) (net.Listener, error) {
	if !dev.addr.IsValid() {
		return nil, ErrNoLink
	}
	listener, err := stacks.NewTCPListener(dev.stack, stacks.TCPListenerConfig{
		MaxConnections: 3,
		ConnTxBufSize:  512,
		ConnRxBufSize:  512,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListen, err)
	}
	if err = listener.StartListening(port); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListen2, err)
	}
	return listener, nil
}

//======================================================================
// network stack
// (derived from https://raw.githubusercontent.com/soypat/cyw43439,
// file '/examples/common/common.go')
//======================================================================

const mtu = cyw43439.MTU

// newStack creates the TCP/IP stack (HTTP and 9p listeners) and starts
// packet handling.
func newStack(dev *cyw43439.Device, mac [6]byte, logger *slog.Logger) *stacks.PortStack {
	stack := stacks.NewPortStack(stacks.PortStackConfig{
		MAC:             mac,
		MaxOpenPortsUDP: 1, // DHCP client
		MaxOpenPortsTCP: 2,
		MTU:             mtu,
		Logger:          logger,
	})
	dev.RecvEthHandle(stack.RecvEth)

	// Begin asynchronous packet handling.
	go nicLoop(dev, stack)
	return stack
}

// requestAddr runs DHCP; a requested IP serves as static fallback.
func requestAddr(stack *stacks.PortStack, dhcpClient *stacks.DHCPClient, reqAddr netip.Addr, hostname string, logger *slog.Logger) (netip.Addr, error) {
	err := dhcpClient.BeginRequest(stacks.DHCPRequestConfig{
		RequestedAddr: reqAddr,
		Xid:           uint32(time.Now().Nanosecond()),
		Hostname:      hostname,
	})
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %v", ErrDHCP, err)
	}
	i := 0
	for dhcpClient.State() != dhcp.StateBound {
		i++
		logger.Info("DHCP ongoing...")
		time.Sleep(time.Second / 2)
		if i > 15 {
			if !reqAddr.IsValid() {
				return netip.Addr{}, ErrLease
			}
			logger.Info("DHCP did not complete, assigning static IP", slog.String("ip", reqAddr.String()))
			stack.SetAddr(reqAddr)
			return reqAddr, nil
		}
	}
	ip := dhcpClient.Offer()
	logger.Info("DHCP complete",
		slog.Uint64("cidrbits", uint64(dhcpClient.CIDRBits())),
		slog.String("ourIP", ip.String()),
		slog.String("gateway", dhcpClient.Gateway().String()),
		slog.String("router", dhcpClient.Router().String()),
		slog.String("dhcp", dhcpClient.DHCPServer().String()),
		slog.String("hostname", string(dhcpClient.Hostname())),
		slog.Duration("lease", dhcpClient.IPLeaseTime()),
	)
	stack.SetAddr(ip) // It's important to set the IP address after DHCP completes.
	return ip, nil
}

func nicLoop(dev *cyw43439.Device, Stack *stacks.PortStack) {
	// Maximum number of packets to queue before sending them.
	const (
		queueSize                = 3
		maxRetriesBeforeDropping = 3
	)
	var queue [queueSize][mtu]byte
	var lenBuf [queueSize]int
	var retries [queueSize]int
	markSent := func(i int) {
		lenBuf[i] = 0
		retries[i] = 0
	}
	for {
		stallRx := true
		// Poll for incoming packets.
		gotPacket, err := dev.PollOne()
		if err != nil {
			println("poll error:", err.Error())
		}
		if gotPacket {
			stallRx = false
		}

		// Queue packets to be sent.
		for i := range queue {
			if retries[i] != 0 {
				continue // Packet currently queued for retransmission.
			}
			buf := queue[i][:]
			lenBuf[i], err = Stack.HandleEth(buf[:])
			if err != nil {
				println("stack error n(should be 0)=", lenBuf[i], "err=", err.Error())
				lenBuf[i] = 0
				continue
			}
			if lenBuf[i] == 0 {
				break
			}
		}
		if lenBuf == [queueSize]int{} {
			if stallRx {
				// Avoid busy waiting when both Rx and Tx stall.
				time.Sleep(51 * time.Millisecond)
			}
			continue
		}

		// Send queued packets.
		for i := range queue {
			n := lenBuf[i]
			if n <= 0 {
				continue
			}
			if err := dev.SendEth(queue[i][:n]); err != nil {
				// Queue packet for retransmission.
				retries[i]++
				if retries[i] > maxRetriesBeforeDropping {
					markSent(i)
					println("dropped outgoing packet:", err.Error())
				}
			} else {
				markSent(i)
			}
		}
	}
}

//======================================================================
// IR hardware
//======================================================================

// pwmGroup is the part of a TinyGo PWM slice we use.
type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmTransmitter modulates the IR LED with a 38kHz carrier: a mark
// switches the carrier on (50% duty), a space switches it off.
type pwmTransmitter struct {
	pwm  pwmGroup
	ch   uint8
	duty uint32
}

func newPWMTransmitter(pwm pwmGroup, pin machine.Pin) *pwmTransmitter {
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	pwm.Configure(machine.PWMConfig{Period: uint64(1e9) / ir.CarrierFreq})
	ch, _ := pwm.Channel(pin)
	pwm.Set(ch, 0)
	return &pwmTransmitter{
		pwm:  pwm,
		ch:   ch,
		duty: pwm.Top() / 2,
	}
}

// Send a signal once plus 'repeat' more times.
func (tx *pwmTransmitter) Send(proto ir.Protocol, code uint64, bits, repeat uint16) error {
	raw, err := ir.Encode(ir.Signal{Protocol: proto, Value: code, Bits: bits}, repeat)
	if err != nil {
		return err
	}
	for i, d := range raw {
		if i%2 == 0 {
			tx.pwm.Set(tx.ch, tx.duty)
		} else {
			tx.pwm.Set(tx.ch, 0)
		}
		spin(time.Duration(d) * time.Microsecond)
	}
	tx.pwm.Set(tx.ch, 0)
	return nil
}

// spin waits without yielding; sleeping is too coarse for IR timing.
func spin(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}

// level flag of a recorded edge (set: the segment was a mark)
const markFlag = 1 << 31

// pinReceiver records edge timings from the demodulator in an interrupt
// handler. A message is complete after the gap timeout passed without
// an edge.
type pinReceiver struct {
	pin     machine.Pin
	edges   []uint32     // recorded segments (microseconds | markFlag)
	count   atomic.Int32 // number of recorded segments
	lastUS  atomic.Int64 // time of last edge
	hold    atomic.Bool  // recording suspended
	gap     time.Duration
	capture *ir.Capture
	ready   bool
}

func newPinReceiver(pin machine.Pin, size int, gap time.Duration) *pinReceiver {
	rx := &pinReceiver{
		pin:     pin,
		edges:   make([]uint32, size),
		gap:     gap,
		capture: ir.NewCapture(size),
	}
	rx.lastUS.Store(time.Now().UnixMicro())
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	pin.SetInterrupt(machine.PinToggle, rx.edge)
	return rx
}

// edge runs in interrupt context
func (rx *pinReceiver) edge(p machine.Pin) {
	now := time.Now().UnixMicro()
	d := now - rx.lastUS.Swap(now)
	if rx.hold.Load() {
		return
	}
	n := rx.count.Load()
	if int(n) >= len(rx.edges) {
		return
	}
	if d > 0x7fffffff {
		d = 0x7fffffff
	}
	v := uint32(d)
	// active low: the pin went high, so the segment was a mark
	if p.Get() {
		v |= markFlag
	}
	rx.edges[n] = v
	rx.count.Store(n + 1)
}

// Decode a message once the line has been idle long enough.
func (rx *pinReceiver) Decode(res *ir.Signal) bool {
	if rx.ready {
		return false
	}
	n := int(rx.count.Load())
	if n == 0 {
		return false
	}
	if time.Duration(time.Now().UnixMicro()-rx.lastUS.Load())*time.Microsecond < rx.gap {
		return false
	}
	rx.hold.Store(true)
	rx.capture.Reset()
	for _, v := range rx.edges[:n] {
		rx.capture.Add(v&markFlag != 0, v&^markFlag)
	}
	sig, ok := ir.Decode(rx.capture.Raw())
	if !ok {
		rx.Resume()
		return false
	}
	*res = sig
	rx.ready = true
	return true
}

// Resume listening for the next message.
func (rx *pinReceiver) Resume() {
	rx.ready = false
	rx.count.Store(0)
	rx.hold.Store(false)
}

//----------------------------------------------------------------------

// SerialLogger writes diagnostics to the USB serial console.
func SerialLogger(level slog.Level) *slog.Logger {
	var w io.Writer = machine.Serial
	return NewLogger(w, level)
}
