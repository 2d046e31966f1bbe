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
	"log/slog"
	"time"

	"github.com/henper/wifiRemote/ir"
)

// Error codes
var (
	ErrStopped = errors.New("bridge stopped")
)

// Option configures a Bridge.
type Option func(*Options)

// Options for a Bridge
type Options struct {
	PollInterval time.Duration
	JobBuffer    int
	Link         LinkState
	OnError      func(sig ir.Signal, err error)
}

func defaultOptions() Options {
	return Options{
		PollInterval: DefaultPollInterval,
		JobBuffer:    1,
		Link:         Disconnected,
	}
}

// WithPollInterval sets how long the loop waits for a request before
// polling the receiver again.
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.PollInterval = d
		}
	}
}

// WithJobBuffer sets the number of requests that may wait for the loop.
func WithJobBuffer(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.JobBuffer = n
		}
	}
}

// WithLinkState records the result of network bring-up.
func WithLinkState(s LinkState) Option {
	return func(o *Options) {
		o.Link = s
	}
}

// WithOnError is called on the loop for every failed retransmission.
func WithOnError(fcn func(sig ir.Signal, err error)) Option {
	return func(o *Options) {
		o.OnError = fcn
	}
}

//----------------------------------------------------------------------

type job struct {
	fcn  func()
	done chan struct{}
}

// Bridge runs the single control loop: it services at most one pending
// request, polls the receiver once and yields. Transmitter, receiver and
// all counters are only touched from the loop; transports hand their
// work to it with Do.
type Bridge struct {
	opts       Options
	log        *slog.Logger
	dispatcher *Dispatcher
	relay      *Relay
	jobs       chan job
	stopped    chan struct{}
}

// NewBridge between the IR hardware and the network transports.
func NewBridge(tx Transmitter, rx Receiver, log *slog.Logger, opts ...Option) *Bridge {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log = orDiscard(log)
	relay := NewRelay(rx, tx, log)
	relay.onError = o.OnError
	return &Bridge{
		opts:       o,
		log:        log,
		dispatcher: NewDispatcher(tx, log),
		relay:      relay,
		jobs:       make(chan job, o.JobBuffer),
		stopped:    make(chan struct{}),
	}
}

// Run the control loop until the context is done.
func (b *Bridge) Run(ctx context.Context) error {
	defer close(b.stopped)
	tick := time.NewTicker(b.opts.PollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-b.jobs:
			j.fcn()
			close(j.done)
		case <-tick.C:
		}
		b.relay.Poll()
	}
}

// Do executes a function on the loop and waits for it to complete.
func (b *Bridge) Do(ctx context.Context, fcn func()) error {
	j := job{
		fcn:  fcn,
		done: make(chan struct{}),
	}
	select {
	case b.jobs <- j:
	case <-b.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-j.done:
		return nil
	case <-b.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch a command payload on the loop.
func (b *Bridge) Dispatch(ctx context.Context, payload string) (matched bool, err error) {
	err = b.Do(ctx, func() {
		matched = b.dispatcher.Dispatch(payload)
	})
	return
}

// Stats of the bridge
type Stats struct {
	Link       LinkState
	Requests   uint64
	Matched    uint64
	TxFailed   uint64
	Relayed    uint64
	RelayFails uint64
	Last       *ir.Signal
	LastErr    error
}

// Stats returns a snapshot of the bridge counters.
func (b *Bridge) Stats(ctx context.Context) (st Stats, err error) {
	err = b.Do(ctx, func() {
		d, r := b.dispatcher, b.relay
		st = Stats{
			Link:       b.opts.Link,
			Requests:   d.requests,
			Matched:    d.matched,
			TxFailed:   d.failed,
			Relayed:    r.relayed,
			RelayFails: r.failed,
			LastErr:    r.lastErr,
		}
		if r.hasLast {
			last := r.last
			st.Last = &last
		}
	})
	return
}

// Table returns the command table.
func (b *Bridge) Table() map[Command]Transmission {
	return b.dispatcher.Table()
}

// Commands returns the known commands in sorted order.
func (b *Bridge) Commands() []Command {
	return b.dispatcher.Commands()
}
