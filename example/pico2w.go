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

package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	wifiremote "github.com/henper/wifiRemote"
	"github.com/henper/wifiRemote/ir"
)

// WiFi credentials and addressing (set with -ldflags "-X main.SSID=...")
var (
	SSID   string
	Passwd string
	Host   string
	IP     string
	Port   string
)

// run the bridge
func main() {
	log := wifiremote.SerialLogger(slog.LevelInfo)

	cfg := wifiremote.DefaultConfig()
	cfg.SSID, cfg.Passwd, cfg.IP = SSID, Passwd, IP
	if len(Host) > 0 {
		cfg.Hostname = Host
	}
	if len(Port) > 0 {
		port, err := strconv.ParseUint(Port, 10, 16)
		if err != nil {
			log.Error("invalid port", slog.String("port", Port))
		} else {
			cfg.HTTPPort = uint16(port)
		}
	}

	// access device
	dev := wifiremote.InitDevice(cfg, log)
	state := wifiremote.NewStatus(dev, log)
	defer state.Trap(30 * time.Second)
	if err := cfg.Validate(); err != nil {
		log.Error(err.Error())
		state.Set(wifiremote.StatPORT, 0)
		return
	}
	state.Set(wifiremote.StatOK, 0)

	// connect to WiFi; without network the relay still runs
	ctx := context.Background()
	link := wifiremote.Associate(ctx, dev, cfg, log)
	if link != wifiremote.Connected {
		state.Set(wifiremote.StatWPA2, 0)
	}
	bridge := wifiremote.NewBridge(dev.Transmitter(), dev.Receiver(), log,
		wifiremote.WithLinkState(link),
		wifiremote.WithPollInterval(cfg.PollInterval),
		wifiremote.WithOnError(func(ir.Signal, error) {
			state.Set(wifiremote.StatTX, 3)
		}),
	)

	var services []wifiremote.Service
	if link == wifiremote.Connected {
		// REST surface
		lst, err := dev.Listen(cfg.HTTPPort)
		if err != nil {
			state.Set(wifiremote.StatusOf(err), 0)
		} else {
			srv := wifiremote.NewServer(bridge.Routes(), log)
			go func() {
				if err := srv.Serve(ctx, lst); err != nil {
					state.Set(wifiremote.StatSRV, 3)
				}
			}()
			services = append(services, wifiremote.Service{
				Name: "HTTP server",
				At:   slog.String("addr", dev.Addr()+":"+strconv.Itoa(int(cfg.HTTPPort))),
			})
		}
		// diagnostics via 9p
		if cfg.NinePPort != 0 && serveDiagnostics(dev, bridge, cfg.NinePPort, state) {
			services = append(services, wifiremote.Service{
				Name: "9p server",
				At:   slog.Int("port", int(cfg.NinePPort)),
			})
		}
	}
	services = append(services, wifiremote.IRServices(dev)...)
	wifiremote.LogServices(log, services)

	// control loop
	bridge.Run(ctx)

	// srv tcp!<host>!9fs wifiremote
	// mount /srv/wifiremote /n/remote
	// cat /n/remote/status
}

// serveDiagnostics exposes the bridge state as 9p namespace.
func serveDiagnostics(dev wifiremote.Device, bridge *wifiremote.Bridge, port uint16, state *wifiremote.Status) bool {
	ns, err := wifiremote.NewDiagnostics(bridge, "sys")
	if err != nil {
		state.Set(wifiremote.StatNS, 3)
		return false
	}
	lst, err := dev.Listen(port)
	if err != nil {
		state.Set(wifiremote.StatusOf(err), 3)
		return false
	}
	go func() {
		if err := ns.Serve(lst); err != nil {
			state.Set(wifiremote.StatSRV, 3)
		}
	}()
	return true
}
