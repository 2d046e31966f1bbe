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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	wifiremote "github.com/henper/wifiRemote"
	"github.com/henper/wifiRemote/config"
	"github.com/henper/wifiRemote/httpapi"
	"github.com/henper/wifiRemote/ir"
)

// run the bridge on a Linux host
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Println("usage: wifiremote [--config file] [--ssid ...] [--lirc-device /dev/lirc0] ...")
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.PrintConfig {
		if err = cfg.Dump(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	log, closer, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()
	if f := cfg.ConfigFile(); len(f) > 0 {
		log.Info("configuration loaded", slog.String("file", f))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// access device
	dev := wifiremote.InitDevice(&cfg.Config, log)
	if c, ok := dev.(interface{ Close() error }); ok {
		defer c.Close()
	}
	state := wifiremote.NewStatus(dev, log)

	link := wifiremote.Associate(ctx, dev, &cfg.Config, log)
	bridge := wifiremote.NewBridge(dev.Transmitter(), dev.Receiver(), log,
		wifiremote.WithLinkState(link),
		wifiremote.WithPollInterval(cfg.PollInterval),
		wifiremote.WithOnError(func(ir.Signal, error) {
			state.Set(wifiremote.StatTX, 3)
		}),
	)

	var (
		srv      *httpapi.Server
		services []wifiremote.Service
	)
	if link == wifiremote.Connected {
		// REST surface
		gin.SetMode(gin.ReleaseMode)
		if lst, err := dev.Listen(cfg.HTTPPort); err != nil {
			log.Error("HTTP listener failed", slog.String("err", err.Error()))
			state.Set(wifiremote.StatusOf(err), 0)
		} else {
			srv = httpapi.New(bridge.Routes(), log)
			go func() {
				if err := srv.Serve(lst); err != nil {
					log.Error("HTTP server failed", slog.String("err", err.Error()))
					state.Set(wifiremote.StatSRV, 0)
				}
			}()
			services = append(services, wifiremote.Service{
				Name: "HTTP server",
				At:   slog.String("addr", lst.Addr().String()),
			})
		}
		// diagnostics via 9p
		if cfg.NinePPort != 0 {
			if addr, ok := serveDiagnostics(dev, bridge, cfg.NinePPort, log); ok {
				services = append(services, wifiremote.Service{
					Name: "9p server",
					At:   slog.String("addr", addr),
				})
			}
		}
	} else {
		state.Set(wifiremote.StatWPA2, 0)
	}
	services = append(services, wifiremote.IRServices(dev)...)
	wifiremote.LogServices(log, services)

	// control loop (until interrupted)
	if err = bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bridge failed", slog.String("err", err.Error()))
	}
	log.Info("shutting down")
	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err = srv.Shutdown(sctx); err != nil {
			log.Warn("HTTP shutdown", slog.String("err", err.Error()))
		}
	}
}

// serveDiagnostics exposes the bridge state as 9p namespace.
func serveDiagnostics(dev wifiremote.Device, bridge *wifiremote.Bridge, port uint16, log *slog.Logger) (string, bool) {
	ns, err := wifiremote.NewDiagnostics(bridge, "sys")
	if err != nil {
		log.Error("diagnostics namespace", slog.String("err", err.Error()))
		return "", false
	}
	lst, err := dev.Listen(port)
	if err != nil {
		log.Error("9p listener failed", slog.String("err", err.Error()))
		return "", false
	}
	go func() {
		if err := ns.Serve(lst); err != nil {
			log.Warn("9p server stopped", slog.String("err", err.Error()))
		}
	}()
	return lst.Addr().String(), true
}
