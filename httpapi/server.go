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

// Package httpapi serves the REST surface of the bridge on a host with a
// full network stack.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	wifiremote "github.com/henper/wifiRemote"
)

// request limits
const (
	MaxBody      = 1024
	ReadTimeout  = 10 * time.Second
	WriteTimeout = 10 * time.Second
)

// Server for the bridge routes
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	log    *slog.Logger
}

// New server for the given routes.
func New(routes []wifiremote.Route, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine: gin.New(),
		log:    log,
	}
	s.engine.Use(gin.Recovery(), s.logRequest())
	for _, r := range routes {
		s.engine.Handle(r.Method, r.Path, s.handle(r))
	}
	s.engine.NoRoute(func(c *gin.Context) {
		reply(c, wifiremote.NotFound(c.Request.URL.Path))
	})
	s.srv = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}
	return s
}

// Handler of the REST surface
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve requests on the listener until shut down.
func (s *Server) Serve(lst net.Listener) error {
	if err := s.srv.Serve(lst); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handle a route: hand the body over and wait for the reply. A body
// beyond the limit is dropped; the route still answers.
func (s *Server) handle(r wifiremote.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBody)
		body, err := c.GetRawData()
		if err != nil {
			s.log.Warn("request body dropped",
				slog.String("path", c.Request.URL.Path),
				slog.String("err", err.Error()))
			body = nil
		}
		reply(c, r.Handle(c.Request.Context(), body))
	}
}

func reply(c *gin.Context, r wifiremote.Reply) {
	if len(r.Body) == 0 && len(r.ContentType) == 0 {
		c.Status(r.Status)
		return
	}
	c.Data(r.Status, r.ContentType, r.Body)
}

func (s *Server) logRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)),
			slog.String("peer", c.ClientIP()),
		)
	}
}
