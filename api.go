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
	"log/slog"
)

// REST surface constants
const (
	WelcomeText       = "Welcome to the wifiRemote REST Web Server"
	PathRoot          = "/"
	PathMultibrackets = "/multibrackets"

	MethodGet  = "GET"
	MethodPost = "POST"

	StatusOK       = 200
	StatusNotFound = 404
)

// Reply to a REST request
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

// Route is a REST endpoint. Handle may block until the loop serviced the
// request.
type Route struct {
	Method string
	Path   string
	Handle func(ctx context.Context, body []byte) Reply
}

// Routes returns the REST surface of the bridge.
func (b *Bridge) Routes() []Route {
	return []Route{
		{Method: MethodGet, Path: PathRoot, Handle: b.welcome},
		{Method: MethodPost, Path: PathMultibrackets, Handle: b.multibrackets},
	}
}

// Lookup finds the route for a request.
func Lookup(routes []Route, method, path string) (Route, bool) {
	for _, r := range routes {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// NotFound is the reply for unknown endpoints.
func NotFound(path string) Reply {
	return Reply{
		Status:      StatusNotFound,
		ContentType: "text/plain",
		Body:        []byte("Not found: " + path),
	}
}

func (b *Bridge) welcome(context.Context, []byte) Reply {
	return Reply{
		Status:      StatusOK,
		ContentType: "text/html",
		Body:        []byte(WelcomeText),
	}
}

// multibrackets acknowledges every payload the same way, whether or not
// it matched a command.
func (b *Bridge) multibrackets(ctx context.Context, body []byte) Reply {
	payload := string(body)
	b.log.Info("Received HTTP POST", slog.String("t", Stamp()), slog.String("body", payload))
	if _, err := b.Dispatch(ctx, payload); err != nil {
		b.log.Warn("command not dispatched", slog.String("err", err.Error()))
	}
	return Reply{Status: StatusOK}
}
