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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/soypat/seqs/httpx"
)

// limits for requests served without a full HTTP stack
const (
	maxBody     = 1024
	connTimeout = 5 * time.Second
)

// Error codes
var (
	ErrRequest = errors.New("malformed request")
)

// Request as read from a connection
type Request struct {
	Method string
	Path   string
	Body   []byte

	// Oversized is set if a body beyond the limit was skipped.
	Oversized bool
}

// ReadRequest parses a single HTTP/1.x request. Only the request line,
// Content-Length and the body are of interest; other headers are skipped.
// Bodies larger than the limit are read and dropped.
func ReadRequest(rdr *bufio.Reader) (req *Request, err error) {
	var hdr httpx.RequestHeader
	if err = hdr.Read(rdr); err != nil {
		var none httpx.ErrNothingRead
		if err == io.EOF || errors.As(err, &none) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	if proto := string(hdr.Protocol()); !strings.HasPrefix(proto, "HTTP/") {
		return nil, fmt.Errorf("%w: protocol '%s'", ErrRequest, proto)
	}
	req = &Request{
		Method: string(hdr.Method()),
		Path:   string(hdr.RequestURI()),
	}
	if i := strings.IndexByte(req.Path, '?'); i >= 0 {
		req.Path = req.Path[:i]
	}
	size := 0
	if cl := hdr.Peek("Content-Length"); len(cl) > 0 {
		if size, err = strconv.Atoi(string(cl)); err != nil {
			return nil, fmt.Errorf("%w: content length '%s'", ErrRequest, cl)
		}
	}
	if size > maxBody {
		if _, err = io.CopyN(io.Discard, rdr, int64(size)); err != nil {
			return nil, err
		}
		req.Oversized = true
		return req, nil
	}
	if size > 0 {
		req.Body = make([]byte, size)
		if _, err = io.ReadFull(rdr, req.Body); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// WriteReply sends a reply as HTTP/1.1 response; the connection is closed
// afterwards.
func WriteReply(w io.Writer, r Reply) error {
	var hdr httpx.ResponseHeader
	hdr.SetStatusCode(r.Status)
	if len(r.ContentType) > 0 {
		hdr.SetContentType(r.ContentType)
	}
	hdr.SetContentLength(len(r.Body))
	hdr.SetConnectionClose()
	buf := hdr.AppendBytes(make([]byte, 0, 128+len(r.Body)))
	_, err := w.Write(append(buf, r.Body...))
	return err
}

// Server answers REST requests on a listener, one connection at a time.
// It is used where no full HTTP stack is available.
type Server struct {
	routes []Route
	log    *slog.Logger
}

// NewServer for the given routes.
func NewServer(routes []Route, log *slog.Logger) *Server {
	return &Server{routes: routes, log: orDiscard(log)}
}

// Serve connections until the listener fails or the context is done.
func (srv *Server) Serve(ctx context.Context, lst net.Listener) error {
	go func() {
		<-ctx.Done()
		lst.Close()
	}()
	for {
		conn, err := lst.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			srv.log.Error("accept failed", slog.String("err", err.Error()))
			return err
		}
		srv.handle(ctx, conn)
	}
}

// handle a single request on a connection
func (srv *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connTimeout))
	req, err := ReadRequest(bufio.NewReader(conn))
	if err != nil {
		srv.log.Warn("bad request", slog.String("err", err.Error()))
		if errors.Is(err, ErrRequest) {
			WriteReply(conn, Reply{Status: 400})
		}
		return
	}
	if req.Oversized {
		srv.log.Warn("request body dropped", slog.String("path", req.Path))
	}
	reply := NotFound(req.Path)
	if r, ok := Lookup(srv.routes, req.Method, req.Path); ok {
		reply = r.Handle(ctx, req.Body)
	}
	if err = WriteReply(conn, reply); err != nil {
		srv.log.Warn("reply failed", slog.String("err", err.Error()))
	}
}
