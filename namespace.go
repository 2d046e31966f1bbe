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
	"errors"
	"net"
	"path"
	"strings"

	"git.sr.ht/~moody/ninep"
)

// Error messages
var (
	errNoRoot = errors.New("no root directory")
	errNoFile = errors.New("no such file or directory")
	errNoDir  = errors.New("not a directory")
	errNoAbs  = errors.New("no absolute path")
	errExists = errors.New("file exists")
)

//----------------------------------------------------------------------

// Entry in the filesystem
type Entry struct {
	ref      *ninep.Dir        // 9p reference
	children map[string]*Entry // list of children (for folders) or nil
	file     File              // file implementation or nil (for folders)
}

// IsDir returns true if entry is a directory
func (e *Entry) IsDir() bool {
	return e.children != nil
}

//----------------------------------------------------------------------

// Namespace is a read-only 9p filesystem of diagnostic files.
type Namespace struct {
	ninep.NopFS                   // use default handlers where needed
	user, group string            // owner of all entries
	dict        map[uint64]*Entry // map Qid.Path to filesystem entry
	nextId      uint64            // next Qid.Path
}

// NewNamespace creates an empty namespace (root directory only)
func NewNamespace(user, group string) *Namespace {
	ns := &Namespace{
		user:  user,
		group: group,
		dict:  make(map[uint64]*Entry),
	}
	ns.newEntry("/", 0555, nil)
	return ns
}

// Root directory of the namespace
func (ns *Namespace) Root() *Entry {
	return ns.dict[0]
}

// NewDir creates a directory at the given absolute path.
func (ns *Namespace) NewDir(p string, perm uint32) error {
	return ns.add(p, perm, nil)
}

// NewFile creates a file at the given absolute path.
func (ns *Namespace) NewFile(p string, perm uint32, impl File) error {
	if impl == nil {
		return errNoFile
	}
	return ns.add(p, perm, impl)
}

func (ns *Namespace) add(p string, perm uint32, impl File) error {
	dir, name := path.Split(path.Clean(p))
	if len(name) == 0 {
		return errExists
	}
	parent, err := ns.Get(dir)
	if err != nil {
		return err
	}
	if !parent.IsDir() {
		return errNoDir
	}
	if _, ok := parent.children[name]; ok {
		return errExists
	}
	e := ns.newEntry(name, perm, impl)
	parent.children[name] = e
	return nil
}

// Create a new entry in the filesystem.
// If impl is nil, the entry represents a directory; otherwise a file.
func (ns *Namespace) newEntry(name string, perm uint32, impl File) *Entry {
	e := new(Entry)
	kind := ninep.QTFile
	if impl == nil {
		kind = ninep.QTDir
		e.children = make(map[string]*Entry)
		perm |= ninep.DMDir
	} else {
		e.file = impl
	}
	e.ref = &ninep.Dir{
		Qid: ninep.Qid{
			Path: ns.nextId,
			Vers: 0,
			Type: byte(kind),
		},
		Name: name,
		Mode: perm,
		Uid:  ns.user,
		Gid:  ns.group,
		Muid: ns.user,
	}
	ns.dict[ns.nextId] = e
	ns.nextId++
	return e
}

// Get entry for absolute path
func (ns *Namespace) Get(p string) (*Entry, error) {
	if len(p) == 0 || p[0] != '/' {
		return nil, errNoAbs
	}
	curr := ns.Root()
	for _, label := range strings.Split(p[1:], "/") {
		if len(label) == 0 {
			continue
		}
		if !curr.IsDir() {
			return nil, errNoDir
		}
		e, ok := curr.children[label]
		if !ok {
			return nil, errNoFile
		}
		curr = e
	}
	return curr, nil
}

// Serve namespace on all connections accepted by the listener.
func (ns *Namespace) Serve(lst net.Listener) error {
	for {
		c, err := lst.Accept()
		if err != nil {
			return err
		}
		srv := ninep.NewSrv(func() ninep.FS { return ns })
		go func() {
			srv.ServeIO(c, c)
			c.Close()
		}()
	}
}

//----------------------------------------------------------------------
// 9p handlers
//----------------------------------------------------------------------

// Attach to namespace
func (ns *Namespace) Attach(t *ninep.Tattach) {
	if e, ok := ns.dict[0]; ok {
		t.Respond(&e.ref.Qid)
	} else {
		t.Err(errNoRoot)
	}
}

// Walk to next entry
func (ns *Namespace) Walk(cur *ninep.Qid, next string) *ninep.Qid {
	e, ok := ns.dict[cur.Path]
	if !ok || !e.IsDir() {
		return nil
	}
	if c, ok := e.children[next]; ok {
		return &c.ref.Qid
	}
	return nil
}

// Open entry
func (ns *Namespace) Open(t *ninep.Topen, q *ninep.Qid) {
	t.Respond(q, 8192)
}

// Read from entry
func (ns *Namespace) Read(t *ninep.Tread, q *ninep.Qid) {
	e, ok := ns.dict[q.Path]
	if !ok {
		t.Err(errNoFile)
		return
	}
	if e.IsDir() {
		var kids []ninep.Dir
		for _, c := range e.children {
			kids = append(kids, *c.ref)
		}
		ninep.ReadDir(t, kids)
		return
	}
	data, err := e.file.Read()
	if err != nil {
		t.Err(err)
	} else {
		ninep.ReadBuf(t, data)
	}
}

// Stat entry
func (ns *Namespace) Stat(t *ninep.Tstat, q *ninep.Qid) {
	e, ok := ns.dict[q.Path]
	if !ok {
		t.Err(errNoFile)
	} else {
		t.Respond(e.ref)
	}
}
