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

// File is the content provider of a namespace entry.
type File interface {
	Read() ([]byte, error)
}

//----------------------------------------------------------------------

// TextFile with static content
type TextFile struct {
	body string
}

// NewTextFile creates a new static text file
func NewTextFile(content string) *TextFile {
	return &TextFile{
		body: content,
	}
}

// Read file content
func (f *TextFile) Read() ([]byte, error) {
	return []byte(f.body), nil
}

//----------------------------------------------------------------------

// FuncFile returns content generated by a function
type FuncFile struct {
	fcn func() ([]byte, error)
}

// NewFuncFile creates a new dynamic file
func NewFuncFile(fcn func() ([]byte, error)) *FuncFile {
	return &FuncFile{
		fcn: fcn,
	}
}

// Read file content
func (f *FuncFile) Read() ([]byte, error) {
	return f.fcn()
}
