/*
 * errors.go, part of gtcout
 *
 * Copyright 2024 The gtcout Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package tokens

import (
	"fmt"

	"github.com/rmera/gtcout"
)

//Error is the general structure for token source errors. It fullfills gtcout.Error and gtcout.FileError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
	err      error //underlying cause, if any
}

func (err *Error) Error() string {
	if err.err != nil {
		return fmt.Sprintf("token source %s error: %s: %v", err.filename, err.message, err.err)
	}
	return fmt.Sprintf("token source %s error: %s", err.filename, err.message)
}

func (err *Error) Unwrap() error { return err.err }

//Decorate adds new information to the error
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing source was associated
func (err *Error) FileName() string { return err.filename }

//Format returns the format of the source
func (err *Error) Format() string { return "text" }

//Critical returns true if the error is critical, false otherwise
func (err *Error) Critical() bool { return err.critical }

const (
	ReadError    = "Error reading from source"
	UnableToOpen = "Unable to open file"
	Compression  = "Unable to set up decompression"
	TooLong      = "Token longer than the maximum token size"
	EOF          = "EOF"
)

//lastTokenError implements gtcout.LastTokenError
type lastTokenError struct {
	deco     []string
	fileName string
}

//NormalEndOfStream does nothing
func (E *lastTokenError) NormalEndOfStream() {}

func (E *lastTokenError) FileName() string { return E.fileName }

func (E *lastTokenError) Error() string { return EOF }

func (E *lastTokenError) Critical() bool { return false }

func (E *lastTokenError) Format() string { return "text" }

func (E *lastTokenError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastTokenError(filename string, caller string) *lastTokenError {
	e := new(lastTokenError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}

//Type assertions
var (
	_ gtcout.FileError      = &Error{}
	_ gtcout.LastTokenError = &lastTokenError{}
)
