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

package grammar

import (
	"fmt"

	"github.com/rmera/gtcout"
)

//DecodeError is returned when a file cannot be decoded. It is always fatal for the file:
//a file that fails to decode is never reported as partial.
type DecodeError struct {
	Kind    gtcout.Kind
	File    string
	Offset  int    //1-based position of the offending token, or number of tokens read when the error happened.
	Token   string //the offending token, if any
	message string
	deco    []string
	err     error
}

func (E *DecodeError) Error() string {
	s := fmt.Sprintf("decoding %s file %s at token %d: %s", E.Kind, E.File, E.Offset, E.message)
	if E.Token != "" {
		s += fmt.Sprintf(" (%q)", E.Token)
	}
	if E.err != nil {
		s += ": " + E.err.Error()
	}
	return s
}

func (E *DecodeError) Unwrap() error { return E.err }

//Message returns the description of the problem, without the context.
func (E *DecodeError) Message() string { return E.message }

//Decorate adds new information to the error
func (E *DecodeError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file that failed to decode
func (E *DecodeError) FileName() string { return E.File }

//Format returns the kind of the file
func (E *DecodeError) Format() string { return string(E.Kind) }

//Critical always returns true
func (E *DecodeError) Critical() bool { return true }

const (
	Malformed    = "Malformed token"
	Truncated    = "Stream ended inside a fixed part of the file"
	TrailingData = "Token after the end of the grammar"
	BadLayout    = "Header declares an impossible layout"
	Inconsistent = "Token count does not agree with the decoded steps"
	SourceFailed = "Unable to read from the token source"
	Unfinished   = "Decoding was not finished"
)

var _ gtcout.FileError = &DecodeError{}
