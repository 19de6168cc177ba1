/*
 * interfaces.go, part of gtcout.
 *
 *
 * Copyright 2024 The gtcout Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package gtcout

import "errors"

// TokenSource is a forward-only, read-once sequence of string tokens.
type TokenSource interface {
	// Next returns the next token. When the source is exhausted it returns
	// an error that implements LastTokenError, and keeps returning it on
	// further calls.
	Next() (string, error)

	// Count returns the number of tokens handed out so far.
	Count() int

	// Name identifies the source (usually a file name) in error messages.
	Name() string
}

//Errors

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Each call returns the decoration slice after the current call. An empty string just returns the current value.
}

// FileError is the interface for errors tied to one output file.
type FileError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastTokenError has a useless function to distinguish the harmless errors (i.e. the end of a token stream) so they can be
// filtered in a type switch that looks for this interface.
type LastTokenError interface {
	FileError
	NormalEndOfStream() //does nothing, just to separate this interface from other FileError's
}

// IsEndOfStream reports whether err marks the normal end of a token stream.
func IsEndOfStream(err error) bool {
	var last LastTokenError
	return errors.As(err, &last)
}
