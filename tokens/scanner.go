/*
 * scanner.go, part of gtcout
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

//Package tokens turns a stream of text into a stream of whitespace-separated
//tokens, which is all the output files of the simulation are made of.
//The files can be large, so nothing is ever read ahead of what the consumer asks for,
//except for the buffer of the underlying reader.
package tokens

import (
	"bufio"
	"errors"
	"io"

	"github.com/rmera/gtcout"
)

//DefaultMaxTokenSize is the longest token a Scanner accepts unless told otherwise.
//Tokens in the output files are numbers, so anything near this is garbage.
const DefaultMaxTokenSize = 1 << 20

//Scanner yields the tokens of a reader one at a time.
//Tokens are separated by any run of white space, newlines included. A token split
//between two reads of the underlying reader is put back together.
//Scanner implements gtcout.TokenSource.
type Scanner struct {
	sc    *bufio.Scanner
	name  string
	count int
	err   error //sticky: once set, every Next returns it
}

//NewScanner returns a Scanner reading from r. name identifies the source in errors.
//An optional maximum token size can be given.
func NewScanner(r io.Reader, name string, maxTokenSize ...int) *Scanner {
	max := DefaultMaxTokenSize
	if len(maxTokenSize) > 0 && maxTokenSize[0] > 0 {
		max = maxTokenSize[0]
	}
	sc := bufio.NewScanner(r)
	initial := 64 * 1024
	if initial > max {
		initial = max
	}
	sc.Buffer(make([]byte, 0, initial), max)
	sc.Split(bufio.ScanWords)
	return &Scanner{sc: sc, name: name}
}

//Next returns the next token. At the end of the input it returns an error implementing
//gtcout.LastTokenError, which is not a failure. Other errors are critical.
func (S *Scanner) Next() (string, error) {
	if S.err != nil {
		return "", S.err
	}
	if S.sc.Scan() {
		S.count++
		return S.sc.Text(), nil
	}
	err := S.sc.Err()
	switch {
	case err == nil:
		S.err = newLastTokenError(S.name, "Next")
	case errors.Is(err, bufio.ErrTooLong):
		S.err = &Error{TooLong, S.name, []string{"Next"}, true, err}
	default:
		S.err = &Error{ReadError, S.name, []string{"bufio.Scanner.Scan", "Next"}, true, err}
	}
	return "", S.err
}

//Count returns how many tokens Next has returned so far.
func (S *Scanner) Count() int {
	return S.count
}

//Name returns the name of the source.
func (S *Scanner) Name() string {
	return S.name
}

var _ gtcout.TokenSource = &Scanner{}
