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

package merge

import (
	"fmt"
	"strings"

	"github.com/rmera/gtcout"
)

//SetupError means the merge was given a number of files different from the number
//of processes of the run. Nothing is read in that case.
type SetupError struct {
	Expected int
	Got      int
	deco     []string
}

func (E *SetupError) Error() string {
	return fmt.Sprintf("tracking merge expects %d per-process files, got %d", E.Expected, E.Got)
}

//Decorate adds new information to the error
func (E *SetupError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//Critical always returns true
func (E *SetupError) Critical() bool { return true }

//DesyncError means the per-process files do not agree on the steps they hold.
//Such a set of files is corrupted, not merely partial.
type DesyncError struct {
	Round   int      //0-based merge round
	Ended   []string //files that had no more steps
	Going   []string //files that still had steps
	Steps   map[string]int
	message string
	deco    []string
}

func (E *DesyncError) Error() string {
	if len(E.Ended) > 0 {
		return fmt.Sprintf("tracking files out of step in round %d: %s ended while %s went on", E.Round, strings.Join(E.Ended, ", "), strings.Join(E.Going, ", "))
	}
	return fmt.Sprintf("tracking files out of step in round %d: %s", E.Round, E.message)
}

//Decorate adds new information to the error
func (E *DesyncError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//Critical always returns true
func (E *DesyncError) Critical() bool { return true }

//Error is returned when the particles of a step cannot be matched with those of
//the first step.
type Error struct {
	Round   int
	Step    int
	message string
	deco    []string
}

func (E *Error) Error() string {
	return fmt.Sprintf("merging tracking step %d (round %d): %s", E.Step, E.Round, E.message)
}

//Decorate adds new information to the error
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//Critical always returns true
func (E *Error) Critical() bool { return true }

var (
	_ gtcout.Error = &SetupError{}
	_ gtcout.Error = &DesyncError{}
	_ gtcout.Error = &Error{}
)
