/*
 * completeness.go, part of gtcout.
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

import "fmt"

// Status says whether a file holds every step its header announced.
type Status string

const (
	Complete Status = "complete"
	Partial  Status = "partial"
)

// Completeness is the outcome of comparing the steps found in a file with the
// steps its header announced. A short file is partial, never corrupt: files of
// a simulation that is still running are legitimately short.
type Completeness struct {
	Status      Status
	Observed    int
	Expected    int
	HasExpected bool
	Discarded   int //tokens of a trailing block too short to be a step
}

func (C Completeness) String() string {
	if !C.HasExpected {
		return fmt.Sprintf("%s (%d steps)", C.Status, C.Observed)
	}
	return fmt.Sprintf("%s (%d of %d steps)", C.Status, C.Observed, C.Expected)
}

// CheckCompleteness computes the number of whole steps in a file from the
// number of tokens consumed, the size of the header and the size of one step,
// and compares it with the expected step count, if the header declared one.
// perStep must be positive; for files with variable-size steps use
// CompletenessFromSteps.
func CheckCompleteness(consumed, headerTokens, perStep, expected int, hasExpected bool) Completeness {
	body := consumed - headerTokens
	if body < 0 {
		body = 0
	}
	observed, discarded := 0, body
	if perStep > 0 {
		observed = body / perStep
		discarded = body - observed*perStep
	}
	C := CompletenessFromSteps(observed, expected, hasExpected)
	C.Discarded = discarded
	return C
}

// CompletenessFromSteps classifies a file from an already known step count.
func CompletenessFromSteps(observed, expected int, hasExpected bool) Completeness {
	C := Completeness{Status: Complete, Observed: observed, Expected: expected, HasExpected: hasExpected}
	if hasExpected && observed != expected {
		C.Status = Partial
	}
	return C
}
