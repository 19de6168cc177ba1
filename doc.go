/*
 * doc.go, part of gtcout.
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
 */

/*Package gtcout is the main package of the gtcout library. It provides the records, arrays and
completeness reports produced when decoding the output files of a gyrokinetic particle-in-cell
simulation, and the interfaces shared by the packages that read them.



	**gtcout Capabilities**


    Reads the history, radial-time, snapshot, equilibrium and particle tracking
	files as whitespace separated token streams, plain or compressed with zstd,
	gzip or LZW (package tokens).

    Decodes each kind with a declarative grammar: a header, fixed parts whose
	sizes depend on the header, and a step block repeated until the end of the
	file (package grammar).

    Tells whether a file holds all the steps its header announces. Files of a
	running simulation are short, and are reported as partial, not as broken.

    Merges the per-process particle tracking files into one trajectory, with
	one slot per tagged particle (package merge).

    Decodes all the files of a run concurrently from a YAML description of the
	run (packages config and run), and exports the progress as Prometheus metrics
	(package metrics).

    The gtcout command wraps all of the above, and can watch the files of a
	running simulation.


Records are read-only once decoded. Arrays can be obtained as gonum matrices,
and records can be JSON encoded.

*/
package gtcout
