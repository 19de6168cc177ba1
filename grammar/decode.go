/*
 * decode.go, part of gtcout
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
	"context"
	"fmt"

	"github.com/rmera/gtcout"
	"github.com/rmera/gtcout/tokens"
)

//How many tokens are read between checks of the context.
const checkEvery = 4096

//DefaultDims is the number of coordinates per particle in tracking files.
const DefaultDims = 3

//Options for decoding a file.
type Options struct {
	Species gtcout.Species //species loaded in the run
	Dims    int            //coordinates per tracked particle, DefaultDims if 0
	Discard bool           //hand steps out through Block instead of keeping them in the record
}

func (o Options) dims() int {
	if o.Dims <= 0 {
		return DefaultDims
	}
	return o.Dims
}

//Stream drives an Engine with the tokens of a source.
type Stream struct {
	src   gtcout.TokenSource
	eng   *Engine
	pulls int
}

//NewStream prepares the decoding of src with the grammar d.
func NewStream(src gtcout.TokenSource, d *Descriptor, opts Options) (*Stream, error) {
	eng, err := NewEngine(d, src.Name(), opts)
	if err != nil {
		return nil, err
	}
	return &Stream{src: src, eng: eng}, nil
}

//Engine returns the engine driven by the stream.
func (S *Stream) Engine() *Engine { return S.eng }

//Advance pulls tokens from the source until the engine commits a step (StepDone) or
//needs nothing else (Done). Done is also returned, with a nil error, when the source
//runs out of tokens in a place where the grammar allows it.
func (S *Stream) Advance(ctx context.Context) (Action, error) {
	if S.eng.Finished() {
		return Done, nil
	}
	for {
		if S.pulls%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return NeedToken, err
			}
		}
		S.pulls++
		tok, err := S.src.Next()
		if gtcout.IsEndOfStream(err) {
			if err := S.eng.End(); err != nil {
				return NeedToken, err
			}
			return Done, nil
		}
		if err != nil {
			return NeedToken, &DecodeError{Kind: S.eng.d.Kind, File: S.src.Name(), Offset: S.src.Count(), message: SourceFailed, err: err}
		}
		act, err := S.eng.Feed(tok)
		if err != nil || act != NeedToken {
			return act, err
		}
	}
}

//Finish checks the completeness of the decoded stream and returns the frozen record.
//It must be called after Advance returned Done.
func (S *Stream) Finish() (*gtcout.Record, error) {
	E := S.eng
	if !E.Finished() {
		return nil, &DecodeError{Kind: E.d.Kind, File: S.src.Name(), Offset: S.src.Count(), message: Unfinished}
	}
	c, err := completeness(E, S.src.Count())
	if err != nil {
		return nil, &DecodeError{Kind: E.d.Kind, File: S.src.Name(), Offset: S.src.Count(), message: Inconsistent, err: err}
	}
	R := E.Record()
	R.Steps = E.Steps()
	R.Completeness = c
	R.Freeze()
	return R, nil
}

//completeness compares the tokens read from the source with the steps the engine
//committed. Both must tell the same story, and the dropped tail must be shorter than a step,
//otherwise tokens were lost or the file is shifted, and calling it partial would hide that.
func completeness(E *Engine, consumed int) (gtcout.Completeness, error) {
	if !E.d.Repeat {
		return gtcout.CompletenessFromSteps(0, 0, false), nil
	}
	expected, has := E.Expected()
	bs := E.BlockSize()
	if bs <= 0 {
		c := gtcout.CompletenessFromSteps(E.Steps(), expected, has)
		c.Discarded = E.Pending()
		if consumed != E.Consumed() {
			return c, fmt.Errorf("%d tokens read from the source, %d decoded", consumed, E.Consumed())
		}
		return c, nil
	}
	//CheckCompleteness leaves fewer than bs tokens over, so only the counts
	//held by the engine can disagree with it.
	c := gtcout.CheckCompleteness(consumed, E.HeaderTokens(), bs, expected, has)
	switch {
	case c.Observed != E.Steps():
		return c, fmt.Errorf("%d steps in %d tokens, but %d steps decoded", c.Observed, consumed, E.Steps())
	case c.Discarded != E.Pending():
		return c, fmt.Errorf("%d trailing tokens dropped, but %d were left unfinished", c.Discarded, E.Pending())
	}
	return c, nil
}

//Decode reads src to the end (or until the grammar is over) and returns the decoded record.
func Decode(ctx context.Context, src gtcout.TokenSource, d *Descriptor, opts Options) (*gtcout.Record, error) {
	S, err := NewStream(src, d, opts)
	if err != nil {
		return nil, err
	}
	for {
		act, err := S.Advance(ctx)
		if err != nil {
			return nil, err
		}
		if act == Done {
			break
		}
	}
	return S.Finish()
}

//DecodeFile decodes the file fname as a file of the given kind. Compressed files are
//recognized by their extension.
func DecodeFile(ctx context.Context, fname string, kind gtcout.Kind, opts Options) (*gtcout.Record, error) {
	d, err := Lookup(kind, opts)
	if err != nil {
		return nil, err
	}
	f, err := tokens.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(ctx, f, d, opts)
}
