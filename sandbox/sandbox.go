// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sandbox runs short transformation programs against a table.
//
// A program is a few Go statements operating on the dataset handle, for
// example
//
//	dataset.Filter(tbl.Col("age").Gt(30)).Sort("name", false)
//
// The code is checked against an allow-list (no imports, loops, function
// literals or calls outside dataset/tbl/result) and then executed by a yaegi
// interpreter that can only see package tbl. The value of the last expression,
// or whatever was assigned to result, becomes the new table.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/traefik/yaegi/interp"

	"parqcel/datatable"
	"parqcel/frame"
	"parqcel/sandbox/tbl"
)

// DefaultTimeout bounds compilation and execution of one program.
const DefaultTimeout = 30 * time.Second

const programTemplate = `package transform

import tbl %q

var _ = tbl.Col

func Run(dataset *tbl.Frame) (result *tbl.Frame) {
%s	return
}
`

// Runner validates and executes transformation programs.
type Runner struct {
	logger  *log.Logger
	timeout time.Duration
}

// NewRunner creates a runner. A nil logger discards output; a non-positive
// timeout selects DefaultTimeout.
func NewRunner(logger *log.Logger, timeout time.Duration) *Runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{logger: logger, timeout: timeout}
}

// Program returns the Go source executed for code.
func Program(code string) (string, error) {
	body, err := Validate(code)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(programTemplate, tblImportPath, body), nil
}

// Run executes code with dataset bound to input and returns the resulting
// table. The input is never modified.
func (r *Runner) Run(ctx context.Context, code string, input *frame.Table) (*frame.Table, error) {
	src, err := Program(code)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var output bytes.Buffer
	i := interp.New(interp.Options{Stdout: &output, Stderr: &output})
	if err := i.Use(Symbols); err != nil {
		return nil, fmt.Errorf("%w: loading symbols: %w", datatable.ErrSandboxResult, err)
	}

	start := time.Now()
	if _, err := i.EvalWithContext(ctx, src); err != nil {
		return nil, fmt.Errorf("%w: %w", datatable.ErrSandboxResult, err)
	}
	v, err := i.EvalWithContext(ctx, "transform.Run")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", datatable.ErrSandboxResult, err)
	}
	run, ok := v.Interface().(func(*tbl.Frame) *tbl.Frame)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected entry point %s", datatable.ErrSandboxResult, v.Type())
	}

	type outcome struct {
		f   *tbl.Frame
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("%w: panic: %v", datatable.ErrSandboxResult, p)}
			}
		}()
		done <- outcome{f: run(tbl.Wrap(input))}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", datatable.ErrSandboxResult, ctx.Err())
	}
	if output.Len() > 0 {
		r.logger.Printf("sandbox output: %s", output.String())
	}
	if res.err != nil {
		return nil, res.err
	}
	if res.f == nil {
		return nil, fmt.Errorf("%w: program produced no table", datatable.ErrSandboxResult)
	}
	if err := res.f.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", datatable.ErrSandboxResult, err)
	}

	out := res.f.Table()
	r.logger.Printf("sandbox: %d x %d -> %d x %d in %s",
		input.NumRows(), input.NumCols(), out.NumRows(), out.NumCols(), time.Since(start).Round(time.Millisecond))
	return out, nil
}
