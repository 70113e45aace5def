package ragbase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
)

// ConcurrencyUnlimited disables concurrency limits, allowing unlimited handler goroutines.
const ConcurrencyUnlimited = 0

// ConcurrencyAuto calculates the concurrency limit from CPU cores,
// using runtime.GOMAXPROCS(0) * CPUMultiplier.
const ConcurrencyAuto = -1

// DefaultCPUMultiplier is a conservative default for mixed I/O workloads.
// Retrieval and model calls are I/O bound, so the multiplier is generous.
const DefaultCPUMultiplier = 50

// FlowConfig configures flow concurrency behavior.
//
// MaxConcurrent bounds the number of handler goroutines running at once
// across all flow executions. Use ConcurrencyUnlimited for no limit,
// ConcurrencyAuto for a CPU-derived limit, or a positive fixed limit.
type FlowConfig struct {
	MaxConcurrent int // ConcurrencyUnlimited, ConcurrencyAuto, or positive integer
	CPUMultiplier int // multiplier for GOMAXPROCS (used when MaxConcurrent = ConcurrencyAuto)
}

// Flow is the core orchestration primitive: an ordered chain of handlers
// connected by pipes, each stage running in its own goroutine.
type Flow struct {
	handlers []Handler
	sem      chan struct{} // nil = unlimited concurrency
}

// NewFlow creates a new flow with optional concurrency configuration.
//
// With no config, concurrency is unlimited. Each handler in the flow runs
// in its own goroutine, connected to its neighbors by io.Pipe, so data
// streams through the chain with constant memory usage.
//
// Example:
//
//	flow := ragbase.NewFlow().
//	    Use(retrieval.Search(retriever, emit)).
//	    Use(prompt.Template(qaPrompt)).
//	    Use(clientHandler)
func NewFlow(configs ...FlowConfig) *Flow {
	var config FlowConfig
	if len(configs) > 0 {
		config = configs[0]
	} else {
		config = FlowConfig{MaxConcurrent: ConcurrencyUnlimited, CPUMultiplier: DefaultCPUMultiplier}
	}

	var sem chan struct{}
	switch config.MaxConcurrent {
	case ConcurrencyUnlimited:
		sem = nil
	case ConcurrencyAuto:
		multiplier := config.CPUMultiplier
		if multiplier <= 0 {
			multiplier = DefaultCPUMultiplier
		}
		sem = make(chan struct{}, runtime.GOMAXPROCS(0)*multiplier)
	default:
		if config.MaxConcurrent > 0 {
			sem = make(chan struct{}, config.MaxConcurrent)
		}
	}

	return &Flow{sem: sem}
}

// Use adds a handler to the flow chain.
//
// Handlers execute in the order they are added. Returns the flow for
// fluent chaining.
func (f *Flow) Use(handler Handler) *Flow {
	f.handlers = append(f.handlers, handler)
	return f
}

// UseFunc adds a function as a handler using the HandlerFunc adapter.
func (f *Flow) UseFunc(fn HandlerFunc) *Flow {
	return f.Use(fn)
}

// ServeFlow implements the Handler interface, enabling flow composability.
//
// A flow can be used as a single stage inside another flow.
func (f *Flow) ServeFlow(req *Request, res *Response) error {
	return f.runWithStreaming(req.Context, req.Data, res.Data)
}

// Run executes the flow with streaming data flow and concurrent handler processing.
//
// Input may be a string, []byte, or io.Reader. Output may be a *string,
// *[]byte, or io.Writer. Handlers run concurrently, connected by pipes;
// context cancellation propagates through all stages. Flow execution
// fails if any handler returns an error.
//
// Example:
//
//	var answer string
//	err := flow.Run(ctx, question, &answer)
func (f *Flow) Run(ctx context.Context, input any, output any) error {
	if len(f.handlers) == 0 {
		return f.copyInputToOutput(input, output)
	}

	reader, err := inputToReader(input)
	if err != nil {
		return err
	}

	return f.runWithStreaming(ctx, reader, output)
}

// runWithStreaming executes the flow with pure streaming I/O.
//
// Each handler runs in its own goroutine. Pipe writers are closed when a
// handler returns, which signals EOF to the next stage.
func (f *Flow) runWithStreaming(ctx context.Context, input io.Reader, output any) error {
	pipes := make([]struct {
		r *PipeReader
		w *PipeWriter
	}, len(f.handlers))

	for i := 0; i < len(f.handlers); i++ {
		pipes[i].r, pipes[i].w = Pipe()
	}

	errCh := make(chan error, len(f.handlers)+2)

	// Feed the first handler from the caller's input.
	inputR, inputW := io.Pipe()
	inputReader := &PipeReader{PipeReader: inputR}
	go func() {
		defer func() {
			_ = inputW.Close()
		}()
		if _, err := io.Copy(inputW, input); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	finalReader := pipes[len(pipes)-1].r

	var wg sync.WaitGroup
	for i, handler := range f.handlers {
		wg.Add(1)
		go func(idx int, h Handler) {
			if f.sem != nil {
				select {
				case f.sem <- struct{}{}:
					defer func() { <-f.sem }()
				case <-ctx.Done():
					errCh <- ctx.Err()
					wg.Done()
					return
				}
			}

			defer wg.Done()
			defer func() {
				_ = pipes[idx].w.Close()
			}()

			var reader io.Reader
			if idx == 0 {
				reader = inputReader
			} else {
				reader = pipes[idx-1].r
			}

			req := &Request{Context: ctx, Data: reader}
			res := &Response{Data: pipes[idx].w}
			if err := h.ServeFlow(req, res); err != nil {
				// Unblock the upstream writer so the chain can unwind.
				_ = reader.(*PipeReader).CloseWithError(err)
				errCh <- err
			}
		}(i, handler)
	}

	// Consume final output in the background so the last stage never blocks.
	outputDone := make(chan error, 1)
	go func() {
		err := readerToOutput(finalReader, output)
		if err != nil {
			// Unblock the last stage so the chain unwinds instead of
			// leaking goroutines when the consumer stops reading.
			_ = finalReader.CloseWithError(err)
		}
		outputDone <- err
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var flowErr error
	select {
	case <-ctx.Done():
		flowErr = ctx.Err()
	case err := <-errCh:
		flowErr = err
	case <-done:
	}

	// Always wait for the output goroutine to prevent data races, even on failure.
	outputErr := <-outputDone

	if flowErr != nil {
		return flowErr
	}
	return outputErr
}

// copyInputToOutput handles the zero-handler case.
func (f *Flow) copyInputToOutput(input, output any) error {
	reader, err := inputToReader(input)
	if err != nil {
		return err
	}
	return readerToOutput(reader, output)
}

// inputToReader converts supported input types to an io.Reader.
func inputToReader(input any) (io.Reader, error) {
	switch v := input.(type) {
	case io.Reader:
		return v, nil
	case string:
		return strings.NewReader(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	default:
		return nil, fmt.Errorf("unsupported input type %T", input)
	}
}

// readerToOutput drains a reader into the supported output types.
func readerToOutput(reader io.Reader, output any) error {
	switch v := output.(type) {
	case io.Writer:
		_, err := io.Copy(v, reader)
		return err
	case *string:
		data, err := io.ReadAll(reader)
		if err != nil {
			return err
		}
		*v = string(data)
		return nil
	case *[]byte:
		data, err := io.ReadAll(reader)
		if err != nil {
			return err
		}
		*v = data
		return nil
	default:
		return fmt.Errorf("unsupported output type %T", output)
	}
}
