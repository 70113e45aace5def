package ragbase

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Handler is the core abstraction: one stage of a question-answering flow.
//
// A handler reads its input stream from the Request and writes its output
// stream to the Response. Stages are connected by pipes, so a handler may
// start writing before it has consumed all of its input.
type Handler interface {
	ServeFlow(*Request, *Response) error
}

// HandlerFunc allows regular functions to be used as Handlers
type HandlerFunc func(req *Request, res *Response) error

// ServeFlow implements the Handler interface.
func (f HandlerFunc) ServeFlow(req *Request, res *Response) error {
	return f(req, res)
}

// Request carries the per-turn context and the input data stream.
type Request struct {
	Context context.Context
	Data    io.Reader
}

// NewRequest creates a Request from a context and an input stream.
func NewRequest(ctx context.Context, data io.Reader) *Request {
	return &Request{Context: ctx, Data: data}
}

// WithContext returns a copy of the request with a new context.
func (r *Request) WithContext(ctx context.Context) *Request {
	return &Request{Context: ctx, Data: r.Data}
}

// Deadline reports the request context's deadline.
func (r *Request) Deadline() (time.Time, bool) {
	return r.Context.Deadline()
}

// Done exposes the request context's cancellation channel.
func (r *Request) Done() <-chan struct{} {
	return r.Context.Done()
}

// Response carries the output data stream of a stage.
type Response struct {
	Data io.Writer
}

// NewResponse creates a Response wrapping an output stream.
func NewResponse(data io.Writer) *Response {
	return &Response{Data: data}
}

// Read is a generic utility for reading all request data in handlers.
//
// Supported types: string, []byte
//
// Usage:
//
//	var query string
//	if err := ragbase.Read(req, &query); err != nil {
//	    return err
//	}
func Read[T string | []byte](req *Request, outPtr *T) error {
	data, err := io.ReadAll(req.Data)
	if err != nil {
		return err
	}

	switch ptr := any(outPtr).(type) {
	case *string:
		*ptr = string(data)
	case *[]byte:
		*ptr = data
	default:
		return fmt.Errorf("unsupported type %T", outPtr)
	}
	return nil
}

// Write is a generic utility for writing handler output.
//
// Supported types: string, []byte
//
// Usage:
//
//	return ragbase.Write(res, prompt)
func Write[T string | []byte](res *Response, data T) error {
	switch v := any(data).(type) {
	case string:
		_, err := res.Data.Write([]byte(v))
		return err
	case []byte:
		_, err := res.Data.Write(v)
		return err
	default:
		return fmt.Errorf("unsupported type %T", data)
	}
}
