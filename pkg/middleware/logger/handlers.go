package logger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// Head logs a preview of the first N bytes and passes the input through.
//
// Input: any data (streaming - uses bufio.Reader.Peek for the preview)
// Output: same as input (pass-through)
//
// Example:
//
//	flow.Use(log.Info().Head("QUERY", 80))
func (hb *HandlerBuilder) Head(prefix string, headBytes int, attrs ...Attribute) ragbase.Handler {
	return ragbase.HandlerFunc(func(req *ragbase.Request, res *ragbase.Response) error {
		bufReader := bufio.NewReader(req.Data)

		firstBytes, err := bufReader.Peek(headBytes)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		allAttrs := make([]Attribute, len(attrs), len(attrs)+1)
		copy(allAttrs, attrs)
		allAttrs = append(allAttrs, Attribute{"preview", formatPreview(firstBytes)})
		hb.log(req.Context, fmt.Sprintf("[%s]", prefix), allAttrs...)

		_, err = io.Copy(res.Data, bufReader)
		return err
	})
}

// Timing wraps a handler and logs its wall-clock duration, including on
// failure.
//
// Example:
//
//	flow.Use(log.Info().Timing("GENERATE", ai.Agent(client)))
func (hb *HandlerBuilder) Timing(prefix string, handler ragbase.Handler, attrs ...Attribute) ragbase.Handler {
	return ragbase.HandlerFunc(func(req *ragbase.Request, res *ragbase.Response) error {
		start := time.Now()
		err := handler.ServeFlow(req, res)
		elapsed := time.Since(start)

		allAttrs := make([]Attribute, len(attrs), len(attrs)+2)
		copy(allAttrs, attrs)
		allAttrs = append(allAttrs, Attribute{"duration", elapsed.String()})
		if err != nil {
			allAttrs = append(allAttrs, Attribute{"error", err.Error()})
		}
		hb.log(req.Context, fmt.Sprintf("[%s]", prefix), allAttrs...)

		return err
	})
}

// Print logs the complete input and passes it through.
//
// Input: any data (buffered - reads the entire input into memory)
// Output: same as input (pass-through)
func (hb *HandlerBuilder) Print(prefix string, attrs ...Attribute) ragbase.Handler {
	return ragbase.HandlerFunc(func(req *ragbase.Request, res *ragbase.Response) error {
		var data []byte
		if err := ragbase.Read(req, &data); err != nil {
			return err
		}

		allAttrs := make([]Attribute, len(attrs), len(attrs)+1)
		copy(allAttrs, attrs)
		allAttrs = append(allAttrs, Attribute{"data", formatPreview(data)})
		hb.log(req.Context, fmt.Sprintf("[%s]", prefix), allAttrs...)

		return ragbase.Write(res, data)
	})
}
