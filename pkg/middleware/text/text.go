// Package text provides text transformation middleware for flows, including
// the token optimization pass applied to queries before model dispatch.
package text

import (
	"io"
	"regexp"
	"strings"

	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	dotRuns        = regexp.MustCompile(`\.{2,}`)
	bangRuns       = regexp.MustCompile(`!{2,}`)
	questionRuns   = regexp.MustCompile(`\?{2,}`)
)

// Optimize reduces redundant characters in text to lower token consumption.
//
// Collapses whitespace runs to a single space and trims the ends, then
// collapses runs of two or more '.' to an ellipsis, runs of '!' to a
// single '!', and runs of '?' to a single '?'. The passes apply in that
// order so a mixed "??!!" tail collapses each run independently.
//
// Pure and idempotent: Optimize(Optimize(s)) == Optimize(s).
//
// Example:
//
//	text.Optimize("What is embeddings????????") // "What is embeddings?"
func Optimize(s string) string {
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = dotRuns.ReplaceAllString(s, "...")
	s = bangRuns.ReplaceAllString(s, "!")
	s = questionRuns.ReplaceAllString(s, "?")
	return s
}

// Optimizer returns Optimize as a flow middleware.
//
// Example:
//
//	flow := ragbase.NewFlow().Use(text.Optimizer()).Use(clientHandler)
func Optimizer() ragbase.Handler {
	return Transform(Optimize)
}

// Transform applies a function to transform the entire input content.
//
// Input: string content (buffered - reads entire input into memory)
// Output: string (result of transformation function)
// Behavior: BUFFERED - must read entire input to apply transformation
//
// Example:
//
//	upper := text.Transform(strings.ToUpper)
func Transform(fn func(string) string) ragbase.Handler {
	return ragbase.HandlerFunc(func(req *ragbase.Request, res *ragbase.Response) error {
		input, err := io.ReadAll(req.Data)
		if err != nil {
			return err
		}

		output := fn(string(input))
		_, err = res.Data.Write([]byte(output))
		return err
	})
}

// Branch creates conditional routing based on input content evaluation.
//
// The condition function receives the entire input as a string. If true,
// ifHandler runs; otherwise elseHandler runs. Both receive the original
// input.
func Branch(condition func(string) bool, ifHandler ragbase.Handler, elseHandler ragbase.Handler) ragbase.Handler {
	return ragbase.HandlerFunc(func(req *ragbase.Request, res *ragbase.Response) error {
		var input string
		if err := ragbase.Read(req, &input); err != nil {
			return err
		}

		req.Data = strings.NewReader(input)

		if condition(input) {
			return ifHandler.ServeFlow(req, res)
		}
		return elseHandler.ServeFlow(req, res)
	})
}
