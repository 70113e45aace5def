package ragbase

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func upperHandler() Handler {
	return HandlerFunc(func(req *Request, res *Response) error {
		var input string
		if err := Read(req, &input); err != nil {
			return err
		}
		return Write(res, strings.ToUpper(input))
	})
}

func suffixHandler(suffix string) Handler {
	return HandlerFunc(func(req *Request, res *Response) error {
		var input string
		if err := Read(req, &input); err != nil {
			return err
		}
		return Write(res, input+suffix)
	})
}

func TestFlowRun(t *testing.T) {
	tests := []struct {
		name     string
		handlers []Handler
		input    string
		expected string
	}{
		{
			name:     "no handlers copies input",
			handlers: nil,
			input:    "pass through",
			expected: "pass through",
		},
		{
			name:     "single handler",
			handlers: []Handler{upperHandler()},
			input:    "hello",
			expected: "HELLO",
		},
		{
			name:     "chained handlers in order",
			handlers: []Handler{upperHandler(), suffixHandler("!")},
			input:    "hello",
			expected: "HELLO!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := NewFlow()
			for _, h := range tt.handlers {
				flow.Use(h)
			}

			var result string
			if err := flow.Run(context.Background(), tt.input, &result); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("Run() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFlowRunHandlerError(t *testing.T) {
	wantErr := errors.New("stage failed")
	flow := NewFlow().
		Use(upperHandler()).
		UseFunc(func(req *Request, res *Response) error {
			return wantErr
		})

	var result string
	err := flow.Run(context.Background(), "input", &result)
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestFlowComposability(t *testing.T) {
	sub := NewFlow().Use(upperHandler())
	main := NewFlow().Use(sub).Use(suffixHandler("?"))

	var result string
	if err := main.Run(context.Background(), "nested", &result); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result != "NESTED?" {
		t.Errorf("Run() = %q, want %q", result, "NESTED?")
	}
}

func TestFlowRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flow := NewFlow(FlowConfig{MaxConcurrent: 1}).
		UseFunc(func(req *Request, res *Response) error {
			<-req.Context.Done()
			return req.Context.Err()
		})

	var result string
	err := flow.Run(ctx, "input", &result)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestFlowConcurrencyConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  FlowConfig
		wantSem bool
	}{
		{name: "unlimited", config: FlowConfig{MaxConcurrent: ConcurrencyUnlimited}, wantSem: false},
		{name: "auto", config: FlowConfig{MaxConcurrent: ConcurrencyAuto}, wantSem: true},
		{name: "fixed", config: FlowConfig{MaxConcurrent: 4}, wantSem: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := NewFlow(tt.config)
			if (flow.sem != nil) != tt.wantSem {
				t.Errorf("NewFlow() sem = %v, want present=%v", flow.sem, tt.wantSem)
			}
		})
	}
}
