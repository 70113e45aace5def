// Package prompt provides flow stages that shape the text handed to a
// model client: template expansion, system message prefixes, and
// role-formatted prompts.
package prompt

import (
	"bytes"
	"fmt"
	"maps"
	"text/template"

	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// Template creates a middleware that applies a Go template to the input.
//
// The template receives the input as `.Input` and any additional data as
// template variables.
//
// Example:
//
//	stage := prompt.Template("Question: {{.Input}}")
//	stage = prompt.Template("Context:\n{{.Context}}\n\nQuestion: {{.Input}}", map[string]any{
//		"Context": contextBlock,
//	})
func Template(templateStr string, data ...map[string]any) ragbase.Handler {
	// Parse once at creation time; a bad template fails every request.
	tmpl, err := template.New("prompt").Parse(templateStr)
	if err != nil {
		return ragbase.HandlerFunc(func(_ *ragbase.Request, _ *ragbase.Response) error {
			return fmt.Errorf("template parse error: %w", err)
		})
	}

	return FromTemplate(tmpl, data...)
}

// System creates a system message prefix handler.
//
// Example:
//
//	system := prompt.System("Answer using only the provided context.")
//	// Input: "What is a PDF?"
//	// Output: "Answer using only the provided context.\n\nWhat is a PDF?"
func System(systemMessage string) ragbase.Handler {
	return Template("{{.System}}\n\n{{.Input}}", map[string]any{
		"System": systemMessage,
	})
}

// SystemUser creates a system/user formatted prompt with explicit role
// prefixes.
func SystemUser(systemMessage string) ragbase.Handler {
	return Template("System: {{.System}}\n\nUser: {{.Input}}", map[string]any{
		"System": systemMessage,
	})
}

// FromTemplate creates a middleware from a pre-parsed template.
//
// Useful for embedded or file-based templates. The template receives the
// input as {{.Input}} and any additional data as template variables.
func FromTemplate(tmpl *template.Template, data ...map[string]any) ragbase.Handler {
	return ragbase.HandlerFunc(func(req *ragbase.Request, res *ragbase.Response) error {
		var input string
		if err := ragbase.Read(req, &input); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		templateData := map[string]any{"Input": input}
		if len(data) > 0 {
			maps.Copy(templateData, data[0])
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, templateData); err != nil {
			return fmt.Errorf("template execution error: %w", err)
		}

		_, err := res.Data.Write(buf.Bytes())
		return err
	})
}
