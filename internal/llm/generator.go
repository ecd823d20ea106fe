// Package llm provides the text generation clients the pipeline invokes
// with an assembled prompt.
package llm

import "context"

// Generator turns a prompt into generated text. Implementations block on
// plain network I/O bounded only by the request context and client timeout.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelID() string
}
