//go:build wasip1

// Command goel-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "expression": "<expr>", "values": { ... }, "compile": false }
//	stdout: { "result": <any JSON value> }    on success
//	        { "source": "<expr-lang>" }       on success with "compile": true
//	        { "error":  "<message>"       }    on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o goel.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"expression":"a * 2","values":{"a":21}}' | wasmtime goel.wasm
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sandrolain/goel"
	"github.com/sandrolain/goel/pkg/ext"
	"github.com/sandrolain/goel/pkg/parser"
)

type request struct {
	Expression string         `json:"expression"`
	Values     map[string]any `json:"values"`
	Names      any            `json:"names"`
	Compile    bool           `json:"compile"`
}

type response struct {
	Result any    `json:"result,omitempty"`
	Source string `json:"source,omitempty"`
	Error  string `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	el, err := goel.New(ext.WithAll())
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	if req.Compile {
		names, err := parser.NamesFrom(req.Names)
		if err != nil {
			writeResponse(response{Error: err.Error()}, 1)
		}
		source, err := el.Compile(req.Expression, names)
		if err != nil {
			writeResponse(response{Error: err.Error()}, 1)
		}
		writeResponse(response{Source: source}, 0)
	}

	result, err := el.EvaluateContext(context.Background(), req.Expression, req.Values)
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	writeResponse(response{Result: result}, 0)
}
