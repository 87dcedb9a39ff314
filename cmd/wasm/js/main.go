//go:build js && wasm

// Command goel-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `goel` object with the following API:
//
//	goel.version()                        → string
//	goel.evaluate(expression, valuesJSON) → resultJSON  (throws on error)
//	goel.compile(expression, namesJSON)   → string      (throws on error)
//	goel.parse(expression, namesJSON)     → { evaluate(valuesJSON) → resultJSON, source }
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o goel.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const result = goel.evaluate('a + b', JSON.stringify({a: 1, b: 2}))
//	console.log(JSON.parse(result)) // 3
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/goel"
	"github.com/sandrolain/goel/pkg/ext"
	"github.com/sandrolain/goel/pkg/parser"
)

var el = goel.MustNew(ext.WithAll())

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

func decodeValues(fn, valuesJSON string) map[string]any {
	values := map[string]any{}
	if valuesJSON == "" {
		return values
	}
	if err := json.Unmarshal([]byte(valuesJSON), &values); err != nil {
		jsThrow(fmt.Sprintf("%s: invalid values JSON: %v", fn, err))
	}
	return values
}

func decodeNames(fn string, args []js.Value) parser.Names {
	if len(args) < 2 || args[1].IsUndefined() {
		return parser.Names{}
	}
	var raw any
	if err := json.Unmarshal([]byte(args[1].String()), &raw); err != nil {
		jsThrow(fmt.Sprintf("%s: invalid names JSON: %v", fn, err))
	}
	names, err := parser.NamesFrom(raw)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: %v", fn, err))
	}
	return names
}

func encodeResult(fn string, result any) string {
	out, err := json.Marshal(result)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: marshal result: %v", fn, err))
	}
	return string(out)
}

// jsEvaluate implements goel.evaluate(expression, valuesJSON) → resultJSON.
func jsEvaluate(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("goel.evaluate requires an expression (string) and optional values (JSON string)")
	}
	valuesJSON := ""
	if len(args) > 1 {
		valuesJSON = args[1].String()
	}
	values := decodeValues("goel.evaluate", valuesJSON)

	result, err := el.EvaluateContext(context.Background(), args[0].String(), values)
	if err != nil {
		jsThrow(fmt.Sprintf("goel.evaluate: %v", err))
	}
	return encodeResult("goel.evaluate", result)
}

// jsCompile implements goel.compile(expression, namesJSON) → string.
func jsCompile(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("goel.compile requires an expression (string) and optional names (JSON string)")
	}
	source, err := el.Compile(args[0].String(), decodeNames("goel.compile", args))
	if err != nil {
		jsThrow(fmt.Sprintf("goel.compile: %v", err))
	}
	return source
}

// jsParse implements goel.parse(expression, namesJSON) → { evaluate(valuesJSON), source }.
func jsParse(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("goel.parse requires an expression (string) and optional names (JSON string)")
	}
	parsed, err := el.Parse(args[0].String(), decodeNames("goel.parse", args))
	if err != nil {
		jsThrow(fmt.Sprintf("goel.parse: %v", err))
	}

	evaluateFn := js.FuncOf(func(_ js.Value, innerArgs []js.Value) any {
		valuesJSON := ""
		if len(innerArgs) > 0 {
			valuesJSON = innerArgs[0].String()
		}
		values := decodeValues("parsed.evaluate", valuesJSON)
		r, e := el.EvaluateParsed(context.Background(), parsed, values)
		if e != nil {
			jsThrow(fmt.Sprintf("parsed.evaluate: %v", e))
		}
		return encodeResult("parsed.evaluate", r)
	})

	return js.ValueOf(map[string]any{
		"evaluate": evaluateFn,
		"source":   parsed.Source(),
	})
}

func main() {
	api := map[string]any{
		"evaluate": js.FuncOf(jsEvaluate),
		"compile":  js.FuncOf(jsCompile),
		"parse":    js.FuncOf(jsParse),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) any {
			return goel.Version()
		}),
	}
	js.Global().Set("goel", js.ValueOf(api))

	// Block forever: the JS event loop owns execution from here.
	select {}
}
