package exprrun_test

// Benchmarks comparing the tree-walking evaluator with compiled expr-lang
// programs on the same expressions and data.
//
//	go test -bench=. -benchmem ./pkg/exprrun/...

import (
	"context"
	"fmt"
	"testing"

	"github.com/sandrolain/goel/pkg/compiler"
	"github.com/sandrolain/goel/pkg/evaluator"
	"github.com/sandrolain/goel/pkg/exprrun"
	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/parser"
)

var departments = []string{"Engineering", "Sales", "Marketing", "HR", "Finance"}

func benchData(n int) map[string]any {
	users := make([]any, n)
	for i := range n {
		users[i] = map[string]any{
			"id":         i + 1,
			"name":       fmt.Sprintf("User%d", i+1),
			"age":        20 + (i % 40),
			"department": departments[i%5],
			"salary":     70000 + (i * 1000),
			"active":     i%2 == 0,
		}
	}
	return map[string]any{"users": users, "departments": departments, "limit": 75000}
}

var benchCases = []struct {
	name       string
	expression string
}{
	{name: "arithmetic", expression: "(1 + 2) * 3 - 4 / 2"},
	{name: "attribute", expression: "users[0].name"},
	{name: "logical", expression: `users[1].active or users[2].salary > limit and users[2].department == "Marketing"`},
	{name: "membership", expression: `users[3].department in departments`},
	{name: "string", expression: `users[0].name ~ " (" ~ users[0].department ~ ")"`},
	{name: "pattern", expression: `users[4].name matches "/^user[0-9]+$/i"`},
	{name: "conditional", expression: `users[5].age >= 25 ? "senior" : "junior"`},
}

func BenchmarkComparison(b *testing.B) {
	reg := functions.NewRegistry()
	names := parser.NewNames("users", "departments", "limit")

	for _, size := range []int{10, 100} {
		values := benchData(size)
		for _, bc := range benchCases {
			parsed, err := parser.Parse(bc.expression, names)
			if err != nil {
				b.Fatal(err)
			}
			source, err := compiler.Compile(parsed.Nodes(), reg)
			if err != nil {
				b.Fatal(err)
			}
			program, err := exprrun.Compile(source, values)
			if err != nil {
				b.Fatal(err)
			}

			b.Run(fmt.Sprintf("%s/n=%d/evaluator", bc.name, size), func(b *testing.B) {
				ev := evaluator.New(reg)
				ctx := context.Background()
				for b.Loop() {
					if _, err := ev.Eval(ctx, parsed.Nodes(), values); err != nil {
						b.Fatal(err)
					}
				}
			})

			b.Run(fmt.Sprintf("%s/n=%d/expr", bc.name, size), func(b *testing.B) {
				for b.Loop() {
					if _, err := exprrun.Exec(program, values); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
