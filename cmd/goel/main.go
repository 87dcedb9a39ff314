// Command goel parses, compiles and evaluates expressions from the shell.
//
// Usage:
//
//	goel evaluate 'a + b * 2' --set a=1 --set b=3
//	goel compile 'user.age >= 18 and user.name matches "/^A/"' --names user
//	goel parse 'foo.bar(1)' --names foo --json
//	goel lint 'a +'
//
// Configuration is read from --config (YAML), GOEL_* environment variables
// and flags. See `goel --help`.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sandrolain/goel/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
