package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &cliEnv{out: os.Stdout}
	defer env.close()

	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return 130 // SIGINT
		}
		fmt.Fprintf(os.Stderr, "oracle: %v\n", err)
		return 1
	}
	return 0
}
