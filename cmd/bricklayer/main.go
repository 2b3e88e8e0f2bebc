// bricklayer converts triangle meshes into stacked brick models.
//
// Usage:
//
//	bricklayer convert model.stl --height 24 --png layers.png
//	bricklayer demo capsule
//	bricklayer history
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/taigrr/bricklayer/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
