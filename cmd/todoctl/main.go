// To-Do APIのコマンドラインクライアント。
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/nao1215/todo/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.New().Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
