// Command server boots the catalog API without the CLI. Equivalent to
// `catalog serve`.
package main

import (
	"context"
	"log"

	"github.com/bazarromero/catalog/internal/bootstrap"
	"github.com/bazarromero/catalog/internal/server"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	app, err := bootstrap.Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	return server.Start(ctx, app.Kernel().Handler())
}
