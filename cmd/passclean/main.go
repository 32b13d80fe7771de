// Command passclean cleans a Titanic passenger CSV and writes the result to
// one or more sinks.
//
//	passclean -input Titanic-Dataset.csv -output titanic_cleaned.csv
//	passclean -config pipeline.json -metrics-backend prometheus -pushgateway-url http://localhost:9091
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// register every storage backend with the factory
	_ "passclean/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "passclean: %v\n", err)
		os.Exit(1)
	}
}
