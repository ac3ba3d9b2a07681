// Command skyqa answers German questions about a small catalog of sky objects.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nEin kritischer Fehler ist aufgetreten: %v\n", err)
		fmt.Fprintln(os.Stderr, "Das Programm wird beendet.")
		os.Exit(1)
	}
}
