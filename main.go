// main.go - Einstiegspunkt des maskform CLI
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/maskform/maskform/cmd"
)

func main() {
	if err := cmd.NewCLI().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
