// cmd/affiliatectl/main.go
package main

import (
	"context"
	"os"

	"affinet/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
