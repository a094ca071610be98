package main

import (
	"context"
	"os"

	"github.com/ChainSafe/go-nasm/cmd"
	"github.com/charmbracelet/log"
)

func main() {
	app := cmd.NewApp()
	app.Name = os.Args[0]
	err := app.RunContext(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
