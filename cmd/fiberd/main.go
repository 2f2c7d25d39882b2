package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/fiberglass/internal/daemon"
	"github.com/matheus3301/fiberglass/internal/origin"
	"go.uber.org/fx"
)

func main() {
	originFlag := flag.String("origin", "", "origin name (overrides config default)")
	flag.Parse()

	originName := origin.Resolve(*originFlag)
	if err := origin.ValidateName(originName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := origin.EnsureDir(originName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{OriginName: originName}),
	)

	app.Run()
}
