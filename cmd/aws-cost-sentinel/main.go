package main

import (
	"fmt"
	"os"

	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-sentinel-go/internal/adapter/driving/cli"
	"github.com/diillson/aws-cost-sentinel-go/pkg/console"
	"github.com/diillson/aws-cost-sentinel-go/pkg/version"
)

func main() {
	// Os adaptadores de custo, análise e alerta dependem das flags e são
	// montados pela CLI; aqui ficam apenas console e configuração.
	app := cli.NewCLIApp(version.Version, console.NewConsole(), config.NewConfigRepository())

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
