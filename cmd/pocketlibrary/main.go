package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pocketlibrary/internal/buildinfo"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/cli"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/config"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	logger, closer, err := logging.New(cfg.LogLevel, cfg.LogFile, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closer.Close()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer app.Close()

	app.Run(ctx)

}
