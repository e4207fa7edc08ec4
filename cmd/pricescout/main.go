package main

import (
	"context"
	"log"
	"os"

	"github.com/pricescout/pricescout/internal/buildinfo"
	"github.com/pricescout/pricescout/internal/client/capture"
	"github.com/pricescout/pricescout/internal/client/cli"
	"github.com/pricescout/pricescout/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	// Camera hardware is not reachable from a terminal session; a still
	// image on disk stands in for it when PRICESCOUT_CAMERA_IMAGE is set.
	device := &capture.FileDevice{Path: os.Getenv("PRICESCOUT_CAMERA_IMAGE")}

	app, err := cli.NewApp(cfg, device)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
