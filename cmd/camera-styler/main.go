package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/camera-styler/internal/config"
	"github.com/menta2k/camera-styler/pkg/pipeline"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <extract|apply|all> [-c config.yaml]\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  extract  analyze raw images and persist the camera fingerprint\n")
	fmt.Fprintf(os.Stderr, "  apply    stamp the persisted fingerprint onto every clean image\n")
	fmt.Fprintf(os.Stderr, "  all      run extract then apply\n")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	action := os.Args[1]

	fs := flag.NewFlagSet(action, flag.ExitOnError)
	configPath := fs.String("c", "config.yaml", "path to the YAML configuration file")
	fs.Parse(os.Args[2:])

	log := logrus.New()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, log)

	switch action {
	case "extract":
		err = p.RunExtract(ctx)
	case "apply":
		err = p.RunApply(ctx)
	case "all":
		err = p.RunAll(ctx)
	default:
		usage()
	}

	if err != nil {
		log.Fatalf("%s: %v", action, err)
	}
}
