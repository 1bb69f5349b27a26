package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/rucool/gliderqc/internal/app"
	"github.com/rucool/gliderqc/internal/log"
	"github.com/rucool/gliderqc/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	mode := flag.String("mode", "rt", "Deployment dataset status: rt or delayed")
	level := flag.String("level", "sci", "Dataset level: sci or ngdac")
	cdmDataType := flag.String("cdm-data-type", "profile", "CDM data type")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hysteresis-test %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hysteresis-test [flags] deployment [deployment ...]")
		fmt.Fprintln(os.Stderr, "deployments are named glider-YYYYmmddTHHMM, e.g. ru30-20210503T1929")
		os.Exit(2)
	}

	opts := app.Options{
		Mode:        *mode,
		DatasetType: *level,
		CDMDataType: *cdmDataType,
		Debug:       *debug,
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	env, err := config.LoadEnv()
	if err != nil {
		log.Errorf("Failed to load environment: %v", err)
		os.Exit(1)
	}

	application := app.New(env, opts, log.GetSugaredLogger())
	os.Exit(application.RunHysteresis(flag.Args()))
}
