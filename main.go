/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/rosella/engine"
	"github.com/spaghettifunk/rosella/engine/core"
	"github.com/spaghettifunk/rosella/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration")
	flag.Parse()

	appConfig, err := engine.LoadApplicationConfig("", *configPath)
	if err != nil {
		core.LogFatal("invalid configuration: %s", err)
	}

	tb, err := testbed.NewTestGame(appConfig)
	if err != nil {
		core.LogFatal(err.Error())
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal("failed to initialize: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// The loop owns every Vulkan object, so a signal only asks it to stop.
	go func() {
		<-sigCh
		e.RequestQuit()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("engine stopped: %s", runErr)
	}
}
