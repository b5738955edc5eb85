package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux
	"os"

	dig_container "github.com/Shubham414kumar/vidyasphere/apps/api/di/dig"
	echoapi "github.com/Shubham414kumar/vidyasphere/apps/api/echo"
	"github.com/Shubham414kumar/vidyasphere/core"
)

func main() {
	graph := flag.Bool("graph", false, "print the dependency graph in DOT format and exit")
	flag.Parse()

	c := dig_container.New(core.NewConfig)

	if *graph {
		must(c.Invoke(func(echoapi.Server) {}))
		must(dig_container.Visualize(c, os.Stdout))
		return
	}

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		closers dig_container.ClosersParam,
		shutdown chan os.Signal,
		server echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		core.ParseEmailTemplates(logger)

		defer func() {
			for _, closeFn := range closers.Closers {
				closeFn()
			}
			if l, ok := logger.(interface{ Close() }); ok {
				l.Close()
			}
		}()
		defer logger.Info("Application stopped")

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start API Service

		go server.Start()

		// =========================================================================
		// Shutdown

		sig := <-shutdown
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
