package main

// This example demonstrates how the StaticFetcher may be used to
// create an instance of the runtime using direct imports of connection
// handlers rather than using a dynamic loading system.

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/asecurityteam/runtcp"
	"github.com/asecurityteam/settings/v2"
)

func main() {
	handlers := map[string]runtcp.ConnHandler{
		// The keys of this map represent the handler name and will be
		// matched against the RUNTCP_SERVER_HANDLER setting. These
		// names are arbitrary and user defined.
		"echo":    &runtcp.EchoHandler{},
		"discard": runtcp.DiscardHandler{},
	}

	// Handle the -h flag and print settings.
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.Usage = func() {}
	err := fs.Parse(os.Args[1:])
	if err == flag.ErrHelp {
		fmt.Println(runtcp.Help())
		return
	}

	source, err := settings.NewEnvSource(os.Environ())
	if err != nil {
		panic(err.Error())
	}
	fetcher := &runtcp.StaticFetcher{Handlers: handlers}
	if err := runtcp.Start(context.Background(), source, fetcher); err != nil {
		panic(err.Error())
	}
}
