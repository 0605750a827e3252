// vitalsim-ctl controls a running vitalsim server.
//
// Usage:
//
//	vitalsim-ctl [-server URL] [-timeout D] status
//	vitalsim-ctl [-server URL] [-timeout D] data
//	vitalsim-ctl [-server URL] [-timeout D] <mode>
//
// where <mode> is one of stopped, normal, abnormal. The mode name is sent
// to the server as-is; an unknown mode is rejected server-side and the
// server's message is printed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitalsim/vitalsim/ctl/internal/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "base URL of the vitalsim server")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "request timeout")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	c := client.New(*server, *timeout)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, c, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, cmd string) error {
	switch cmd {
	case "status":
		mode, err := c.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Println(mode)
		return nil

	case "data":
		pts, err := c.Data(ctx)
		if err != nil {
			return err
		}
		for _, p := range pts {
			fmt.Printf("%s\t%.2f\n", p.Time, p.Value)
		}
		return nil

	default:
		// Anything else is treated as a mode name and passed through.
		resp, err := c.SetMode(ctx, cmd)
		if err != nil {
			return err
		}
		fmt.Printf("mode set to %s\n", resp.NewMode)
		return nil
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: vitalsim-ctl [flags] <command>

Commands:
  status      print the server's current generation mode
  data        fetch and print the next data point
  <mode>      switch the server to a mode: stopped, normal, abnormal

Flags:
`)
	flag.PrintDefaults()
}
