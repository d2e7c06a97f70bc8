// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"github.com/staranto/sheetctl/internal/cacheutil"
	"github.com/staranto/sheetctl/internal/command"
	"github.com/staranto/sheetctl/internal/config"
	mylog "github.com/staranto/sheetctl/internal/log"
	"github.com/staranto/sheetctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain(os.Args))
}

func realMain(args []string) int {
	// A .env in the working directory is optional. Existing variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, err)
	}

	mylog.InitLogger()

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	// Best-effort: pre-create cache directory when caching is enabled.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		fmt.Fprintln(os.Stderr, err)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an argument set from the config. `@name` anywhere
// after the command inserts the entries of "<cmd>.<name>" at that position;
// without one, "<cmd>.defaults" is inserted right after the command.
// Explicit arguments follow the set, so they win.
func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2)
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	rest := append([]string{}, args[2:]...)

	idx := 0
	set := "defaults"
	for i, a := range rest {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			idx = i
			rest = append(rest[:i], rest[i+1:]...)
			break
		}
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)
	var expanded []string
	for _, arg := range setArgs {
		expanded = append(expanded, strings.Fields(arg)...)
	}

	out := append(preamble, rest[:idx]...)
	out = append(out, expanded...)
	out = append(out, rest[idx:]...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
