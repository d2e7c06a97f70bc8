// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"

	"github.com/staranto/sheetctl/internal/command"
)

// Doc generator. Walks the sheetctl command tree and writes:
//   - docs/commands/<cmd>.md, the markdown source
//   - docs/man/share/man1/sheetctl-<cmd>.1 via md2man
//   - docs/tldr/sheetctl-<cmd>.md from the usage line and examples

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{commandsDir, manOutDir, tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"sheetctl"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	docs := command.Docs(app)
	if len(docs) == 0 {
		fatalf("no commands found")
	}

	for _, d := range docs {
		md := []byte(d.Markdown())

		mdPath := filepath.Join(commandsDir, d.Name+".md")
		if err := writeFileIfChanged(mdPath, md, writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", d.Name, err)
		}

		manPath := filepath.Join(manOutDir, d.Title()+".1")
		if err := writeFileIfChanged(manPath, md2man.Render(md), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", d.Name, err)
		}

		tldrPath := filepath.Join(tldrOutDir, d.Title()+".md")
		if err := writeFileIfChanged(tldrPath, []byte(buildTLDR(d)), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", d.Name, err)
		}
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

func buildTLDR(d command.CommandDoc) string {
	var b strings.Builder
	b.WriteString("# " + d.Title() + "\n\n")
	if d.Usage != "" {
		b.WriteString("> " + capitalize(d.Usage) + ".\n")
	} else {
		b.WriteString("> sheetctl " + d.Name + "\n")
	}
	b.WriteString("> More information: `man " + d.Title() + "`.\n\n")

	if len(d.Examples) == 0 {
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`sheetctl " + d.Name + " --help`\n")
		return b.String()
	}

	for i, ex := range d.Examples {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + capitalize(strings.TrimSpace(ex[1])) + ":\n\n")
		b.WriteString("`" + sanitizeCommand(ex[0]) + "`\n")
	}
	return b.String()
}

// sanitizeCommand compresses runs of whitespace.
func sanitizeCommand(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
