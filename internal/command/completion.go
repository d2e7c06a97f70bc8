// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/sheetctl/internal/meta"
)

const bashCompletionScript = `# bash completion for sheetctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_sheetctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "cq eq fq rq sq completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --examples"
    local sheet="--key -k --spreadsheet -S --refresh -r"

    case "$cmd" in
        eq|fq)
            local opts="$common $sheet"
            ;;
        rq)
            local opts="$common $sheet --event -e --year -y --diff"
            ;;
        sq)
            local opts="$common $sheet --form -F"
            ;;
        cq)
            local opts="$common --spreadsheet -S --purge"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _sheetctl sheetctl
`

const zshCompletionScript = `#compdef sheetctl

_sheetctl() {
  local -a cmds
  cmds=(
    'cq:cache query'
    'eq:events query'
    'fq:forms query'
    'rq:event results query'
    'sq:form summary query'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--examples[show usage examples]'
  )

  local -a sheet
  sheet=(
  '(-k --key)'{-k,--key}'[API key]:key'
  '(-S --spreadsheet)'{-S,--spreadsheet}'[spreadsheet id]:id'
  '(-r --refresh)'{-r,--refresh}'[ignore the cache]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'sheetctl commands' cmds
    return
  fi

  case $words[2] in
    eq|fq)
      _arguments -C $common $sheet
      ;;
    rq)
      _arguments -C $common $sheet \
        '(-e --event)'{-e,--event}'[event name]:event' \
        '(-y --year)'{-y,--year}'[year group]:year' \
        '--diff[diff cached against live]'
      ;;
    sq)
      _arguments -C $common $sheet \
        '(-F --form)'{-F,--form}'[form name]:form'
      ;;
    cq)
      _arguments -C $common \
        '(-S --spreadsheet)'{-S,--spreadsheet}'[spreadsheet id]:id' \
        '--purge[purge entries older than hours]:hours'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _sheetctl sheetctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := Writer(cmd)
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: sheetctl completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "sheetctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
