// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sheetctl/internal/config"
)

var examplesFlag *cli.BoolFlag = &cli.BoolFlag{
	Name:        "examples",
	Usage:       "show usage examples",
	HideDefault: true,
}

// NewGlobalFlags returns the output flags shared by every query command.
// params[0] is the command name, used as the config namespace. Config file
// sources come from the currently loaded config.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	cfg := config.Config

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}

	return
}

// NewSheetFlags returns the flags that locate the spreadsheet and control
// caching. params[0] is the command name and params[1] the config file.
func NewSheetFlags(params ...string) []cli.Flag {
	return []cli.Flag{
		NewKeyFlag(params...),
		NewSpreadsheetFlag(params...),
		&cli.StringFlag{
			Name:   "endpoint",
			Usage:  "values API root",
			Hidden: true,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SHEETCTL_ENDPOINT"),
			),
		},
		&cli.BoolFlag{
			Name:    "refresh",
			Aliases: []string{"r"},
			Usage:   "ignore cached results and fetch live",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SHEETCTL_REFRESH"),
			),
		},
	}
}

// NewKeyFlag constructs the "key" flag holding the API key. Environment
// variables win over the config file.
func NewKeyFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "key",
		Aliases: []string{"k"},
		Usage:   "API key sent with every request",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("SHEETCTL_KEY"),
			cli.EnvVar("GOOGLE_API_KEY"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewSpreadsheetFlag constructs the "spreadsheet" flag holding the
// spreadsheet id.
func NewSpreadsheetFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "spreadsheet",
		Aliases: []string{"S"},
		Usage:   "spreadsheet id",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("SHEETCTL_SPREADSHEET"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
