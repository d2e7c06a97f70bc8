// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// GlobalFlagsValidator catches a global flag that swallowed the next flag as
// its value, e.g. `--attrs --titles`.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	for _, name := range []string{"attrs", "filter", "sort"} {
		if !c.IsSet(name) {
			continue
		}
		if err := FlagValidators(c.String(name), JammedFlagValidator); err != nil {
			return fmt.Errorf("--%s %w", name, err)
		}
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

// NotBlankValidator rejects empty or whitespace-only values.
func NotBlankValidator(value any) error {
	if strings.TrimSpace(value.(string)) == "" {
		return errors.New("must not be blank")
	}
	return nil
}

// RequiredFlagsValidator fails when any named flag resolved to blank from
// the command line, environment and config.
func RequiredFlagsValidator(c *cli.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if NotBlankValidator(c.String(name)) != nil {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	valid := false
	for _, v := range validOutputFlagValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}
