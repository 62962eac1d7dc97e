// Package snake fills in cobra flags interactively.
package snake

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Field describes one flag to prompt for.
type Field struct {
	Flag     string
	Required bool
	// Validate, when set, checks the answer before it is accepted.
	Validate func(string) error
}

// ErrUnknownFlag is returned for a Field naming a flag cmd does not have.
var ErrUnknownFlag = errors.New("snake: unknown flag")

// PromptMissing asks for every field whose flag was not given on the command
// line and sets the flag from the answer. An empty answer keeps the default.
func PromptMissing(cmd *cobra.Command, fields ...Field) error {
	for _, field := range fields {
		f := cmd.Flags().Lookup(field.Flag)
		if f == nil {
			return fmt.Errorf("%w %q", ErrUnknownFlag, field.Flag)
		}
		if f.Changed {
			continue
		}
		answer, err := promptFlag(cmd, f, field)
		if err != nil {
			return err
		}
		if answer == "" {
			continue
		}
		if err := cmd.Flags().Set(f.Name, answer); err != nil {
			return err
		}
	}
	return nil
}

func promptFlag(cmd *cobra.Command, f *pflag.Flag, field Field) (string, error) {
	validate := func(input string) error {
		if input == "" {
			if field.Required && f.DefValue == "" {
				return errors.New("a value is required")
			}
			return nil
		}
		if field.Validate != nil {
			return field.Validate(input)
		}
		return nil
	}

	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}

	label := f.Usage
	if f.DefValue != "" {
		label = fmt.Sprintf("%s [%s]", f.Usage, f.DefValue)
	}
	prompt := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Validate:  validate,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}

	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt for --%s: %w", f.Name, err)
	}
	return result, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser wraps w with a no-op Close, as promptui wants an io.WriteCloser.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}
