// Package seed imports a YAML file of publications, issues and schedule.
package seed

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/bulletin/pkg/store"
)

type Seed struct {
	Persistence store.Persistence
	File        string
	Out         io.Writer
}

func (s *Seed) Do(ctx context.Context) error {
	if s.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}
	res, err := store.ImportFile(ctx, s.Persistence, s.File)
	if err != nil {
		return err
	}
	out := s.Out
	if out == nil {
		out = color.Output
	}
	b := color.New(color.Bold)
	_, _ = b.Fprintf(out, "Imported %s\n", s.File)
	_, _ = fmt.Fprintf(out, "  publications: %d\n  issues:       %d\n  scheduled:    %d\n", res.Publications, res.Issues, res.Scheduled)
	return nil
}
