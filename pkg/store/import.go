package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tableflip.dev/bulletin/pkg/issue"
)

// Seed is the YAML document accepted by ImportFile.
type Seed struct {
	Publications []issue.Publication    `yaml:"publications"`
	Issues       []issue.Issue          `yaml:"issues"`
	Schedule     []issue.ScheduledIssue `yaml:"schedule"`
}

// ImportResult counts the records written by an import.
type ImportResult struct {
	Publications int
	Issues       int
	Scheduled    int
}

// ImportFile loads a YAML seed file into p.
func ImportFile(ctx context.Context, p Persistence, path string) (ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("store: read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return ImportResult{}, fmt.Errorf("store: parse seed %s: %w", path, err)
	}
	return Import(ctx, p, seed)
}

// Import writes every record of seed. Scheduled issues go through
// AddSchedule and are validated like any other new schedule.
func Import(ctx context.Context, p Persistence, seed Seed) (ImportResult, error) {
	var res ImportResult
	for _, pub := range seed.Publications {
		if err := p.StorePublication(ctx, pub); err != nil {
			return res, err
		}
		res.Publications++
	}
	for _, i := range seed.Issues {
		if err := p.StoreIssue(ctx, i); err != nil {
			return res, err
		}
		res.Issues++
	}
	for _, s := range seed.Schedule {
		s.ID = nil
		if _, err := p.AddSchedule(ctx, s); err != nil {
			return res, err
		}
		res.Scheduled++
	}
	return res, nil
}
