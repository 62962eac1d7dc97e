// Package mcp provides the Model Context Protocol server integration for bulletin.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"tableflip.dev/bulletin/pkg/annex"
	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/schedule"
	"tableflip.dev/bulletin/pkg/store"
)

// Backend is the part of store.Persistence the MCP server uses.
type Backend interface {
	schedule.SchedulePersisterSource
	Issues(ctx context.Context) (store.Index[int, issue.Issue], error)
	Publications(ctx context.Context) (store.Index[string, issue.Publication], error)
	CurrentIssueID(ctx context.Context, now time.Time) (*int, error)
}

// Service coordinates persistence-backed operations that are shared by the MCP server.
type Service struct {
	Backend   Backend
	Publisher notify.Publisher
	Lang      language.Tag
	Log       zerolog.Logger
	Now       func() time.Time
}

// ScheduleIssueOptions captures the parameters used to schedule a new issue.
type ScheduleIssueOptions struct {
	Cutoff      string
	Publication string
	Title       string
	Notes       string
}

// ScheduledIssueDTO is a transport-friendly projection of a scheduled issue.
type ScheduledIssueDTO struct {
	ID          *int   `json:"id,omitempty"`
	Cutoff      string `json:"cutoffDate"`
	Publication string `json:"publicationDate"`
	Title       string `json:"title,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// RunningAnnexDTO is a transport-friendly projection of a running annex.
type RunningAnnexDTO struct {
	PublicationID    string `json:"publicationId"`
	PublicationTitle string `json:"publicationTitle"`
	AnnexedTo        int    `json:"annexedTo"`
	PositionOn       string `json:"positionOn,omitempty"`
}

// NewService builds a service wrapper using the provided backend.
func NewService(b Backend) *Service {
	return &Service{
		Backend:   b,
		Publisher: notify.Discard,
		Lang:      language.English,
		Log:       zerolog.Nop(),
		Now:       time.Now,
	}
}

func (s *Service) check() error {
	if s.Backend == nil {
		return errors.New("persistence is not configured")
	}
	return nil
}

// ParseMonth accepts "2006-01" or any full date within the month. Empty means
// the current month.
func (s *Service) ParseMonth(v string) (issue.Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return issue.NewDate(s.now()).MonthStart(), nil
	}
	if t, err := time.Parse("2006-01", v); err == nil {
		return issue.NewDate(t), nil
	}
	d, err := issue.ParseDate(v)
	if err != nil {
		return issue.Date{}, fmt.Errorf("invalid month %q: want YYYY-MM", v)
	}
	return d.MonthStart(), nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// ListSchedule returns the issues scheduled in month, ordered by id.
func (s *Service) ListSchedule(ctx context.Context, month string) ([]ScheduledIssueDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	m, err := s.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	entries, err := s.Backend.Schedule(ctx, m)
	if err != nil {
		return nil, err
	}
	var cache schedule.MonthCache
	cache.Apply(cache.SetMonth(m), entries)
	out := make([]ScheduledIssueDTO, 0, len(entries))
	for _, e := range cache.Entries() {
		out = append(out, toScheduledDTO(e))
	}
	return out, nil
}

// ScheduleIssue schedules a new issue through the same steps as the
// calendar UI.
func (s *Service) ScheduleIssue(ctx context.Context, opts ScheduleIssueOptions) (ScheduledIssueDTO, error) {
	if err := s.check(); err != nil {
		return ScheduledIssueDTO{}, err
	}
	cutoff, err := issue.ParseDate(opts.Cutoff)
	if err != nil {
		return ScheduledIssueDTO{}, fmt.Errorf("invalid cutoff date: %w", err)
	}
	publication, err := issue.ParseDate(opts.Publication)
	if err != nil {
		return ScheduledIssueDTO{}, fmt.Errorf("invalid publication date: %w", err)
	}
	saved, err := schedule.Submit(ctx, s.Backend, issue.ScheduledIssue{
		CutoffDate:      cutoff,
		PublicationDate: publication,
		Title:           opts.Title,
		Notes:           opts.Notes,
	}, schedule.WithPublisher(s.Publisher), schedule.WithLogger(s.Log))
	if err != nil {
		return ScheduledIssueDTO{}, err
	}
	return toScheduledDTO(saved), nil
}

// RunningAnnexes lists the publications running into issue id.
func (s *Service) RunningAnnexes(ctx context.Context, id int, publicationID string) ([]RunningAnnexDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	issues, err := s.Backend.Issues(ctx)
	if err != nil {
		return nil, err
	}
	pubs, err := s.Backend.Publications(ctx)
	if err != nil {
		return nil, err
	}
	var filter []string
	if publicationID = strings.TrimSpace(publicationID); publicationID != "" {
		filter = append(filter, publicationID)
	}
	running, err := annex.ForIssueID(id, issues, pubs, filter...)
	if err != nil {
		return nil, err
	}
	out := make([]RunningAnnexDTO, 0, len(running))
	for _, ra := range running {
		dto := RunningAnnexDTO{
			PublicationID:    ra.Publication.ID,
			PublicationTitle: ra.Publication.DisplayTitle(s.Lang),
			AnnexedTo:        ra.AnnexedTo.ID,
		}
		if ra.PositionOn != nil {
			dto.PositionOn = ra.PositionOn.String()
		}
		out = append(out, dto)
	}
	return out, nil
}

// CurrentIssue returns the id of the next issue to be published.
func (s *Service) CurrentIssue(ctx context.Context) (*int, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.Backend.CurrentIssueID(ctx, s.now())
}

func toScheduledDTO(e issue.ScheduledIssue) ScheduledIssueDTO {
	return ScheduledIssueDTO{
		ID:          e.ID,
		Cutoff:      e.CutoffDate.String(),
		Publication: e.PublicationDate.String(),
		Title:       e.Title,
		Notes:       e.Notes,
	}
}
