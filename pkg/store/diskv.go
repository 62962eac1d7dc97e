package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/issue"
)

// Kind names a record collection inside the store.
type Kind string

const (
	KindIssues       Kind = "issues"
	KindPublications Kind = "publications"
	KindSchedule     Kind = "schedule"
)

// Persistence defines the persistence contract for bulletin records.
type Persistence interface {
	Issues(ctx context.Context) (Index[int, issue.Issue], error)
	Publications(ctx context.Context) (Index[string, issue.Publication], error)
	StoreIssue(ctx context.Context, i issue.Issue) error
	StorePublication(ctx context.Context, p issue.Publication) error
	DeleteIssue(ctx context.Context, id int) error
	DeletePublication(ctx context.Context, id string) error

	Schedule(ctx context.Context, month issue.Date) (Index[int, issue.ScheduledIssue], error)
	AddSchedule(ctx context.Context, s issue.ScheduledIssue) (issue.ScheduledIssue, error)
	CurrentIssueID(ctx context.Context, now time.Time) (*int, error)

	Modified(ctx context.Context) ModifiedStatus
	ClearModified(ctx context.Context) error

	Watch(ctx context.Context) (<-chan Event, error)
}

// ModifiedStatus lists ids with local changes, per kind.
type ModifiedStatus map[Kind][]string

// HasChanges reports whether any kind has modified ids.
func (m ModifiedStatus) HasChanges() bool {
	for _, ids := range m {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config, log zerolog.Logger) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath, log: log}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	log      zerolog.Logger

	// mu serializes schedule id allocation; modMu guards the modified index.
	mu    sync.Mutex
	modMu sync.Mutex
}

func (p *persistence) Issues(ctx context.Context) (Index[int, issue.Issue], error) {
	idx := make(Index[int, issue.Issue])
	err := p.each(ctx, KindIssues, func(key string, data []byte) error {
		var i issue.Issue
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		idx[i.ID] = i
		return nil
	})
	return idx, err
}

func (p *persistence) Publications(ctx context.Context) (Index[string, issue.Publication], error) {
	idx := make(Index[string, issue.Publication])
	err := p.each(ctx, KindPublications, func(key string, data []byte) error {
		var pub issue.Publication
		if err := json.Unmarshal(data, &pub); err != nil {
			return err
		}
		idx[pub.ID] = pub
		return nil
	})
	return idx, err
}

func (p *persistence) StoreIssue(_ context.Context, i issue.Issue) error {
	if i.ID <= 0 {
		return errors.New("store: issue id must be positive")
	}
	return p.write(KindIssues, strconv.Itoa(i.ID), i)
}

func (p *persistence) StorePublication(_ context.Context, pub issue.Publication) error {
	if strings.TrimSpace(pub.ID) == "" {
		return errors.New("store: publication id required")
	}
	return p.write(KindPublications, pub.ID, pub)
}

func (p *persistence) DeleteIssue(_ context.Context, id int) error {
	return p.erase(KindIssues, strconv.Itoa(id))
}

func (p *persistence) DeletePublication(_ context.Context, id string) error {
	return p.erase(KindPublications, id)
}

func (p *persistence) Schedule(ctx context.Context, month issue.Date) (Index[int, issue.ScheduledIssue], error) {
	all, err := p.allScheduled(ctx)
	if err != nil {
		return nil, &FetchError{Month: month.Format("January 2006"), Err: err}
	}
	idx := make(Index[int, issue.ScheduledIssue])
	for id, s := range all {
		if s.InMonth(month) {
			idx[id] = s
		}
	}
	return idx, nil
}

func (p *persistence) AddSchedule(ctx context.Context, s issue.ScheduledIssue) (issue.ScheduledIssue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := s.Validate()
	if len(msgs) > 0 {
		return issue.ScheduledIssue{}, &ValidationError{MessageList: msgs}
	}

	existing, err := p.allScheduled(ctx)
	if err != nil {
		return issue.ScheduledIssue{}, err
	}
	if msgs := conflicts(s, existing); len(msgs) > 0 {
		return issue.ScheduledIssue{}, &ValidationError{MessageList: msgs}
	}

	issues, err := p.Issues(ctx)
	if err != nil {
		return issue.ScheduledIssue{}, err
	}
	next := 1
	for id := range existing {
		if id >= next {
			next = id + 1
		}
	}
	for id := range issues {
		if id >= next {
			next = id + 1
		}
	}
	s.ID = &next
	if err := p.write(KindSchedule, strconv.Itoa(next), s); err != nil {
		return issue.ScheduledIssue{}, err
	}
	p.log.Info().Int("issue_id", next).
		Str("cutoff", s.CutoffDate.String()).
		Str("publication", s.PublicationDate.String()).
		Msg("scheduled issue")
	return s, nil
}

// conflicts reports dates of s already taken by other scheduled issues.
func conflicts(s issue.ScheduledIssue, existing Index[int, issue.ScheduledIssue]) []string {
	ids := make([]int, 0, len(existing))
	for id := range existing {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var msgs []string
	for _, id := range ids {
		other := existing[id]
		for _, d := range []struct {
			label string
			date  issue.Date
		}{{"cutoff", s.CutoffDate}, {"publication", s.PublicationDate}} {
			if d.date.SameDay(other.PublicationDate) || d.date.SameDay(other.CutoffDate) {
				msgs = append(msgs, fmt.Sprintf("date conflict: %s date %s is already used by issue %d", d.label, d.date, id))
			}
		}
	}
	return msgs
}

func (p *persistence) CurrentIssueID(ctx context.Context, now time.Time) (*int, error) {
	all, err := p.allScheduled(ctx)
	if err != nil {
		return nil, err
	}
	today := issue.NewDate(now)
	var current *int
	for id, s := range all {
		if s.PublicationDate.Before(today) {
			continue
		}
		if current == nil || id < *current {
			id := id
			current = &id
		}
	}
	return current, nil
}

func (p *persistence) allScheduled(ctx context.Context) (Index[int, issue.ScheduledIssue], error) {
	idx := make(Index[int, issue.ScheduledIssue])
	err := p.each(ctx, KindSchedule, func(key string, data []byte) error {
		var s issue.ScheduledIssue
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s.ID == nil {
			pk := keyToPathTransform(key)
			id, err := strconv.Atoi(fromID(pk.FileName))
			if err != nil {
				return err
			}
			s.ID = &id
		}
		idx[*s.ID] = s
		return nil
	})
	return idx, err
}

// each reads every record of kind. Unreadable records are logged and
// skipped; only context cancellation aborts the scan.
func (p *persistence) each(ctx context.Context, kind Kind, fn func(key string, data []byte) error) error {
	prefix := string(kind) + "-"
	for key := range p.d.KeysPrefix(prefix, ctx.Done()) {
		data, err := p.d.Read(key)
		if err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("read record")
			continue
		}
		if err := fn(key, data); err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("decode record")
			continue
		}
	}
	return ctx.Err()
}

func (p *persistence) write(kind Kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := p.d.Write(toKey(kind, id), data); err != nil {
		return fmt.Errorf("store: write %s %s: %w", kind, id, err)
	}
	return p.markModified(kind, id)
}

func (p *persistence) erase(kind Kind, id string) error {
	if err := p.d.Erase(toKey(kind, id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("store: erase %s %s: %w", kind, id, err)
	}
	return p.markModified(kind, id)
}

const modifiedIndexFile = ".modified.json"

func (p *persistence) modifiedIndexPath() string {
	return filepath.Join(p.basePath, modifiedIndexFile)
}

func (p *persistence) Modified(_ context.Context) ModifiedStatus {
	p.modMu.Lock()
	defer p.modMu.Unlock()
	status, err := p.loadModified()
	if err != nil {
		p.log.Warn().Err(err).Msg("load modified index")
		return ModifiedStatus{}
	}
	return status
}

func (p *persistence) ClearModified(_ context.Context) error {
	p.modMu.Lock()
	defer p.modMu.Unlock()
	return p.saveModified(ModifiedStatus{})
}

func (p *persistence) markModified(kind Kind, id string) error {
	p.modMu.Lock()
	defer p.modMu.Unlock()
	status, err := p.loadModified()
	if err != nil {
		return fmt.Errorf("store: load modified index: %w", err)
	}
	for _, existing := range status[kind] {
		if existing == id {
			return nil
		}
	}
	status[kind] = append(status[kind], id)
	sort.Strings(status[kind])
	if err := p.saveModified(status); err != nil {
		return fmt.Errorf("store: save modified index: %w", err)
	}
	return nil
}

func (p *persistence) loadModified() (ModifiedStatus, error) {
	data, err := os.ReadFile(p.modifiedIndexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ModifiedStatus{}, nil
		}
		return nil, err
	}
	status := ModifiedStatus{}
	if len(data) == 0 {
		return status, nil
	}
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return status, nil
}

func (p *persistence) saveModified(status ModifiedStatus) error {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	path := p.modifiedIndexPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `kind-hexid`. Ids are hex encoded so that separators and path
// characters inside publication codes stay out of the key.
func toKey(kind Kind, id string) string {
	return fmt.Sprintf("%s-%s", kind, hex.EncodeToString([]byte(id)))
}

func fromID(s string) string {
	b, err := hex.DecodeString(s)
	if err != nil {
		return s
	}
	return string(b)
}
