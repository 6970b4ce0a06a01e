// Package history selects and decorates the activity history sources.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/ports"
)

// Source captures a single history implementation (GitHub, Postgres, etc.).
type Source interface {
	ports.HistoryService
	Name() string
}

// Archiver persists fetched activity for later replay.
type Archiver interface {
	SaveActivity(ctx context.Context, actor string, records []domain.ActivityRecord) (int, error)
}

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(source Source) {
	if source == nil {
		return
	}
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	r.sources[source.Name()] = source
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if source, ok := r.sources[name]; ok {
		return source, nil
	}
	return nil, fmt.Errorf("history source %s is not registered (known: %v)", name, r.Names())
}

// Names lists registered sources in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Archiving wraps a source so every fetched page is also handed to an
// archiver. Archive failures are logged, never returned.
type Archiving struct {
	source   Source
	archiver Archiver
	logger   *slog.Logger
}

var _ Source = (*Archiving)(nil)

// NewArchiving decorates source. A nil archiver returns source unchanged.
func NewArchiving(source Source, archiver Archiver, logger *slog.Logger) Source {
	if archiver == nil {
		return source
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Archiving{source: source, archiver: archiver, logger: logger}
}

// Name reports the wrapped source name.
func (a *Archiving) Name() string {
	return a.source.Name()
}

// ListRecentActivity delegates to the wrapped source and archives the result.
func (a *Archiving) ListRecentActivity(ctx context.Context, actor string, pageSize int) ([]domain.ActivityRecord, error) {
	records, err := a.source.ListRecentActivity(ctx, actor, pageSize)
	if err != nil {
		return nil, err
	}

	skipped, archiveErr := a.archiver.SaveActivity(ctx, actor, records)
	if archiveErr != nil {
		a.logger.Warn("archive activity", "source", a.source.Name(), "actor", actor, "error", archiveErr)
	} else {
		a.logger.Debug("activity archived", "source", a.source.Name(), "records", len(records)-skipped, "skipped", skipped)
	}

	return records, nil
}
