package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"foodwaste/internal/chat"
	"foodwaste/internal/core"
	"foodwaste/internal/log"
	"foodwaste/internal/metrics"
	"foodwaste/internal/storage"
)

// EventPublisher announces entry changes to other processes.
type EventPublisher interface {
	PublishEntryCreated(ctx context.Context, e core.WasteEntry) error
	PublishEntryDeleted(ctx context.Context, id string) error
	Close() error
}

// WasteService is the query surface used by the HTTP handlers, the CLI and
// the importer. It orchestrates the store, the stats engine, the chat
// resolver and the optional event publisher.
type WasteService struct {
	store     storage.EntryStore
	converter *core.UnitConverter
	stats     *core.StatsEngine
	resolver  *chat.Resolver
	publisher EventPublisher
	metrics   *metrics.Metrics
	chatErr   error
	now       func() time.Time
}

type Option func(*WasteService)

func WithPublisher(p EventPublisher) Option {
	return func(s *WasteService) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *WasteService) { s.metrics = m }
}

// WithChatError makes every chat request fail with err, typically a
// *core.ConfigurationError for a missing credential.
func WithChatError(err error) Option {
	return func(s *WasteService) { s.chatErr = err }
}

// WithClock replaces the clock used for entry timestamps and periods.
func WithClock(now func() time.Time) Option {
	return func(s *WasteService) { s.now = now }
}

func NewWasteService(store storage.EntryStore, conv *core.UnitConverter, resolver *chat.Resolver, opts ...Option) *WasteService {
	s := &WasteService{
		store:     store,
		converter: conv,
		resolver:  resolver,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.converter == nil {
		s.converter = core.NewUnitConverter()
	}
	if s.resolver == nil {
		s.resolver = chat.NewResolver(chat.ModeOffline)
	}
	s.stats = core.NewStatsEngine().WithClock(s.now)
	return s
}

// AddEntry validates in, stores the resulting entry and announces it.
func (s *WasteService) AddEntry(ctx context.Context, in core.EntryInput) (string, error) {
	e, err := in.Build(s.converter, s.now())
	if err != nil {
		return "", err
	}
	if !s.converter.Known(e.Unit) {
		slog.WarnContext(ctx, "Unknown unit, quantity stored as kilograms",
			"unit", e.Unit, "food_item", e.FoodItem)
	}

	id, err := s.store.Insert(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}
	e.ID = id

	sl := log.NewStructuredLogger(log.FromContext(ctx))
	sl.LogEntryCreated(ctx, id, e.FoodItem, string(e.Category), string(e.Reason), e.QuantityKg)
	s.metrics.EntryCreated(string(e.Category), string(e.Reason), e.QuantityKg)

	if s.publisher != nil {
		err := s.publisher.PublishEntryCreated(ctx, e)
		s.metrics.EventPublished("entry.created", err)
		if err != nil {
			// The entry is stored; the mirror catches up on reconciliation.
			sl.LogError(ctx, "Failed to publish entry event", err, log.ComponentAMQP, log.OpCreate,
				log.LogFields{log.FieldEntryID: id}.WithErrorType(log.ErrorTypeNetwork))
		}
	}
	return id, nil
}

// Entries returns every stored entry, newest date first.
func (s *WasteService) Entries(ctx context.Context) ([]core.WasteEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return core.SortEntries(entries, core.DefaultSortField, core.SortOrderDesc), nil
}

// GetEntry returns a single stored entry.
func (s *WasteService) GetEntry(ctx context.Context, id string) (core.WasteEntry, error) {
	return s.store.Get(ctx, id)
}

// ListEntries returns one sorted page of the stored entries.
func (s *WasteService) ListEntries(ctx context.Context, req core.PageRequest) (core.Page, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return core.Page{}, fmt.Errorf("list entries: %w", err)
	}
	return core.Paginate(entries, req), nil
}

// GetStats aggregates the current store contents over the period token.
func (s *WasteService) GetStats(ctx context.Context, period string) (core.AggregateStats, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return core.AggregateStats{}, fmt.Errorf("load entries for stats: %w", err)
	}
	return s.stats.Aggregate(entries, core.ParsePeriod(period)), nil
}

// Charts builds the dashboard chart series over the period token.
func (s *WasteService) Charts(ctx context.Context, period string) (core.ChartData, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return core.ChartData{}, fmt.Errorf("load entries for charts: %w", err)
	}
	p := core.ParsePeriod(period)
	return core.BuildChartData(core.FilterByPeriod(entries, p, s.now()), p), nil
}

// DeleteEntry removes the entry and announces the removal.
func (s *WasteService) DeleteEntry(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &core.ValidationError{Field: "id", Message: "entry id cannot be empty"}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Waste entry deleted", "entry_id", id)
	s.metrics.EntryDeleted()

	if s.publisher != nil {
		err := s.publisher.PublishEntryDeleted(ctx, id)
		s.metrics.EventPublished("entry.deleted", err)
		if err != nil {
			log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Failed to publish delete event", err,
				log.ComponentAMQP, log.OpDelete, log.LogFields{log.FieldEntryID: id}.WithErrorType(log.ErrorTypeNetwork))
		}
	}
	return nil
}

// Chat answers query against the current entries.
func (s *WasteService) Chat(ctx context.Context, query string) (string, error) {
	reply, err := s.ChatReply(ctx, query)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// ChatReply is Chat with the answering stage attached. Only an empty query
// is an error; every collaborator failure degrades inside the resolver.
func (s *WasteService) ChatReply(ctx context.Context, query string) (chat.Reply, error) {
	if strings.TrimSpace(query) == "" {
		return chat.Reply{}, &core.ValidationError{Field: "message", Message: "Missing 'message' field"}
	}
	if s.chatErr != nil {
		return chat.Reply{}, s.chatErr
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Answering without entry data", "error", err)
		entries = nil
	}
	reply := s.resolver.Resolve(ctx, query, entries)
	s.metrics.ChatReply(string(reply.Stage))
	return reply, nil
}

// AdviceQuery is the question asked on behalf of the user after logging e.
func AdviceQuery(e core.WasteEntry) string {
	return fmt.Sprintf("I just logged %s %s of %s in the category '%s', wasted because it was '%s'. Suggest a tip or advice.",
		strconv.FormatFloat(e.Quantity, 'f', -1, 64), e.Unit, e.FoodItem, e.Category, e.Reason)
}

// Advise asks the resolver for a tip about a freshly logged entry.
func (s *WasteService) Advise(ctx context.Context, e core.WasteEntry) string {
	reply, err := s.ChatReply(ctx, AdviceQuery(e))
	if err != nil {
		return ""
	}
	return reply.Text
}

// Ping reports whether the store is reachable, for stores that support it.
func (s *WasteService) Ping(ctx context.Context) error {
	if p, ok := s.store.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the store and the publisher.
func (s *WasteService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close waste service: %w", err)
	}
	return nil
}
