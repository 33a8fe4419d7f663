package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"foodwaste/internal/core"

	"golang.org/x/sync/errgroup"
)

// dashboardTimeout bounds the store reads behind one dashboard partial.
const dashboardTimeout = 7 * time.Second

type periodOption struct {
	Token, Label string
	Selected     bool
}

var periodLabels = []periodOption{
	{Token: "7days", Label: "Last 7 days"},
	{Token: "30days", Label: "Last 30 days"},
	{Token: "month", Label: "This month"},
	{Token: "year", Label: "This year"},
	{Token: "all", Label: "All time"},
}

func periodOptions(selected string) []periodOption {
	out := make([]periodOption, len(periodLabels))
	copy(out, periodLabels)
	for i := range out {
		out[i].Selected = out[i].Token == selected
	}
	return out
}

// breakdownRow is one bar of a category or reason breakdown.
type breakdownRow struct {
	Name string
	Kg   float64
}

func breakdown(m map[string]float64) ([]breakdownRow, float64) {
	rows := make([]breakdownRow, 0, len(m))
	var top float64
	for name, kg := range m {
		rows = append(rows, breakdownRow{Name: name, Kg: kg})
		top = max(top, kg)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Kg != rows[j].Kg {
			return rows[i].Kg > rows[j].Kg
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, top
}

// handleDashboard renders the main dashboard page
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Today      string
		Categories []core.Category
		Reasons    []core.Reason
		Units      []string
		Periods    []periodOption
		ChatMode   string
	}{
		Today:      time.Now().Format(core.DateLayout),
		Categories: core.Categories,
		Reasons:    core.Reasons,
		Units:      []string{"kg", "g", "lbs", "oz", "ltr", "ml", "servings", "items"},
		Periods:    periodOptions("7days"),
		ChatMode:   s.chatMode,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// handleStatsPartial renders the stats panel. Stats and the most recent
// entries are loaded concurrently.
func (s *Server) handleStatsPartial(w http.ResponseWriter, r *http.Request) {
	period := core.ParsePeriod(r.URL.Query().Get("period")).String()

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	var (
		stats  core.AggregateStats
		recent core.Page
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.svc.GetStats(gctx, period)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.svc.ListEntries(gctx, core.PageRequest{Limit: 5, Sort: "entry_timestamp", Order: core.SortOrderDesc})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(r.Context(), "Stats panel failed", "error", err, "period", period)
		writeHTMXError(w, r, err)
		return
	}

	byCategory, topCategory := breakdown(stats.ByCategory)
	byReason, topReason := breakdown(stats.ByReason)
	data := struct {
		Period      string
		Periods     []periodOption
		Stats       core.AggregateStats
		ByCategory  []breakdownRow
		TopCategory float64
		ByReason    []breakdownRow
		TopReason   float64
		Recent      []core.WasteEntry
	}{
		Period:      period,
		Periods:     periodOptions(period),
		Stats:       stats,
		ByCategory:  byCategory,
		TopCategory: topCategory,
		ByReason:    byReason,
		TopReason:   topReason,
		Recent:      recent.Entries,
	}
	s.render(w, r, "stats_panel", data)
}

// handleEntriesPartial renders one page of the entries table.
func (s *Server) handleEntriesPartial(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.ListEntries(r.Context(), ParsePageRequest(r.URL.Query()))
	if err != nil {
		writeHTMXError(w, r, err)
		return
	}

	data := struct {
		core.Page
		PrevOffset int
		NextOffset int
		HasPrev    bool
		HasNext    bool
	}{
		Page:       page,
		PrevOffset: max(page.Offset-page.Limit, 0),
		NextOffset: page.Offset + page.Limit,
		HasPrev:    page.Offset > 0,
		HasNext:    page.Offset+page.Limit < page.Total,
	}
	s.render(w, r, "entries_table", data)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.GetStats(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Charts(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error", "error", err, "template", name)
	}
}
