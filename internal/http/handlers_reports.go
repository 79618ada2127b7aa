package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tracker/internal/calendar"
	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/report"
)

type periodView struct {
	Period    string                 `json:"period"`
	Label     string                 `json:"label"`
	Totals    report.Totals          `json:"totals"`
	Breakdown []report.CategoryTotal `json:"breakdown"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now, err := ReferenceTime(r.URL.Query(), s.now(), s.loc)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	summary := report.Summarize(s.store.List(r.Context()), now, s.store.Taxonomy(), s.loc)
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	period, err := core.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}

	txs := s.store.List(r.Context())
	breakdown := report.CategoryBreakdown(txs, period, s.store.Taxonomy(), s.loc)
	if strings.EqualFold(r.URL.Query().Get("sort"), "total") {
		breakdown = report.SortByTotal(breakdown)
	}

	NewJSONResponse().Body(periodView{
		Period:    period.String(),
		Label:     period.Label(),
		Totals:    report.PeriodTotals(txs, period, s.loc),
		Breakdown: breakdown,
	}).Write(w)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now, err := ReferenceTime(q, s.now(), s.loc)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	months, err := ParseIntParam(q, "months", report.DefaultSeriesMonths)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	if months > 120 {
		months = 120
	}

	NewJSONResponse().Body(report.MonthlySeries(s.store.List(r.Context()), now, months, s.loc)).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now, err := ReferenceTime(q, s.now(), s.loc)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	month, err := ParseMonthParam(q, "month", core.PeriodOf(now, s.loc))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}

	var selected time.Time
	if v := q.Get("selected"); v != "" {
		if selected, err = ParseDay(v, s.loc); err != nil {
			writeError(w, r, log.OpRead, err)
			return
		}
	}

	grid := calendar.Build(s.store.List(r.Context()), month, calendar.Options{
		Loc:      s.loc,
		Today:    now,
		Selected: selected,
	})
	NewJSONResponse().Body(grid).Write(w)
}
