package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tracker/internal/core"
	"tracker/internal/filter"
	"tracker/internal/log"
)

type transactionList struct {
	Filter       string             `json:"filter"`
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

// filterSpec builds the list filter from date, or category and timeframe.
func (s *Server) filterSpec(r *http.Request) (filter.Spec, error) {
	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	category := sanitizeInput(q.Get("category"))

	switch {
	case date != "" && category != "":
		return filter.Spec{}, fmt.Errorf("%w: date and category filters are exclusive", core.ErrValidation)
	case date != "":
		day, err := ParseDay(date, s.loc)
		if err != nil {
			return filter.Spec{}, err
		}
		return filter.ByExactDate(day), nil
	case category != "":
		tf, err := filter.ParseTimeframe(q.Get("timeframe"))
		if err != nil {
			return filter.Spec{}, err
		}
		return filter.ByCategoryAndTimeframe(category, tf), nil
	}
	return filter.None(), nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	spec, err := s.filterSpec(r)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	now, err := ReferenceTime(r.URL.Query(), s.now(), s.loc)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}

	txs := filter.Apply(s.store.List(r.Context()), spec, now, s.loc)
	switch order := r.URL.Query().Get("order"); order {
	case "", "recent":
		txs = filter.MostRecentFirst(txs)
	case "insertion":
	default:
		writeError(w, r, log.OpList, fmt.Errorf("%w: unknown order %q", core.ErrValidation, order))
		return
	}

	NewJSONResponse().Body(transactionList{
		Filter:       spec.String(),
		Count:        len(txs),
		Transactions: txs,
	}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	d, err := req.draft(s.loc)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	id, err := s.store.Add(r.Context(), d)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	tx, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+id).
		Body(tx).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	d, err := req.draft(s.loc)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if d.Date.IsZero() {
		// An edit without a date keeps the stored one.
		current, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, log.OpUpdate, err)
			return
		}
		d.Date = current.Date
	}

	if err := s.store.Edit(r.Context(), id, d); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	tx, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
