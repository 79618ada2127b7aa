// Package http provides the JSON API over the ledger.
//
// This file implements utilities for parsing and validating HTTP request
// data: query parameters, dates in the ledger's timezone and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tracker/internal/calc"
	"tracker/internal/core"
)

// maxBodyBytes caps request bodies, imports included.
const maxBodyBytes = 10 << 20

// ParseDay parses YYYY-MM-DD as midnight in loc, or an RFC 3339 instant.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", core.ErrValidation, s)
}

// ReferenceTime returns the "now" query parameter when present, so views
// can be computed for any moment; otherwise the server clock.
func ReferenceTime(query url.Values, now time.Time, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(query.Get("now"))
	if v == "" {
		return now, nil
	}
	return ParseDay(v, loc)
}

// ParseMonthParam reads a YYYY-MM parameter, defaulting to def.
func ParseMonthParam(query url.Values, key string, def core.Period) (core.Period, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	return core.ParsePeriod(v)
}

// ParseIntParam reads an integer parameter, defaulting to def.
func ParseIntParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", core.ErrValidation, key)
	}
	return n, nil
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", core.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %v", core.ErrValidation, err)
	}
	return nil
}

// transactionRequest is the body of create and update calls. The amount is
// either a number or an arithmetic expression such as "12.50 + 3".
type transactionRequest struct {
	Type       string      `json:"type"`
	Category   string      `json:"category"`
	Source     string      `json:"source"`
	Amount     *core.Money `json:"amount"`
	AmountExpr string      `json:"amount_expr"`
	Date       string      `json:"date"`
}

func (req transactionRequest) draft(loc *time.Location) (core.Draft, error) {
	kind, err := core.ParseKind(req.Type)
	if err != nil {
		return core.Draft{}, err
	}

	var amount core.Money
	switch {
	case req.Amount != nil && req.AmountExpr != "":
		return core.Draft{}, fmt.Errorf("%w: give either amount or amount_expr", core.ErrValidation)
	case req.Amount != nil:
		amount = *req.Amount
	case strings.TrimSpace(req.AmountExpr) != "":
		d, err := calc.Eval(req.AmountExpr)
		if err != nil {
			return core.Draft{}, fmt.Errorf("%w: amount_expr: %v", core.ErrValidation, err)
		}
		amount = core.NewMoney(d)
	default:
		return core.Draft{}, fmt.Errorf("%w: amount is required", core.ErrValidation)
	}

	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		if date, err = ParseDay(req.Date, loc); err != nil {
			return core.Draft{}, err
		}
	}

	return core.Draft{
		Kind:     kind,
		Category: sanitizeInput(req.Category),
		Source:   sanitizeInput(req.Source),
		Amount:   amount,
		Date:     date,
	}, nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}
