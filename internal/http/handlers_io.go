package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tracker/internal/calc"
	"tracker/internal/codec"
	"tracker/internal/core"
	"tracker/internal/log"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := codec.JSON
	if strings.HasSuffix(r.URL.Path, ".csv") {
		format = codec.CSV
	}

	// Encode to a buffer first so a failure can still produce an error status.
	var buf bytes.Buffer
	txs := s.store.List(r.Context())
	if err := codec.Write(format, &buf, txs); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	filename := fmt.Sprintf("tracker-%s.%s", s.now().In(s.loc).Format("2006-01-02"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger exported",
		log.FieldOperation, log.OpExport,
		log.FieldImportFmt, format,
		log.FieldCount, len(txs))
}

type importResult struct {
	Format   codec.Format `json:"format"`
	Imported int          `json:"imported"`
}

// handleImport replaces the whole ledger with the uploaded export. The
// format comes from ?format=, the Content-Type, or the body itself.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, log.OpImport, fmt.Errorf("%w: read body: %v", core.ErrValidation, err))
		return
	}

	format := codec.Detect(r.Header.Get("Content-Type"), body)
	if v := r.URL.Query().Get("format"); v != "" {
		if format, err = codec.ParseFormat(v); err != nil {
			writeError(w, r, log.OpImport, err)
			return
		}
	}

	txs, err := codec.Read(format, bytes.NewReader(body), s.loc)
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	if err := s.store.Replace(r.Context(), txs); err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger imported",
		log.FieldOperation, log.OpImport,
		log.FieldImportFmt, format,
		log.FieldCount, len(txs))
	NewJSONResponse().Body(importResult{Format: format, Imported: len(txs)}).Write(w)
}

type calcRequest struct {
	Expr string `json:"expr"`
}

type calcResult struct {
	Expr   string     `json:"expr"`
	Result string     `json:"result"`
	Amount core.Money `json:"amount"`
}

func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, log.OpCalc, err)
		return
	}
	v, err := calc.Eval(req.Expr)
	if err != nil {
		writeError(w, r, log.OpCalc, err)
		return
	}
	NewJSONResponse().Body(calcResult{
		Expr:   req.Expr,
		Result: v.String(),
		Amount: core.NewMoney(v),
	}).Write(w)
}
