package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"carteira/internal/auth"
	"carteira/internal/core"
	"carteira/internal/export"
	applog "carteira/internal/log"
	"carteira/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, store.OpList, err)
		return
	}
	ov, err := s.deps.Dashboard.Overview(r.Context(), auth.OwnerFromContext(r.Context()), p.Year, p.Month)
	if err != nil {
		s.writeError(w, r, store.OpList, err)
		return
	}
	NewJSONResponse().Body(ov).Write(w)
}

func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, store.OpGet, err)
		return
	}
	p, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, store.OpGet, err)
		return
	}
	query := sanitizeInput(r.URL.Query().Get("q"))

	inv, err := s.deps.Dashboard.Invoice(r.Context(), auth.OwnerFromContext(r.Context()), id, p.Year, p.Month, query)
	if err != nil {
		s.writeError(w, r, store.OpGet, err)
		return
	}
	NewJSONResponse().Body(inv).Write(w)
}

func (s *Server) handleAnnual(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, store.OpList, err)
		return
	}
	a, err := s.deps.Dashboard.Annual(r.Context(), auth.OwnerFromContext(r.Context()), year)
	if err != nil {
		s.writeError(w, r, store.OpList, err)
		return
	}
	NewJSONResponse().Body(a).Write(w)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, applog.OpExport, err)
		return
	}
	owner := auth.OwnerFromContext(r.Context())
	annual, invoices, err := s.deps.Dashboard.Report(r.Context(), owner, year)
	if err != nil {
		s.writeError(w, r, applog.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, annual, invoices); err != nil {
		s.writeError(w, r, applog.OpExport, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Annual workbook exported",
		applog.FieldOwner, string(owner),
		applog.FieldYear, year,
		"invoices", len(invoices),
		"bytes", buf.Len(),
	)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="carteira-%d.xlsx"`, year))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleSetPrimaryCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		err = s.deps.Primary.SetPrimaryCard(r.Context(), auth.OwnerFromContext(r.Context()), id)
	}
	if err != nil {
		s.writeError(w, r, applog.OpSetPrimary, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleSetPrimaryGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		err = s.deps.Primary.SetPrimaryGoal(r.Context(), auth.OwnerFromContext(r.Context()), id)
	}
	if err != nil {
		s.writeError(w, r, applog.OpSetPrimary, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// adjustRequest accepts the delta as a JSON number or a localized string
// such as "-50,00".
type adjustRequest struct {
	Delta any `json:"delta"`
}

func (s *Server) handleAdjustGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, applog.OpAdjust, err)
		return
	}
	var req adjustRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, applog.OpAdjust, err)
		return
	}
	if req.Delta == nil {
		s.writeError(w, r, applog.OpAdjust, badRequest("delta is required"))
		return
	}

	g, err := s.deps.Goals.Adjust(r.Context(), auth.OwnerFromContext(r.Context()), id, core.ToNumberAny(req.Delta))
	if err != nil {
		s.writeError(w, r, applog.OpAdjust, err)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Records.SeedCategories(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, store.OpCreate, err)
		return
	}
	NewJSONResponse().Body(map[string]int{"created": n}).Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Store.Settings().Get(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, store.OpGet, err)
		return
	}
	NewJSONResponse().Body(st).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var incoming core.Settings
	if err := decodeJSON(w, r, &incoming); err != nil {
		s.writeError(w, r, store.OpUpdate, err)
		return
	}
	owner := auth.OwnerFromContext(r.Context())
	st, err := s.deps.Store.Settings().Update(r.Context(), owner, func(cur *core.Settings) error {
		incoming.OwnerID = cur.OwnerID
		incoming.Currency = strings.ToUpper(strings.TrimSpace(incoming.Currency))
		*cur = incoming
		return nil
	})
	if err != nil {
		s.writeError(w, r, store.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(st).Write(w)
}

type classifyRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, applog.OpValidate, err)
		return
	}
	label := s.deps.Classifier.Classify(sanitizeInput(req.Description))
	NewJSONResponse().Body(map[string]string{"category": string(label)}).Write(w)
}
