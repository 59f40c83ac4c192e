package http

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// query keys with a fixed meaning; every other key filters on specs
var reservedCatalogKeys = map[string]bool{"page": true, "per_page": true, "q": true, "cat": true}

var specKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

type CatalogHandler struct {
	catalog CatalogAPI
	log     logrus.FieldLogger
}

func NewCatalogHandler(catalog CatalogAPI, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	q := domain.CatalogQuery{
		Page:     queryInt(values.Get("page"), 1, domain.MaxPage),
		PerPage:  queryInt(values.Get("per_page"), 0, domain.MaxPerPage),
		Search:   values.Get("q"),
		Category: values.Get("cat"),
	}
	for key, vals := range values {
		if reservedCatalogKeys[key] || !specKeyPattern.MatchString(key) {
			continue
		}
		var nonEmpty []string
		for _, v := range vals {
			if v != "" {
				nonEmpty = append(nonEmpty, v)
			}
		}
		if len(nonEmpty) == 0 {
			continue
		}
		if q.SpecFilters == nil {
			q.SpecFilters = map[string][]string{}
		}
		q.SpecFilters[key] = nonEmpty
	}

	page, err := h.catalog.Catalog(r.Context(), q)
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, page)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, p)
}

func (h *CatalogHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.catalog.Facets(r.Context(), r.URL.Query().Get("cat"))
	if err != nil {
		respondServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, r, h.log, http.StatusOK, facets)
}

// queryInt parses a non-negative integer parameter. Values above limit are
// clamped to it; malformed or out-of-range input yields def.
func queryInt(raw string, def, limit int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return min(n, limit)
}
