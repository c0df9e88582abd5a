package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/strogholod/catalog/internal/core/port"
	"github.com/strogholod/catalog/internal/core/service"
)

// GET    v1/categories                        (200 OK)
// GET    v1/products?filter=label              (200 OK, 502 Bad gateway)
// POST   v1/products/refresh                  (200 OK, 502 Bad gateway)
// POST   v1/products JSON Draft               (200 OK, 409 Conflict, 422 Unprocessable)
// PUT    v1/products/{id} JSON Draft          (200 OK, 404, 409, 422)
// DELETE v1/products/{id}                     (200 OK, 404, 409, 422, 502)
// POST   v1/products/{id}/clear-history       (200 OK, 404, 409, 422, 502)
// GET    v1/products/{id}/price-changes       (200 OK, 404 Not found)
// GET    v1/submission                        (200 OK)
// DELETE v1/submission                        (200 OK)

type CatalogHandler struct {
	catalog   port.CatalogView
	submitter port.ProductSubmitter
	history   port.PriceChangesReader
	now       func() time.Time
}

// RegisterCatalog mounts the catalog routes on mux.
// history may be nil when the price change storage is disabled.
func RegisterCatalog(
	mux *http.ServeMux,
	catalog port.CatalogView,
	submitter port.ProductSubmitter,
	history port.PriceChangesReader,
) {
	h := CatalogHandler{
		catalog:   catalog,
		submitter: submitter,
		history:   history,
		now:       time.Now,
	}
	mux.HandleFunc("GET /v1/categories", h.GetCategories)
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("POST /v1/products/refresh", h.RefreshProducts)
	mux.HandleFunc("POST /v1/products", h.CreateProduct)
	mux.HandleFunc("PUT /v1/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /v1/products/{id}", h.DeleteProduct)
	mux.HandleFunc("POST /v1/products/{id}/clear-history", h.ClearPriceHistory)
	mux.HandleFunc("GET /v1/products/{id}/price-changes", h.GetPriceChanges)
	mux.HandleFunc("GET /v1/submission", h.GetSubmission)
	mux.HandleFunc("DELETE /v1/submission", h.AckSubmission)
}

func (h CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Categories{
		Labels:  domain.Labels(),
		Filters: domain.FilterLabels(),
	})
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	if err := h.catalog.Activate(r.Context()); err != nil {
		log.Error("failed to load catalog", "err", err)
		http.Error(w, "catalog is unavailable", http.StatusBadGateway)
		return
	}

	filter := r.URL.Query().Get("filter")
	now := h.now()
	ps := h.catalog.Filter(filter)
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = toProduct(p, h.catalog.CardState(p.ID), now)
	}

	writeJSON(w, http.StatusOK, out)
	log.Debug("products listed", "filter", filter, "nProducts", len(out))
}

func (h CatalogHandler) RefreshProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.RefreshProducts"
	log := slog.With("op", op)

	if err := h.catalog.Refresh(r.Context()); err != nil {
		log.Error("failed to refresh catalog", "err", err)
		http.Error(w, "catalog is unavailable", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.CreateProduct"

	draft, ok := decodeDraft(w, r, op)
	if !ok {
		return
	}
	h.submit(w, r, op, draft, nil)
}

func (h CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.UpdateProduct"

	existing, ok := h.lookup(w, r, op)
	if !ok {
		return
	}

	draft, ok := decodeDraft(w, r, op)
	if !ok {
		return
	}
	h.submit(w, r, op, draft, &existing)
}

func (h CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.DeleteProduct"

	id, ok := pathID(w, r, op)
	if !ok {
		return
	}
	if !h.activate(w, r, op) {
		return
	}

	resp, err := h.catalog.Delete(r.Context(), id)
	writeMutation(w, op, id, resp, err)
}

func (h CatalogHandler) ClearPriceHistory(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.ClearPriceHistory"

	id, ok := pathID(w, r, op)
	if !ok {
		return
	}
	if !h.activate(w, r, op) {
		return
	}

	resp, err := h.catalog.ClearPriceHistory(r.Context(), id)
	writeMutation(w, op, id, resp, err)
}

func (h CatalogHandler) GetPriceChanges(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetPriceChanges"
	log := slog.With("op", op)

	if h.history == nil {
		http.Error(w, "price history is disabled", http.StatusNotFound)
		return
	}

	id, ok := pathID(w, r, op)
	if !ok {
		return
	}

	vs, err := h.history.ReadPriceChanges(r.Context(), id)
	if err != nil {
		log.Error("failed to read price changes", "productID", id, "err", err)
		http.Error(w, "price history is unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, toPriceChanges(vs))
}

func (h CatalogHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSubmissionState(h.submitter.State()))
}

// AckSubmission marks a successful submission as consumed.
func (h CatalogHandler) AckSubmission(w http.ResponseWriter, r *http.Request) {
	h.submitter.ResetSuccess()
	writeJSON(w, http.StatusOK, toSubmissionState(h.submitter.State()))
}

func (h CatalogHandler) submit(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	draft Draft,
	existing *domain.Product,
) {
	log := slog.With("op", op)

	state := h.submitter.Submit(r.Context(), draft.toDomain(), existing)

	switch {
	case state.Success:
		if err := h.catalog.Refresh(r.Context()); err != nil {
			log.Warn("failed to refresh catalog after submission", "err", err)
		}
		writeJSON(w, http.StatusOK, toSubmissionState(state))
	case state.Status == domain.SubmissionRejected:
		writeJSON(w, http.StatusConflict, toSubmissionState(state))
	default:
		writeJSON(w, http.StatusUnprocessableEntity, toSubmissionState(state))
	}
	log.Info("submission handled", "status", state.Status, "msg", state.Message)
}

func (h CatalogHandler) lookup(
	w http.ResponseWriter, r *http.Request, op string,
) (domain.Product, bool) {
	id, ok := pathID(w, r, op)
	if !ok {
		return domain.Product{}, false
	}
	if !h.activate(w, r, op) {
		return domain.Product{}, false
	}

	p, found := h.catalog.Get(id)
	if !found {
		http.Error(w, "product not found", http.StatusNotFound)
		return domain.Product{}, false
	}
	return p, true
}

func (h CatalogHandler) activate(
	w http.ResponseWriter, r *http.Request, op string,
) bool {
	if err := h.catalog.Activate(r.Context()); err != nil {
		slog.Error("failed to load catalog", "op", op, "err", err)
		http.Error(w, "catalog is unavailable", http.StatusBadGateway)
		return false
	}
	return true
}

func decodeDraft(w http.ResponseWriter, r *http.Request, op string) (Draft, bool) {
	var d Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		slog.Warn("failed to parse JSON", "op", op, "err", err)
		return Draft{}, false
	}
	return d, true
}

func pathID(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		slog.Warn("invalid product id", "op", op, "id", r.PathValue("id"))
		return 0, false
	}
	return id, true
}

func writeMutation(
	w http.ResponseWriter,
	op string,
	id int,
	resp domain.ServerResponse,
	err error,
) {
	log := slog.With("op", op, "productID", id)

	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
	case errors.Is(err, service.ErrCardBusy):
		http.Error(w, "product has a pending operation", http.StatusConflict)
	case err != nil:
		log.Error("backend call failed", "err", err)
		http.Error(w, "catalog is unavailable", http.StatusBadGateway)
	case !resp.Success:
		log.Warn("backend rejected", "msg", resp.Message)
		writeJSON(w, http.StatusUnprocessableEntity, toServerResponse(resp))
	default:
		log.Info("product mutated")
		writeJSON(w, http.StatusOK, toServerResponse(resp))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}
