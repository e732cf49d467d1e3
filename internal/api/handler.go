package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/basketfi/valuation/internal/asset"
	"github.com/basketfi/valuation/internal/basket"
	"github.com/basketfi/valuation/internal/history"
	"github.com/basketfi/valuation/internal/numeric"
	"github.com/basketfi/valuation/internal/valuation"
)

// Handler provides HTTP endpoints for the valuation API.
type Handler struct {
	store   basket.Store
	valuer  *valuation.Service
	history *history.Service
}

// NewHandler creates a new API handler.
func NewHandler(store basket.Store, valuer *valuation.Service, hist *history.Service) *Handler {
	return &Handler{store: store, valuer: valuer, history: hist}
}

// GetBasket handles GET /api/v1/baskets/{name}.
func (h *Handler) GetBasket(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	b, err := h.store.Load(r.Context(), name)
	if err != nil {
		if errors.Is(err, basket.ErrNotFound) {
			writeError(w, http.StatusNotFound, "basket not found")
			return
		}
		slog.Error("failed to load basket", "basket", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GetBasketValue handles GET /api/v1/baskets/{name}/value.
func (h *Handler) GetBasketValue(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	aum, err := h.valuer.BasketAUM(r.Context(), name)
	if err != nil {
		if errors.Is(err, basket.ErrNotFound) {
			writeError(w, http.StatusNotFound, "basket not found")
			return
		}
		slog.Error("failed to value basket", "basket", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"basket": name, "aum": aum})
}

// GetAssetValue handles GET /api/v1/baskets/{name}/asset-value.
// The asset is named by exactly one of the denom or contract query
// parameters; amount is a base-10 integer in the asset's smallest unit.
func (h *Handler) GetAssetValue(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	ref, ok := refFromQuery(w, r)
	if !ok {
		return
	}
	amount, err := numericQuery(r, "amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount, expected unsigned integer")
		return
	}

	value, err := h.valuer.AssetValue(r.Context(), name, ref, amount)
	if err != nil {
		switch {
		case errors.Is(err, basket.ErrNotFound):
			writeError(w, http.StatusNotFound, "basket not found")
		case errors.Is(err, valuation.ErrAssetNotInBasket):
			writeError(w, http.StatusNotFound, "asset not in basket")
		default:
			slog.Error("failed to value asset", "basket", name, "asset", ref.String(), "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"basket": name,
		"asset":  ref.String(),
		"amount": amount,
		"value":  value,
	})
}

// GetLatestValuation handles GET /api/v1/baskets/{name}/history/latest.
func (h *Handler) GetLatestValuation(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rec, err := h.history.GetLatest(r.Context(), name)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no valuations recorded")
			return
		}
		slog.Error("failed to get latest valuation", "basket", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListValuations handles GET /api/v1/baskets/{name}/history.
func (h *Handler) ListValuations(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 365
	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	name := r.PathValue("name")
	records, err := h.history.List(r.Context(), name, limit)
	if err != nil {
		slog.Error("failed to list valuations", "basket", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Revalue handles POST /api/v1/baskets/{name}/revalue.
func (h *Handler) Revalue(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	aum, err := h.history.Capture(r.Context(), name, time.Now().UTC())
	if err != nil {
		if errors.Is(err, basket.ErrNotFound) {
			writeError(w, http.StatusNotFound, "basket not found")
			return
		}
		slog.Error("failed to revalue basket", "basket", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to revalue basket")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"basket": name, "aum": aum})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func refFromQuery(w http.ResponseWriter, r *http.Request) (asset.Ref, bool) {
	denom := r.URL.Query().Get("denom")
	contract := r.URL.Query().Get("contract")
	switch {
	case denom != "" && contract == "":
		return asset.NativeRef(denom), true
	case contract != "" && denom == "":
		return asset.ContractRef(contract), true
	default:
		writeError(w, http.StatusBadRequest, "exactly one of denom or contract is required")
		return asset.Ref{}, false
	}
}

func numericQuery(r *http.Request, key string) (numeric.Uint128, error) {
	return numeric.FromString(r.URL.Query().Get(key))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
