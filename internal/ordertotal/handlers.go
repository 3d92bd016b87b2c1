package ordertotal

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/marketsquare/orders-api/internal/catalog"
	"github.com/marketsquare/orders-api/internal/common"
	"github.com/marketsquare/orders-api/internal/obs"
)

// Handler wires the order total calculation to HTTP.
type Handler struct {
	Loader   *Loader
	Engine   Engine
	Validate *validator.Validate
	Log      zerolog.Logger
}

// CalculateTotal handles POST /api/v1/orders/calculate-total.
func (h *Handler) CalculateTotal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		countCalc("invalid")
		common.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		countCalc("invalid")
		common.JSONError(w, http.StatusBadRequest, "Cart items are required")
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			countCalc("invalid")
			common.JSONError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
	}

	lines, err := ParseLines(req.Items)
	if err != nil {
		countCalc("invalid")
		common.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.Loader.Load(r.Context(), lines)
	if err != nil {
		var notFound catalog.NotFoundError
		if errors.As(err, &notFound) {
			countCalc("not_found")
			h.Log.Warn().Str("product_id", notFound.ID.String()).Msg("calculation aborted, unknown product")
			common.JSONError(w, http.StatusInternalServerError, notFound.Error())
			return
		}
		countCalc("error")
		h.Log.Error().Err(err).Str("stage", "load_snapshot").Msg("order total calculation failed")
		common.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := h.Engine.Compute(lines, req.ShippingAddress, snap)

	countCalc("ok")
	if obs.OrderCalcDuration != nil {
		obs.OrderCalcDuration.Observe(obs.DurationMillis(time.Since(start)))
	}
	h.Log.Debug().
		Int("items", len(lines)).
		Float64("grand_total", result.GrandTotal).
		Msg("order total calculated")

	common.JSON(w, http.StatusOK, result)
}

func countCalc(result string) {
	if obs.OrderCalcTotal != nil {
		obs.OrderCalcTotal.WithLabelValues(result).Inc()
	}
}
