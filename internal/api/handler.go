// Package api exposes the payoff engine and market-data lookups over HTTP.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"options-visualizer/internal/analysis"
	"options-visualizer/internal/errors"
	"options-visualizer/internal/logging"
	"options-visualizer/internal/marketdata"
	"options-visualizer/internal/store"
	"options-visualizer/internal/strategy"
)

const defaultHistoryLimit = 20

// Handler serves the /api/v1 routes. Store may be nil when history is disabled.
type Handler struct {
	Analyzer *analysis.Analyzer
	Store    store.EvaluationStore
	Logger   zerolog.Logger
}

// Register mounts the health check and the v1 API on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)

	group := r.Group("/api/v1")
	group.GET("/strategies", h.listStrategies)
	group.GET("/quote/:symbol", h.quote)
	group.GET("/expirations/:symbol", h.expirations)
	group.GET("/strikes/:symbol", h.strikes)
	group.GET("/analyze/:symbol", h.analyze)
	group.POST("/payoff", h.payoff)
	group.GET("/history", h.history)
	group.GET("/history/:id", h.evaluation)
	group.DELETE("/history/:id", h.deleteEvaluation)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type strategyInfo struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *Handler) listStrategies(c *gin.Context) {
	items := make([]strategyInfo, 0, len(strategy.Variants()))
	for _, v := range strategy.Variants() {
		items = append(items, strategyInfo{Name: v.String(), Slug: v.Slug()})
	}
	Ok(c, items, nil)
}

func (h *Handler) quote(c *gin.Context) {
	q, err := h.Analyzer.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, q, nil)
}

type expirationItem struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

func (h *Handler) expirations(c *gin.Context) {
	exps, err := h.Analyzer.Expirations(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, err)
		return
	}
	now := time.Now()
	items := make([]expirationItem, 0, len(exps))
	for _, e := range exps {
		items = append(items, expirationItem{Date: e.Format("2006-01-02"), Label: marketdata.ExpiryLabel(e, now)})
	}
	Ok(c, items, nil)
}

func (h *Handler) strikes(c *gin.Context) {
	expiry, err := parseExpiryQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.Analyzer.Strikes(c.Request.Context(), c.Param("symbol"), expiry)
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, list, nil)
}

func (h *Handler) analyze(c *gin.Context) {
	expiry, err := parseExpiryQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	variant, err := strategy.ParseVariant(c.Query("strategy"))
	if err != nil {
		h.fail(c, err)
		return
	}
	strike, err := strconv.ParseFloat(strings.TrimSpace(c.Query("strike")), 64)
	if err != nil {
		h.fail(c, errors.NewValidationError("strike", c.Query("strike"), "must be a number"))
		return
	}

	summary, err := h.Analyzer.Analyze(c.Request.Context(), analysis.Request{
		Symbol:   c.Param("symbol"),
		Expiry:   expiry,
		Strike:   strike,
		Strategy: variant,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, summary, nil)
}

type payoffRequest struct {
	Strategy strategy.Variant `json:"strategy"`
	Strike   float64          `json:"strike"`
	Premium  float64          `json:"premium"`
	Spot     float64          `json:"spot"`
	Symbol   string           `json:"symbol"`
	Sweep    []float64        `json:"sweep"`
}

func (h *Handler) payoff(c *gin.Context) {
	var req payoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.NewValidationError("body", "", err.Error()))
		return
	}

	p := strategy.Position{Variant: req.Strategy, Strike: req.Strike, Premium: req.Premium}
	summary, err := h.Analyzer.Manual(c.Request.Context(), req.Symbol, p, req.Spot, req.Sweep)
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, summary, nil)
}

func (h *Handler) history(c *gin.Context) {
	if h.Store == nil {
		h.fail(c, errors.ErrStoreNotAvailable)
		return
	}

	filter := store.EvaluationFilter{Symbol: c.Query("symbol"), Limit: defaultHistoryLimit}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.fail(c, errors.NewValidationError("limit", raw, "must be a positive integer"))
			return
		}
		filter.Limit = limit
	}
	if raw := c.Query("strategy"); raw != "" {
		v, err := strategy.ParseVariant(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		filter.Strategy = v
	}

	items, err := h.Store.ListEvaluations(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *Handler) evaluation(c *gin.Context) {
	if h.Store == nil {
		h.fail(c, errors.ErrStoreNotAvailable)
		return
	}
	item, err := h.Store.GetEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *Handler) deleteEvaluation(c *gin.Context) {
	if h.Store == nil {
		h.fail(c, errors.ErrStoreNotAvailable)
		return
	}
	if err := h.Store.DeleteEvaluation(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, gin.H{"id": c.Param("id")}, nil)
}

func (h *Handler) fail(c *gin.Context, err error) {
	logger := logging.FromContext(c.Request.Context())
	logger.Warn().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	Fail(c, err)
}

func parseExpiryQuery(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("expiry"))
	if raw == "" {
		return time.Time{}, nil
	}
	expiry, err := marketdata.ParseExpiry(raw)
	if err != nil {
		return time.Time{}, errors.NewValidationError("expiry", raw, "expected YYYY-MM-DD")
	}
	return expiry, nil
}
