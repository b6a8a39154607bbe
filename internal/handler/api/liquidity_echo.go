package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
	domsvc "CryptoLiq/internal/domain/service"
	"CryptoLiq/internal/services/features"
	"CryptoLiq/internal/usecase"
	xhttp "CryptoLiq/pkg/http"
	xlogger "CryptoLiq/pkg/logger"
	xutil "CryptoLiq/pkg/util"
)

// DisclaimerMessage is returned when a prediction is requested without
// accepting the disclaimer.
const DisclaimerMessage = "Please accept the disclaimer to proceed."

// LiquidityEchoHandler exposes the liquidity predictor over HTTP.
type LiquidityEchoHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.LiquidityPredictor
	apiMW     []echo.MiddlewareFunc
}

// NewLiquidityEchoHandler builds the handler; mw wraps every /api route.
func NewLiquidityEchoHandler(logger *xlogger.Logger, predictor *usecase.LiquidityPredictor, mw ...echo.MiddlewareFunc) *LiquidityEchoHandler {
	return &LiquidityEchoHandler{logger: logger, predictor: predictor, apiMW: mw}
}

func (h *LiquidityEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/liquidity", h.apiMW...)
	g.POST("/predict", h.Predict)
	g.GET("/demo", h.Demo)
	g.GET("/coins", h.Coins)
	g.GET("/schema", h.Schema)
	g.GET("/history", h.History)
	if h.predictor.HasFeatureStore() {
		g.GET("/symbol", h.Symbol)
	}
}

// Predict reports a missing model before looking at the request.
func (h *LiquidityEchoHandler) Predict(c echo.Context) error {
	if err := h.predictor.ModelErr(); err != nil {
		h.logger.Warn("predict without model", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !req.AcceptDisclaimer {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_DISCLAIMER", "accept_disclaimer", DisclaimerMessage, http.StatusBadRequest))
	}

	res, err := h.predictor.Predict(c.Request().Context(), req.Snapshot(), models.SourceAPI)
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *LiquidityEchoHandler) Symbol(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	res, err := h.predictor.PredictSymbol(c.Request().Context(), req.Symbol, req.N, tf)
	if err != nil {
		h.logger.Error("symbol usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *LiquidityEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	q := models.HistoryQuery{Coin: req.Coin, Limit: req.Limit}
	if req.Since != "" {
		since, ok := xutil.ParseTime(req.Since)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("since %q is not a valid time", req.Since))
		}
		q.Since = since
	}

	rows, err := h.predictor.History(c.Request().Context(), q)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	if rows == nil {
		rows = []models.Prediction{}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *LiquidityEchoHandler) Demo(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.DemoSnapshot())
}

func (h *LiquidityEchoHandler) Coins(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.ListResponse(c, models.Coins, int64(len(models.Coins)))
}

func (h *LiquidityEchoHandler) Schema(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.predictor.Schema())
}

func (h *LiquidityEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.predictor.Health(c.Request().Context()))
}

// toAppError maps use case errors onto HTTP errors.
func toAppError(err error) error {
	switch {
	case errors.Is(err, domsvc.ErrModelNotLoaded):
		return xhttp.ServiceUnavailableError(domsvc.ErrModelNotLoaded.Error()).WithError(err)
	case errors.Is(err, domsvc.ErrPredictionFailed):
		return xhttp.InternalError(err.Error())
	case errors.Is(err, features.ErrInsufficientCandles):
		return xhttp.UnprocessableError("n", err.Error())
	case errors.Is(err, usecase.ErrNoHistory), errors.Is(err, usecase.ErrNoFeatureStore):
		return xhttp.NotFoundError(err.Error())
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
