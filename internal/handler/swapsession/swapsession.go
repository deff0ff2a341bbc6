package swapsession

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/riftresearch/swap-coordinator/internal/assets"
	"github.com/riftresearch/swap-coordinator/internal/baserpc"
	"github.com/riftresearch/swap-coordinator/internal/executor"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/orderwatch"
	"github.com/riftresearch/swap-coordinator/internal/quote"
	"github.com/riftresearch/swap-coordinator/internal/session"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
	"github.com/riftresearch/swap-coordinator/internal/view"
)

type CreateSessionRequest struct {
	Direction   string `json:"direction" binding:"required,oneof=to_native to_synthetic"`
	InputSymbol string `json:"input_symbol"`
}

type SetDirectionRequest struct {
	Direction   string `json:"direction" binding:"required,oneof=to_native to_synthetic"`
	InputSymbol string `json:"input_symbol"`
}

type EditAmountRequest struct {
	Field  string `json:"field" binding:"required,oneof=input output"`
	Amount string `json:"amount"`
}

type UseMaxRequest struct {
	// Balance in base units. Optional for EVM assets with a connected
	// wallet; the chain is queried when omitted.
	Balance string `json:"balance"`
}

type SetDestinationRequest struct {
	Address string `json:"address" binding:"required"`
}

type SetWalletRequest struct {
	Connected  bool   `json:"connected"`
	EvmAddress string `json:"evm_address"`
}

type handler struct {
	registry  *session.Registry
	quoteSvc  quote.IQuoteService
	executor  executor.IExecutor
	watchers  *orderwatch.Registry
	catalog   *assets.Catalog
	baseRpc   baserpc.IBaseRpc
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func New(
	registry *session.Registry,
	quoteSvc quote.IQuoteService,
	exec executor.IExecutor,
	watchers *orderwatch.Registry,
	catalog *assets.Catalog,
	baseRpc baserpc.IBaseRpc,
	appConfig *config.AppConfig,
	logger *logger.Logger,
) IHandler {
	return &handler{
		registry:  registry,
		quoteSvc:  quoteSvc,
		executor:  exec,
		watchers:  watchers,
		catalog:   catalog,
		baseRpc:   baseRpc,
		appConfig: appConfig,
		logger:    logger,
	}
}

// Create godoc
// @Summary Create a swap session
// @Description Opens a quoting/execution session for one direction
// @id createSession
// @Tags Session
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Session parameters"
// @Success 200 {object} view.Response[session.Snapshot]
// @Failure 400 {object} view.ErrorResponse
// @Router /sessions [post]
func (h *handler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[Create][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	if err := validator.New().Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	direction := session.Direction(req.Direction)
	input, output, err := h.resolvePair(direction, req.InputSymbol)
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "unknown asset"))
		return
	}

	sess := h.registry.Create(direction, input, output)
	h.quoteSvc.StartAutoRefresh(sess, direction)

	c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
}

// Get godoc
// @Summary Get session state
// @id getSession
// @Tags Session
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} view.Response[session.Snapshot]
// @Failure 404 {object} view.ErrorResponse
// @Router /sessions/{id} [get]
func (h *handler) Get(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
}

// Delete godoc
// @Summary Tear down a session
// @id deleteSession
// @Tags Session
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} view.MessageResponse
// @Router /sessions/{id} [delete]
func (h *handler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.quoteSvc.Teardown(id)
	h.watchers.Stop(id)
	h.registry.Remove(id)
	c.JSON(http.StatusOK, view.MessageResponse{Message: "session removed"})
}

// SetDirection swaps the session's trade direction. Quote state, amounts
// and approval state reset; timers are rebuilt for the new direction's
// refresh interval.
func (h *handler) SetDirection(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req SetDirectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	direction := session.Direction(req.Direction)
	input, output, err := h.resolvePair(direction, req.InputSymbol)
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "unknown asset"))
		return
	}

	h.quoteSvc.Teardown(sess.ID())
	sess.SetDirection(direction, input, output)
	h.quoteSvc.StartAutoRefresh(sess, direction)

	c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
}

// EditAmount godoc
// @Summary Edit an amount field
// @Description Records a user edit and schedules a debounced quote fetch
// @id editAmount
// @Tags Session
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param request body EditAmountRequest true "Edit"
// @Success 200 {object} view.Response[session.Snapshot]
// @Failure 400 {object} view.ErrorResponse
// @Router /sessions/{id}/amount [put]
func (h *handler) EditAmount(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req EditAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	if err := h.quoteSvc.Edit(sess, session.Field(req.Field), req.Amount); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid amount"))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
}

// UseMax fills the input with the full wallet balance, bypassing the
// debouncer.
func (h *handler) UseMax(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req UseMaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	snap := sess.Snapshot()
	var balance *model.Web3BigInt
	if req.Balance != "" {
		balance = &model.Web3BigInt{Value: req.Balance, Decimal: snap.InputAsset.Decimals}
	} else if snap.InputAsset.Chain == model.ChainEthereum && snap.EvmAddress != "" {
		b, err := h.baseRpc.BalanceOf(c.Request.Context(), snap.InputAsset.Address, snap.EvmAddress, snap.InputAsset.Decimals)
		if err != nil {
			h.logger.Error("[UseMax][BalanceOf]", map[string]string{
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to read balance"))
			return
		}
		balance = b
	} else {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, nil, req, "balance required"))
		return
	}

	if err := h.quoteSvc.UseMax(sess, balance); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "failed to apply max"))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
}

// UseMin fills the input with the smallest accepted amount.
func (h *handler) UseMin(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := h.quoteSvc.UseMin(sess); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, "failed to apply min"))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
}

func (h *handler) SetDestination(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req SetDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	sess.SetDestination(req.Address)
	c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
}

// SetWallet updates wallet connection state. A reconnect while a swap was
// already requested with a live optimal quote auto-submits once.
func (h *handler) SetWallet(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req SetWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	if req.EvmAddress != "" {
		sess.SetEvmAddress(req.EvmAddress)
	}

	if !req.Connected {
		sess.SetWalletConnected(false)
		c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
		return
	}

	result, err := h.executor.HandleWalletConnected(c.Request.Context(), sess)
	if err != nil {
		h.respondSwapError(c, err)
		return
	}
	if result != nil {
		c.JSON(http.StatusOK, view.CreateResponse(result, nil, nil, "swap auto-submitted"))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse(sess.Snapshot(), nil, nil, ""))
}

// Submit godoc
// @Summary Submit the swap
// @Description Runs destination/amount checks, waits for an executable optimal quote, handles approval, and submits the swap legs
// @id submitSwap
// @Tags Session
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} view.Response[executor.SubmitResult]
// @Failure 400 {object} view.ErrorResponse
// @Failure 403 {object} view.ErrorResponse
// @Failure 503 {object} view.ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *handler) Submit(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	result, err := h.executor.Submit(c.Request.Context(), sess)
	if err != nil {
		h.respondSwapError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusAccepted, view.CreateResponse(sess.Snapshot(), nil, nil, "approval pending"))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse(result, nil, nil, ""))
}

func (h *handler) Refetch(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	h.quoteSvc.Refetch(sess)
	c.JSON(http.StatusOK, view.MessageResponse{Message: "refetch scheduled"})
}

// Poke wakes the session's order status poller for an immediate poll,
// compensating for client-side timer throttling.
func (h *handler) Poke(c *gin.Context) {
	h.watchers.Poke(c.Param("id"))
	c.JSON(http.StatusOK, view.MessageResponse{Message: "ok"})
}

// ListAssets godoc
// @Summary List tradable assets
// @id listAssets
// @Tags Session
// @Produce json
// @Success 200 {object} view.Response[[]model.Asset]
// @Router /assets [get]
func (h *handler) ListAssets(c *gin.Context) {
	c.JSON(http.StatusOK, view.CreateResponse(h.catalog.List(), nil, nil, ""))
}

func (h *handler) lookup(c *gin.Context) (*session.Session, bool) {
	sess, err := h.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, err, nil, "session not found"))
		return nil, false
	}
	return sess, true
}

// resolvePair picks the asset pair for a direction. The bitcoin side is
// fixed; the EVM side defaults to the synthetic token.
func (h *handler) resolvePair(direction session.Direction, inputSymbol string) (model.Asset, model.Asset, error) {
	switch direction {
	case session.DirectionToSynthetic:
		return h.catalog.Bitcoin(), h.catalog.Synthetic(), nil
	case session.DirectionToNative:
		input := h.catalog.Synthetic()
		if inputSymbol != "" {
			a, ok := h.catalog.Resolve(inputSymbol)
			if !ok || a.Chain != model.ChainEthereum {
				return model.Asset{}, model.Asset{}, model.NewSwapError(model.ErrNoRoute, "unknown input asset")
			}
			input = a
		}
		return input, h.catalog.Bitcoin(), nil
	}
	return model.Asset{}, model.Asset{}, model.NewSwapError(model.ErrNoRoute, "unknown direction")
}

func (h *handler) respondSwapError(c *gin.Context, err error) {
	swapErr := model.AsSwapError(err)
	h.logger.Error("[respondSwapError]", map[string]string{
		"code":  string(swapErr.Code),
		"error": swapErr.Error(),
	})
	c.JSON(httpStatus(swapErr.Code), view.CreateResponse[any](swapErr, err, nil, ""))
}

func httpStatus(code model.SwapErrorCode) int {
	switch code {
	case model.ErrInvalidDestination, model.ErrBelowMinimum, model.ErrExceedsBalance,
		model.ErrExceedsLiquidity, model.ErrInsufficientLiquidity, model.ErrNoRoute,
		model.ErrWrongChain, model.ErrQuoteExpired:
		return http.StatusBadRequest
	case model.ErrComplianceRejected:
		return http.StatusForbidden
	case model.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrQuoteTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
