package swaphistory

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/riftresearch/swap-coordinator/internal/history"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
	"github.com/riftresearch/swap-coordinator/internal/view"
)

type handler struct {
	history history.IHistory
	logger  *logger.Logger
}

func New(hist history.IHistory, logger *logger.Logger) IHandler {
	return &handler{
		history: hist,
		logger:  logger,
	}
}

// List godoc
// @Summary List reconciled swap history
// @Description Returns one page of persisted swaps for an address, reconciled against live escrow status and refund detection
// @id listHistory
// @Tags History
// @Produce json
// @Param address query string true "EVM address"
// @Param page query int false "Page (1-based)"
// @Success 200 {object} view.Response[view.PagingResponse[history.Entry]]
// @Failure 400 {object} view.ErrorResponse
// @Router /history [get]
func (h *handler) List(c *gin.Context) {
	address := c.Query("address")
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, nil, nil, "invalid address"))
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.history.List(c.Request.Context(), address, page)
	if err != nil {
		h.logger.Error("[List][history.List]", map[string]string{
			"address": address,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to load history"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(result, nil, nil, ""))
}
