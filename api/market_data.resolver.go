package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func (h ApiHandler) marketData(c *gin.Context) {
	snapshot, err := h.MarketDataRepository.GetSnapshot(c.Request.Context())
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to get market data: %w", err), c)
		return
	}

	c.JSON(200, snapshot)
}
