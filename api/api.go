package api

import (
	"aetherum/internal/app"
	"aetherum/internal/calculator"
	"aetherum/internal/logger"
	"aetherum/internal/repository"
	"errors"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApiHandler struct {
	LoanApp              app.LoanCalculatorHandler
	MarketDataRepository repository.MarketDataRepository
}

// InitializeRouterEngine is split out from StartApi so the lambda entrypoint
// and tests can mount the same routes without binding a port.
func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to aetherum"})
	})
	router.POST("/calculateLoan", m.calculateLoan)
	router.GET("/marketData", m.marketData)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, statusCodeForError(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.Error(err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// client mistakes get a 400, everything else is on us
func statusCodeForError(err error) int {
	var missingAsset calculator.MissingAssetMetricsError
	var emptyPortfolio calculator.EmptyPortfolioError
	if errors.As(err, &missingAsset) || errors.As(err, &emptyPortfolio) {
		return 400
	}
	return 500
}

func logRequestMiddleware(ctx *gin.Context) {
	requestID := uuid.NewString()
	ctx.Set("requestID", requestID)

	start := time.Now().UTC()
	ctx.Next()

	logger.Info(
		"%s %s -> %d (%dms) requestID=%s",
		ctx.Request.Method,
		ctx.Request.URL.Path,
		ctx.Writer.Status(),
		time.Since(start).Milliseconds(),
		requestID,
	)
}
