package httpserver

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

type healthHandler struct {
	db *sql.DB
}

func newHealthHandler(db *sql.DB) healthHandler {
	return healthHandler{db: db}
}

type healthData struct {
	Status string    `json:"status"`
	DBTime time.Time `json:"db_time"`
}

// Check reports whether the store answers a round trip.
func (h healthHandler) Check(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var now time.Time
	if err := h.db.QueryRowContext(ctx, "SELECT NOW()").Scan(&now); err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusServiceUnavailable, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: healthData{Status: "ok", DBTime: now}})
}
