package recharge

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/free5gc/ocs/internal/logger"
)

type Recharger interface {
	Recharge(ctx context.Context, userID string, units uint64) error
}

type rechargeBody struct {
	Units uint64 `json:"units" binding:"required"`
}

// HTTPRechargePut tops up the balance of :UeId by the units in the body.
func HTTPRechargePut(r Recharger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ueid := c.Param("UeId")

		var body rechargeBody
		if err := c.ShouldBindJSON(&body); err != nil {
			logger.RechargeLog.Warnf("UE[%s] recharge rejected: %v", ueid, err)
			c.JSON(http.StatusBadRequest, gin.H{"cause": "MALFORMED_BODY", "detail": err.Error()})
			return
		}

		if err := r.Recharge(c.Request.Context(), ueid, body.Units); err != nil {
			logger.RechargeLog.Errorf("UE[%s] recharge failed: %+v", ueid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"cause": "SYSTEM_FAILURE", "detail": err.Error()})
			return
		}

		logger.RechargeLog.Infof("UE[%s] Recharged %d units", ueid, body.Units)
		c.Status(http.StatusNoContent)
	}
}
