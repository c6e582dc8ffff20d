package context

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/pkg/factory"
)

var ocsContext OCSContext

func Init() {
	ocsContext.Name = "ocs"
	ocsContext.InstanceId = uuid.New().String()
	ocsContext.OriginStateId = uint32(time.Now().Unix())
	ocsContext.LivenessTimeout = factory.OcsDefaultLivenessTimeout
	ocsContext.ValidityTime = factory.OcsDefaultValidityTime
	ocsContext.receivedRequests.Store(0)
}

type OCSContext struct {
	Name          string
	InstanceId    string
	OriginHost    string
	OriginRealm   string
	ProductName   string
	VendorId      uint32
	OriginStateId uint32

	DiameterNetwork string
	DiameterAddr    string
	SbiAddr         string

	LivenessTimeout time.Duration
	ValidityTime    uint32

	// diagnostics only, the charging core keeps its own session store
	receivedRequests atomic.Uint64
}

func GetSelf() *OCSContext {
	return &ocsContext
}

func (c *OCSContext) CountRequest() uint64 {
	return c.receivedRequests.Add(1)
}

func (c *OCSContext) ReceivedRequests() uint64 {
	return c.receivedRequests.Load()
}

func (c *OCSContext) Dump() {
	logger.CtxLog.Infof("OCS[%s] instance[%s] origin[%s@%s] diameter[%s/%s] liveness[%s] validity[%ds]",
		c.Name, c.InstanceId, c.OriginHost, c.OriginRealm, c.DiameterNetwork, c.DiameterAddr,
		c.LivenessTimeout, c.ValidityTime)
}
