package util

import (
	"os"

	ocs_context "github.com/free5gc/ocs/internal/context"
	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/pkg/factory"
)

// Init OCS Context from config flie
func InitOcsContext(context *ocs_context.OCSContext, config *factory.Config) {
	logger.UtilLog.Infof("ocsconfig Info: Version[%s] Description[%s]", config.Info.Version, config.Info.Description)
	configuration := config.Configuration
	if configuration.OcsName != "" {
		context.Name = configuration.OcsName
	}

	context.OriginHost = config.GetOriginHost()
	context.OriginRealm = config.GetOriginRealm()
	context.ProductName = config.GetProductName()
	context.VendorId = config.GetVendorID()
	context.DiameterNetwork = config.GetDiameterNetwork()

	context.DiameterAddr = os.Getenv("OCS_DIAMETER_ADDR")
	if context.DiameterAddr != "" {
		logger.UtilLog.Info("Parsing Diameter bind address from ENV Variable.")
	} else {
		context.DiameterAddr = config.GetDiameterBindAddr()
	}

	context.SbiAddr = config.GetSbiBindingAddr()
	context.LivenessTimeout = config.GetLivenessTimeout()
	context.ValidityTime = config.GetValidityTime()
}
