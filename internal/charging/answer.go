package charging

import (
	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/internal/reservation"
)

// BuildAnswer assembles the answer for req. With no outcomes the answer only
// carries the overall result code.
func BuildAnswer(req *Request, outcomes []*reservation.Outcome, resultCode uint32, validityTime uint32) *Answer {
	answer := &Answer{
		SessionID:     req.SessionID,
		ResultCode:    resultCode,
		Kind:          req.Kind,
		RequestNumber: req.RequestNumber,
	}

	if len(outcomes) > 0 {
		answer.LineItems = make([]AnswerLineItem, 0, len(outcomes))
		for index, outcome := range outcomes {
			if index >= len(req.LineItems) {
				logger.ChargingLog.Warnf("[%s] %d outcomes for %d line items, extra outcomes ignored",
					req.SessionID, len(outcomes), len(req.LineItems))
				break
			}
			item := req.LineItems[index]
			ansItem := AnswerLineItem{
				RatingGroup:        item.RatingGroup,
				ServiceIdentifiers: item.ServiceIdentifiers,
			}
			if outcome != nil && outcome.Success {
				granted := outcome.GrantedUnits
				validity := validityTime
				ansItem.GrantedUnits = &granted
				ansItem.ValidityTime = &validity
				ansItem.ResultCode = DiameterSuccess
			} else if outcome != nil {
				ansItem.ResultCode = ResultCodeFor(outcome.ErrorKind)
			} else {
				ansItem.ResultCode = DiameterUnableToDeliver
			}
			answer.LineItems = append(answer.LineItems, ansItem)
		}
	}

	logger.ChargingLog.Infof("[%s] Created Credit-Control-Answer with Result-Code = %d", req.SessionID, resultCode)
	logger.ChargingLog.Tracef("%+v", answer)

	return answer
}
