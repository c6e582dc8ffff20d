package charging

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/internal/metrics"
	"github.com/free5gc/ocs/internal/reservation"
)

var ErrSessionBusy = errors.New("session already awaiting reservation outcomes")

// Exchange is one inbound request/response exchange owned by the transport.
// After End no further answer can be delivered on it.
type Exchange interface {
	Send(answer *Answer) error
	End()
}

// UsageRecorder is told about every answered termination.
type UsageRecorder interface {
	RecordTermination(req *Request, endUserID string)
}

type Options struct {
	LivenessTimeout time.Duration
	ValidityTime    uint32
	Metrics         *metrics.ChargingMetrics
	Recorder        UsageRecorder
}

// Handler is the charging-session state machine. It is safe for concurrent
// use by many sessions; each session's terminal transition happens once.
type Handler struct {
	client       reservation.Client
	store        *SessionStore
	timer        *LivenessTimer
	validityTime uint32
	metrics      *metrics.ChargingMetrics
	recorder     UsageRecorder
}

var _ reservation.Resumer = (*Handler)(nil)

func NewHandler(client reservation.Client, opts Options) *Handler {
	if opts.LivenessTimeout <= 0 {
		opts.LivenessTimeout = 15 * time.Second
	}
	if opts.ValidityTime == 0 {
		opts.ValidityTime = 86400
	}
	return &Handler{
		client:       client,
		store:        NewSessionStore(),
		timer:        NewLivenessTimer(opts.LivenessTimeout),
		validityTime: opts.ValidityTime,
		metrics:      opts.Metrics,
		recorder:     opts.Recorder,
	}
}

func (h *Handler) Sessions() []SessionInfo {
	return h.store.Snapshot()
}

func (h *Handler) PendingSessions() int {
	return h.store.Len()
}

// Close disarms every liveness timer. Pending sessions stay in the store and
// are no longer abandoned.
func (h *Handler) Close() {
	h.timer.Stop()
}

func sessionLog(sessionID string) *logrus.Entry {
	return logger.ChargingLog.WithField("sid", sessionID)
}

// HandleRequest classifies req and either answers it immediately or
// dispatches one reservation per line item and returns without answering.
func (h *Handler) HandleRequest(ctx context.Context, req *Request, ex Exchange) {
	log := sessionLog(req.SessionID)
	log.Infof("Received Credit-Control-Request [%s] #%d", req.Kind, req.RequestNumber)
	h.metrics.ObserveRequest(strings.ToLower(req.Kind.String()))

	endUserID, err := req.EndUserID()
	session := newChargingSession(req, endUserID, ex, h.timer.Delay())
	if err != nil {
		log.Errorf("%v, rejecting request", err)
		h.reject(session, DiameterMissingAVP)
		return
	}
	for _, subscriptionID := range req.SubscriptionIDs {
		log.Debugf("Subscription-Id type[%d] value[%s]", subscriptionID.Type, subscriptionID.Data)
	}

	switch req.Kind {
	case InitialRequest, UpdateRequest:
		if req.ServiceContextID == nil {
			log.Error("Service-Context-Id missing, rejecting request")
			h.reject(session, DiameterMissingAVP)
			return
		}
		if *req.ServiceContextID == "" {
			log.Error("Service-Context-Id empty, rejecting request")
			h.reject(session, DiameterInvalidAVPValue)
			return
		}
		if len(req.LineItems) == 0 {
			log.Error("No Multiple-Services-Credit-Control in request, rejecting request")
			h.reject(session, DiameterMissingAVP)
			return
		}
		h.dispatch(ctx, session)
	case TerminationRequest:
		log.Infof("'%s' requested service termination", endUserID)
		if len(req.LineItems) == 0 {
			h.recordTermination(req, endUserID)
			h.transmit(req.SessionID, ex, BuildAnswer(req, nil, DiameterSuccess, h.validityTime))
			break
		}
		h.dispatch(ctx, session)
	case EventRequest:
		log.Info("Event request, ending session without business action")
		ex.End()
	default:
		log.Errorf("Unsupported CC-Request-Type %d, rejecting request", uint32(req.Kind))
		h.reject(session, DiameterInvalidAVPValue)
		return
	}

	h.dumpAccount(ctx, req.SessionID, endUserID)
}

// dumpAccount logs the subscriber's account after a request was handled.
// Failures never reach the answer.
func (h *Handler) dumpAccount(ctx context.Context, sessionID, endUserID string) {
	if _, err := h.client.Dump(ctx, endUserID); err != nil {
		sessionLog(sessionID).Debugf("Account dump of '%s' failed: %v", endUserID, err)
	}
}

func (h *Handler) reject(session *ChargingSession, resultCode uint32) {
	session.reject()
	h.metrics.ObserveRejection(resultCode)
	h.transmit(session.sessionID, session.exchange,
		BuildAnswer(session.request, nil, resultCode, h.validityTime))
}

func (h *Handler) dispatch(ctx context.Context, session *ChargingSession) {
	req, endUserID := session.request, session.endUserID
	log := sessionLog(req.SessionID)

	if !h.store.Add(session) {
		log.Errorf("%v, rejecting request #%d", ErrSessionBusy, req.RequestNumber)
		h.reject(session, DiameterUnableToComply)
		return
	}
	session.await()
	h.metrics.SessionPending()
	h.timer.Arm(req.SessionID, func() { h.abandon(session) })

	for index, item := range req.LineItems {
		ref := reservation.Ref{
			SessionID:     req.SessionID,
			RequestNumber: req.RequestNumber,
			Index:         index,
			RatingGroup:   item.RatingGroup,
		}

		var err error
		switch req.Kind {
		case InitialRequest:
			log.Infof("'%s' requested %d octets for rating group %d %v",
				endUserID, item.RequestedUnits, item.RatingGroup, item.ServiceIdentifiers)
			err = h.client.InitialRequest(ctx, ref, endUserID, item.RequestedUnits)
		case UpdateRequest:
			used := item.TotalUsedUnits()
			log.Infof("'%s' used %d and requested %d octets for rating group %d %v",
				endUserID, used, item.RequestedUnits, item.RatingGroup, item.ServiceIdentifiers)
			err = h.client.UpdateRequest(ctx, ref, endUserID, item.RequestedUnits, used)
		case TerminationRequest:
			used := item.TotalUsedUnits()
			log.Infof("'%s' used %d octets for rating group %d %v on termination",
				endUserID, used, item.RatingGroup, item.ServiceIdentifiers)
			err = h.client.TerminateRequest(ctx, ref, endUserID, 0, used)
		}

		if err != nil {
			log.Errorf("Reservation for %s not accepted: %v", ref, err)
			if rerr := h.ResumeOnReservationOutcome(req.SessionID,
				reservation.Denied(ref, reservation.AccountingConnectionError)); rerr != nil {
				log.Debugf("Local failure outcome discarded: %v", rerr)
			}
		}
	}
}

// ResumeOnReservationOutcome stores one outcome and answers once all line
// items of the pending exchange are resolved. Outcomes for unknown, finished
// or already-resolved line items fail with ErrStaleCallback.
func (h *Handler) ResumeOnReservationOutcome(sessionID string, outcome reservation.Outcome) error {
	log := sessionLog(sessionID)

	session, ok := h.store.Get(sessionID)
	if !ok {
		h.metrics.ObserveStaleCallback()
		log.Warnf("Outcome for %s discarded, no pending session", outcome.Ref)
		return errors.Wrapf(ErrStaleCallback, "no pending session %s", sessionID)
	}

	if outcome.Success {
		log.Infof("'%s' GRANTED %d octets for rating group %d",
			session.endUserID, outcome.GrantedUnits, outcome.Ref.RatingGroup)
	} else {
		log.Infof("'%s' DENIED rating group %d: %s",
			session.endUserID, outcome.Ref.RatingGroup, outcome.ErrorKind)
	}

	complete, err := session.collect(outcome)
	if err != nil {
		h.metrics.ObserveStaleCallback()
		log.Warnf("Outcome for %s discarded: %v", outcome.Ref, err)
		return err
	}
	if !complete {
		return nil
	}

	h.timer.Cancel(sessionID)
	h.store.Remove(session)
	h.metrics.SessionReleased()
	h.answer(session)
	return nil
}

func (h *Handler) answer(session *ChargingSession) {
	req := session.request

	var answer *Answer
	if req.Kind == TerminationRequest {
		// termination never grants quota
		h.recordTermination(req, session.endUserID)
		answer = BuildAnswer(req, nil, DiameterSuccess, h.validityTime)
	} else {
		answer = BuildAnswer(req, session.outcomes, OverallResultCode(session.outcomes), h.validityTime)
	}
	h.transmit(req.SessionID, session.exchange, answer)
}

func (h *Handler) transmit(sessionID string, ex Exchange, answer *Answer) {
	if err := ex.Send(answer); err != nil {
		h.metrics.ObserveSendFailure()
		sessionLog(sessionID).Errorf("Unable to send Credit-Control-Answer: %v", err)
	} else {
		h.metrics.ObserveAnswer(answer.ResultCode)
	}
	ex.End()
}

func (h *Handler) recordTermination(req *Request, endUserID string) {
	if h.recorder != nil {
		h.recorder.RecordTermination(req, endUserID)
	}
}

func (h *Handler) abandon(session *ChargingSession) {
	if !session.abandon() {
		return
	}
	h.store.Remove(session)
	h.metrics.SessionReleased()
	h.metrics.ObserveAbandoned()
	log := sessionLog(session.sessionID)
	log.Warnf("No reservation outcome within %s, abandoning request #%d",
		h.timer.Delay(), session.request.RequestNumber)
	session.exchange.End()

	if err := h.client.Release(context.Background(), session.sessionID); err != nil {
		log.Errorf("Unable to release reservations of abandoned session: %v", err)
	}
}
