package diameter

import (
	"sync"

	"github.com/fiorix/go-diameter/v4/diam"
	"github.com/pkg/errors"

	"github.com/free5gc/ocs/internal/charging"
	"github.com/free5gc/ocs/internal/logger"
)

var ErrExchangeEnded = errors.New("exchange already ended")

// exchange answers one CCR on the connection it arrived on. At most one answer
// leaves it; End refuses every later Send.
type exchange struct {
	mu       sync.Mutex
	conn     diam.Conn
	request  *diam.Message
	origin   Origin
	answered bool
	ended    bool
}

var _ charging.Exchange = (*exchange)(nil)

func newExchange(conn diam.Conn, request *diam.Message, origin Origin) *exchange {
	return &exchange{conn: conn, request: request, origin: origin}
}

func (e *exchange) Send(answer *charging.Answer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ended || e.answered {
		return errors.Wrapf(ErrExchangeEnded, "session %s", answer.SessionID)
	}
	e.answered = true

	msg := EncodeCCA(e.request, answer, e.origin)
	logger.DiamLog.Tracef("Sending CCA to %s:\n%s", e.conn.RemoteAddr(), msg)
	if _, err := msg.WriteTo(e.conn); err != nil {
		return errors.Wrapf(err, "write CCA to %s", e.conn.RemoteAddr())
	}
	return nil
}

func (e *exchange) End() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ended = true
}
