// Package abmf is the account balance management function behind the
// reservation contract. Decisions are taken off the caller's goroutine and
// delivered through a reservation.Resumer.
package abmf

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/internal/reservation"
)

var ErrLedgerClosed = errors.New("account balance management closed")

type reservationKey struct {
	sessionID   string
	ratingGroup uint32
}

// heldUnits is what one request holds for a (session, rating group). Line
// items of the same request add up.
type heldUnits struct {
	id            uuid.UUID
	user          string
	requestNumber uint32
	units         uint64
}

type AccountBalanceManagement struct {
	ds DataSource

	resumerMu sync.RWMutex
	resumer   reservation.Resumer

	// mu serializes every read-modify-write of an account
	mu           sync.Mutex
	reservations map[reservationKey]heldUnits

	bypass atomic.Bool

	closeMu sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

var _ reservation.Client = (*AccountBalanceManagement)(nil)

func NewAccountBalanceManagement(ds DataSource, resumer reservation.Resumer) *AccountBalanceManagement {
	ctx, cancel := context.WithCancel(context.Background())
	return &AccountBalanceManagement{
		ds:           ds,
		resumer:      resumer,
		reservations: make(map[reservationKey]heldUnits),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SetResumer names the receiver of every later outcome.
func (a *AccountBalanceManagement) SetResumer(resumer reservation.Resumer) {
	a.resumerMu.Lock()
	defer a.resumerMu.Unlock()
	a.resumer = resumer
}

func (a *AccountBalanceManagement) SetBypass(bypass bool) {
	if bypass {
		logger.AbmfLog.Warn("Bypass enabled, every reservation is granted as requested")
	}
	a.bypass.Store(bypass)
}

func (a *AccountBalanceManagement) Bypass() bool {
	return a.bypass.Load()
}

// Close refuses new calls and waits for the in-flight ones to deliver their
// outcome.
func (a *AccountBalanceManagement) Close() {
	a.closeMu.Lock()
	a.closed = true
	a.closeMu.Unlock()

	a.wg.Wait()
	a.cancel()
}

func (a *AccountBalanceManagement) submit(ref reservation.Ref, decide func(ctx context.Context) reservation.Outcome) error {
	a.closeMu.RLock()
	defer a.closeMu.RUnlock()

	if a.closed {
		return errors.Wrapf(ErrLedgerClosed, "reservation %s", ref)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		outcome := decide(a.ctx)
		outcome.Ref = ref

		a.resumerMu.RLock()
		resumer := a.resumer
		a.resumerMu.RUnlock()
		if resumer == nil {
			logger.AbmfLog.Errorf("No resumer for outcome of %s", ref)
			return
		}
		if err := resumer.ResumeOnReservationOutcome(ref.SessionID, outcome); err != nil {
			logger.AbmfLog.Debugf("Outcome of %s not taken: %v", ref, err)
			if outcome.Success && outcome.GrantedUnits > 0 {
				a.unhold(ref, outcome.GrantedUnits)
			}
		}
	}()
	return nil
}

func (a *AccountBalanceManagement) InitialRequest(
	_ context.Context, ref reservation.Ref, endUserID string, requested uint64,
) error {
	return a.submit(ref, func(ctx context.Context) reservation.Outcome {
		return a.reserve(ctx, ref, endUserID, requested, 0)
	})
}

func (a *AccountBalanceManagement) UpdateRequest(
	_ context.Context, ref reservation.Ref, endUserID string, requested, used uint64,
) error {
	return a.submit(ref, func(ctx context.Context) reservation.Outcome {
		return a.reserve(ctx, ref, endUserID, requested, used)
	})
}

func (a *AccountBalanceManagement) TerminateRequest(
	_ context.Context, ref reservation.Ref, endUserID string, _, used uint64,
) error {
	return a.submit(ref, func(ctx context.Context) reservation.Outcome {
		return a.terminate(ctx, ref, endUserID, used)
	})
}

func (a *AccountBalanceManagement) accountLog(ref reservation.Ref, endUserID string) *logrus.Entry {
	return logger.AbmfLog.WithFields(logrus.Fields{"sid": ref.SessionID, "user": endUserID})
}

// settle releases the reservation an earlier request holds for (session,
// rating group) and debits the used units. Caller holds a.mu.
func (a *AccountBalanceManagement) settle(
	ctx context.Context, ref reservation.Ref, endUserID string, used uint64,
) (reservation.Account, error) {
	account, err := a.ds.GetUser(ctx, endUserID)
	if err != nil {
		return account, err
	}

	key := reservationKey{sessionID: ref.SessionID, ratingGroup: ref.RatingGroup}
	if held, ok := a.reservations[key]; ok && held.requestNumber != ref.RequestNumber {
		delete(a.reservations, key)
		account.Reserved = saturatingSub(account.Reserved, held.units)
		a.accountLog(ref, endUserID).Debugf("Released reservation %s of %d units", held.id, held.units)
	}
	if used > account.Balance {
		a.accountLog(ref, endUserID).Warnf("Used %d units exceeds balance %d", used, account.Balance)
	}
	account.Balance = saturatingSub(account.Balance, used)
	return account, nil
}

func (a *AccountBalanceManagement) reserve(
	ctx context.Context, ref reservation.Ref, endUserID string, requested, used uint64,
) reservation.Outcome {
	log := a.accountLog(ref, endUserID)
	if a.Bypass() {
		return reservation.Granted(ref, requested)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	account, err := a.settle(ctx, ref, endUserID, used)
	if err != nil {
		return a.failure(ref, endUserID, err)
	}

	available := saturatingSub(account.Balance, account.Reserved)
	if available == 0 {
		if err := a.ds.UpdateUser(ctx, endUserID, account.Balance, account.Reserved); err != nil {
			return a.failure(ref, endUserID, err)
		}
		log.Infof("No balance left for rating group %d (balance %d reserved %d)",
			ref.RatingGroup, account.Balance, account.Reserved)
		return reservation.Denied(ref, reservation.NotEnoughBalance)
	}

	granted := min(requested, available)
	if err := a.ds.UpdateUser(ctx, endUserID, account.Balance, account.Reserved+granted); err != nil {
		return a.failure(ref, endUserID, err)
	}
	key := reservationKey{sessionID: ref.SessionID, ratingGroup: ref.RatingGroup}
	held, ok := a.reservations[key]
	if !ok || held.requestNumber != ref.RequestNumber {
		held = heldUnits{id: uuid.New(), user: endUserID, requestNumber: ref.RequestNumber}
	}
	held.units += granted
	a.reservations[key] = held

	log.Infof("Reservation %s holds %d (+%d of %d requested) units for rating group %d (balance %d)",
		held.id, held.units, granted, requested, ref.RatingGroup, account.Balance)
	return reservation.Granted(ref, granted)
}

func (a *AccountBalanceManagement) terminate(
	ctx context.Context, ref reservation.Ref, endUserID string, used uint64,
) reservation.Outcome {
	if a.Bypass() {
		return reservation.Granted(ref, 0)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	account, err := a.settle(ctx, ref, endUserID, used)
	if err != nil {
		return a.failure(ref, endUserID, err)
	}
	if err := a.ds.UpdateUser(ctx, endUserID, account.Balance, account.Reserved); err != nil {
		return a.failure(ref, endUserID, err)
	}
	a.accountLog(ref, endUserID).Infof("Debited %d units for rating group %d, balance %d",
		used, ref.RatingGroup, account.Balance)
	return reservation.Granted(ref, 0)
}

// Release drops every reservation of sessionID and returns its units to the
// accounts they were held on.
func (a *AccountBalanceManagement) Release(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	keys := maps.Keys(a.reservations)
	slices.SortFunc(keys, func(x, y reservationKey) int { return int(x.ratingGroup) - int(y.ratingGroup) })
	for _, key := range keys {
		if key.sessionID != sessionID {
			continue
		}
		held := a.reservations[key]
		if err := a.returnUnits(ctx, held.user, held.units); err != nil {
			return errors.Wrapf(err, "release %s", held.id)
		}
		delete(a.reservations, key)
		logger.AbmfLog.WithFields(logrus.Fields{"sid": sessionID, "user": held.user}).
			Infof("Released reservation %s of %d units for rating group %d", held.id, held.units, key.ratingGroup)
	}
	return nil
}

// unhold takes back units granted to ref whose outcome nobody took.
func (a *AccountBalanceManagement) unhold(ref reservation.Ref, units uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := reservationKey{sessionID: ref.SessionID, ratingGroup: ref.RatingGroup}
	held, ok := a.reservations[key]
	if !ok || held.requestNumber != ref.RequestNumber {
		return
	}
	units = min(units, held.units)
	if err := a.returnUnits(a.ctx, held.user, units); err != nil {
		a.accountLog(ref, held.user).Errorf("Unable to take back %d units of %s: %+v", units, ref, err)
		return
	}
	held.units -= units
	if held.units == 0 {
		delete(a.reservations, key)
	} else {
		a.reservations[key] = held
	}
	a.accountLog(ref, held.user).Infof("Took back %d units of unanswered %s", units, ref)
}

// returnUnits lowers the reserved units of userID. Caller holds a.mu.
func (a *AccountBalanceManagement) returnUnits(ctx context.Context, userID string, units uint64) error {
	account, err := a.ds.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	return a.ds.UpdateUser(ctx, userID, account.Balance, saturatingSub(account.Reserved, units))
}

func (a *AccountBalanceManagement) failure(ref reservation.Ref, endUserID string, err error) reservation.Outcome {
	if errors.Is(err, ErrUserNotFound) {
		a.accountLog(ref, endUserID).Warnf("Unknown user, rating group %d denied", ref.RatingGroup)
		return reservation.Denied(ref, reservation.InvalidUser)
	}
	a.accountLog(ref, endUserID).Errorf("Account store failure: %+v", err)
	return reservation.Denied(ref, reservation.AccountingConnectionError)
}

// Recharge adds units to a balance, opening the account when it is unknown.
func (a *AccountBalanceManagement) Recharge(ctx context.Context, userID string, units uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	account, err := a.ds.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if err := a.ds.UpdateUser(ctx, userID, account.Balance+units, account.Reserved); err != nil {
		return err
	}
	logger.AbmfLog.Infof("Recharged '%s' with %d units, balance %d", userID, units, account.Balance+units)
	return nil
}

// SetBalance overwrites a balance and keeps the units currently reserved.
func (a *AccountBalanceManagement) SetBalance(ctx context.Context, userID string, balance uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	account, err := a.ds.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if err := a.ds.UpdateUser(ctx, userID, balance, account.Reserved); err != nil {
		return err
	}
	logger.AbmfLog.Infof("Balance of '%s' set to %d", userID, balance)
	return nil
}

func (a *AccountBalanceManagement) Dump(ctx context.Context, filter string) ([]reservation.Account, error) {
	accounts, err := a.ds.ListUsers(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "dump %q", filter)
	}

	logger.AbmfLog.Infof("Accounts matching '%s': %d", filter, len(accounts))
	for _, account := range accounts {
		logger.AbmfLog.Infof("  %-20s balance %-12d reserved %d", account.UserID, account.Balance, account.Reserved)
	}
	return accounts, nil
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
