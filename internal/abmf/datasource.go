package abmf

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/free5gc/ocs/internal/reservation"
)

var ErrUserNotFound = errors.New("user not found")

// DataSource persists subscriber accounts. Reserved is the sum of the
// subscriber's open reservations.
type DataSource interface {
	Init(ctx context.Context) error
	GetUser(ctx context.Context, userID string) (reservation.Account, error)
	UpdateUser(ctx context.Context, userID string, balance, reserved uint64) error
	// ListUsers returns the accounts whose id matches the SQL-LIKE filter,
	// sorted by id.
	ListUsers(ctx context.Context, filter string) ([]reservation.Account, error)
}

// likePattern turns a SQL-LIKE filter ("%" any run, "_" one character) into
// an anchored regular expression.
func likePattern(filter string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range filter {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}

func sortAccounts(accounts []reservation.Account) {
	slices.SortFunc(accounts, func(a, b reservation.Account) int {
		return strings.Compare(a.UserID, b.UserID)
	})
}

type MemoryDataSource struct {
	mu       sync.RWMutex
	accounts map[string]reservation.Account
}

var _ DataSource = (*MemoryDataSource)(nil)

func NewMemoryDataSource() *MemoryDataSource {
	return &MemoryDataSource{accounts: make(map[string]reservation.Account)}
}

func (m *MemoryDataSource) Init(context.Context) error {
	return nil
}

func (m *MemoryDataSource) GetUser(_ context.Context, userID string) (reservation.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[userID]
	if !ok {
		return reservation.Account{}, errors.Wrap(ErrUserNotFound, userID)
	}
	return account, nil
}

func (m *MemoryDataSource) UpdateUser(_ context.Context, userID string, balance, reserved uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts[userID] = reservation.Account{UserID: userID, Balance: balance, Reserved: reserved}
	return nil
}

func (m *MemoryDataSource) ListUsers(_ context.Context, filter string) ([]reservation.Account, error) {
	re, err := regexp.Compile(likePattern(filter))
	if err != nil {
		return nil, errors.Wrapf(err, "filter %q", filter)
	}

	m.mu.RLock()
	ids := maps.Keys(m.accounts)
	accounts := make([]reservation.Account, 0, len(ids))
	for _, id := range ids {
		if re.MatchString(id) {
			accounts = append(accounts, m.accounts[id])
		}
	}
	m.mu.RUnlock()

	sortAccounts(accounts)
	return accounts, nil
}
