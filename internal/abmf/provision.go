package abmf

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"

	"github.com/free5gc/ocs/internal/logger"
)

// ReadUsersFile parses a YAML map of subscriber id to balance.
func ReadUsersFile(path string) (map[string]uint64, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read users file %s", path)
	}

	users := make(map[string]uint64)
	if err := yaml.Unmarshal(content, &users); err != nil {
		return nil, errors.Wrapf(err, "parse users file %s", path)
	}
	return users, nil
}

// Provision loads the users file into the account store and dumps the result.
// On any failure the ledger falls back to bypass mode.
func Provision(ctx context.Context, ledger *AccountBalanceManagement, usersFile string) error {
	if usersFile == "" {
		logger.AbmfLog.Info("No users file configured, accounts come from the data source only")
		return nil
	}

	if err := provision(ctx, ledger, usersFile); err != nil {
		logger.AbmfLog.Warnf("Unable to load users from %s: %v. Allowing everything!", usersFile, err)
		ledger.SetBypass(true)
		return err
	}
	return nil
}

func provision(ctx context.Context, ledger *AccountBalanceManagement, usersFile string) error {
	users, err := ReadUsersFile(usersFile)
	if err != nil {
		return err
	}

	ids := maps.Keys(users)
	slices.Sort(ids)
	for _, id := range ids {
		if err := ledger.ds.UpdateUser(ctx, id, users[id], 0); err != nil {
			return errors.Wrapf(err, "provision %s", id)
		}
	}

	logger.AbmfLog.Infof("Loaded %d users from %s. Dumping state.", len(ids), usersFile)
	_, err = ledger.Dump(ctx, "%")
	return err
}
