package recharge

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/free5gc/ocs/internal/abmf"
	"github.com/free5gc/ocs/internal/logger"
)

type BalanceSetter interface {
	SetBalance(ctx context.Context, userID string, balance uint64) error
}

// Watcher re-applies the users file whenever it is written, so balances can
// be topped up by editing the file in place.
type Watcher struct {
	path   string
	setter BalanceSetter

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func NewWatcher(path string, setter BalanceSetter) *Watcher {
	return &Watcher{path: filepath.Clean(path), setter: setter}
}

func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create users file watcher")
	}
	// the directory is watched so that editors replacing the file are seen
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "watch %s", w.path)
	}
	w.watcher = watcher

	w.wg.Add(1)
	go w.serve()
	logger.RechargeLog.Infof("Watching users file %s", w.path)
	return nil
}

func (w *Watcher) Stop() {
	if w.watcher == nil {
		return
	}
	if err := w.watcher.Close(); err != nil {
		logger.RechargeLog.Warnf("Close users file watcher: %v", err)
	}
	w.wg.Wait()
	logger.RechargeLog.Info("Users file watcher stopped")
}

func (w *Watcher) serve() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.apply()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.RechargeLog.Warnf("watcher Events err: %+v", err)
		}
	}
}

func (w *Watcher) apply() {
	users, err := abmf.ReadUsersFile(w.path)
	if err != nil {
		// a half-written file shows up as a parse error, the next write retries
		logger.RechargeLog.Warnf("Users file not applied: %v", err)
		return
	}

	ids := maps.Keys(users)
	slices.Sort(ids)
	for _, id := range ids {
		if err := w.setter.SetBalance(context.Background(), id, users[id]); err != nil {
			logger.RechargeLog.Errorf("Set balance of '%s': %+v", id, err)
		}
	}
	logger.RechargeLog.Infof("Applied %d balances from %s", len(ids), w.path)
}
