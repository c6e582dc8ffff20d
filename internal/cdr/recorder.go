// Package cdr writes one usage record per line item of every answered
// termination and optionally ships the files to an FTP collector.
package cdr

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/free5gc/ocs/internal/charging"
	"github.com/free5gc/ocs/internal/logger"
)

var csvHeader = []string{
	"RecordTime",
	"SessionId",
	"EndUser",
	"RequestNumber",
	"RatingGroup",
	"ServiceIdentifiers",
	"UsedUnits",
}

type Uploader interface {
	Upload(name string, r io.Reader) error
}

type Recorder struct {
	dir      string
	uploader Uploader

	mu sync.Mutex
	wg sync.WaitGroup
}

var _ charging.UsageRecorder = (*Recorder)(nil)

// NewRecorder writes into dir. A nil uploader keeps the records local.
func NewRecorder(dir string, uploader Uploader) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create CDR directory %s", dir)
	}
	return &Recorder{dir: dir, uploader: uploader}, nil
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

func (r *Recorder) Path(endUserID string) string {
	return filepath.Join(r.dir, fileNameReplacer.Replace(endUserID)+".csv")
}

func (r *Recorder) RecordTermination(req *charging.Request, endUserID string) {
	if len(req.LineItems) == 0 {
		logger.CdrLog.Debugf("Session %s terminated without usage, no record", req.SessionID)
		return
	}

	path := r.Path(endUserID)
	if err := r.appendRecords(path, req, endUserID); err != nil {
		logger.CdrLog.Errorf("Write CDR for session %s: %+v", req.SessionID, err)
		return
	}
	logger.CdrLog.Infof("Recorded %d usage records of '%s' to %s", len(req.LineItems), endUserID, path)

	if r.uploader != nil {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.upload(path)
		}()
	}
}

func (r *Recorder) appendRecords(path string, req *charging.Request, endUserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(csvHeader); err != nil {
			return err
		}
	}

	now := time.Now().Format(time.RFC3339)
	for _, item := range req.LineItems {
		serviceIDs := make([]string, 0, len(item.ServiceIdentifiers))
		for _, id := range item.ServiceIdentifiers {
			serviceIDs = append(serviceIDs, strconv.FormatUint(uint64(id), 10))
		}
		record := []string{
			now,
			req.SessionID,
			endUserID,
			strconv.FormatUint(uint64(req.RequestNumber), 10),
			strconv.FormatUint(uint64(item.RatingGroup), 10),
			strings.Join(serviceIDs, " "),
			strconv.FormatUint(item.TotalUsedUnits(), 10),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (r *Recorder) upload(path string) {
	r.mu.Lock()
	content, err := os.ReadFile(path)
	r.mu.Unlock()
	if err != nil {
		logger.CdrLog.Errorf("Read CDR %s: %v", path, err)
		return
	}

	if err := r.uploader.Upload(filepath.Base(path), strings.NewReader(string(content))); err != nil {
		logger.CdrLog.Warnf("Upload CDR %s: %v", path, err)
		return
	}
	logger.CdrLog.Infof("Uploaded CDR %s", filepath.Base(path))
}

// Close waits for pending uploads.
func (r *Recorder) Close() {
	r.wg.Wait()
}
