// Package reports journals completed analysis cycles for the dashboard stream.
package reports

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/vadiminshakov/gowal"
)

const (
	reportSegmentLimit = 50
	reportMaxSegments  = 4
	reportKeyPrefix    = "report_"
)

var errNotInitialized = errors.New("report store is not initialized")

// WALStore keeps analysis reports of the current run in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens a report journal under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		return nil, errors.New("report journal directory is required")
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "report_",
		SegmentThreshold: reportSegmentLimit,
		MaxSegments:      reportMaxSegments,
		IsInSyncDiskMode: false,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init report WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the report. Reports without a cycle id are rejected.
func (s *WALStore) Save(report domain.AnalysisReport) error {
	if s == nil || s.wal == nil {
		return errNotInitialized
	}
	if report.CycleID == "" {
		return errors.New("report cycle id is required")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshal analysis report")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, reportKeyPrefix+report.CycleID, payload)
}

// EventsAfter returns the reports written after index, oldest first.
func (s *WALStore) EventsAfter(index uint64) ([]domain.AnalysisReportRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errNotInitialized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.AnalysisReportRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, reportKeyPrefix) {
			continue
		}
		var report domain.AnalysisReport
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, errors.Wrap(err, "decode analysis report")
		}
		records = append(records, domain.AnalysisReportRecord{Index: idx, Report: report})
	}

	return records, nil
}

// CurrentIndex returns the index of the latest report.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errNotInitialized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
