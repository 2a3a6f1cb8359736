package ports

import (
	"context"
	"iter"
	"net/netip"
	"slices"
	"time"
)

type HostRecord struct {
	Address netip.Addr
	State   HostState
	// Name is empty when the address has no resolved name.
	Name    string
	Elapsed time.Duration
	// Diagnostic describes why the liveness check could not be performed.
	Diagnostic string
}

func (r HostRecord) Resolved() bool {
	return r.Name != ""
}

// SweepReport holds one record per swept address in enumeration order.
// It is not modified after construction.
type SweepReport struct {
	prefix     string
	records    []HostRecord
	complete   bool
	sorted     bool
	startedAt  time.Time
	finishedAt time.Time
}

func NewSweepReport(prefix string, records []HostRecord, complete bool, startedAt, finishedAt time.Time) *SweepReport {
	return &SweepReport{
		prefix:     prefix,
		records:    slices.Clone(records),
		complete:   complete,
		sorted:     slices.IsSortedFunc(records, compareRecords),
		startedAt:  startedAt,
		finishedAt: finishedAt,
	}
}

func (r *SweepReport) Prefix() string {
	return r.prefix
}

// Complete is false when the sweep was interrupted before every address got a verdict.
func (r *SweepReport) Complete() bool {
	return r.complete
}

func (r *SweepReport) StartedAt() time.Time {
	return r.startedAt
}

func (r *SweepReport) FinishedAt() time.Time {
	return r.finishedAt
}

func (r *SweepReport) Duration() time.Duration {
	return r.finishedAt.Sub(r.startedAt)
}

func (r *SweepReport) Len() int {
	return len(r.records)
}

func (r *SweepReport) Records() []HostRecord {
	return slices.Clone(r.records)
}

func (r *SweepReport) All() iter.Seq2[int, HostRecord] {
	return func(yield func(int, HostRecord) bool) {
		for i, rec := range r.records {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Lookup finds the record of addr. Enumerated prefixes are in ascending order and
// searched in O(log n); arbitrary address lists fall back to a scan.
func (r *SweepReport) Lookup(addr netip.Addr) (HostRecord, bool) {
	if r.sorted {
		i, found := slices.BinarySearchFunc(r.records, addr, func(rec HostRecord, a netip.Addr) int {
			return rec.Address.Compare(a)
		})
		if !found {
			return HostRecord{}, false
		}

		return r.records[i], true
	}

	for _, rec := range r.records {
		if rec.Address == addr {
			return rec, true
		}
	}

	return HostRecord{}, false
}

type SweepSummary struct {
	Total   int
	Up      int
	Down    int
	Unknown int
	Named   int
}

func (r *SweepReport) Summary() SweepSummary {
	s := SweepSummary{Total: len(r.records)}

	for _, rec := range r.records {
		switch rec.State {
		case HostUp:
			s.Up++
		case HostDown:
			s.Down++
		default:
			s.Unknown++
		}

		if rec.Resolved() {
			s.Named++
		}
	}

	return s
}

func compareRecords(a, b HostRecord) int {
	return a.Address.Compare(b.Address)
}

type SweepReportPublisher interface {
	Publish(ctx context.Context, report *SweepReport) error
}

type SweepProgress struct {
	Completed int
	Total     int
	Up        int
}

type ProgressSink interface {
	Progress(ctx context.Context, p SweepProgress)
}
