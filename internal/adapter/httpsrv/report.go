package httpsrv

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/khmm12/ping-sweep/internal/adapter/render"
	"github.com/khmm12/ping-sweep/internal/ports"
)

// ReportStore keeps the latest published sweep report and serves it as JSON.
type ReportStore struct {
	latest atomic.Pointer[ports.SweepReport]
}

func NewReportStore() *ReportStore {
	return &ReportStore{}
}

func (s *ReportStore) Publish(_ context.Context, report *ports.SweepReport) error {
	s.latest.Store(report)
	return nil
}

func (s *ReportStore) Latest() *ports.SweepReport {
	return s.latest.Load()
}

func (s *ReportStore) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	report := s.latest.Load()
	if report == nil {
		http.Error(w, "no sweep finished yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_ = render.NewJSONRenderer(w).Render(report)
}
