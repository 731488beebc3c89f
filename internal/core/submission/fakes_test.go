package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type fakeUploader struct {
	mu      sync.Mutex
	failOn  string
	calls   []string
	creds   []port.Credential
	block   chan struct{}
	started chan struct{}
}

func (f *fakeUploader) Upload(ctx context.Context, cred port.Credential, file domain.MediaFile, folder string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, file.Name)
	f.creds = append(f.creds, cred)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if file.Name == f.failOn {
		return "", errors.New("upload rejected")
	}
	return "/assets/" + folder + "/" + file.Name, nil
}

type fakeGeocoder struct {
	mu      sync.Mutex
	queries []string
	result  []domain.GeoCandidate
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) ([]domain.GeoCandidate, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	result, err := f.result, f.err
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return result, err
}

type fakeWriter struct {
	created []*domain.Listing
	updated map[uuid.UUID]*domain.Listing
	err     error
}

func (f *fakeWriter) Create(_ context.Context, _ port.Credential, l *domain.Listing) (*domain.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	l.ID = uuid.New()
	f.created = append(f.created, l)
	return l, nil
}

func (f *fakeWriter) Update(_ context.Context, _ port.Credential, id uuid.UUID, l *domain.Listing) (*domain.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.updated == nil {
		f.updated = map[uuid.UUID]*domain.Listing{}
	}
	l.ID = id
	f.updated[id] = l
	return l, nil
}

// manualTimers records scheduled callbacks so tests decide when they fire.
type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (m *manualTimers) factory(_ time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{f: f}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualTimers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// fire runs the i-th callback as if its timer had elapsed, even when stopped.
func (m *manualTimers) fire(i int) {
	m.mu.Lock()
	t := m.timers[i]
	m.mu.Unlock()
	t.f()
}

type harness struct {
	p        *Pipeline
	uploader *fakeUploader
	geocoder *fakeGeocoder
	writer   *fakeWriter
	timers   *manualTimers
}

func newHarness(kind domain.Kind) *harness {
	h := &harness{
		uploader: &fakeUploader{},
		geocoder: &fakeGeocoder{result: []domain.GeoCandidate{{Lat: 12.9698, Lon: 77.75}}},
		writer:   &fakeWriter{},
		timers:   &manualTimers{},
	}
	p, err := NewPipeline(Config{
		Kind:         kind,
		Uploader:     h.uploader,
		Geocoder:     h.geocoder,
		Writer:       h.writer,
		TimerFactory: h.timers.factory,
	})
	if err != nil {
		panic(err)
	}
	h.p = p
	return h
}
