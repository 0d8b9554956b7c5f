package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
)

type fakeScanner struct {
	mu         sync.Mutex
	candidates []service.PromptCandidate
	scanErr    error
	scans      int
	expires    int
	released   []int64
}

func (f *fakeScanner) ScanAll(context.Context) ([]service.PromptCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	out := f.candidates
	f.candidates = nil
	return out, f.scanErr
}

func (f *fakeScanner) ReleasePrompt(_ context.Context, c service.PromptCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, c.Appointment.ID)
	return nil
}

func (f *fakeScanner) ExpireStale(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires++
	return 0, nil
}

type fakeSender struct {
	failFor int64
	sent    []int64
}

func (f *fakeSender) SendReviewPrompt(_ context.Context, c service.PromptCandidate) error {
	if c.Appointment.ID == f.failFor {
		return errors.New("chat not found")
	}
	f.sent = append(f.sent, c.Appointment.ID)
	return nil
}

func candidate(clientID, appointmentID int64) service.PromptCandidate {
	return service.PromptCandidate{
		Client:      &model.User{ID: clientID},
		Appointment: &model.Appointment{ID: appointmentID},
	}
}

func TestScheduler_TickSendsCandidates(t *testing.T) {
	scanner := &fakeScanner{candidates: []service.PromptCandidate{candidate(1, 10), candidate(2, 20), candidate(3, 30)}}
	sender := &fakeSender{failFor: 20}
	s := NewScheduler(scanner, sender, time.Minute, zap.NewNop())

	s.tick(context.Background())

	assert.Equal(t, []int64{10, 30}, sender.sent, "failed delivery does not stop the batch")
	assert.Equal(t, []int64{20}, scanner.released, "undelivered prompt goes back to the queue")
	assert.Equal(t, 1, scanner.expires)
	assert.Equal(t, 1, scanner.scans)
}

func TestScheduler_ScanError(t *testing.T) {
	scanner := &fakeScanner{scanErr: errors.New("db down")}
	sender := &fakeSender{}
	s := NewScheduler(scanner, sender, time.Minute, zap.NewNop())

	s.tick(context.Background())
	assert.Empty(t, sender.sent)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	scanner := &fakeScanner{}
	s := NewScheduler(scanner, &fakeSender{}, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	require.Equal(t, 1, scanner.scans, "first run happens immediately")
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(&fakeScanner{}, &fakeSender{}, 0, zap.NewNop())
	assert.Equal(t, 10*time.Minute, s.interval)

	s.Stop()
	assert.NotPanics(t, s.Stop)
}
