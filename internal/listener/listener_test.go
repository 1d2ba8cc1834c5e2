package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/meeting-trigger/internal/config"
	"github.com/stanstork/meeting-trigger/internal/models"
)

type fakeSource struct {
	ch        chan *pq.Notification
	listenErr error
	listened  string
}

func newFakeSource() *fakeSource {
	return &fakeSource{ch: make(chan *pq.Notification, 8)}
}

func (s *fakeSource) Listen(channel string) error {
	s.listened = channel
	return s.listenErr
}

func (s *fakeSource) NotificationChannel() <-chan *pq.Notification { return s.ch }
func (s *fakeSource) Ping() error                                  { return nil }
func (s *fakeSource) Close() error                                 { return nil }

type recordingDispatcher struct {
	mu      sync.Mutex
	updates []models.InvitationUpdate
	err     error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, update models.InvitationUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates = append(d.updates, update)
	return d.err
}

func (d *recordingDispatcher) received() []models.InvitationUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.InvitationUpdate(nil), d.updates...)
}

var testConfig = config.ListenerConfig{Channel: "invitation_updates", PingInterval: time.Hour}

func runListener(t *testing.T, l *Listener) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestListenerDispatchesUpdates(t *testing.T) {
	src := newFakeSource()
	disp := &recordingDispatcher{}
	l := New(src, disp, testConfig, zerolog.Nop())

	cancel, done := runListener(t, l)

	src.ch <- &pq.Notification{Channel: "invitation_updates", Extra: `{"invitationId":"inv-1","before":{"status":"pending","senderId":"A","receiverId":"B"},"after":{"status":"accepted","senderId":"A","receiverId":"B"}}`}

	require.Eventually(t, func() bool { return len(disp.received()) == 1 }, time.Second, 10*time.Millisecond)

	got := disp.received()[0]
	assert.Equal(t, "inv-1", got.InvitationID)
	assert.Equal(t, models.InvitationStatusPending, got.Before.Status)
	assert.Equal(t, models.InvitationStatusAccepted, got.After.Status)
	assert.Equal(t, "A", got.After.SenderID)
	assert.Equal(t, "B", got.After.ReceiverID)
	assert.Equal(t, "invitation_updates", src.listened)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestListenerSkipsMalformedAndNilNotifications(t *testing.T) {
	src := newFakeSource()
	disp := &recordingDispatcher{}
	l := New(src, disp, testConfig, zerolog.Nop())

	runListener(t, l)

	src.ch <- nil
	src.ch <- &pq.Notification{Extra: `not json`}
	src.ch <- &pq.Notification{Extra: `{"before":{},"after":{"status":"accepted"}}`}
	src.ch <- &pq.Notification{Extra: `{"invitationId":"inv-2","after":{"status":"accepted"}}`}

	require.Eventually(t, func() bool { return len(disp.received()) == 1 }, time.Second, 10*time.Millisecond)

	got := disp.received()[0]
	assert.Equal(t, "inv-2", got.InvitationID)
	assert.Empty(t, got.Before.Status)
	assert.Empty(t, got.After.SenderID)
}

func TestListenerContinuesAfterDispatchError(t *testing.T) {
	src := newFakeSource()
	disp := &recordingDispatcher{err: errors.New("write failed")}
	l := New(src, disp, testConfig, zerolog.Nop())

	runListener(t, l)

	src.ch <- &pq.Notification{Extra: `{"invitationId":"inv-1"}`}
	src.ch <- &pq.Notification{Extra: `{"invitationId":"inv-2"}`}

	require.Eventually(t, func() bool { return len(disp.received()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestListenerStopsWhenChannelCloses(t *testing.T) {
	src := newFakeSource()
	l := New(src, &recordingDispatcher{}, testConfig, zerolog.Nop())

	_, done := runListener(t, l)
	close(src.ch)

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestListenerListenError(t *testing.T) {
	src := newFakeSource()
	src.listenErr = errors.New("connection refused")
	l := New(src, &recordingDispatcher{}, testConfig, zerolog.Nop())

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, src.listenErr)
}
