// Package listener consumes invitation change notifications published by the
// invitations table trigger through Postgres LISTEN/NOTIFY.
package listener

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/stanstork/meeting-trigger/internal/config"
	"github.com/stanstork/meeting-trigger/internal/metrics"
	"github.com/stanstork/meeting-trigger/internal/models"
)

const defaultPingInterval = 90 * time.Second

// Source is the part of *pq.Listener the loop relies on.
type Source interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, update models.InvitationUpdate) error
}

type Listener struct {
	source       Source
	dispatcher   Dispatcher
	channel      string
	pingInterval time.Duration
	logger       zerolog.Logger
}

func New(source Source, dispatcher Dispatcher, cfg config.ListenerConfig, logger zerolog.Logger) *Listener {
	pingInterval := cfg.PingInterval
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	return &Listener{
		source:       source,
		dispatcher:   dispatcher,
		channel:      cfg.Channel,
		pingInterval: pingInterval,
		logger:       logger.With().Str("component", "invitation_listener").Str("channel", cfg.Channel).Logger(),
	}
}

// NewPQListener opens a reconnecting LISTEN connection. Connection state
// changes are logged.
func NewPQListener(databaseURL string, cfg config.ListenerConfig, logger zerolog.Logger) *pq.Listener {
	logger = logger.With().Str("component", "pq_listener").Logger()
	return pq.NewListener(databaseURL, cfg.MinReconnect, cfg.MaxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info().Msg("listener connected")
		case pq.ListenerEventDisconnected:
			logger.Warn().Err(err).Msg("listener disconnected")
		case pq.ListenerEventReconnected:
			logger.Info().Msg("listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Error().Err(err).Msg("listener connection attempt failed")
		}
	})
}

// Run blocks until ctx is cancelled or the source closes its channel.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.source.Listen(l.channel); err != nil {
		return errors.Wrapf(err, "listen on channel %s", l.channel)
	}
	l.logger.Info().Msg("waiting for invitation updates")

	ping := time.NewTicker(l.pingInterval)
	defer ping.Stop()

	notifications := l.source.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("listener stopped")
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return errors.New("notification channel closed")
			}
			if n == nil {
				// pq sends nil after a reconnect; anything published while
				// disconnected is gone.
				l.logger.Warn().Msg("connection re-established, updates sent during the outage were not received")
				continue
			}
			l.handle(ctx, n)
		case <-ping.C:
			if err := l.source.Ping(); err != nil {
				l.logger.Warn().Err(err).Msg("listener ping failed")
			}
		}
	}
}

func (l *Listener) handle(ctx context.Context, n *pq.Notification) {
	update, err := decodeUpdate(n.Extra)
	if err != nil {
		l.logger.Error().Err(err).Str("payload", n.Extra).Msg("dropping malformed notification")
		metrics.RecordNotification(metrics.NotificationDropped)
		return
	}

	if err := l.dispatcher.Dispatch(ctx, update); err != nil {
		l.logger.Error().Err(err).Str("invitation_id", update.InvitationID).Msg("failed to dispatch invitation update")
		metrics.RecordNotification(metrics.NotificationFailed)
		return
	}
	metrics.RecordNotification(metrics.NotificationDispatched)
}

func decodeUpdate(payload string) (models.InvitationUpdate, error) {
	var update models.InvitationUpdate
	if err := json.Unmarshal([]byte(payload), &update); err != nil {
		return models.InvitationUpdate{}, errors.Wrap(err, "decode notification payload")
	}
	update.InvitationID = strings.TrimSpace(update.InvitationID)
	if update.InvitationID == "" {
		return models.InvitationUpdate{}, errors.New("notification payload has no invitationId")
	}
	return update, nil
}
