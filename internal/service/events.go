package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LifecycleEvent is emitted by every successful transition. It replaces the
// implicit broadcast of the legacy system: the caller receives the event as a
// return value, and other nodes receive it through Redis or NATS when a
// publisher is configured.
type LifecycleEvent struct {
	CourseID   uint      `json:"course_id"`
	SemesterID uint      `json:"semester_id"`
	Transition string    `json:"transition"`
	NewState   string    `json:"new_state"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher fans lifecycle events out to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
}

type lifecycleEnvelope struct {
	Source string         `json:"source"`
	Event  LifecycleEvent `json:"event"`
	SentAt time.Time      `json:"sent_at"`
}

type brokerEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
}

// NewBrokerEventPublisher constructs a publisher that mirrors lifecycle events
// onto a Redis pub/sub channel and a NATS subject. Either client may be nil.
func NewBrokerEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":lifecycle"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".lifecycle"
	}

	return &brokerEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		nodeID:       uuid.NewString(),
	}
}

func (p *brokerEventPublisher) Publish(ctx context.Context, event LifecycleEvent) error {
	envelope := lifecycleEnvelope{
		Source: p.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}
