// Package activitymap flattens messagely activity events into a
// transport-agnostic record for audit logs and downstream consumers.
package activitymap

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-messagely"
)

const (
	// MetadataKeyMessageID holds the message id on message events.
	MetadataKeyMessageID = "message_id"
	// MetadataKeyError holds the failure reason on failure events.
	MetadataKeyError = "error"
)

const (
	ObjectTypeUser    = "user"
	ObjectTypeMessage = "message"

	defaultChannel = "auth"
	defaultActorID = "anonymous"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	actorFallback string
	now           func() time.Time
}

// Normalize converts a messagely.ActivityEvent into a Normalized record.
// Message events point at the message, everything else at the user.
func Normalize(event messagely.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.Username),
		options.actorFallback,
	)

	objectType, objectID := ObjectTypeUser, strings.TrimSpace(event.Username)
	if id, ok := event.Metadata[MetadataKeyMessageID].(string); ok && id != "" {
		objectType, objectID = ObjectTypeMessage, id
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = options.now()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    channelFor(event.EventType, options.channel),
		Metadata:   normalizeMetadata(event.Metadata),
		OccurredAt: occurredAt.UTC(),
	}
}

// WithDefaultChannel sets the channel used when the event type carries
// no dotted prefix.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithActorFallback sets the actor id used for events without a username.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// WithClock sets the clock used for events missing OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(opts *normalizeOptions) {
		if opts == nil || now == nil {
			return
		}
		opts.now = now
	}
}

// NewLoggerSink returns an ActivitySink that logs every event in its
// normalized form.
func NewLoggerSink(logger messagely.Logger, opts ...Option) messagely.ActivitySink {
	return messagely.ActivitySinkFunc(func(_ context.Context, event messagely.ActivityEvent) error {
		n := Normalize(event, opts...)
		args := []any{
			"verb", n.Verb,
			"actor_id", n.ActorID,
			"object_type", n.ObjectType,
			"object_id", n.ObjectID,
			"channel", n.Channel,
			"occurred_at", n.OccurredAt,
		}
		if len(n.Metadata) > 0 {
			args = append(args, "metadata", n.Metadata)
		}
		logger.Info("activity", args...)
		return nil
	})
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		actorFallback: defaultActorID,
		now:           time.Now,
	}
}

// channelFor uses the event type prefix, "message.sent" is on "message".
func channelFor(eventType messagely.ActivityEventType, fallback string) string {
	if prefix, _, ok := strings.Cut(string(eventType), "."); ok && prefix != "" {
		return prefix
	}
	return fallback
}

func normalizeMetadata(in map[string]any) map[string]any {
	metadata := cloneMap(in)
	delete(metadata, MetadataKeyMessageID)
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
