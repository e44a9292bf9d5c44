// Package events ships domain events to Kafka after successful mutations.
package events

import (
	"context"
	"log/slog"
	"time"

	"devcircle/internal/middleware"
	"devcircle/internal/observability"

	"github.com/google/uuid"
)

// Type names a domain event, e.g. "post.created".
type Type string

const (
	UserSignedUp      Type = "user.signed_up"
	UserFollowed      Type = "user.followed"
	UserUnfollowed    Type = "user.unfollowed"
	PostCreated       Type = "post.created"
	PostUpdated       Type = "post.updated"
	PostDeleted       Type = "post.deleted"
	PostLiked         Type = "post.liked"
	PostUnliked       Type = "post.unliked"
	CommentCreated    Type = "comment.created"
	CommentUpdated    Type = "comment.updated"
	CommentDeleted    Type = "comment.deleted"
	TeamCreated       Type = "team.created"
	TeamUpdated       Type = "team.updated"
	TeamDeleted       Type = "team.deleted"
	TeamMemberAdded   Type = "team.member_added"
	TeamMemberRemoved Type = "team.member_removed"
	ProjectCreated    Type = "project.created"
	ProjectUpdated    Type = "project.updated"
	ProjectDeleted    Type = "project.deleted"
)

// Event is the envelope written to the events topic.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	ActorID    uint           `json:"actor_id"`
	SubjectID  uint           `json:"subject_id"`
	Attributes map[string]any `json:"attributes,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, actorID, subjectID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
	}
}

// With returns a copy of e carrying an extra attribute.
func (e Event) With(key string, value any) Event {
	attrs := make(map[string]any, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attributes = attrs
	return e
}

// Publisher delivers events to a sink.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NoopPublisher drops every event. Used when KAFKA_BROKERS is empty.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// Emit publishes e and swallows the error. Event delivery never fails the
// mutation that produced it.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		observability.DomainEvents.WithLabelValues(string(e.Type), "error").Inc()
		middleware.Logger.WarnContext(ctx, "domain event publish failed",
			slog.String("event_type", string(e.Type)),
			slog.String("event_id", e.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.DomainEvents.WithLabelValues(string(e.Type), "published").Inc()
}
