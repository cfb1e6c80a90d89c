package relay

import (
	"errors"
	"fmt"
	"log"

	"github.com/nightpost/relay/internal/models"
	"github.com/nightpost/relay/internal/store"
)

// IdentityStore is the slice of the participant store the router needs.
type IdentityStore interface {
	Upsert(id, displayName, handle string) error
	IsBanned(id string) (bool, error)
	IsTrusted(id string) (bool, error)
	AssignPseudonymIfAbsent(id string) (int, error)
	ByID(id string) (*models.Participant, error)
	AdjustReputation(id string, delta int) error
}

// Filter decides whether text trips the stop-word list.
type Filter interface {
	Matches(text string) (bool, error)
}

// Sink delivers a rendered body plus the originating item to a channel.
// The transport layer provides one sink per channel.
type Sink interface {
	Deliver(body string, item ContentItem) error
}

// Status is the terminal outcome of one submission.
type Status string

const (
	StatusPublished      Status = "published"
	StatusPendingReview  Status = "pending_review"
	StatusRejectedBanned Status = "rejected_banned"
	StatusRejectedFilter Status = "rejected_stop_word"
)

// Outcome is what the sender learns about their submission.
type Outcome struct {
	Status    Status `json:"status"`
	Pseudonym int    `json:"pseudonym,omitempty"`
	Reply     string `json:"reply"`
}

// Router runs the moderation pipeline: identity upsert, ban gate, stop-word
// gate, pseudonym assignment, then direct publication for trusted senders or
// a review record for everyone else. One pass per item, no retries.
type Router struct {
	identities IdentityStore
	filter     Filter
	public     Sink
	review     Sink
}

func NewRouter(identities IdentityStore, filter Filter, public, review Sink) *Router {
	return &Router{
		identities: identities,
		filter:     filter,
		public:     public,
		review:     review,
	}
}

// Submit evaluates one content item to a terminal outcome. The returned
// error covers infrastructure failures only; policy rejections are normal
// outcomes, not errors.
func (r *Router) Submit(item ContentItem) (Outcome, error) {
	// Identity metadata is refreshed before any gate runs, even for banned
	// senders.
	if err := r.identities.Upsert(item.SenderID, item.DisplayName, item.Handle); err != nil {
		return Outcome{}, fmt.Errorf("upsert identity: %w", err)
	}

	banned, err := r.identities.IsBanned(item.SenderID)
	if err != nil {
		return Outcome{}, err
	}
	if banned {
		return Outcome{
			Status: StatusRejectedBanned,
			Reply:  "You are banned and cannot send messages.",
		}, nil
	}

	// Only message text is filtered. Media bypasses the stop-word list.
	if item.Kind == KindText {
		matched, err := r.filter.Matches(item.Text)
		if err != nil {
			return Outcome{}, err
		}
		if matched {
			return Outcome{
				Status: StatusRejectedFilter,
				Reply:  "Your message contains forbidden words.",
			}, nil
		}
	}

	pseudonym, err := r.identities.AssignPseudonymIfAbsent(item.SenderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("assign pseudonym: %w", err)
	}

	trusted, err := r.identities.IsTrusted(item.SenderID)
	if err != nil {
		return Outcome{}, err
	}

	if trusted {
		return r.publish(pseudonym, item)
	}
	return r.queueForReview(pseudonym, item)
}

func (r *Router) publish(pseudonym int, item ContentItem) (Outcome, error) {
	p, err := r.identities.ByID(item.SenderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load participant: %w", err)
	}

	body := RenderPublication(pseudonym, p.Reputation, item)
	if err := r.public.Deliver(body, item); err != nil {
		return Outcome{}, fmt.Errorf("deliver to public channel: %w", err)
	}

	// Reputation grows after delivery, so the published header shows the
	// pre-increment score.
	if err := r.identities.AdjustReputation(item.SenderID, 1); err != nil {
		log.Printf("Error incrementing reputation for %s: %v", item.SenderID, err)
	}

	return Outcome{
		Status:    StatusPublished,
		Pseudonym: pseudonym,
		Reply:     "Your message has been published.",
	}, nil
}

func (r *Router) queueForReview(pseudonym int, item ContentItem) (Outcome, error) {
	p, err := r.identities.ByID(item.SenderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Upsert ran at the top of Submit, so this indicates an
			// ordering bug, not bad input.
			log.Printf("participant %s missing after upsert", item.SenderID)
			return Outcome{}, fmt.Errorf("participant %s missing after upsert", item.SenderID)
		}
		return Outcome{}, err
	}

	body := RenderReviewRequest(p, item)
	if err := r.review.Deliver(body, item); err != nil {
		return Outcome{}, fmt.Errorf("deliver to review channel: %w", err)
	}

	reply := "Your message has been submitted for review."
	if item.Kind.Media() {
		reply = "Your media has been submitted for review."
	}
	return Outcome{
		Status:    StatusPendingReview,
		Pseudonym: pseudonym,
		Reply:     reply,
	}, nil
}
