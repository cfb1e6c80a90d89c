package relay

import (
	"fmt"
	"strings"

	"github.com/nightpost/relay/internal/models"
)

// Header renders the pseudonymous byline shown above every published item.
func Header(pseudonym, reputation int) string {
	return fmt.Sprintf("#%d (reputation: %d):", pseudonym, reputation)
}

// RenderPublication produces the public-channel body for an item. Text is
// placed under the header; media items carry the header as their caption.
func RenderPublication(pseudonym, reputation int, item ContentItem) string {
	header := Header(pseudonym, reputation)
	if item.Kind == KindText {
		return header + "\n" + item.Text
	}
	return header
}

// RenderReviewRequest produces the review-channel record for an untrusted
// sender's item: pseudonym, raw identity, display metadata, reputation, and
// the text or media kind.
func RenderReviewRequest(p *models.Participant, item ContentItem) string {
	var b strings.Builder

	if item.Kind.Media() {
		b.WriteString("New media for review:\n")
	} else {
		b.WriteString("New message for review:\n")
	}

	if p.Pseudonym != nil {
		fmt.Fprintf(&b, "Number: #%d\n", *p.Pseudonym)
	}
	fmt.Fprintf(&b, "ID: %s\n", p.ID)
	if p.DisplayName != "" {
		fmt.Fprintf(&b, "Name: %s\n", p.DisplayName)
	}
	if p.Handle != "" {
		fmt.Fprintf(&b, "Handle: @%s\n", p.Handle)
	}
	fmt.Fprintf(&b, "Reputation: %d\n", p.Reputation)

	if item.Kind.Media() {
		fmt.Fprintf(&b, "Media type: %s", item.Kind)
	} else {
		fmt.Fprintf(&b, "Message:\n%s", item.Text)
	}
	return b.String()
}

// RenderProfile produces the inspect reply for the admin: the fields that
// are present, one per line.
func RenderProfile(p *models.Participant) string {
	var b strings.Builder
	if p.Pseudonym != nil {
		fmt.Fprintf(&b, "Number: #%d\n", *p.Pseudonym)
	}
	fmt.Fprintf(&b, "ID: %s\n", p.ID)
	if p.DisplayName != "" {
		fmt.Fprintf(&b, "Name: %s\n", p.DisplayName)
	}
	if p.Handle != "" {
		fmt.Fprintf(&b, "Handle: @%s\n", p.Handle)
	}
	fmt.Fprintf(&b, "Reputation: %d", p.Reputation)
	return b.String()
}
