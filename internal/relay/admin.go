package relay

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/nightpost/relay/internal/models"
	"github.com/nightpost/relay/internal/store"
)

// Action is a pending admin-panel selection.
type Action string

const (
	ActionNone    Action = ""
	ActionInspect Action = "inspect"
	ActionAdjust  Action = "adjust_reputation"
	ActionBan     Action = "toggle_ban"
	ActionTrust   Action = "toggle_trust"
)

// ActionInfo describes one selectable panel entry.
type ActionInfo struct {
	Action Action `json:"action"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

var panelActions = []ActionInfo{
	{ActionInspect, "Look up a participant by number", "Enter the participant number (for example, #12345):"},
	{ActionAdjust, "Change reputation", "Enter the participant number and reputation change (for example, #12345 +5):"},
	{ActionBan, "Ban or unban", "Enter the participant number (for example, #12345):"},
	{ActionTrust, "Mark trusted or newcomer", "Enter the participant number (for example, #12345):"},
}

// AdminStore is the slice of the participant store the panel needs.
type AdminStore interface {
	ByPseudonym(n int) (*models.Participant, error)
	AdjustReputation(id string, delta int) error
	SetBanned(id string, banned bool) error
	SetTrusted(id string, trusted bool) error
}

// AdminPanel is the per-admin session machine behind the control surface.
// Selecting an action arms a pending session; the next text input from the
// admin is consumed by it, whether or not it parses. Only the configured
// admin identity can arm or consume sessions.
type AdminPanel struct {
	adminID string
	store   AdminStore

	mu      sync.Mutex
	pending map[string]Action
}

func NewAdminPanel(adminID string, store AdminStore) *AdminPanel {
	return &AdminPanel{
		adminID: adminID,
		store:   store,
		pending: make(map[string]Action),
	}
}

// Actions returns the panel menu.
func (a *AdminPanel) Actions() []ActionInfo {
	return panelActions
}

// Select arms a pending session for the sender. A selection by anyone other
// than the designated admin is ignored; re-selection silently discards any
// unconsumed session. The returned prompt tells the admin what to type next.
func (a *AdminPanel) Select(senderID string, action Action) (string, bool) {
	if senderID != a.adminID {
		return "", false
	}
	for _, info := range panelActions {
		if info.Action == action {
			a.mu.Lock()
			a.pending[senderID] = action
			a.mu.Unlock()
			return info.Prompt, true
		}
	}
	return "", false
}

// HandleInput consumes the sender's pending session with the given text and
// returns the reply. handled is false when the sender is not the admin or no
// session is pending; the caller should then route the text through normal
// moderation. Parse failures and unknown pseudonyms still consume the
// session.
func (a *AdminPanel) HandleInput(senderID, text string) (string, bool) {
	if senderID != a.adminID {
		return "", false
	}

	a.mu.Lock()
	action := a.pending[senderID]
	delete(a.pending, senderID)
	a.mu.Unlock()

	switch action {
	case ActionInspect:
		return a.inspect(text), true
	case ActionAdjust:
		return a.adjustReputation(text), true
	case ActionBan:
		return a.toggleBan(text), true
	case ActionTrust:
		return a.toggleTrust(text), true
	default:
		return "", false
	}
}

func (a *AdminPanel) inspect(text string) string {
	n, ok := parsePseudonym(text)
	if !ok {
		return "Invalid number format. Enter the number as #12345."
	}
	p, err := a.store.ByPseudonym(n)
	if err != nil {
		return lookupFailure(n, err)
	}
	return RenderProfile(p)
}

func (a *AdminPanel) adjustReputation(text string) string {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return "Use the command like this: #12345 +5"
	}
	n, ok := parsePseudonym(parts[0])
	if !ok {
		return "Use the command like this: #12345 +5"
	}
	delta, err := strconv.Atoi(parts[1])
	if err != nil {
		return "Use the command like this: #12345 +5"
	}

	p, err := a.store.ByPseudonym(n)
	if err != nil {
		return lookupFailure(n, err)
	}
	if err := a.store.AdjustReputation(p.ID, delta); err != nil {
		return lookupFailure(n, err)
	}
	return fmt.Sprintf("Reputation of participant #%d changed by %+d.", n, delta)
}

func (a *AdminPanel) toggleBan(text string) string {
	n, ok := parsePseudonym(text)
	if !ok {
		return "Invalid number format. Enter the number as #12345."
	}
	p, err := a.store.ByPseudonym(n)
	if err != nil {
		return lookupFailure(n, err)
	}
	if err := a.store.SetBanned(p.ID, !p.Banned); err != nil {
		return lookupFailure(n, err)
	}
	if p.Banned {
		return fmt.Sprintf("Participant #%d is now unbanned.", n)
	}
	return fmt.Sprintf("Participant #%d is now banned.", n)
}

func (a *AdminPanel) toggleTrust(text string) string {
	n, ok := parsePseudonym(text)
	if !ok {
		return "Invalid number format. Enter the number as #12345."
	}
	p, err := a.store.ByPseudonym(n)
	if err != nil {
		return lookupFailure(n, err)
	}
	if err := a.store.SetTrusted(p.ID, !p.Trusted); err != nil {
		return lookupFailure(n, err)
	}
	if p.Trusted {
		return fmt.Sprintf("Participant #%d is now a newcomer.", n)
	}
	return fmt.Sprintf("Participant #%d is now trusted.", n)
}

// parsePseudonym accepts "#12345" or bare "12345".
func parsePseudonym(token string) (int, bool) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "#")
	if token == "" {
		return 0, false
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func lookupFailure(n int, err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("No participant with number #%d.", n)
	}
	log.Printf("Error in admin lookup for #%d: %v", n, err)
	return "Internal error, check the server logs."
}
