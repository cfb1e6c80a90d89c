package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminID = "admin-1"

func newPanelFixture(t *testing.T) (*AdminPanel, *routerFixture) {
	t.Helper()
	f := newRouterFixture(t)
	return NewAdminPanel(adminID, f.participants), f
}

// seedParticipant creates a numbered participant and returns the pseudonym.
func seedParticipant(t *testing.T, f *routerFixture, id string) int {
	t.Helper()
	require.NoError(t, f.participants.Upsert(id, "Name "+id, id))
	n, err := f.participants.AssignPseudonymIfAbsent(id)
	require.NoError(t, err)
	return n
}

func TestSelectIgnoresNonAdmin(t *testing.T) {
	panel, _ := newPanelFixture(t)

	_, ok := panel.Select("someone-else", ActionInspect)
	assert.False(t, ok)

	// And their text is never intercepted.
	_, handled := panel.HandleInput("someone-else", "#1")
	assert.False(t, handled)
}

func TestSelectUnknownAction(t *testing.T) {
	panel, _ := newPanelFixture(t)

	_, ok := panel.Select(adminID, Action("demolish"))
	assert.False(t, ok)

	// Nothing was armed: the next input falls through.
	_, handled := panel.HandleInput(adminID, "#1")
	assert.False(t, handled)
}

func TestInputWithoutPendingSessionFallsThrough(t *testing.T) {
	panel, _ := newPanelFixture(t)

	_, handled := panel.HandleInput(adminID, "just a normal message")
	assert.False(t, handled)
}

func TestInspectHappyPath(t *testing.T) {
	panel, f := newPanelFixture(t)
	seedParticipant(t, f, "u1")
	require.NoError(t, f.participants.AdjustReputation("u1", 3))

	prompt, ok := panel.Select(adminID, ActionInspect)
	require.True(t, ok)
	assert.Contains(t, prompt, "#12345")

	reply, handled := panel.HandleInput(adminID, "#1")
	require.True(t, handled)
	assert.Contains(t, reply, "Number: #1")
	assert.Contains(t, reply, "ID: u1")
	assert.Contains(t, reply, "Name: Name u1")
	assert.Contains(t, reply, "Handle: @u1")
	assert.Contains(t, reply, "Reputation: 3")

	// Session is consumed: the next input falls through.
	_, handled = panel.HandleInput(adminID, "#1")
	assert.False(t, handled)
}

func TestInspectDistinguishesParseFailureFromMiss(t *testing.T) {
	panel, f := newPanelFixture(t)
	seedParticipant(t, f, "u1")

	_, ok := panel.Select(adminID, ActionInspect)
	require.True(t, ok)
	reply, handled := panel.HandleInput(adminID, "abc")
	require.True(t, handled)
	assert.Equal(t, "Invalid number format. Enter the number as #12345.", reply)

	_, ok = panel.Select(adminID, ActionInspect)
	require.True(t, ok)
	reply, handled = panel.HandleInput(adminID, "#99")
	require.True(t, handled)
	assert.Equal(t, "No participant with number #99.", reply)
}

func TestParseFailureStillConsumesSession(t *testing.T) {
	panel, _ := newPanelFixture(t)

	_, ok := panel.Select(adminID, ActionInspect)
	require.True(t, ok)
	_, handled := panel.HandleInput(adminID, "not a number")
	require.True(t, handled)

	_, handled = panel.HandleInput(adminID, "#1")
	assert.False(t, handled)
}

func TestReselectionDiscardsPendingAction(t *testing.T) {
	panel, f := newPanelFixture(t)
	n := seedParticipant(t, f, "u1")

	_, ok := panel.Select(adminID, ActionBan)
	require.True(t, ok)
	_, ok = panel.Select(adminID, ActionInspect)
	require.True(t, ok)

	reply, handled := panel.HandleInput(adminID, "#1")
	require.True(t, handled)
	assert.Contains(t, reply, "Number: #1")

	// The discarded ban never ran.
	p, err := f.participants.ByPseudonym(n)
	require.NoError(t, err)
	assert.False(t, p.Banned)
}

func TestAdjustReputationAppliesSignedDelta(t *testing.T) {
	panel, f := newPanelFixture(t)
	seedParticipant(t, f, "u1")
	require.NoError(t, f.participants.AdjustReputation("u1", 3))

	_, ok := panel.Select(adminID, ActionAdjust)
	require.True(t, ok)
	reply, handled := panel.HandleInput(adminID, "#1 +5")
	require.True(t, handled)
	assert.Equal(t, "Reputation of participant #1 changed by +5.", reply)

	p, err := f.participants.ByID("u1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Reputation)

	_, ok = panel.Select(adminID, ActionAdjust)
	require.True(t, ok)
	reply, handled = panel.HandleInput(adminID, "#1 -10")
	require.True(t, handled)
	assert.Equal(t, "Reputation of participant #1 changed by -10.", reply)

	p, err = f.participants.ByID("u1")
	require.NoError(t, err)
	assert.Equal(t, -2, p.Reputation) // no floor
}

func TestAdjustReputationMalformedInput(t *testing.T) {
	panel, f := newPanelFixture(t)
	seedParticipant(t, f, "u1")

	cases := []string{"#1", "#1 five", "one +5", "#1 +5 extra"}
	for _, input := range cases {
		_, ok := panel.Select(adminID, ActionAdjust)
		require.True(t, ok)
		reply, handled := panel.HandleInput(adminID, input)
		require.True(t, handled, "input %q", input)
		assert.Equal(t, "Use the command like this: #12345 +5", reply, "input %q", input)
	}

	// No mutation happened.
	p, err := f.participants.ByID("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Reputation)
}

func TestAdjustReputationUnknownPseudonym(t *testing.T) {
	panel, _ := newPanelFixture(t)

	_, ok := panel.Select(adminID, ActionAdjust)
	require.True(t, ok)
	reply, handled := panel.HandleInput(adminID, "#42 +5")
	require.True(t, handled)
	assert.Equal(t, "No participant with number #42.", reply)
}

func TestBanToggleFlipsTwice(t *testing.T) {
	panel, f := newPanelFixture(t)
	n := seedParticipant(t, f, "u1")

	_, ok := panel.Select(adminID, ActionBan)
	require.True(t, ok)
	reply, handled := panel.HandleInput(adminID, "#1")
	require.True(t, handled)
	assert.Equal(t, "Participant #1 is now banned.", reply)

	p, err := f.participants.ByPseudonym(n)
	require.NoError(t, err)
	assert.True(t, p.Banned)

	_, ok = panel.Select(adminID, ActionBan)
	require.True(t, ok)
	reply, handled = panel.HandleInput(adminID, "#1")
	require.True(t, handled)
	assert.Equal(t, "Participant #1 is now unbanned.", reply)

	p, err = f.participants.ByPseudonym(n)
	require.NoError(t, err)
	assert.False(t, p.Banned)
}

func TestTrustToggleWording(t *testing.T) {
	panel, f := newPanelFixture(t)
	seedParticipant(t, f, "u1")

	_, ok := panel.Select(adminID, ActionTrust)
	require.True(t, ok)
	reply, handled := panel.HandleInput(adminID, "#1")
	require.True(t, handled)
	assert.Equal(t, "Participant #1 is now trusted.", reply)

	_, ok = panel.Select(adminID, ActionTrust)
	require.True(t, ok)
	reply, handled = panel.HandleInput(adminID, "#1")
	require.True(t, handled)
	assert.Equal(t, "Participant #1 is now a newcomer.", reply)
}

func TestPanelMenuListsAllActions(t *testing.T) {
	panel, _ := newPanelFixture(t)

	actions := panel.Actions()
	require.Len(t, actions, 4)
	got := make(map[Action]bool)
	for _, a := range actions {
		got[a.Action] = true
		assert.NotEmpty(t, a.Label)
		assert.NotEmpty(t, a.Prompt)
	}
	assert.True(t, got[ActionInspect])
	assert.True(t, got[ActionAdjust])
	assert.True(t, got[ActionBan])
	assert.True(t, got[ActionTrust])
}
