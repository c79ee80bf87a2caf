package feedback

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	item, err := NewItem(uuid.New(), uuid.New(), "Dark mode", "please", "feature_request")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, item.Status)
	assert.Equal(t, 0, item.VoteCount)

	_, err = NewItem(uuid.Nil, uuid.New(), "Dark mode", "", "")
	assert.ErrorIs(t, err, ErrInvalidProjectID)

	_, err = NewItem(uuid.New(), uuid.New(), "", "", "")
	assert.ErrorIs(t, err, ErrInvalidTitle)
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusApproved, StatusInProgress, true},
		{StatusInProgress, StatusTestflight, true},
		{StatusTestflight, StatusCompleted, true},
		{StatusPending, StatusCompleted, true},
		{StatusApproved, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusRejected, StatusApproved, false},
		{StatusInProgress, StatusRejected, true},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestItem_SetLink_WriteOnce(t *testing.T) {
	item, err := NewItem(uuid.New(), uuid.New(), "T", "", "bug_report")
	require.NoError(t, err)

	err = item.SetLink("CLICKUP", TrackerLink{URL: "https://app.clickup.com/t/1", ExternalID: "1"})
	require.NoError(t, err)

	link, ok := item.Link("CLICKUP")
	require.True(t, ok)
	assert.Equal(t, "1", link.ExternalID)

	err = item.SetLink("CLICKUP", TrackerLink{URL: "https://app.clickup.com/t/2", ExternalID: "2"})
	assert.ErrorIs(t, err, ErrAlreadyLinked)

	// Other providers are unaffected
	_, ok = item.Link("GITHUB")
	assert.False(t, ok)
	assert.NoError(t, item.SetLink("GITHUB", TrackerLink{URL: "https://github.com/x/1", ExternalID: "1"}))
}

func TestItem_ChangeStatus(t *testing.T) {
	item, err := NewItem(uuid.New(), uuid.New(), "T", "", "")
	require.NoError(t, err)

	require.NoError(t, item.ChangeStatus(StatusApproved))
	assert.Equal(t, StatusApproved, item.Status)

	err = item.ChangeStatus(StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = item.ChangeStatus(Status("BOGUS"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestNewComment(t *testing.T) {
	_, err := NewComment(uuid.New(), uuid.New(), "", false)
	assert.ErrorIs(t, err, ErrCommentBodyMissing)

	c, err := NewComment(uuid.New(), uuid.New(), "hello", true)
	require.NoError(t, err)
	assert.True(t, c.IsAdmin)
}
