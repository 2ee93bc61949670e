package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue_backend/internal/shared/optional"
)

func TestStatusAndPriority_Valid(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{"open", "in_progress", "done"} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("closed").Valid())
	assert.False(t, Status("").Valid())

	for _, p := range []Priority{"low", "medium", "high"} {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, Priority("urgent").Valid())
}

func TestNewIssue_WithDefaults(t *testing.T) {
	t.Parallel()

	n := NewIssue{Title: "Bug"}.WithDefaults()
	assert.Equal(t, StatusOpen, n.Status)
	assert.Equal(t, PriorityMedium, n.Priority)

	n = NewIssue{Title: "Bug", Status: StatusDone, Priority: PriorityHigh}.WithDefaults()
	assert.Equal(t, StatusDone, n.Status)
	assert.Equal(t, PriorityHigh, n.Priority)
}

// TestIssuePatch_ApplyTo は指定フィールドのみ変更され、updated_at が更新されることを検証します。
func TestIssuePatch_ApplyTo(t *testing.T) {
	t.Parallel()

	desc := "details"
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	done := StatusDone

	i := &Issue{ID: uuid.New(), Title: "Bug", Description: &desc, Status: StatusOpen, Priority: PriorityLow, CreatedAt: now.Add(-time.Hour)}
	IssuePatch{Status: &done}.ApplyTo(i, now)

	assert.Equal(t, StatusDone, i.Status)
	assert.Equal(t, "Bug", i.Title)
	assert.Equal(t, &desc, i.Description)
	assert.Equal(t, PriorityLow, i.Priority)
	require.NotNil(t, i.UpdatedAt)
	assert.Equal(t, now, *i.UpdatedAt)

	IssuePatch{Description: optional.Null[string]()}.ApplyTo(i, now.Add(time.Minute))
	assert.Nil(t, i.Description)
	assert.Equal(t, now.Add(time.Minute), *i.UpdatedAt)
}

// TestIssuePatch_ApplyTo_Monotonic は時計が戻ってもupdated_atが後退しないことを検証します。
func TestIssuePatch_ApplyTo_Monotonic(t *testing.T) {
	t.Parallel()

	prev := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	i := &Issue{Title: "Bug", UpdatedAt: &prev}

	IssuePatch{}.ApplyTo(i, prev.Add(-time.Second))
	assert.Equal(t, prev, *i.UpdatedAt)
}

func TestIssue_View(t *testing.T) {
	t.Parallel()

	i := &Issue{ID: uuid.New(), ProjectID: uuid.New(), Title: "Bug", Status: StatusOpen, Priority: PriorityMedium}
	v := i.View()
	assert.Equal(t, i.ID, v.ID)
	assert.Equal(t, i.ProjectID, v.ProjectID)
	assert.Nil(t, v.UpdatedAt)
}
