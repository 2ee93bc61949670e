package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue_backend/internal/feature/issue/domain/entity"
	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/optional"
)

func TestUpdateIssueReq_ToPatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     UpdateIssueReq
		wantErr bool
		check   func(t *testing.T, p entity.IssuePatch)
	}{
		{
			name: "empty",
			req:  UpdateIssueReq{},
			check: func(t *testing.T, p entity.IssuePatch) {
				assert.Nil(t, p.Title)
				assert.Nil(t, p.Status)
				assert.Nil(t, p.Priority)
				assert.False(t, p.Description.Set)
			},
		},
		{
			name: "status and cleared description",
			req:  UpdateIssueReq{Status: optional.Of("done"), Description: optional.Null[string]()},
			check: func(t *testing.T, p entity.IssuePatch) {
				require.NotNil(t, p.Status)
				assert.Equal(t, entity.StatusDone, *p.Status)
				assert.True(t, p.Description.Set)
				assert.Nil(t, p.Description.Ptr)
			},
		},
		{name: "null title", req: UpdateIssueReq{Title: optional.Null[string]()}, wantErr: true},
		{name: "null status", req: UpdateIssueReq{Status: optional.Null[string]()}, wantErr: true},
		{name: "null priority", req: UpdateIssueReq{Priority: optional.Null[string]()}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := tt.req.ToPatch()
			if tt.wantErr {
				assert.True(t, apperror.IsKind(err, apperror.KindValidation))
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestNewFilter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, entity.Filter{}, NewFilter(nil, nil))

	status, priority := "open", "high"
	f := NewFilter(&status, &priority)
	require.NotNil(t, f.Status)
	require.NotNil(t, f.Priority)
	assert.Equal(t, entity.StatusOpen, *f.Status)
	assert.Equal(t, entity.PriorityHigh, *f.Priority)
}
