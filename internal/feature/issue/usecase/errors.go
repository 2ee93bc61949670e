// Package usecase implements the business logic for the issue feature.
package usecase

import "issue_backend/internal/shared/apperror"

var (
	// ErrIssueNotFound is returned when no issue exists for the given ID.
	ErrIssueNotFound = apperror.NotFound(apperror.CodeIssueNotFound, "Issue not found")

	// ErrProjectNotFound is returned when creating an issue under a project that no longer exists.
	ErrProjectNotFound = apperror.NotFound(apperror.CodeProjectNotFound, "Project not found")
)
