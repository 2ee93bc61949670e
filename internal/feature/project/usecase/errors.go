// Package usecase implements the business logic for the project feature.
package usecase

import "issue_backend/internal/shared/apperror"

// ErrProjectNotFound is returned when no project exists for the given ID.
var ErrProjectNotFound = apperror.NotFound(apperror.CodeProjectNotFound, "Project not found")
