package usecase

import "github.com/google/uuid"

// Scope はIssue一覧の対象範囲です。どちらか一方のみが設定されます。
type Scope struct {
	// ProjectID は認可済みの単一プロジェクト配下に限定します。
	ProjectID uuid.UUID
	// OwnerID は所有する全プロジェクト配下を対象にします。
	OwnerID uuid.UUID
}

// InProject scopes a listing to one project.
func InProject(projectID uuid.UUID) Scope {
	return Scope{ProjectID: projectID}
}

// OwnedBy scopes a listing to every project owned by ownerID.
func OwnedBy(ownerID uuid.UUID) Scope {
	return Scope{OwnerID: ownerID}
}

// IsProject reports whether the scope targets a single project.
func (s Scope) IsProject() bool {
	return s.ProjectID != uuid.Nil
}
