package scope

import (
	"docbox-be/pkg/rag"
)

// Allowed reports whether a passage's access tags fall inside the caller's
// scope. The check is deliberately conservative: a passage missing the tags
// needed to prove it belongs to the scope is rejected.
func Allowed(s rag.Scope, tags rag.AccessTags) bool {
	if tags.OrganizationID != s.OrganizationID {
		return false
	}
	// Subject-bound passages are only visible inside a session scoped to
	// that same subject. Org-level material (policies, protocols) carries
	// no subject tag and is visible to any scope in the organization.
	if tags.SubjectID != nil {
		if s.SubjectID == nil || *tags.SubjectID != *s.SubjectID {
			return false
		}
	}
	if !classAllowed(s.RequesterRole, tags.DocumentClass) {
		return false
	}
	return true
}

// classAllowed maps requester roles onto the document classes they may read.
func classAllowed(role, class string) bool {
	switch role {
	case "clinician", "admin":
		return true
	case "staff":
		return class != "clinical_note"
	case "external":
		return class == "policy"
	default:
		return false
	}
}

// Filter returns only the passages the scope may see, preserving order.
// It never mutates the input slice.
func Filter(s rag.Scope, passages []rag.Passage) []rag.Passage {
	allowed := make([]rag.Passage, 0, len(passages))
	for _, p := range passages {
		if Allowed(s, p.Tags) {
			allowed = append(allowed, p)
		}
	}
	return allowed
}
