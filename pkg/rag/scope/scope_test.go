package scope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"docbox-be/pkg/rag"
)

func TestAllowedRejectsOtherSubject(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()
	org := uuid.New()

	sc := rag.Scope{SubjectID: &s1, OrganizationID: org, RequesterRole: "clinician"}

	assert.True(t, Allowed(sc, rag.AccessTags{SubjectID: &s1, OrganizationID: org, DocumentClass: "clinical_note"}))
	assert.False(t, Allowed(sc, rag.AccessTags{SubjectID: &s2, OrganizationID: org, DocumentClass: "clinical_note"}))
}

func TestAllowedRejectsOtherOrganization(t *testing.T) {
	org := uuid.New()
	other := uuid.New()

	sc := rag.Scope{OrganizationID: org, RequesterRole: "clinician"}

	assert.False(t, Allowed(sc, rag.AccessTags{OrganizationID: other, DocumentClass: "policy"}))
}

func TestAllowedSubjectTaggedNeedsSubjectScope(t *testing.T) {
	subject := uuid.New()
	org := uuid.New()

	orgOnly := rag.Scope{OrganizationID: org, RequesterRole: "clinician"}

	assert.False(t, Allowed(orgOnly, rag.AccessTags{SubjectID: &subject, OrganizationID: org, DocumentClass: "clinical_note"}))
	assert.True(t, Allowed(orgOnly, rag.AccessTags{OrganizationID: org, DocumentClass: "policy"}))
}

func TestAllowedRoleDocumentClass(t *testing.T) {
	org := uuid.New()

	cases := []struct {
		role  string
		class string
		want  bool
	}{
		{"clinician", "clinical_note", true},
		{"admin", "clinical_note", true},
		{"staff", "clinical_note", false},
		{"staff", "protocol", true},
		{"external", "policy", true},
		{"external", "protocol", false},
		{"", "policy", false},
	}
	for _, tc := range cases {
		sc := rag.Scope{OrganizationID: org, RequesterRole: tc.role}
		got := Allowed(sc, rag.AccessTags{OrganizationID: org, DocumentClass: tc.class})
		assert.Equal(t, tc.want, got, "role=%s class=%s", tc.role, tc.class)
	}
}

func TestFilterNoCrossContamination(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()
	org := uuid.New()

	sc := rag.Scope{SubjectID: &s1, OrganizationID: org, RequesterRole: "clinician"}

	passages := []rag.Passage{
		{ID: uuid.New(), Text: "s1 note", Tags: rag.AccessTags{SubjectID: &s1, OrganizationID: org, DocumentClass: "clinical_note"}},
		{ID: uuid.New(), Text: "s2 note", Tags: rag.AccessTags{SubjectID: &s2, OrganizationID: org, DocumentClass: "clinical_note"}},
		{ID: uuid.New(), Text: "org policy", Tags: rag.AccessTags{OrganizationID: org, DocumentClass: "policy"}},
	}

	got := Filter(sc, passages)

	assert.Len(t, got, 2)
	for _, p := range got {
		assert.NotEqual(t, "s2 note", p.Text)
	}
	// input untouched
	assert.Len(t, passages, 3)
}

func TestFilterEmptyInput(t *testing.T) {
	sc := rag.Scope{OrganizationID: uuid.New(), RequesterRole: "clinician"}
	assert.Empty(t, Filter(sc, nil))
}
