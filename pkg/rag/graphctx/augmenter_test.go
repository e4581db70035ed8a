package graphctx

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"docbox-be/internal/pkg/logger"
	"docbox-be/pkg/rag"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }
func (noopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (noopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

type stubStore struct {
	edges map[uuid.UUID][]Edge
	err   error
}

func (s *stubStore) Neighbors(ctx context.Context, nodeID uuid.UUID) ([]Edge, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.edges[nodeID], nil
}

func TestExpandRendersEdges(t *testing.T) {
	org := uuid.New()
	subject := uuid.New()
	doctor := uuid.New()

	store := &stubStore{edges: map[uuid.UUID][]Edge{
		subject: {
			{ID: uuid.New(), FromID: doctor, FromName: "Dr. Chen", ToID: subject, ToName: "Subject", Relation: "TREATS", OrganizationID: org},
		},
	}}
	a := NewAugmenter(store, noopLogger{})

	got := a.Expand(context.Background(), subject, rag.Scope{SubjectID: &subject, OrganizationID: org, RequesterRole: "clinician"})

	assert.Len(t, got, 1)
	assert.Equal(t, "Dr. Chen is related to Subject via relation TREATS", got[0].Text)
	assert.Equal(t, rag.SourceGraph, got[0].SourceType)
	assert.Equal(t, &subject, got[0].Tags.SubjectID)
}

func TestExpandTerminatesOnCycles(t *testing.T) {
	org := uuid.New()
	a1 := uuid.New()
	b1 := uuid.New()
	edgeAB := Edge{ID: uuid.New(), FromID: a1, FromName: "A", ToID: b1, ToName: "B", Relation: "REFERRED", OrganizationID: org}
	edgeBA := Edge{ID: uuid.New(), FromID: b1, FromName: "B", ToID: a1, ToName: "A", Relation: "REFERRED", OrganizationID: org}

	store := &stubStore{edges: map[uuid.UUID][]Edge{
		a1: {edgeAB},
		b1: {edgeBA},
	}}
	aug := NewAugmenter(store, noopLogger{})

	got := aug.Expand(context.Background(), a1, rag.Scope{SubjectID: &a1, OrganizationID: org, RequesterRole: "clinician"})

	assert.Len(t, got, 2)
}

func TestExpandDeterministicOrdering(t *testing.T) {
	org := uuid.New()
	subject := uuid.New()

	store := &stubStore{edges: map[uuid.UUID][]Edge{
		subject: {
			{ID: uuid.New(), FromName: "Zed", ToName: "Subject", Relation: "WORKS_AT", OrganizationID: org},
			{ID: uuid.New(), FromName: "Amy", ToName: "Subject", Relation: "TREATS", OrganizationID: org},
		},
	}}
	a := NewAugmenter(store, noopLogger{})

	got := a.Expand(context.Background(), subject, rag.Scope{SubjectID: &subject, OrganizationID: org, RequesterRole: "clinician"})

	assert.Len(t, got, 2)
	assert.Contains(t, got[0].Text, "TREATS")
	assert.Contains(t, got[1].Text, "WORKS_AT")
}

func TestExpandSkipsOtherOrganizations(t *testing.T) {
	org := uuid.New()
	other := uuid.New()
	subject := uuid.New()

	store := &stubStore{edges: map[uuid.UUID][]Edge{
		subject: {
			{ID: uuid.New(), FromName: "A", ToName: "B", Relation: "TREATS", OrganizationID: other},
		},
	}}
	a := NewAugmenter(store, noopLogger{})

	got := a.Expand(context.Background(), subject, rag.Scope{SubjectID: &subject, OrganizationID: org, RequesterRole: "clinician"})

	assert.Empty(t, got)
}

func TestExpandStoreFailureDegrades(t *testing.T) {
	a := NewAugmenter(&stubStore{err: errors.New("neo down")}, noopLogger{})

	got := a.Expand(context.Background(), uuid.New(), rag.Scope{OrganizationID: uuid.New()})

	assert.Empty(t, got)
}
