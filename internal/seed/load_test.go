package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

type recordingSink struct {
	docs     []string
	orders   []int
	versions []string
	users    []models.User
	failOn   string
}

func (r *recordingSink) saveDocument(_ context.Context, sortOrder int, doc models.PolicyDocument) error {
	if doc.ID == r.failOn {
		return errors.New("boom")
	}
	r.docs = append(r.docs, doc.ID)
	r.orders = append(r.orders, sortOrder)
	return nil
}

type docSink struct{ *recordingSink }

func (s docSink) Save(ctx context.Context, sortOrder int, doc models.PolicyDocument) error {
	return s.saveDocument(ctx, sortOrder, doc)
}

type versionSink struct{ *recordingSink }

func (s versionSink) Save(_ context.Context, v models.DocumentVersion) error {
	s.versions = append(s.versions, v.ID)
	return nil
}

type userSink struct{ *recordingSink }

func (s userSink) Save(_ context.Context, user models.User) error {
	s.users = append(s.users, user)
	return nil
}

func TestLoadWritesDataset(t *testing.T) {
	sink := &recordingSink{}
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	err := Load(context.Background(), Targets{Documents: docSink{sink}, Versions: versionSink{sink}, Users: userSink{sink}},
		models.User{ID: "user-demo", Email: "demo@policydigest.app"}, now)
	require.NoError(t, err)

	assert.Equal(t, []string{"doc-1", "doc-2", "doc-3", "doc-4"}, sink.docs)
	assert.Equal(t, []int{0, 1, 2, 3}, sink.orders)
	assert.Equal(t, []string{"ver-1", "ver-2", "ver-3"}, sink.versions)
	require.Len(t, sink.users, 1)
	assert.Equal(t, now, sink.users[0].CreatedAt)
}

func TestLoadStopsOnFailure(t *testing.T) {
	sink := &recordingSink{failOn: "doc-2"}

	err := Load(context.Background(), Targets{Documents: docSink{sink}, Versions: versionSink{sink}}, models.User{}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc-2")
	assert.Empty(t, sink.versions)
}
