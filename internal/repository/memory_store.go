package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

// MemoryStore keeps the dataset in process for STORE_DRIVER=memory. The
// repositories built on it mirror the PostgreSQL ones, including returning
// sql.ErrNoRows for missing rows. Reads hand out copies.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]memoryDocument
	versions  map[string][]models.DocumentVersion
	settings  map[string]models.UserAlertSettings
	users     map[string]models.User
}

type memoryDocument struct {
	sortOrder int
	doc       models.PolicyDocument
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]memoryDocument),
		versions:  make(map[string][]models.DocumentVersion),
		settings:  make(map[string]models.UserAlertSettings),
		users:     make(map[string]models.User),
	}
}

// Documents returns the document repository view of the store.
func (s *MemoryStore) Documents() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{store: s}
}

// Versions returns the version repository view of the store.
func (s *MemoryStore) Versions() *MemoryVersionRepository {
	return &MemoryVersionRepository{store: s}
}

// AlertSettings returns the settings repository view of the store.
func (s *MemoryStore) AlertSettings() *MemoryAlertSettingsRepository {
	return &MemoryAlertSettingsRepository{store: s}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

// MemoryDocumentRepository is the in-process DocumentRepository.
type MemoryDocumentRepository struct {
	store *MemoryStore
}

// List returns every document ordered by sort order then id.
func (r *MemoryDocumentRepository) List(ctx context.Context) ([]models.PolicyDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	entries := make([]memoryDocument, 0, len(r.store.documents))
	for _, entry := range r.store.documents {
		entries = append(entries, entry)
	}
	r.store.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].sortOrder != entries[j].sortOrder {
			return entries[i].sortOrder < entries[j].sortOrder
		}
		return entries[i].doc.ID < entries[j].doc.ID
	})
	docs := make([]models.PolicyDocument, len(entries))
	for i, entry := range entries {
		docs[i] = copyDocument(entry.doc)
	}
	return docs, nil
}

// FindByID returns a document or sql.ErrNoRows.
func (r *MemoryDocumentRepository) FindByID(ctx context.Context, id string) (*models.PolicyDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	entry, ok := r.store.documents[id]
	r.store.mu.RUnlock()
	if !ok {
		return nil, sql.ErrNoRows
	}
	doc := copyDocument(entry.doc)
	return &doc, nil
}

// Save upserts a document and its clauses.
func (r *MemoryDocumentRepository) Save(ctx context.Context, sortOrder int, doc models.PolicyDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := copyDocument(doc)
	for i := range stored.Clauses {
		stored.Clauses[i].DocumentID = doc.ID
		stored.Clauses[i].Ordinal = i
	}
	r.store.mu.Lock()
	r.store.documents[doc.ID] = memoryDocument{sortOrder: sortOrder, doc: stored}
	r.store.mu.Unlock()
	return nil
}

// MemoryVersionRepository is the in-process VersionRepository.
type MemoryVersionRepository struct {
	store *MemoryStore
}

// ListByDocument returns a document's versions, newest first.
func (r *MemoryVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	stored := r.store.versions[documentID]
	versions := make([]models.DocumentVersion, len(stored))
	for i, v := range stored {
		versions[i] = copyVersion(v)
	}
	r.store.mu.RUnlock()

	sort.SliceStable(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })
	return versions, nil
}

// Save upserts a version snapshot.
func (r *MemoryVersionRepository) Save(ctx context.Context, v models.DocumentVersion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	list := r.store.versions[v.DocumentID]
	for i := range list {
		if list[i].ID == v.ID {
			list[i] = copyVersion(v)
			return nil
		}
	}
	r.store.versions[v.DocumentID] = append(list, copyVersion(v))
	return nil
}

// MemoryAlertSettingsRepository is the in-process AlertSettingsRepository.
type MemoryAlertSettingsRepository struct {
	store *MemoryStore
}

// Get returns the saved settings for a user or sql.ErrNoRows.
func (r *MemoryAlertSettingsRepository) Get(ctx context.Context, userID string) (*models.UserAlertSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	settings, ok := r.store.settings[userID]
	r.store.mu.RUnlock()
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &settings, nil
}

// Upsert replaces the saved settings for a user.
func (r *MemoryAlertSettingsRepository) Upsert(ctx context.Context, settings *models.UserAlertSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	r.store.settings[settings.UserID] = *settings
	r.store.mu.Unlock()
	return nil
}

// MemoryUserRepository is the in-process UserRepository.
type MemoryUserRepository struct {
	store *MemoryStore
}

// FindByEmail returns a user by case-insensitive email or sql.ErrNoRows.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, user := range r.store.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID returns a user or sql.ErrNoRows.
func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	user, ok := r.store.users[id]
	r.store.mu.RUnlock()
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

// Save upserts an account.
func (r *MemoryUserRepository) Save(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	r.store.users[user.ID] = user
	r.store.mu.Unlock()
	return nil
}

func copyDocument(doc models.PolicyDocument) models.PolicyDocument {
	out := doc
	out.Clauses = make([]models.PolicyClause, len(doc.Clauses))
	copy(out.Clauses, doc.Clauses)
	return out
}

func copyVersion(v models.DocumentVersion) models.DocumentVersion {
	out := v
	out.Changes = make([]string, len(v.Changes))
	copy(out.Changes, v.Changes)
	return out
}
