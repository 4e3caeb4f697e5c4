package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

type versionRow struct {
	models.DocumentVersion
	Changes pq.StringArray `db:"changes"`
}

// VersionRepository reads and writes document version history.
type VersionRepository struct {
	db *sqlx.DB
}

// NewVersionRepository creates a new instance of VersionRepository.
func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// ListByDocument returns a document's versions, newest first.
func (r *VersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	const query = `SELECT id, document_id, version, scan_date, risk_score, changes, clauses_added, clauses_removed, clauses_modified
FROM document_versions WHERE document_id = $1 ORDER BY version DESC`
	var rows []versionRow
	if err := r.db.SelectContext(ctx, &rows, query, documentID); err != nil {
		return nil, fmt.Errorf("list versions for %s: %w", documentID, err)
	}
	versions := make([]models.DocumentVersion, len(rows))
	for i, row := range rows {
		v := row.DocumentVersion
		v.Changes = []string(row.Changes)
		if v.Changes == nil {
			v.Changes = []string{}
		}
		versions[i] = v
	}
	return versions, nil
}

// Save upserts a version snapshot.
func (r *VersionRepository) Save(ctx context.Context, v models.DocumentVersion) error {
	const query = `INSERT INTO document_versions (id, document_id, version, scan_date, risk_score, changes, clauses_added, clauses_removed, clauses_modified)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET version = EXCLUDED.version, scan_date = EXCLUDED.scan_date, risk_score = EXCLUDED.risk_score,
changes = EXCLUDED.changes, clauses_added = EXCLUDED.clauses_added, clauses_removed = EXCLUDED.clauses_removed,
clauses_modified = EXCLUDED.clauses_modified`
	if _, err := r.db.ExecContext(ctx, query, v.ID, v.DocumentID, v.Version, v.ScanDate, v.RiskScore, pq.StringArray(v.Changes), v.ClausesAdded, v.ClausesRemoved, v.ClausesModified); err != nil {
		return fmt.Errorf("save version %s: %w", v.ID, err)
	}
	return nil
}
