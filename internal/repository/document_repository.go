package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

const documentColumns = `id, title, url, content, risk_score, version, scan_date, status`

const clauseColumns = `document_id, id, ordinal, text, risk_level, category, description, position_start, position_end`

type clauseRow struct {
	models.PolicyClause
	PositionStart int `db:"position_start"`
	PositionEnd   int `db:"position_end"`
}

func (r clauseRow) toModel() models.PolicyClause {
	clause := r.PolicyClause
	clause.Position = models.ClausePosition{Start: r.PositionStart, End: r.PositionEnd}
	return clause
}

// DocumentRepository persists analysed documents and their clauses in PostgreSQL.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// List returns every document in dataset order with its clauses attached.
func (r *DocumentRepository) List(ctx context.Context) ([]models.PolicyDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM policy_documents ORDER BY sort_order, id`
	var docs []models.PolicyDocument
	if err := r.db.SelectContext(ctx, &docs, query); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return []models.PolicyDocument{}, nil
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	clauses, err := r.clausesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Clauses = clauses[docs[i].ID]
		if docs[i].Clauses == nil {
			docs[i].Clauses = []models.PolicyClause{}
		}
	}
	return docs, nil
}

// FindByID returns a document with its clauses or sql.ErrNoRows.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.PolicyDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM policy_documents WHERE id = $1`
	var doc models.PolicyDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	clauses, err := r.clausesFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	doc.Clauses = clauses[id]
	if doc.Clauses == nil {
		doc.Clauses = []models.PolicyClause{}
	}
	return &doc, nil
}

func (r *DocumentRepository) clausesFor(ctx context.Context, documentIDs []string) (map[string][]models.PolicyClause, error) {
	query := `SELECT ` + clauseColumns + ` FROM policy_clauses WHERE document_id = ANY($1) ORDER BY document_id, ordinal`
	var rows []clauseRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(documentIDs)); err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	out := make(map[string][]models.PolicyClause, len(documentIDs))
	for _, row := range rows {
		out[row.DocumentID] = append(out[row.DocumentID], row.toModel())
	}
	return out, nil
}

// Save upserts a document and replaces its clauses in one transaction.
// sortOrder fixes the document's position in List.
func (r *DocumentRepository) Save(ctx context.Context, sortOrder int, doc models.PolicyDocument) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save document: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsert = `INSERT INTO policy_documents (id, sort_order, title, url, content, risk_score, version, scan_date, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET sort_order = EXCLUDED.sort_order, title = EXCLUDED.title, url = EXCLUDED.url,
content = EXCLUDED.content, risk_score = EXCLUDED.risk_score, version = EXCLUDED.version,
scan_date = EXCLUDED.scan_date, status = EXCLUDED.status`
	if _, err = tx.ExecContext(ctx, upsert, doc.ID, sortOrder, doc.Title, doc.URL, doc.Content, doc.RiskScore, doc.Version, doc.ScanDate, doc.Status); err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM policy_clauses WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("clear clauses for %s: %w", doc.ID, err)
	}

	const insertClause = `INSERT INTO policy_clauses (` + clauseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, clause := range doc.Clauses {
		if _, err = tx.ExecContext(ctx, insertClause, doc.ID, clause.ID, i, clause.Text, clause.RiskLevel, clause.Category, clause.Description, clause.Position.Start, clause.Position.End); err != nil {
			return fmt.Errorf("insert clause %s for %s: %w", clause.ID, doc.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save document: %w", err)
	}
	return nil
}
