package repository

import (
	"context"

	"tosdetective-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for analysis snapshots
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts an analysis snapshot
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			id, user_id, file_name, original_text, simplified_text,
			risky_clauses, summary, sequence, truncated, mock_generated
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.OriginalText,
		doc.SimplifiedText,
		doc.RiskyClauses,
		doc.Summary,
		doc.Sequence,
		doc.Truncated,
		doc.MockGenerated,
	).Scan(&doc.CreatedAt)

	return err
}

// GetByID retrieves an analysis snapshot by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, user_id, file_name, original_text, simplified_text,
			risky_clauses, summary, sequence, truncated, mock_generated,
			created_at
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.OriginalText,
		&doc.SimplifiedText,
		&doc.RiskyClauses,
		&doc.Summary,
		&doc.Sequence,
		&doc.Truncated,
		&doc.MockGenerated,
		&doc.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// GetLatest retrieves the most recent snapshot
func (r *DocumentRepository) GetLatest(ctx context.Context) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, user_id, file_name, original_text, simplified_text,
			risky_clauses, summary, sequence, truncated, mock_generated,
			created_at
		FROM documents
		ORDER BY sequence DESC, created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.OriginalText,
		&doc.SimplifiedText,
		&doc.RiskyClauses,
		&doc.Summary,
		&doc.Sequence,
		&doc.Truncated,
		&doc.MockGenerated,
		&doc.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ListRecent retrieves the most recent snapshots, newest first
func (r *DocumentRepository) ListRecent(ctx context.Context, limit int) ([]*models.Document, error) {
	query := `
		SELECT id, user_id, file_name, original_text, simplified_text,
			risky_clauses, summary, sequence, truncated, mock_generated,
			created_at
		FROM documents
		ORDER BY sequence DESC, created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.FileName,
			&doc.OriginalText,
			&doc.SimplifiedText,
			&doc.RiskyClauses,
			&doc.Summary,
			&doc.Sequence,
			&doc.Truncated,
			&doc.MockGenerated,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// PruneHistory deletes every snapshot beyond the newest keep entries
func (r *DocumentRepository) PruneHistory(ctx context.Context, keep int) error {
	query := `
		DELETE FROM documents
		WHERE id NOT IN (
			SELECT id FROM documents
			ORDER BY sequence DESC, created_at DESC
			LIMIT $1
		)`

	_, err := r.db.Exec(ctx, query, keep)
	return err
}

// Delete removes a snapshot
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
