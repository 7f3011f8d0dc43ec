package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/edubrasil/internal/models"
	"github.com/desertthunder/edubrasil/internal/shared"
)

// UploadRepository implements models.Repository[*models.Upload] and records the upload history.
type UploadRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Upload] = (*UploadRepository)(nil)

// NewUploadRepository creates a new UploadRepository with the given database connection
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts a new [models.Upload] with a generated ID
func (r *UploadRepository) Create(upload *models.Upload) error {
	return r.Record(context.Background(), upload)
}

// Record inserts upload, generating its ID.
func (r *UploadRepository) Record(ctx context.Context, upload *models.Upload) error {
	upload.SetID(shared.GenerateID())
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO uploads (id, uri, filename, media_type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		upload.ID(),
		upload.URI(),
		upload.Filename(),
		upload.MediaType(),
		upload.Size(),
		upload.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}
	return nil
}

// MarkRevoked stamps revoked_at on the upload with the given reference.
func (r *UploadRepository) MarkRevoked(ctx context.Context, uri string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE uploads SET revoked_at = ? WHERE uri = ? AND revoked_at IS NULL", time.Now().UTC(), uri)
	if err != nil {
		return fmt.Errorf("failed to mark upload revoked: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("upload not found: %s", uri)
	}
	return nil
}

// Get retrieves an upload by ID
func (r *UploadRepository) Get(id string) (*models.Upload, error) {
	query := `
		SELECT id, uri, filename, media_type, size, created_at, revoked_at
		FROM uploads
		WHERE id = ?
	`
	return scanUpload(r.db.QueryRow(query, id))
}

// GetByURI retrieves an upload by its blob reference
func (r *UploadRepository) GetByURI(uri string) (*models.Upload, error) {
	query := `
		SELECT id, uri, filename, media_type, size, created_at, revoked_at
		FROM uploads
		WHERE uri = ?
	`
	return scanUpload(r.db.QueryRow(query, uri))
}

// List returns the most recent uploads, newest first. A limit of zero or less returns all.
func (r *UploadRepository) List(limit int) ([]*models.Upload, error) {
	query := `
		SELECT id, uri, filename, media_type, size, created_at, revoked_at
		FROM uploads
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*models.Upload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}

// Delete removes an upload record by ID
func (r *UploadRepository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM uploads WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("upload not found: %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(row scanner) (*models.Upload, error) {
	var (
		id, uri, filename, mediaType string
		size                         int64
		createdAt                    time.Time
		revokedAt                    sql.NullTime
	)

	err := row.Scan(&id, &uri, &filename, &mediaType, &size, &createdAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan upload: %w", err)
	}

	var revoked *time.Time
	if revokedAt.Valid {
		revoked = &revokedAt.Time
	}
	return models.RestoreUpload(id, uri, filename, mediaType, size, createdAt, revoked), nil
}
