package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dkarimli/backoffice/internal/model"
)

// CommentRepo provides CRUD operations on the `comments` table.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// CommentDetail is a comment joined with its creator for responses.
type CommentDetail struct {
	model.Comment
	Creator UserRef `json:"creator"`
}

const commentSelect = `SELECT c.id, c.content, c.related_to, c.related_id, c.created_by, c.created_at, c.updated_at,
       u.id, u.name, u.email
FROM comments c
JOIN users u ON u.id = c.created_by`

func scanComment(row interface{ Scan(...any) error }) (CommentDetail, error) {
	var (
		d         CommentDetail
		relatedID sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.Content, &d.RelatedTo, &relatedID, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
		&d.Creator.ID, &d.Creator.Name, &d.Creator.Email)
	if err != nil {
		return d, err
	}
	if relatedID.Valid {
		id := uint64(relatedID.Int64)
		d.RelatedID = &id
	}
	return d, nil
}

// Create inserts a comment and populates its ID.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	var relatedID any
	if c.RelatedID != nil {
		relatedID = *c.RelatedID
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (content, related_to, related_id, created_by) VALUES (?,?,?,?)",
		c.Content, c.RelatedTo, relatedID, c.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a comment with its creator.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (CommentDetail, error) {
	d, err := scanComment(r.DB.QueryRowContext(ctx, commentSelect+" WHERE c.id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrCommentNotFound
	}
	return d, err
}

// List returns comments newest first, optionally filtered by target
// tag and/or target id. Empty filter values are ignored.
func (r *CommentRepo) List(ctx context.Context, relatedTo string, relatedID uint64) ([]CommentDetail, error) {
	q := commentSelect
	args := make([]any, 0, 2)
	where := ""
	if relatedTo != "" {
		where = " WHERE c.related_to=?"
		args = append(args, relatedTo)
	}
	if relatedID != 0 {
		if where == "" {
			where = " WHERE c.related_id=?"
		} else {
			where += " AND c.related_id=?"
		}
		args = append(args, relatedID)
	}
	rows, err := r.DB.QueryContext(ctx, q+where+" ORDER BY c.created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]CommentDetail, 0)
	for rows.Next() {
		d, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, d)
	}
	return comments, rows.Err()
}

// Update changes the text content of a comment.
func (r *CommentRepo) Update(ctx context.Context, id uint64, content string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET content=?, updated_at=NOW() WHERE id=?", content, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a comment by id.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
