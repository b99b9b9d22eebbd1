// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for blogs, posts, projects and
// comments. Each aggregate has a repository interface; the PostgreSQL
// implementations wrap a DBTX so the same code runs on a pool or inside a
// transaction. Collections are always loaded by explicit queries.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"portfolio/internal/models"
)

// ErrConflict is returned when a write violates a uniqueness constraint,
// e.g. a slug or category name that is already taken.
var ErrConflict = errors.New("unique constraint violated")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BlogRepo persists blogs. Slug comparisons are case-insensitive.
type BlogRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	FindBySlug(ctx context.Context, slug string) (*models.Blog, error)
	// SlugTaken reports whether another blog than exclude uses slug.
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, b *models.Blog) error
	// Update writes the blog's fields. The image columns are only replaced
	// when the blog carries image data.
	Update(ctx context.Context, b *models.Blog) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Image returns the stored image and its content type.
	Image(ctx context.Context, id uuid.UUID) (data []byte, contentType string, err error)
	List(ctx context.Context) ([]models.Blog, error)
	// ListWithPostStatus returns blogs that have at least one post in status.
	ListWithPostStatus(ctx context.Context, status models.ReadyStatus) ([]models.Blog, error)
	SearchByName(ctx context.Context, term string) ([]models.Blog, error)
}

// CategoryRepo persists blog categories. Names are unique per blog,
// compared case-insensitively.
type CategoryRepo interface {
	// ListByBlog returns the blog's categories ordered by name.
	ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByName(ctx context.Context, blogID uuid.UUID, name string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostRepo persists posts. Slugs are unique per blog.
type PostRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*models.Post, error)
	SlugTaken(ctx context.Context, blogID uuid.UUID, slug string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, p *models.Post) error
	// Update writes the post's fields. Image columns are only replaced when
	// the post carries image data.
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Image returns the stored image, thumbnail and content type.
	Image(ctx context.Context, id uuid.UUID) (data, thumb []byte, contentType string, err error)
	ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Post, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Post, error)
	// ReassignCategory moves every post of from to to and returns the count.
	ReassignCategory(ctx context.Context, from, to uuid.UUID) (int64, error)
	Search(ctx context.Context, term string, status models.ReadyStatus) ([]models.Post, error)
	ListByTag(ctx context.Context, blogID uuid.UUID, text string, status models.ReadyStatus) ([]models.Post, error)
	Recent(ctx context.Context, status models.ReadyStatus, limit int) ([]models.Post, error)
}

// TagRepo persists post tags.
type TagRepo interface {
	// ListByPost returns a post's tags in insertion order.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Tag, error)
	// ListByBlog returns the tags of every post in status, ordered by post
	// creation then insertion.
	ListByBlog(ctx context.Context, blogID uuid.UUID, status models.ReadyStatus) ([]models.Tag, error)
	Create(ctx context.Context, t *models.Tag) error
	DeleteByPost(ctx context.Context, postID uuid.UUID) (int64, error)
}

// CommentFilter narrows a comment listing. Nil fields do not filter.
type CommentFilter struct {
	PostID      *uuid.UUID
	Moderated   *bool
	SoftDeleted *bool
}

// CommentRepo persists comments.
type CommentRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns matching comments, oldest first.
	List(ctx context.Context, f CommentFilter) ([]models.Comment, error)
}

// ProjectRepo persists projects with their categories and images.
type ProjectRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns every project ordered by title.
	List(ctx context.Context) ([]models.Project, error)
	ListCategories(ctx context.Context, projectID uuid.UUID) ([]models.ProjectCategory, error)
	AddCategory(ctx context.Context, c *models.ProjectCategory) error
	DeleteCategories(ctx context.Context, projectID uuid.UUID) error
	ListImages(ctx context.Context, projectID uuid.UUID) ([]models.ProjectImage, error)
	AddImage(ctx context.Context, img *models.ProjectImage) error
	DeleteImages(ctx context.Context, projectID uuid.UUID) error
}

// UserRepo persists accounts.
type UserRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Blogs      BlogRepo
	Categories CategoryRepo
	Posts      PostRepo
	Tags       TagRepo
	Comments   CommentRepo
	Projects   ProjectRepo
	Users      UserRepo
}

// Transactor hands out repositories and runs units of work atomically.
type Transactor interface {
	// Repos returns repositories that run each call on its own.
	Repos() Repos
	// WithinTx runs fn with repositories bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Repos) error) error
}

// Store is the PostgreSQL Transactor.
type Store struct {
	db *sql.DB
}

// New creates a Store on the given pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound to the pool.
func (s *Store) Repos() Repos {
	return NewRepos(s.db)
}

// WithinTx runs fn inside a single database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NewRepos binds every PostgreSQL repository to q.
func NewRepos(q DBTX) Repos {
	return Repos{
		Blogs:      NewBlogStore(q),
		Categories: NewCategoryStore(q),
		Posts:      NewPostStore(q),
		Tags:       NewTagStore(q),
		Comments:   NewCommentStore(q),
		Projects:   NewProjectStore(q),
		Users:      NewUserStore(q),
	}
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface{ Scan(...any) error }

// wrapErr adds op context and maps unique violations to ErrConflict.
func wrapErr(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// likePattern escapes LIKE wildcards in term and wraps it for a contains match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// nilIfZero maps the zero UUID to NULL so "exclude nothing" never matches a row.
func nilIfZero(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
