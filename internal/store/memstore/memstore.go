// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memstore is an in-memory store.Transactor. It mirrors the
// PostgreSQL constraints that the services rely on (case-insensitive
// uniqueness, cascading deletes, categories that still hold posts cannot be
// deleted) and runs transactions against a snapshot that is swapped in on
// commit. It backs the service tests and local runs without a database.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

// ErrForeignKey mimics a foreign-key violation.
var ErrForeignKey = errors.New("foreign key violation")

type state struct {
	seq        int64
	order      map[uuid.UUID]int64
	users      map[uuid.UUID]models.User
	blogs      map[uuid.UUID]models.Blog
	categories map[uuid.UUID]models.Category
	posts      map[uuid.UUID]models.Post
	tags       []models.Tag
	comments   map[uuid.UUID]models.Comment
	projects   map[uuid.UUID]models.Project
	projCats   []models.ProjectCategory
	projImages []models.ProjectImage
}

func newState() *state {
	return &state{
		order:      make(map[uuid.UUID]int64),
		users:      make(map[uuid.UUID]models.User),
		blogs:      make(map[uuid.UUID]models.Blog),
		categories: make(map[uuid.UUID]models.Category),
		posts:      make(map[uuid.UUID]models.Post),
		comments:   make(map[uuid.UUID]models.Comment),
		projects:   make(map[uuid.UUID]models.Project),
	}
}

func (s *state) clone() *state {
	c := &state{
		seq:        s.seq,
		order:      make(map[uuid.UUID]int64, len(s.order)),
		users:      make(map[uuid.UUID]models.User, len(s.users)),
		blogs:      make(map[uuid.UUID]models.Blog, len(s.blogs)),
		categories: make(map[uuid.UUID]models.Category, len(s.categories)),
		posts:      make(map[uuid.UUID]models.Post, len(s.posts)),
		tags:       append([]models.Tag(nil), s.tags...),
		comments:   make(map[uuid.UUID]models.Comment, len(s.comments)),
		projects:   make(map[uuid.UUID]models.Project, len(s.projects)),
		projCats:   append([]models.ProjectCategory(nil), s.projCats...),
		projImages: append([]models.ProjectImage(nil), s.projImages...),
	}
	for k, v := range s.order {
		c.order[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.blogs {
		c.blogs[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.posts {
		c.posts[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	return c
}

// newID allocates an ID and remembers its insertion order.
func (s *state) newID() uuid.UUID {
	id := uuid.New()
	s.seq++
	s.order[id] = s.seq
	return id
}

var _ store.Transactor = (*Store)(nil)

// Store is the in-memory Transactor.
type Store struct {
	mu    sync.Mutex
	st    *state
	now   func() time.Time
	fails map[string]error
}

// New returns an empty store.
func New() *Store {
	return &Store{st: newState(), now: time.Now, fails: make(map[string]error)}
}

// SetClock replaces the clock used for generated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailOn makes every call of op return err until cleared with a nil err.
// Operation names are "<repo>.<method>", e.g. "categories.create".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, op)
		return
	}
	s.fails[op] = err
}

// Repos returns repositories that apply each call immediately.
func (s *Store) Repos() store.Repos {
	return newRepos(&db{store: s, locked: false})
}

// WithinTx runs fn against a snapshot. The snapshot replaces the live
// state only when fn returns nil. Transactions are serialized.
func (s *Store) WithinTx(ctx context.Context, fn func(store.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.st.clone()
	d := &db{store: s, locked: true, tx: snapshot}
	if err := fn(newRepos(d)); err != nil {
		return err
	}
	s.st = snapshot
	return nil
}

// Counts reports the number of rows per table, for assertions.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int{
		"users":              len(s.st.users),
		"blogs":              len(s.st.blogs),
		"categories":         len(s.st.categories),
		"posts":              len(s.st.posts),
		"tags":               len(s.st.tags),
		"comments":           len(s.st.comments),
		"projects":           len(s.st.projects),
		"project_categories": len(s.st.projCats),
		"project_images":     len(s.st.projImages),
	}
}

// db is the handle shared by one set of repositories. Outside a
// transaction every call takes the store lock; inside one the lock is
// already held by WithinTx.
type db struct {
	store  *Store
	locked bool
	tx     *state
}

// do runs fn under the store lock with the state the call should see.
func (d *db) do(op string, fn func(st *state, now time.Time) error) error {
	if !d.locked {
		d.store.mu.Lock()
		defer d.store.mu.Unlock()
	}
	if err := d.store.fails[op]; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	st := d.tx
	if st == nil {
		st = d.store.st
	}
	return fn(st, d.store.now().UTC())
}

func newRepos(d *db) store.Repos {
	return store.Repos{
		Blogs:      &blogRepo{d},
		Categories: &categoryRepo{d},
		Posts:      &postRepo{d},
		Tags:       &tagRepo{d},
		Comments:   &commentRepo{d},
		Projects:   &projectRepo{d},
		Users:      &userRepo{d},
	}
}

func conflict(op string) error {
	return fmt.Errorf("%s: %w", op, store.ErrConflict)
}

func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(term)))
}

// sortByOrder sorts items by insertion order, optionally newest first.
func sortByOrder[T any](st *state, items []T, id func(T) uuid.UUID, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := st.order[id(items[i])], st.order[id(items[j])]
		if desc {
			return a > b
		}
		return a < b
	})
}
