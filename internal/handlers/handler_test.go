// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store; a test middleware turns the
// X-Test-Role header into a session.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"portfolio/internal/authz"
	"portfolio/internal/browse"
	"portfolio/internal/civility"
	"portfolio/internal/comments"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/publish"
	"portfolio/internal/queue"
	"portfolio/internal/session"
	"portfolio/internal/store/memstore"
)

type fakeSessions struct {
	created   []*session.Data
	destroyed int
	err       error
}

func (f *fakeSessions) Create(_ context.Context, _ http.ResponseWriter, data *session.Data) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, data)
	return "sid", nil
}

func (f *fakeSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	f.destroyed++
	return nil
}

type fakeContactQueue struct {
	payloads []queue.ContactEmailPayload
	err      error
}

func (f *fakeContactQueue) EnqueueContactEmail(_ context.Context, p queue.ContactEmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

type testServer struct {
	mem      *memstore.Store
	router   chi.Router
	sessions *fakeSessions
	contact  *fakeContactQueue
	userID   uuid.UUID
}

// testSession injects a session for the role named in X-Test-Role.
func (s *testServer) testSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role := r.Header.Get("X-Test-Role"); role != "" {
			r = r.WithContext(middleware.WithSession(r.Context(), &session.Data{
				UserID: s.userID, Email: "tester@example.com", Role: models.Role(role),
			}))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	az, err := authz.NewService(nil)
	require.NoError(t, err)

	mem := memstore.New()
	s := &testServer{
		mem:      mem,
		sessions: &fakeSessions{},
		contact:  &fakeContactQueue{},
		userID:   uuid.New(),
	}
	guard := publish.New(publish.Deps{Store: mem, Civility: civility.New([]string{"heck"})})
	public := NewPublic(browse.New(mem, nil, nil), az)
	admin := NewAdmin(guard)
	cm := NewComments(comments.NewManager(mem, nil, nil))
	auth := NewAuth(mem.Repos().Users, s.sessions)
	contact := NewContact(s.contact)

	r := chi.NewRouter()
	r.Use(s.testSession)
	r.Get("/health", NewHealth(nil).Check)
	r.Post("/api/auth/login", auth.Login)
	r.Post("/api/auth/logout", auth.Logout)
	r.Get("/api/auth/me", auth.Me)
	r.Post("/api/contact", contact.Submit)

	r.Get("/api/blogs", public.Blogs)
	r.Get("/api/blogs/{slug}", public.Blog)
	r.Get("/api/blogs/{slug}/posts/{postSlug}", public.Post)
	r.Get("/api/blogs/{slug}/image", public.BlogImage)
	r.Get("/api/posts/{id}/image", public.PostImage)
	r.Get("/api/projects/{slug}/images/{position}", public.ProjectImage)
	r.Get("/api/categories/{id}/posts", public.PostsByCategory)

	r.Post("/api/blogs", admin.BlogCreate)
	r.Put("/api/blogs/{id}", admin.BlogUpdate)
	r.Delete("/api/blogs/{id}", admin.BlogDelete)
	r.Delete("/api/blogs/{id}/categories/{categoryID}", admin.CategoryDelete)
	r.Post("/api/posts", admin.PostCreate)
	r.Put("/api/posts/{id}", admin.PostUpdate)
	r.Delete("/api/posts/{id}", admin.PostDelete)
	r.Post("/api/projects", admin.ProjectCreate)
	r.Delete("/api/projects/{id}", admin.ProjectDelete)

	r.Post("/api/posts/{id}/comments", cm.Add)
	r.Get("/api/comments", cm.List)
	r.Put("/api/comments/{id}", cm.Moderate)
	r.Post("/api/comments/{id}/soft-delete", cm.SoftDelete)
	r.Post("/api/comments/{id}/restore", cm.Restore)
	r.Delete("/api/comments/{id}", cm.HardDelete)

	s.router = r
	return s
}

// do sends a request with an optional JSON body and role.
func (s *testServer) do(t *testing.T, method, path string, body any, role models.Role) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", string(role))
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out), "body: %s", rr.Body.String())
	return out
}

func (s *testServer) createBlog(t *testing.T, name string) models.Blog {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/blogs", publish.BlogInput{
		Name: name, Description: "About " + name, Categories: []string{"Tutorials"}, Image: samplePNG(t),
	}, models.RoleAdministrator)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.Blog](t, rr)
}

func (s *testServer) createPost(t *testing.T, blogID uuid.UUID, title string, status models.ReadyStatus, image []byte) models.Post {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/posts", publish.PostInput{
		BlogID: blogID, Title: title, Abstract: "About " + title, Content: "# " + title, Status: status, Image: image,
	}, models.RoleAdministrator)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.Post](t, rr)
}
