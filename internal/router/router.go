// Package router sets up all HTTP routes and middleware chains of the
// portfolio API. Reads are public; authoring, moderation and commenting
// each sit behind a permission check.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"portfolio/internal/authz"
	"portfolio/internal/handlers"
	"portfolio/internal/middleware"
)

// Deps is everything the router mounts.
type Deps struct {
	Sessions middleware.SessionLoader
	Authz    middleware.Authorizer
	Logger   *zap.Logger
	// SecureCookies marks the CSRF cookie TLS-only.
	SecureCookies bool
	// CommentLimiter throttles comment submissions per signed-in user. It
	// runs after the permission check. Optional.
	CommentLimiter *middleware.RateLimiter
	// ContactLimiter throttles the contact form per client. Optional.
	ContactLimiter *middleware.RateLimiter

	Health   *handlers.Health
	Auth     *handlers.Auth
	Public   *handlers.Public
	Admin    *handlers.Admin
	Comments *handlers.Comments
	Contact  *handlers.Contact
}

// New creates and returns the configured Chi router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.SecureHeaders)

	// Health check: no session, no CSRF.
	r.Get("/health", d.Health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions, d.Logger))
		r.Use(middleware.NewCSRF(d.SecureCookies).Handler)

		r.Get("/csrf", d.Auth.CSRFToken)
		r.Post("/auth/login", d.Auth.Login)
		r.Post("/auth/logout", d.Auth.Logout)
		r.With(middleware.RequireAuth).Get("/auth/me", d.Auth.Me)

		r.With(limit(d.ContactLimiter)).Post("/contact", d.Contact.Submit)

		can := func(obj, act string) func(http.Handler) http.Handler {
			return middleware.RequirePermission(d.Authz, obj, act)
		}

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", d.Public.Blogs)
			r.Get("/search", d.Public.SearchBlogs)
			r.Get("/{slug}", d.Public.Blog)
			r.Get("/{slug}/image", d.Public.BlogImage)
			r.Get("/{slug}/tags", d.Public.BlogTags)
			r.Get("/{slug}/tags/{tag}/posts", d.Public.PostsByTag)
			r.Get("/{slug}/posts/{postSlug}", d.Public.Post)

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjBlogs, authz.ActWrite))
				r.Post("/", d.Admin.BlogCreate)
				r.Put("/{id}", d.Admin.BlogUpdate)
				r.Delete("/{id}", d.Admin.BlogDelete)
			})
			r.With(can(authz.ObjCategories, authz.ActWrite)).
				Delete("/{id}/categories/{categoryID}", d.Admin.CategoryDelete)
		})

		r.Get("/categories/{id}/posts", d.Public.PostsByCategory)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/recent", d.Public.RecentPosts)
			r.Get("/search", d.Public.SearchPosts)
			r.Get("/{id}/image", d.Public.PostImage)

			r.With(can(authz.ObjComments, authz.ActCreate), limit(d.CommentLimiter)).
				Post("/{id}/comments", d.Comments.Add)

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjPosts, authz.ActWrite))
				r.Post("/", d.Admin.PostCreate)
				r.Put("/{id}", d.Admin.PostUpdate)
				r.Delete("/{id}", d.Admin.PostDelete)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", d.Public.Projects)
			r.Get("/{slug}", d.Public.Project)
			r.Get("/{slug}/images/{position}", d.Public.ProjectImage)

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjProjects, authz.ActWrite))
				r.Post("/", d.Admin.ProjectCreate)
				r.Put("/{id}", d.Admin.ProjectUpdate)
				r.Delete("/{id}", d.Admin.ProjectDelete)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjComments, authz.ActModerate))
				r.Get("/", d.Comments.List)
				r.Put("/{id}", d.Comments.Moderate)
				r.Post("/{id}/soft-delete", d.Comments.SoftDelete)
				r.Post("/{id}/restore", d.Comments.Restore)
			})
			r.With(can(authz.ObjComments, authz.ActDelete)).Delete("/{id}", d.Comments.HardDelete)
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}
