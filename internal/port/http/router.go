package http

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter wires the public, authenticated, and admin route groups.
// Authentication and authorization are layered independently: admin routes
// always pass through JWTAuth before RequireAdmin.
func NewRouter(userHandler *UserHandler, newsHandler *NewsHandler, validator TokenValidator, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestLogger(logger))

	auth := JWTAuth(validator, logger)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", userHandler.Signup)
		r.Post("/login", userHandler.Login)
		r.Post("/verify-email", userHandler.VerifyEmail)
		r.Post("/resend-verification", userHandler.ResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Post("/logout", userHandler.Logout)
			r.Get("/protected", userHandler.Protected)
			r.Get("/profile", userHandler.GetProfile)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Put("/change-password", userHandler.ChangePassword)

			r.Post("/bookmark/{newsID}", userHandler.ToggleBookmark)
			r.Post("/like/{newsID}", userHandler.ToggleLike)
			r.Get("/bookmarks", userHandler.BookmarkedNews)
			r.Get("/liked", userHandler.LikedNews)
			r.Post("/check-interactions", userHandler.CheckInteractions)
		})
	})

	r.Route("/api/news", func(r chi.Router) {
		r.Get("/", newsHandler.List)
		r.Get("/latest", newsHandler.Latest)
		r.Get("/category/{category}", newsHandler.GetByCategory)
		r.Get("/{id}", newsHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth, RequireAdmin())

			r.Post("/", newsHandler.Create)
			r.Put("/{id}", newsHandler.Update)
			r.Delete("/{id}", newsHandler.Delete)
			r.Get("/admin/stats", newsHandler.Stats)
		})
	})

	return r
}
