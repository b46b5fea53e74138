package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/TechTitans1233/FORUMweb-sub000/config"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/forum"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/handlers"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/images"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/middleware"
)

// Access levels of a route.
const (
	Public = "public"
	Authed = "auth"
	Admin  = "admin"
)

// Route describes one registered endpoint.
type Route struct {
	Method string
	Path   string
	Access string
}

type Deps struct {
	Config  *config.Config
	Service *forum.Service
	Tokens  *auth.Tokens
	Images  images.Store
}

type Server struct {
	cfg     *config.Config
	mux     *http.ServeMux
	handler http.Handler
	limiter *middleware.RateLimiter
	routes  []Route
}

func New(d Deps) *Server {
	cfg := d.Config
	s := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		limiter: middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}
	h := handlers.New(d.Service, d.Images, cfg.Server.CookieSecure)

	s.handle("POST", "/api/login", Public, h.Login)
	s.handle("POST", "/api/admin/login", Public, h.AdminLogin)
	s.handle("POST", "/api/logout", Public, h.Logout)
	s.handle("GET", "/api/verify", Authed, h.Verify)

	s.handle("POST", "/api/users", Public, h.CreateUser)
	s.handle("GET", "/api/users", Admin, h.ListUsers)
	s.handle("GET", "/api/users/{id}", Authed, h.GetUser)
	s.handle("PUT", "/api/users/{id}", Authed, h.UpdateUser)
	s.handle("DELETE", "/api/users/{id}", Authed, h.DeleteUser)
	s.handle("PUT", "/api/users/{id}/image", Authed, h.UpdateUserImage)

	s.handle("POST", "/api/publicacoes", Authed, h.CreatePublication)
	s.handle("GET", "/api/publicacoes", Public, h.ListPublications)
	s.handle("DELETE", "/api/publicacoes", Admin, h.DeletePublications)
	s.handle("GET", "/api/publicacoes/{id}", Public, h.GetPublication)
	s.handle("PUT", "/api/publicacoes/{id}", Authed, h.UpdatePublication)
	s.handle("DELETE", "/api/publicacoes/{id}", Authed, h.DeletePublication)
	s.handle("POST", "/api/publicacoes/{id}/curtir", Authed, h.Like)
	s.handle("DELETE", "/api/publicacoes/{id}/descurtir", Authed, h.Unlike)
	s.handle("GET", "/api/publicacoes/{id}/curtida", Authed, h.LikeStatus)
	s.handle("GET", "/api/publicacoes/{id}/comentarios", Public, h.ListComments)
	s.handle("POST", "/api/comentarios", Authed, h.CreateComment)

	s.handle("POST", "/api/amigos", Authed, h.Follow)
	s.handle("GET", "/api/amigos", Authed, h.Following)
	s.handle("DELETE", "/api/amigos/{id}", Authed, h.Unfollow)
	s.handle("GET", "/api/amigos/check/{id}", Authed, h.CheckFollowing)

	s.handle("POST", "/api/notificacoes", Authed, h.CreateNotification)
	s.handle("GET", "/api/notificacoes/{userId}", Authed, h.ListNotifications)
	s.handle("PUT", "/api/notificacoes/{id}/lida", Authed, h.MarkNotificationRead)

	s.handle("POST", "/api/images/upload", Authed, h.UploadImage)
	s.handle("GET", "/api/images/{name}", Public, h.ServeImage)

	s.handle("GET", "/health", Public, h.Health)

	fs := http.FileServer(http.Dir(cfg.Server.StaticDir))
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", handlers.ProtectStatic(fs)))
	s.routes = append(s.routes, Route{Method: "GET", Path: "/static/", Access: Public})
	s.handle("GET", "/", Public, handlers.Pages(cfg.Server.StaticDir))

	s.handler = middleware.Chain(s.mux,
		middleware.Logger,
		middleware.SecureHeaders,
		s.limiter.Middleware,
		middleware.Authenticate(d.Tokens, cfg.Server.CookieSecure),
	)
	return s
}

func (s *Server) handle(method, path, access string, h http.HandlerFunc) {
	var handler http.Handler = h
	switch access {
	case Authed:
		handler = middleware.RequireAuth(h)
	case Admin:
		handler = middleware.RequireAdmin(h)
	}
	s.mux.Handle(method+" "+path, handler)
	s.routes = append(s.routes, Route{Method: method, Path: path, Access: access})
}

// Handler is the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Routes lists the registered endpoints in registration order.
func (s *Server) Routes() []Route {
	return append([]Route(nil), s.routes...)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.limiter.Cleanup(cleanupCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "url", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
