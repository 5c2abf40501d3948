package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"kartcore/auth"
	"kartcore/engine"
)

type Handlers struct {
	engine   *engine.Engine
	tokens   *auth.Tokens
	sessions *sessions.CookieStore
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine, tokens *auth.Tokens) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		tokens:   tokens,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	h.ensureDefaultAdmin(eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Route("/api", func(r chi.Router) {
		// Read APIs, no auth required
		r.Get("/health", h.apiHealthCheck)
		r.Get("/grid", h.apiGrid)
		r.Get("/cases", h.apiListCases)
		r.Get("/cases/{id}", h.apiGetCase)
		r.Get("/cases/{id}/queue", h.apiCaseQueue)
		r.Get("/karts", h.apiListKarts)
		r.Get("/karts/{id}/queue", h.apiKartQueue)
		r.Get("/orders", h.apiListOrders)
		r.Get("/orders/{id}", h.apiGetOrder)

		// Bearer-token user routes
		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)
			r.Post("/orders", h.apiPlaceOrder)
			r.Post("/orders/{id}/scan", h.apiScanOrder)
			r.Get("/me/orders", h.apiMyOrders)
			r.Get("/me/history", h.apiMyHistory)
			r.Get("/me/cart", h.apiMyCart)
			r.Post("/me/cart", h.apiAddToCart)
			r.Delete("/me/cart/{caseID}", h.apiRemoveFromCart)
		})

		// Admin session routes
		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/cases", h.apiCreateCase)
			r.Post("/cases/{id}/release", h.apiReleaseCase)
			r.Post("/karts", h.apiRegisterKart)
			r.Post("/karts/{id}/location", h.apiMoveKart)
			r.Post("/users", h.apiCreateUser)
			r.Post("/users/{id}/token", h.apiIssueToken)
			r.Post("/orders/{id}/received", h.apiKartReceived)
			r.Post("/orders/{id}/completed", h.apiKartCompleted)
			r.Post("/orders/{id}/redispatch", h.apiRedispatch)
			r.Post("/reconcile", h.apiReconcile)
		})
	})

	stopFn := func() {
		hub.Stop()
	}

	return r, stopFn
}
