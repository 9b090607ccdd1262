package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/service"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/httpx"
	"github.com/lecternhq/lectern/pkg/slogx"

	_ "github.com/lecternhq/lectern/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	authenticator *Authenticator

	TokenService      *service.TokenService
	UserService       *service.UserService
	ContentService    *service.ContentService
	ClassService      *service.ClassService
	DictionaryService *service.DictionaryService
	DocumentService   *service.DocumentService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	authenticator *Authenticator,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		store:         st,
		authenticator: authenticator,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerWhoami()
	r.registerAdminUsers()
	r.registerContent()
	r.registerClasses()
	r.registerDictionaries()
	r.registerDocuments()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Lectern Platform API
//	@version		0.1.0
//	@description	Education platform API: session tokens, entitlements, user administration,
//	@description	content review, classes, dictionary sets, and document imports.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP + username to slow brute force
	login := &LoginHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/refresh - moderate rate limit by IP
	refresh := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// PUT /auth/password - any live session, strict limit to slow guessing
	// of the current password
	r.Mux.Handle("PUT /v1/auth/password",
		httpx.Chain(&PasswordHandler{UserService: r.UserService},
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	imp := &ImpersonateHandler{TokenService: r.TokenService, UserService: r.UserService}

	// POST /auth/impersonate - root admin only, strict limit by user
	r.Mux.Handle("POST /v1/auth/impersonate",
		httpx.Chain(http.HandlerFunc(imp.HandleStart),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAdminImpersonate),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	// POST /auth/impersonate/exit - only meaningful inside an impersonation session
	r.Mux.Handle("POST /v1/auth/impersonate/exit",
		httpx.Chain(http.HandlerFunc(imp.HandleExit),
			r.authenticator.Middleware(),
			RequireImpersonating(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerWhoami() {
	r.Mux.Handle("GET /v1/whoami",
		httpx.Chain(&WhoamiHandler{},
			r.authenticator.Middleware(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdminUsers() {
	h := &AdminUsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/admin/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authenticator.Middleware(),
			RequireRootAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/admin/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authenticator.Middleware(),
			RequireRootAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/admin/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandlePatch),
			r.authenticator.Middleware(),
			RequireRootAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerContent() {
	h := &ContentHandler{ContentService: r.ContentService}

	// Reads need only a live session; writes need teacher tools and
	// approval needs the approver entitlement.
	r.Mux.Handle("GET /v1/content",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/content/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/content",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/content/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/content/{id}/approve",
		httpx.Chain(http.HandlerFunc(h.HandleApprove),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntApproverContent),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/content/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerClasses() {
	h := &ClassesHandler{ClassService: r.ClassService}

	r.Mux.Handle("GET /v1/classes",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/classes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/classes",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/classes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/classes/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerDictionaries() {
	h := &DictionariesHandler{DictionaryService: r.DictionaryService}

	r.Mux.Handle("GET /v1/dictsets",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/dictsets/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/dictsets",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/dictsets/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/dictsets/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntAppUse),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerDocuments() {
	h := &DocumentsHandler{DocumentService: r.DocumentService}

	r.Mux.Handle("GET /v1/documents",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/documents/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/documents/import",
		httpx.Chain(http.HandlerFunc(h.HandleImport),
			r.authenticator.Middleware(),
			RequireEntitlement(domain.EntTeacherTools),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
