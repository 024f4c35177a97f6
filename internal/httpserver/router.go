package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"gossip/internal/config"
	"gossip/internal/security"
	"gossip/internal/service"
	"gossip/internal/store"
	"gossip/internal/ws"

	_ "gossip/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter constructs the main HTTP router and wires routes, services,
// and the websocket endpoint.
func NewRouter(
	cfg *config.Config,
	stores *store.Stores,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	totpSvc *security.TOTPService,
	encryptor *security.Encryptor,
	log *zap.SugaredLogger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	authSvc := service.NewAuthService(stores.Users, tokenSvc, passwordHasher, totpSvc)
	userSvc := service.NewUserService(stores.Users)
	groupSvc := service.NewGroupService(stores.Groups, stores.Users)
	msgSvc := service.NewMessageService(stores.Messages, stores.Users, encryptor)

	// Real-time core
	registry := ws.NewRegistry()
	presence := ws.NewNotifier(registry, stores.Users, log)
	router := ws.NewRouter(registry, presence, stores.Users, stores.Groups, stores.Messages, encryptor, log)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Public routes
	r.Post("/signup", handleSignup(authSvc))
	r.Post("/login", handleLogin(authSvc))
	r.Post("/otp/generate", handleOTPGenerate(authSvc))
	r.Post("/otp/verify", handleOTPVerify(authSvc))

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(tokenSvc, stores.Users))

		r.Get("/get/allusers", handleListUsers(userSvc))
		r.Post("/getUserInfo", handleGetUserInfo(userSvc))

		r.Post("/group", handleCreateGroup(groupSvc))
		r.Get("/groups", handleListGroups(groupSvc))
		r.Post("/group/info", handleGroupInfo(groupSvc))
		r.Get("/group/info/{groupID}", handleGroupInfoByID(groupSvc))
		r.Get("/group/message/{groupID}", handleGroupHistory(msgSvc))
		r.Post("/group/join", handleJoinGroup(groupSvc))
		r.Post("/group/update/{groupID}", handleUpdateGroup(groupSvc))
		r.Delete("/group/delete/{groupID}", handleDeleteGroup(groupSvc))
		r.Post("/group/leave/{groupID}", handleLeaveGroup(groupSvc))

		r.Get("/message/{userID}/{remoteUserID}", handleDirectHistory(msgSvc))
		r.Post("/message/recent", handleRecentMessages(msgSvc))
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(router, tokenSvc, cfg.CORSOrigins, log))

	return r
}
