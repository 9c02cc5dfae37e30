package app

import (
	"fmt"
	"net/http"
	"resetme/internal/app/deps"
	"resetme/internal/app/services"
	checkpasswordresettoken "resetme/internal/http/handlers/password_reset/check_password_reset_token"
	requestpasswordreset "resetme/internal/http/handlers/password_reset/request_password_reset"
	resetpassword "resetme/internal/http/handlers/password_reset/reset_password"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	router := NewRouter(s, deps.Config.AllowedOrigins, deps.Config.IsTestMode)
	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler: router,
		Addr:    address,
	}
}

func NewRouter(s *services.Services, allowedOrigins []string, isTestMode bool) http.Handler {
	authRouter := chi.NewRouter()
	authRouter.Method(
		http.MethodPost,
		"/password_reset/token",
		requestpasswordreset.New(s.RequestPasswordReset, isTestMode),
	)
	authRouter.Method(http.MethodPut, "/password_reset", resetpassword.New(s.ResetPassword))
	authRouter.Method(
		http.MethodPost,
		"/password_reset/validation",
		checkpasswordresettoken.New(s.CheckPasswordResetToken),
	)

	exposedHeaders := []string{}
	if isTestMode {
		exposedHeaders = append(exposedHeaders, requestpasswordreset.TestTokenHeader)
	}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/auth", authRouter)

	return router
}
