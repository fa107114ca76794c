package main

import (
	"context"
	"net/http"

	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	identitytoolkit "google.golang.org/api/identitytoolkit/v3"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/config"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/genchat"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/handlers"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/identity"
	appMiddleware "github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/middleware"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/services"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := pkglog.New(cfg.Env)
	ctx := context.Background()

	// Firebase Auth (identity gateway) and Firestore (document store).
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	} else if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Firebase app")
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Firebase Auth client")
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.FirebaseWebAPIKey))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Identity Toolkit service")
	}
	gateway := identity.NewFirebaseGateway(authClient, toolkit, cfg.AllowExpiredTokens, logger)

	var docStore store.Store
	if fsClient, err := app.Firestore(ctx); err != nil {
		logger.Warn().Err(err).Msg("Firestore unavailable, falling back to local snapshot store")
		memStore, serr := store.NewMemStoreWithSnapshot(cfg.DataDir, "store.json")
		if serr != nil {
			logger.Fatal().Err(serr).Msg("failed to initialize local store")
		}
		docStore = memStore
	} else {
		defer fsClient.Close()
		docStore = store.NewFirestoreStore(fsClient)
	}

	// Generative chat.
	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize GenAI client")
	}
	generator := genchat.NewGemini(genaiClient, cfg.GeminiModel, logger)
	defer generator.Close()
	prompts := genchat.NewPromptSource(docStore, cfg.PromptConfigDocID, logger)

	// Services and handlers.
	sessionService := services.NewSessionService(gateway, docStore, logger)
	profileService := services.NewProfileService(docStore, logger)
	conversationService := services.NewConversationService(docStore, generator, prompts, logger)
	verseService := services.NewVerseService(docStore, generator, logger)

	userHandler := handlers.NewUserHandler(sessionService, profileService, logger)
	chatHandler := handlers.NewChatHandler(conversationService, verseService, logger)

	// Router.
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/refresh-token", userHandler.RefreshToken)
		r.Post("/reset-password", userHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Auth(gateway))

			r.Get("/me", userHandler.Me)
			r.Patch("/update-profile", userHandler.UpdateProfile)
			r.Post("/chat", chatHandler.Chat)
			r.Get("/chat-history", chatHandler.GetAllHistory)
			r.Get("/chat-history/{chatId}", chatHandler.GetHistory)
			r.Get("/chat-conversations", chatHandler.ListConversations)
			r.Get("/daily-verse", chatHandler.DailyVerse)
		})

		r.Get("/", userHandler.FindAll)
		r.Get("/{id}", userHandler.FindOne)
		r.Put("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Remove)
	})

	logger.Info().Str("addr", cfg.ServerAddress).Msg("server starting")
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
