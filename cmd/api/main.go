package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"pairtalk/internal/adapter/api"
	"pairtalk/internal/adapter/api/handler"
	apimiddleware "pairtalk/internal/adapter/api/middleware"
	"pairtalk/internal/adapter/api/router"
	"pairtalk/internal/adapter/repository"
	"pairtalk/internal/infrastructure/firebase"
	"pairtalk/internal/infrastructure/storage"
	"pairtalk/internal/infrastructure/websocket"
	"pairtalk/internal/usecase"
	"pairtalk/pkg/config"
	"pairtalk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var opt option.ClientOption

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		if serviceAccountPath == "" {
			log.Fatalf("FIREBASE_SERVICE_ACCOUNT_JSON or FIREBASE_SERVICE_ACCOUNT_PATH must be set")
		}
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, serviceAccountPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRoomRepo := repository.NewFirestoreChatRoomRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)

	firebaseAuthClient := firebase.NewAuthClient(authClient)

	wsManager := websocket.NewManager()

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient)
	presenceUseCase := usecase.NewPresenceUseCase(userRepo, cfg.PresenceStaleAfter)
	rosterUseCase := usecase.NewRosterUseCase(userRepo, chatRoomRepo, wsManager)
	chatRoomUseCase := usecase.NewChatRoomUseCase(chatRoomRepo, userRepo, wsManager)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, chatRoomRepo, wsManager)
	attachmentUseCase := usecase.NewAttachmentUseCase(storageClient, cfg.MaxUploadBytes)
	sessionUseCase := usecase.NewSessionUseCase(rosterUseCase, messageUseCase, presenceUseCase, wsManager)

	// Socket disconnect is the session-exit signal: teardown plus the
	// best-effort offline mark.
	wsManager.OnDisconnect(func(userID string) {
		sessionUseCase.End(ctx, userID)
	})
	wsManager.Start(ctx)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)

	authHandler := handler.NewAuthHandler(authUseCase)
	rosterHandler := handler.NewRosterHandler(ctx, sessionUseCase, presenceUseCase)
	chatHandler := handler.NewChatHandler(ctx, chatRoomUseCase, sessionUseCase)
	attachmentHandler := handler.NewAttachmentHandler(attachmentUseCase, wsManager)
	wsHandler := handler.NewWebSocketHandler(ctx, wsManager, sessionUseCase)

	router.Setup(e, authMiddleware, authHandler, rosterHandler, chatHandler, attachmentHandler, wsHandler)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("Shutting down, detaching sessions")
		sessionUseCase.EndAll(context.Background())
		cancel()
		e.Close()
	}()

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
