package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskflow/task-sync/internal/api"
	"github.com/taskflow/task-sync/internal/auth"
	"github.com/taskflow/task-sync/internal/config"
	"github.com/taskflow/task-sync/internal/logging"
	"github.com/taskflow/task-sync/internal/offline"
	"github.com/taskflow/task-sync/internal/remote/postgrest"
	"github.com/taskflow/task-sync/internal/sync"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, reading environment")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("load config: ", err)
	}
	if cfg.RemoteURL == "" || cfg.AuthURL == "" {
		log.Fatal("REMOTE_URL and AUTH_URL must be configured")
	}

	logger := logging.New(cfg.LogFile)
	defer logger.Sync()

	db, err := offline.InitDB(cfg.OfflineCachePath)
	if err != nil {
		logger.Fatalw("init offline cache", "error", err)
	}
	defer db.Close()

	remoteHost := ""
	if u, err := url.Parse(cfg.RemoteURL); err == nil {
		remoteHost = u.Host
	}

	// One shared HTTP client. GET responses from hosts other than the
	// remote store are replayed from the sqlite cache when the network
	// is unreachable.
	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: offline.NewTransport(http.DefaultTransport, offline.NewCache(db), remoteHost),
	}

	authClient := auth.NewGoTrueClient(cfg.AuthURL, cfg.RemoteAPIKey, httpClient)
	authClient.SetOAuth(auth.OAuthConfig{
		GoogleClientID:       cfg.GoogleClientID,
		GoogleClientSecret:   cfg.GoogleClientSecret,
		FacebookClientID:     cfg.FacebookClientID,
		FacebookClientSecret: cfg.FacebookClientSecret,
		RedirectURL:          cfg.OAuthRedirectURL,
	})

	remoteClient := postgrest.NewClient(cfg.RemoteURL, cfg.RemoteAPIKey, httpClient)
	remoteClient.SetTokenSource(func() string {
		session, err := authClient.Session(context.Background())
		if err != nil || session == nil {
			return ""
		}
		return session.AccessToken
	})

	engine := sync.New(remoteClient, authClient, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	router := api.SetupRouter(engine)

	logger.Infow("task sync running", "port", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, router); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
