package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oiime/logrusbun"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"

	"github.com/getsema/sema/config"
	"github.com/getsema/sema/pkg/auth"
	"github.com/getsema/sema/pkg/models"
	"github.com/getsema/sema/pkg/server"
	"github.com/getsema/sema/pkg/steward"
	"github.com/getsema/sema/pkg/store/memstore"
	"github.com/getsema/sema/pkg/store/postgres"
)

const (
	ErrStoreTypeNotSet   = "store.type must be set"
	ErrPostgresDSNNotSet = "store.postgres.dsn must be set"
	StoreTypePostgres    = "postgres"
	StoreTypeMemory      = "memory"

	startupTimeout = 30 * time.Second
)

// run is the entrypoint for the sema server
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring sema: %s", err)
	}

	handleCLIOptions(cfg)

	log.Infof("Starting sema server version %s", config.VersionString)

	config.SetLogLevel(cfg)
	appState := NewAppState(cfg)

	srv := server.Create(appState)

	log.Infof("Listening on: %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil {
		log.Fatal(err)
	}
}

// NewAppState creates an AppState struct from the config file / ENV,
// initializes the embedding store and the steward client.
func NewAppState(cfg *config.Config) *models.AppState {
	appState := &models.AppState{
		Config: cfg,
	}

	initializeEmbeddingStore(appState)
	initializeStewardClient(appState)
	setupSignalHandler(appState)

	return appState
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions(cfg *config.Config) {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
	if generateKey {
		fmt.Println(auth.GenerateJWT(cfg))
		os.Exit(0)
	}
	if dumpConfig {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			log.Fatalf("Error dumping config: %s", err)
		}
		fmt.Println(string(out))
		os.Exit(0)
	}
}

// initializeEmbeddingStore initializes the embedding store based on the config file / ENV
func initializeEmbeddingStore(appState *models.AppState) {
	switch appState.Config.Store.Type {
	case "":
		log.Fatal(ErrStoreTypeNotSet)
	case StoreTypeMemory:
		appState.EmbeddingStore = memstore.NewStore()
	case StoreTypePostgres:
		if appState.Config.Store.Postgres.DSN == "" {
			log.Fatal(ErrPostgresDSNNotSet)
		}
		db, err := postgres.NewPostgresConn(appState)
		if err != nil {
			log.Fatal(err)
		}
		if appState.Config.Log.Level == "debug" {
			pgDebugLogging(db)
		}
		appState.EmbeddingStore = postgres.NewEmbeddingStoreDAO(db)
	default:
		log.Fatal(
			fmt.Sprintf("store.type (%s) is not supported", appState.Config.Store.Type),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := appState.EmbeddingStore.OnStart(ctx); err != nil {
		log.Fatalf("Error starting embedding store: %s", err)
	}
}

func initializeStewardClient(appState *models.AppState) {
	stewardCfg := appState.Config.Steward
	if stewardCfg.BaseURL == "" {
		log.Fatal("steward.base_url must be set")
	}
	client := steward.NewClient(
		stewardCfg.BaseURL,
		stewardCfg.TimeoutSeconds,
		stewardCfg.RetryMax,
	)
	appState.Librarian = client
	appState.ContentSteward = client
}

func pgDebugLogging(db *bun.DB) {
	db.AddQueryHook(logrusbun.NewQueryHook(logrusbun.QueryHookOptions{
		LogSlow:         time.Second,
		Logger:          log,
		QueryLevel:      logrus.DebugLevel,
		ErrorLevel:      logrus.ErrorLevel,
		SlowLevel:       logrus.WarnLevel,
		MessageTemplate: "{{.Operation}}[{{.Duration}}]: {{.Query}}",
		ErrorTemplate:   "{{.Operation}}[{{.Duration}}]: {{.Query}}: {{.Error}}",
	}))
}

// setupSignalHandler sets up a signal handler to close the embedding store
// connection on termination.
func setupSignalHandler(appState *models.AppState) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		if err := appState.EmbeddingStore.Close(); err != nil {
			log.Errorf("Error closing embedding store: %v", err)
		}
		os.Exit(0)
	}()
}
