// @title           Financial Document QA API
// @version         1.0
// @description     Question answering over ingested financial documents with retrieval-augmented generation.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/finquill/finchat/internal/answer"
	"github.com/finquill/finchat/internal/cache"
	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/embedding/googleembedding"
	"github.com/finquill/finchat/internal/handlers"
	"github.com/finquill/finchat/internal/httpclient"
	"github.com/finquill/finchat/internal/ingest"
	"github.com/finquill/finchat/internal/llm"
	_ "github.com/finquill/finchat/internal/llm/gemini"
	_ "github.com/finquill/finchat/internal/llm/openai"
	"github.com/finquill/finchat/internal/loader"
	"github.com/finquill/finchat/internal/middleware"
	"github.com/finquill/finchat/internal/qa"
	"github.com/finquill/finchat/internal/retrieval"
	"github.com/finquill/finchat/internal/search"
	"github.com/finquill/finchat/internal/server"
	"github.com/finquill/finchat/internal/vectorstore"
	"github.com/finquill/finchat/internal/vectorstore/qdrantstore"
	"github.com/finquill/finchat/pkg/flog"
)

var listenAddr string

func main() {
	cfg := config.Load()

	flog.Init(cfg.IsProd)
	logger := flog.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", cfg.ListenAddr, "server listen address")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	store, err := qdrantstore.New(cfg)
	if err != nil {
		logger.Error("Could not connect to the vector store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	embedder, err := googleembedding.New(serviceContext, cfg)
	if err != nil {
		logger.Error("Could not create the embedding client", "error", err)
		os.Exit(1)
	}

	provider, err := llm.ForModel(serviceContext, cfg)
	if err != nil {
		logger.Error("Could not create the model provider", "error", err)
		os.Exit(1)
	}

	var answers cache.AnswerCache
	if redisCache := cache.NewRedisCache(serviceContext, cfg.RedisAddr); redisCache != nil {
		answers = redisCache
		defer redisCache.Close()
	} else {
		logger.Error("Redis is offline, falling back to the in-memory answer cache")
		answers = cache.NewMemoryCache()
	}

	manager := vectorstore.NewManager(store, embedder)
	downloadClient := httpclient.New(config.DownloadTimeout)

	loaderService := loader.New(
		search.NewGoogleSearch(downloadClient),
		ingest.New(downloadClient, config.ChunkSize, config.ChunkOverlap),
		manager,
	)

	qaService := qa.NewService(
		retrieval.NewAssembler(manager, embedder),
		answer.NewGenerator(provider),
		loaderService,
		answers,
	)

	handler := handlers.New(qaService, loaderService)
	chain := middleware.NewChain(cfg)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, handler, chain)

	<-stopExecution
	logger.Info("Server stopped")
}
