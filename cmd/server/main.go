package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/todo-assistant/internal/agent"
	"github.com/example/todo-assistant/internal/api"
	"github.com/example/todo-assistant/internal/config"
	"github.com/example/todo-assistant/internal/orchestrator"
	"github.com/example/todo-assistant/internal/providers/llm"
	"github.com/example/todo-assistant/internal/resolve"
	"github.com/example/todo-assistant/internal/store"
	"github.com/example/todo-assistant/internal/tools"
)

func main() {
	// Local dev convenience; a missing .env is fine.
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("could not load config", zap.Error(err))
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("could not open database", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	defer db.Close()

	cache := store.NewCache(time.Duration(cfg.Cache.TTLSeconds)*time.Second, cfg.Cache.MaxEntries, time.Now)
	tasks := store.NewCached(db, cache)

	ctx := context.Background()
	client := llm.New(ctx, cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model)

	parser := agent.NewParser(resolve.New(tasks))
	interp := agent.NewInterpreter(client, parser, time.Duration(cfg.LLM.TimeoutMS)*time.Millisecond, log)
	coord := agent.NewCoordinator(tools.NewTaskRegistry(), tasks, log)
	orch := orchestrator.New(tasks, db, interp, coord, log)

	mux := http.NewServeMux()
	api.NewServer(orch, tasks, db, log).RegisterRoutes(mux)

	log.Info("server listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, cors(mux)); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// simple CORS middleware for local dev
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
