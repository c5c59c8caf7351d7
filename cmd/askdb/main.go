// Command askdb serves a natural-language question-answering API over a
// PostgreSQL database: it introspects the schema, asks a language model to
// translate questions into SQL, executes the SQL, and asks the model to
// phrase the result rows as an answer.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/askdb/askdb/internal/archive"
	minioarchive "github.com/askdb/askdb/internal/archive/minio"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/database/postgres"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/logger"
	"github.com/askdb/askdb/internal/nlsql"
	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/schema"
	"github.com/askdb/askdb/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New(nil).Errorf("configuration error: %v", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	dbCfg := database.DefaultConfig(cfg.Database.DSN)
	if cfg.Database.MaxConns > 0 {
		dbCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		dbCfg.MinConns = cfg.Database.MinConns
	}
	src := postgres.New(dbCfg)

	client := llm.NewAnthropicClient(log)
	builder := schema.NewBuilder(src, cfg.Database.SchemaName, log)
	generator := nlsql.NewGenerator(client, cfg.LLM.Model, cfg.LLM.MaxTokens)
	formatter := nlsql.NewFormatter(client, cfg.LLM.Model, cfg.LLM.Language, cfg.LLM.MaxTokens)

	var opts []pipeline.Option
	if cfg.Archive.Enabled {
		store, err := minioarchive.New(context.Background(), &archive.Config{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
		})
		if err != nil {
			log.ErrorWith("failed to connect archive store", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithArchive(store))
	}

	orch := pipeline.New(src, builder, generator, formatter, log, opts...)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(orch, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorWith("server stopped", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.ErrorWith("shutdown error", err)
	}
	if err := orch.Disconnect(ctx); err != nil {
		log.ErrorWith("disconnect error", err)
	}
}
