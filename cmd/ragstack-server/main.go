// Package main provides the MCP server entry point for the RAG pipeline.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/antonf/ragstack/internal/embedding"
	"github.com/antonf/ragstack/internal/generation"
	"github.com/antonf/ragstack/internal/rag"
	"github.com/antonf/ragstack/internal/retriever"
	"github.com/antonf/ragstack/internal/server"
	"github.com/antonf/ragstack/internal/splitter"
	"github.com/antonf/ragstack/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Cancel on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnv("RAGSTACK_COLLECTION", "documents")
	port := getEnv("PORT", "8080")

	store, err := storage.NewStore(qdrantHost, qdrantPort, collection, embedding.Dimension)
	if err != nil {
		log.Fatalf("failed to connect to vector store: %v", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("failed to ensure collection: %v", err)
	}

	split, err := splitter.New(
		getEnvInt("RAGSTACK_CHUNK_SIZE", splitter.DefaultChunkSize),
		getEnvInt("RAGSTACK_OVERLAP", splitter.DefaultOverlap),
	)
	if err != nil {
		log.Fatalf("invalid chunking configuration: %v", err)
	}

	client, err := embedding.NewClient("")
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(client, 0) // default batch size

	engine := rag.NewEngine(rag.Config{
		Splitter:  split,
		Embedder:  embedder,
		Store:     store,
		Retriever: retriever.New(embedder, store, getEnvInt("RAGSTACK_SEARCH_LIMIT", retriever.DefaultSearchLimit)),
		Generator: generation.NewOpenAI(client.Client(), os.Getenv("RAGSTACK_MODEL")),
	})

	srv := server.NewServer(&server.Config{
		Engine:   engine,
		Markdown: splitter.NewMarkdown(split),
		Store:    store,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.NewHealthHandler(store))
	mux.Handle("/mcp", server.NewHTTPHandler(srv, nil))

	serverMode := getEnv("SERVER_MODE", "false") == "true"

	httpServer := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: mux,
	}

	// Drain in-flight requests when the signal context fires.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown error: %v", err)
		}
	}()

	if serverMode {
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode for local clients, with the health endpoint in the
		// background for probes.
		go func() {
			log.Printf("Starting health server on %s", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting ragstack MCP server (stdio mode)...")
		if err := srv.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
