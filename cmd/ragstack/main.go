// Package main provides the ragstack CLI: document ingestion, semantic
// queries and index management against a Qdrant-compatible vector store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/antonf/ragstack/internal/embedding"
	"github.com/antonf/ragstack/internal/extract"
	"github.com/antonf/ragstack/internal/generation"
	"github.com/antonf/ragstack/internal/rag"
	"github.com/antonf/ragstack/internal/retriever"
	"github.com/antonf/ragstack/internal/source"
	"github.com/antonf/ragstack/internal/splitter"
	"github.com/antonf/ragstack/internal/storage"
)

var (
	flagCollection  string
	flagChunkSize   int
	flagOverlap     int
	flagBatchSize   int
	flagSearchLimit int
	flagContextSize int
)

var rootCmd = &cobra.Command{
	Use:   "ragstack",
	Short: "Retrieval-augmented generation over your documents",
	Long: `ragstack ingests documents into a vector collection and answers
natural-language questions grounded in the retrieved passages.

Environment variables:
  QDRANT_HOST    Vector store hostname (default: localhost)
  QDRANT_PORT    Vector store gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings and generation (required)
  GITHUB_TOKEN   GitHub token for ingest-repo rate limits (optional)`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCollection, "collection", "documents", "vector collection name")
	rootCmd.PersistentFlags().IntVar(&flagChunkSize, "chunk-size", splitter.DefaultChunkSize, "maximum chunk length in characters")
	rootCmd.PersistentFlags().IntVar(&flagOverlap, "overlap", splitter.DefaultOverlap, "characters shared by neighboring chunks")
	rootCmd.PersistentFlags().IntVar(&flagBatchSize, "batch-size", embedding.DefaultBatchSize, "chunks per embedding API call")
	rootCmd.PersistentFlags().IntVar(&flagSearchLimit, "search-limit", retriever.DefaultSearchLimit, "top-K matches retrieved per query")
	rootCmd.PersistentFlags().IntVar(&flagContextSize, "context-size", rag.DefaultContextSize, "retrieved passages assembled into the prompt")

	rootCmd.AddCommand(ingestCmd, ingestRepoCmd, queryCmd, listCmd, deleteCmd, resetCmd)

	ingestRepoCmd.Flags().String("owner", "", "repository owner")
	ingestRepoCmd.Flags().String("repo", "", "repository name")
	ingestRepoCmd.Flags().String("path", "", "directory within the repository")
	ingestRepoCmd.MarkFlagRequired("owner")
	ingestRepoCmd.MarkFlagRequired("repo")
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// stack bundles the wired pipeline for one command invocation.
type stack struct {
	store    *storage.Store
	engine   *rag.Engine
	markdown *splitter.MarkdownSplitter
}

func (s *stack) Close() error { return s.store.Close() }

// buildStack wires splitter, embedder, store, retriever and generator from
// flags and environment.
func buildStack(ctx context.Context) (*stack, error) {
	split, err := splitter.New(flagChunkSize, flagOverlap)
	if err != nil {
		return nil, err
	}

	client, err := embedding.NewClient("")
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewEmbedder(client, flagBatchSize)

	store, err := storage.NewStore(
		getEnv("QDRANT_HOST", "localhost"),
		getEnvInt("QDRANT_PORT", 6334),
		flagCollection,
		embedding.Dimension,
	)
	if err != nil {
		return nil, fmt.Errorf("connect to vector store: %w", err)
	}

	if err := store.EnsureCollection(ctx); err != nil {
		store.Close()
		return nil, err
	}

	engine := rag.NewEngine(rag.Config{
		Splitter:    split,
		Embedder:    embedder,
		Store:       store,
		Retriever:   retriever.New(embedder, store, flagSearchLimit),
		Generator:   generation.NewOpenAI(client.Client(), os.Getenv("RAGSTACK_MODEL")),
		ContextSize: flagContextSize,
		Logger:      slog.Default(),
	})

	return &stack{
		store:    store,
		engine:   engine,
		markdown: splitter.NewMarkdown(split),
	}, nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <files...>",
	Short: "Extract, chunk, embed and index local files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		docs := make([]rag.Document, 0, len(args))
		for _, path := range args {
			doc, err := loadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
				continue
			}
			docs = append(docs, doc)
		}
		if len(docs) == 0 {
			return fmt.Errorf("no ingestible files")
		}

		printResult(s.engine.IngestAll(ctx, docs, s.markdown))
		return nil
	},
}

var ingestRepoCmd = &cobra.Command{
	Use:   "ingest-repo",
	Short: "Ingest all markdown and text files from a GitHub repository directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		basePath, _ := cmd.Flags().GetString("path")

		s, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		client, err := source.NewClient()
		if err != nil {
			return fmt.Errorf("create GitHub client: %w", err)
		}
		fetcher := source.NewFetcher(client, owner, repo, basePath)

		paths, err := fetcher.List(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Found %d files in %s/%s\n", len(paths), owner, repo)

		docs := make([]rag.Document, 0, len(paths))
		for _, path := range paths {
			file, err := fetcher.Fetch(ctx, path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
				continue
			}
			kind, err := extract.KindForPath(path)
			if err != nil {
				continue
			}
			docs = append(docs, rag.Document{
				Name:     file.Path,
				Text:     file.Content,
				Markdown: kind == extract.KindMarkdown,
			})
		}

		printResult(s.engine.IngestAll(ctx, docs, s.markdown))
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Ask a question answered from the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		stream, err := s.engine.Query(ctx, args[0])
		if err != nil {
			return err
		}
		defer stream.Close()

		for {
			frag, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				fmt.Println()
				return fmt.Errorf("answer incomplete: %w", err)
			}
			fmt.Print(frag.Text)
		}
		fmt.Println()
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents and their chunk counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		docs, err := s.store.ListDocuments(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("No documents ingested.")
			return nil
		}
		for _, doc := range docs {
			fmt.Printf("%-50s %d chunks\n", doc.Name, doc.Chunks)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete all chunks of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.store.DeleteDocument(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %q\n", args[0])
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.store.DeleteCollection(ctx); err != nil {
			return err
		}
		if err := s.store.EnsureCollection(ctx); err != nil {
			return err
		}
		fmt.Println("Collection reset.")
		return nil
	},
}

// loadFile reads and extracts one local file into a Document.
func loadFile(path string) (rag.Document, error) {
	kind, err := extract.KindForPath(path)
	if err != nil {
		return rag.Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rag.Document{}, err
	}
	text, err := extract.Extract(data, kind)
	if err != nil {
		return rag.Document{}, err
	}
	return rag.Document{
		Name:     filepath.Base(path),
		Text:     text,
		Markdown: kind == extract.KindMarkdown,
	}, nil
}

func printResult(result *rag.IngestResult) {
	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Documents: %d/%d\n", result.SuccessfulDocs, result.TotalDocs)
	fmt.Printf("  Chunks: %d\n", result.TotalChunks)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))

	if len(result.FailedDocs) > 0 {
		fmt.Println()
		fmt.Println("Failed documents:")
		for _, failed := range result.FailedDocs {
			fmt.Printf("  - %s: %s\n", failed.Name, failed.Reason)
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
