package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"docbox-be/internal/repository/implementation"
	"docbox-be/internal/repository/specification"
	"docbox-be/pkg/database"
	"docbox-be/pkg/embedding"
	"docbox-be/pkg/lexical"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Retrieval diagnostic: runs a set of queries against one organization's
// passage index at several thresholds so mis-tuned weights show up before
// they reach users.
func main() {
	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING not set")
	}

	// Initialize embedding provider (Ollama - local)
	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}
	ollamaModel := os.Getenv("OLLAMA_EMBEDDING_MODEL")
	if ollamaModel == "" {
		ollamaModel = "nomic-embed-text"
	}
	embeddingProvider := embedding.NewOllamaProvider(ollamaBaseURL, ollamaModel)

	// Connect to DB
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	// Initialize repositories
	passageRepo := implementation.NewPassageEmbeddingRepository(db)
	documentRepo := implementation.NewDocumentRepository(db)

	// === CONFIGURATION ===
	orgIdStr := "11111111-1111-1111-1111-111111111111"
	if len(os.Args) > 1 {
		orgIdStr = os.Args[1]
	}

	orgId, err := uuid.Parse(orgIdStr)
	if err != nil {
		log.Fatal("Invalid organization ID:", err)
	}

	// === THRESHOLDS TO TEST ===
	thresholds := []float64{0.35, 0.30, 0.25, 0.20, 0.15, 0.10}

	// === TEST QUERIES ===
	queries := []string{
		"warfarin INR monitoring",
		"visiting hours policy",
		"drug interactions with anticoagulants",
		"how is warfarin reversed",
	}

	ctx := context.Background()

	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println("RETRIEVAL DIAGNOSTIC TOOL")
	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Printf("Organization ID: %s\n", orgId)
	fmt.Println()

	// First, list the organization's documents and their index status
	fmt.Println("--- INDEXED DOCUMENTS ---")
	docs, err := documentRepo.FindAll(ctx, specification.ByOrganization{OrganizationId: orgId})
	if err != nil {
		log.Printf("Failed to fetch documents: %v", err)
	} else {
		for _, d := range docs {
			fmt.Printf("  [%s] %-40s class=%s\n", d.IndexStatus, d.Title, d.DocumentClass)
		}
	}
	fmt.Println()

	for _, query := range queries {
		fmt.Println("-" + strings.Repeat("-", 79))
		fmt.Printf("QUERY: %q\n", query)

		vector, err := embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
		if err != nil {
			log.Printf("  Embedding failed: %v", err)
			continue
		}

		scored, err := passageRepo.SearchSimilarWithScore(ctx, vector, 10, orgId, 0)
		if err != nil {
			log.Printf("  Search failed: %v", err)
			continue
		}

		if len(scored) == 0 {
			fmt.Println("  (no passages)")
			continue
		}

		for _, sp := range scored {
			overlap := lexical.Overlap(query, sp.Passage.Text)
			merged := 0.7*sp.Similarity + 0.3*overlap
			preview := sp.Passage.Text
			if len(preview) > 60 {
				preview = preview[:60] + "..."
			}
			fmt.Printf("  dense=%.3f lexical=%.3f merged=%.3f  %q\n", sp.Similarity, overlap, merged, preview)
		}

		fmt.Println("  survivors per threshold:")
		for _, th := range thresholds {
			count := 0
			for _, sp := range scored {
				merged := 0.7*sp.Similarity + 0.3*lexical.Overlap(query, sp.Passage.Text)
				if merged >= th {
					count++
				}
			}
			fmt.Printf("    threshold %.2f -> %d passage(s)\n", th, count)
		}
	}
}
