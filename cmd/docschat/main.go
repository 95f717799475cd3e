// docschat is a conversational assistant over ingested documentation.
//
// Usage:
//
//	docschat chat [-thread id] [-store memory|sqlite|redis|postgres]
//	docschat ingest -dir <path> [-chunk N] [-overlap N]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smallnest/docschat/app"
	"github.com/smallnest/docschat/config"
	"github.com/smallnest/docschat/rag/splitter"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "chat":
		runChat(os.Args[2:])
	case "ingest":
		runIngest(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
}

func runChat(args []string) {
	flags := flag.NewFlagSet("chat", flag.ExitOnError)
	thread := flags.String("thread", "default", "conversation thread ID")
	storeKind := flags.String("store", "", "checkpoint store: memory, sqlite, redis or postgres (default: in-process only)")
	flags.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx := context.Background()

	checkpoints, err := app.NewCheckpointStore(ctx, cfg, *storeKind)
	if err != nil {
		log.Fatalf("checkpoint store error: %v", err)
	}
	var opts []app.Option
	if checkpoints != nil {
		opts = append(opts, app.WithCheckpointStore(checkpoints))
	}

	a, err := app.New(cfg, opts...)
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}
	defer a.Close()

	count, err := a.DocumentCount(ctx)
	if err != nil {
		log.Fatalf("vector store error: %v", err)
	}

	fmt.Println(labelStyle.Render("docschat") + " ready. Ask about your documents; type 'exit' or 'quit' to leave.")
	fmt.Println(faintStyle.Render(fmt.Sprintf("thread %s | %d documents indexed", *thread, count)))
	if count == 0 {
		fmt.Println(faintStyle.Render("the index is empty; run 'docschat ingest -dir <path>' first"))
	}
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "exit", "quit":
			fmt.Println(faintStyle.Render("bye"))
			return
		}

		answer, err := a.Ask(ctx, *thread, question)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("error: %v", err)))
			continue
		}

		fmt.Println(labelStyle.Render("docschat>") + " " + renderMarkdown(answer))
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("input error: %v", err)
	}
	fmt.Println()
}

func runIngest(args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	dir := flags.String("dir", "", "directory of documents to ingest (required)")
	chunkSize := flags.Int("chunk", splitter.DefaultChunkSize, "chunk size in characters")
	overlap := flags.Int("overlap", splitter.DefaultChunkOverlap, "chunk overlap in characters")
	flags.Parse(args)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "ingest: -dir is required")
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	result, err := a.IngestDir(ctx, *dir, *chunkSize, *overlap)
	if err != nil {
		log.Fatalf("ingest error: %v", err)
	}

	count, err := a.DocumentCount(ctx)
	if err != nil {
		log.Fatalf("vector store error: %v", err)
	}
	fmt.Printf("ingested %d files into %d chunks (%d documents total)\n", result.Files, result.Chunks, count)
}

func printUsage() {
	fmt.Println(`docschat: conversational QA over your documentation

Usage:
  docschat chat [-thread id] [-store memory|sqlite|redis|postgres]
  docschat ingest -dir <path> [-chunk N] [-overlap N]

Configuration comes from the environment; a .env file in the working
directory is loaded when present. Required variables:
  GROQ_API_KEY, GROQ_MODEL, EMBEDDINGS_MODEL, PERSIST_DIRECTORY,
  LANGSMITH_API_KEY, LANGSMITH_ENDPOINT, LANGSMITH_PROJECT, LANGSMITH_TRACING`)
}
