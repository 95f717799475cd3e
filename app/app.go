// Package app wires configuration, model clients, the retrieval stack
// and the conversation graph into one runnable application. Every
// dependency can be replaced through an Option, which is how the tests
// run the full pipeline without network access.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/docschat/config"
	"github.com/smallnest/docschat/graph"
	"github.com/smallnest/docschat/ingest"
	"github.com/smallnest/docschat/llms/groq"
	"github.com/smallnest/docschat/log"
	"github.com/smallnest/docschat/memory"
	"github.com/smallnest/docschat/rag"
	"github.com/smallnest/docschat/rag/retriever"
	"github.com/smallnest/docschat/rag/splitter"
	ragstore "github.com/smallnest/docschat/rag/store"
	"github.com/smallnest/docschat/store"
	memorystore "github.com/smallnest/docschat/store/memory"
	postgresstore "github.com/smallnest/docschat/store/postgres"
	redisstore "github.com/smallnest/docschat/store/redis"
	sqlitestore "github.com/smallnest/docschat/store/sqlite"
	"github.com/smallnest/docschat/workflow"
)

// VectorDBFile is the SQLite file holding embedded documents, relative
// to the persist directory.
const VectorDBFile = "docschat.db"

// CheckpointDBFile is the SQLite file holding conversation checkpoints,
// relative to the persist directory.
const CheckpointDBFile = "checkpoints.db"

// App is the composition root. It owns the model clients, the vector
// store and the compiled conversation graph, and serves questions keyed
// by thread ID.
type App struct {
	cfg    *config.Settings
	logger log.Logger

	chat     llms.Model
	embedder rag.Embedder
	vectors  rag.VectorStore

	runnable     *graph.Runnable[workflow.ConversationState]
	checkpointed *graph.CheckpointableRunnable[workflow.ConversationState]
	checkpoints  store.CheckpointStore

	// sessions holds in-process conversations, used only when no
	// checkpoint store is configured.
	mu       sync.Mutex
	sessions map[string]*memory.SlidingWindowMemory[workflow.Message]
}

// Option replaces one of the App's constructed dependencies.
type Option func(*App)

// WithChatModel replaces the Groq chat client.
func WithChatModel(model llms.Model) Option {
	return func(a *App) { a.chat = model }
}

// WithEmbedder replaces the embeddings client.
func WithEmbedder(embedder rag.Embedder) Option {
	return func(a *App) { a.embedder = embedder }
}

// WithVectorStore replaces the document vector store.
func WithVectorStore(vs rag.VectorStore) Option {
	return func(a *App) { a.vectors = vs }
}

// WithCheckpointStore enables checkpointed conversations backed by the
// given store. Without it conversations live in process memory.
func WithCheckpointStore(cs store.CheckpointStore) Option {
	return func(a *App) { a.checkpoints = cs }
}

// WithLogger replaces the application logger.
func WithLogger(logger log.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// New builds the application from settings. Dependencies not replaced
// by options are constructed from the settings: a Groq chat client, an
// OpenAI-compatible embeddings client and a SQLite vector store under
// the persist directory.
func New(cfg *config.Settings, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: settings are required")
	}

	a := &App{
		cfg:      cfg,
		sessions: make(map[string]*memory.SlidingWindowMemory[workflow.Message]),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = log.LogLevelInfo
		}
		a.logger = log.NewGolog(level)
	}

	if a.chat == nil {
		chat, err := groq.New(
			groq.WithAPIKey(cfg.GroqAPIKey),
			groq.WithModel(groq.ModelName(cfg.GroqModel)),
			groq.WithBaseURL(cfg.GroqBaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat client: %w", err)
		}
		a.chat = chat
	}

	if a.embedder == nil {
		embedder, err := newEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		a.embedder = embedder
	}

	if a.vectors == nil {
		if err := os.MkdirAll(cfg.PersistDirectory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create persist directory: %w", err)
		}
		vectors, err := ragstore.NewSqliteVectorStore(ragstore.SqliteOptions{
			Path: filepath.Join(cfg.PersistDirectory, VectorDBFile),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open vector store: %w", err)
		}
		a.vectors = vectors
	}

	base := retriever.NewVectorRetriever(a.vectors, a.embedder, retriever.DefaultTopK)
	multi := retriever.NewMultiQueryRetriever(a.chat, base, retriever.WithLogger(a.logger))
	filter := retriever.NewRedundancyFilter(a.embedder, retriever.DefaultRedundancyThreshold)
	reranker := retriever.NewSimilarityReranker(retriever.DefaultTopK)

	runnable, err := workflow.New(workflow.Dependencies{
		LLM:       a.chat,
		Retriever: multi,
		Filter:    filter,
		Reranker:  reranker,
		Logger:    a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow: %w", err)
	}
	if cfg.LangSmithTracing {
		runnable.SetTracer(graph.NewLogTracer(a.logger, cfg.LangSmithProject))
	}
	a.runnable = runnable

	if a.checkpoints != nil {
		ckCfg := graph.DefaultCheckpointConfig[workflow.ConversationState](a.checkpoints)
		ckCfg.Restore = restoreConversation
		a.checkpointed = runnable.WithCheckpointing(ckCfg)
	}

	return a, nil
}

// newEmbedder builds the embeddings client. Groq does not serve an
// embeddings endpoint, so this talks to any OpenAI-compatible API
// selected by EMBEDDINGS_BASE_URL.
func newEmbedder(cfg *config.Settings) (rag.Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.EmbeddingsAPIKey),
		openai.WithEmbeddingModel(cfg.EmbeddingsModel),
	}
	if cfg.EmbeddingsBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.EmbeddingsBaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// restoreConversation merges a checkpointed conversation with the new
// turn. The transcript is carried over; routing state belongs to the
// current turn only.
func restoreConversation(saved, input workflow.ConversationState) workflow.ConversationState {
	return workflow.ConversationState{
		Messages:     append(saved.Messages, input.Messages...),
		Category:     input.Category,
		RelevantDocs: input.RelevantDocs,
	}
}

// Ask runs one conversation turn on the given thread and returns the
// assistant's reply. With a checkpoint store configured the thread's
// history is restored from and saved to the store; otherwise it is kept
// in process memory.
func (a *App) Ask(ctx context.Context, threadID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("app: question is empty")
	}

	var (
		final workflow.ConversationState
		err   error
	)
	if a.checkpointed != nil {
		final, err = a.checkpointed.Invoke(ctx, workflow.NewConversationState(question), graph.WithThreadID(threadID))
	} else {
		final, err = a.askInProcess(ctx, threadID, question)
	}
	if err != nil {
		return "", err
	}

	last := final.Messages[len(final.Messages)-1]
	if last.Role != llms.ChatMessageTypeAI {
		return "", fmt.Errorf("turn ended without an assistant reply (last role %q)", last.Role)
	}
	return last.Content, nil
}

// askInProcess runs a turn against the per-thread sliding window.
func (a *App) askInProcess(ctx context.Context, threadID, question string) (workflow.ConversationState, error) {
	session := a.session(threadID)

	state := workflow.ConversationState{Messages: session.Messages()}
	state.AddHumanMessage(question)

	final, err := a.runnable.Invoke(ctx, state, graph.WithThreadID(threadID))
	if err != nil {
		return workflow.ConversationState{}, err
	}

	session.Replace(final.Messages)
	return final, nil
}

func (a *App) session(threadID string) *memory.SlidingWindowMemory[workflow.Message] {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, ok := a.sessions[threadID]
	if !ok {
		session = memory.NewSlidingWindowMemory[workflow.Message](memory.DefaultWindowSize)
		a.sessions[threadID] = session
	}
	return session
}

// IngestDir loads, splits, embeds and stores every supported file under
// dir. Non-positive chunk sizes fall back to the splitter defaults.
func (a *App) IngestDir(ctx context.Context, dir string, chunkSize, chunkOverlap int) (ingest.Result, error) {
	sp := splitter.NewRecursiveCharacterSplitter(
		splitter.WithChunkSize(chunkSize),
		splitter.WithChunkOverlap(chunkOverlap),
	)
	pipeline := ingest.NewPipeline(a.embedder, a.vectors,
		ingest.WithSplitter(sp),
		ingest.WithLogger(a.logger),
	)
	return pipeline.IngestDir(ctx, dir)
}

// DocumentCount reports how many documents the vector store holds.
func (a *App) DocumentCount(ctx context.Context) (int, error) {
	return a.vectors.Count(ctx)
}

// ClearThread drops the stored conversation for a thread, wherever it
// lives.
func (a *App) ClearThread(ctx context.Context, threadID string) error {
	if a.checkpointed != nil {
		return a.checkpointed.ClearThread(ctx, threadID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, threadID)
	return nil
}

// Close releases the vector store and checkpoint store connections.
func (a *App) Close() error {
	var errs []error
	if a.vectors != nil {
		errs = append(errs, a.vectors.Close())
	}
	switch cs := a.checkpoints.(type) {
	case interface{ Close() error }:
		errs = append(errs, cs.Close())
	case interface{ Close() }:
		cs.Close()
	}
	return errors.Join(errs...)
}

// NewCheckpointStore builds the checkpoint backend named by kind. The
// empty kind returns a nil store, meaning conversations stay in process
// memory.
func NewCheckpointStore(ctx context.Context, cfg *config.Settings, kind string) (store.CheckpointStore, error) {
	switch kind {
	case "":
		return nil, nil

	case "memory":
		return memorystore.NewMemoryCheckpointStore(), nil

	case "sqlite":
		if err := os.MkdirAll(cfg.PersistDirectory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create persist directory: %w", err)
		}
		return sqlitestore.NewSqliteCheckpointStore(sqlitestore.SqliteOptions{
			Path: filepath.Join(cfg.PersistDirectory, CheckpointDBFile),
		})

	case "redis":
		return redisstore.NewRedisCheckpointStore(redisstore.RedisOptions{
			Addr: cfg.RedisAddr,
		}), nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, errors.New("POSTGRES_DSN is required for the postgres checkpoint store")
		}
		st, err := postgresstore.NewPostgresCheckpointStore(ctx, postgresstore.PostgresOptions{
			ConnString: cfg.PostgresDSN,
		})
		if err != nil {
			return nil, err
		}
		if err := st.InitSchema(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to init checkpoint schema: %w", err)
		}
		return st, nil
	}

	return nil, fmt.Errorf("unknown checkpoint store %q (expected memory, sqlite, redis or postgres)", kind)
}
