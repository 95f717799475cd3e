// docschat - Conversational Question Answering over Your Documentation
//
// docschat answers questions about a documentation corpus through a routed
// retrieval graph. Every turn is classified first: chit-chat is answered
// directly from conversation context, documentation questions go through
// multi-query retrieval, redundancy filtering and reranking before a
// grounded answer is generated. The assistant refuses to answer
// documentation questions the retrieved context cannot support.
//
// # Quick Start
//
// Install the CLI:
//
//	go install github.com/smallnest/docschat/cmd/docschat@latest
//
// Configure the environment (a .env file in the working directory works
// too):
//
//	GROQ_API_KEY=gsk_...
//	GROQ_MODEL=llama-3.3-70b-versatile
//	EMBEDDINGS_MODEL=text-embedding-3-small
//	EMBEDDINGS_BASE_URL=https://api.openai.com/v1
//	EMBEDDINGS_API_KEY=sk-...
//	PERSIST_DIRECTORY=./chroma
//	LANGSMITH_API_KEY=lsv2_...
//	LANGSMITH_ENDPOINT=https://api.smith.langchain.com
//	LANGSMITH_PROJECT=docschat
//	LANGSMITH_TRACING=true
//
// Index a documentation directory, then chat about it:
//
//	docschat ingest -dir ./docs
//	docschat chat -thread alice -store sqlite
//
// # The Conversation Graph
//
// Each turn runs a four node graph with one conditional branch:
//
//	router_node ──(general)──> general_answer_node ──> END
//	     └──(retriever)──> relevant_docs_node ──> answer_generation_node ──> END
//
// The router classifies the question through a forced route_query tool
// call, so the decision is always one of the two known categories.
// Retrieval expands the question into alternative phrasings, searches the
// vector store for each, drops near-duplicate passages and reranks what
// is left before the answer is generated from the surviving context.
//
// # Package Structure
//
// workflow/
// The conversation pipeline: state, nodes, routing and the compiled
// graph.
//
//	runnable, _ := workflow.New(workflow.Dependencies{
//		LLM:       chat,
//		Retriever: retriever,
//		Filter:    filter,
//		Reranker:  reranker,
//	})
//
//	state := workflow.NewConversationState("How do I define a signature?")
//	final, _ := runnable.Invoke(ctx, state)
//
// graph/
// The typed state graph engine the workflow runs on. Usable on its own
// for any staged pipeline:
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("classify", "Classify the input", classify)
//	g.AddNode("respond", "Produce the response", respond)
//	g.SetEntryPoint("classify")
//	g.AddConditionalEdge("classify", route)
//	g.AddEdge("respond", graph.END)
//
//	runnable, _ := g.Compile()
//	result, _ := runnable.Invoke(ctx, MyState{Input: "hello"})
//
// rag/
// Retrieval machinery: documents, embedders, vector stores, loaders,
// the recursive character splitter, retrievers and the reranker.
//
//	base := retriever.NewVectorRetriever(store, embedder, 10)
//	multi := retriever.NewMultiQueryRetriever(llm, base)
//	results, _ := multi.Retrieve(ctx, "What does Predict do?")
//
// store/
// Checkpoint persistence for conversations, keyed by thread ID.
// Backends: in-memory, SQLite, Redis and PostgreSQL.
//
//	checkpoints, _ := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{
//		Path: "./chroma/checkpoints.db",
//	})
//
//	chat := runnable.WithCheckpointing(
//		graph.DefaultCheckpointConfig[workflow.ConversationState](checkpoints))
//	final, _ := chat.Invoke(ctx, state, graph.WithThreadID("alice"))
//
// llms/groq/
// A langchaingo llms.Model over Groq's OpenAI-compatible API, including
// tool calling, which the router depends on.
//
//	chat, _ := groq.New(
//		groq.WithAPIKey(apiKey),
//		groq.WithModel(groq.ModelNameLlama3370BVersatile),
//	)
//
// ingest/
// The indexing pipeline: load files by extension (.txt, .md, .html),
// split them into chunks, embed in batches and persist.
//
//	pipeline := ingest.NewPipeline(embedder, store)
//	result, _ := pipeline.IngestDir(ctx, "./docs")
//
// memory/
// Sliding window conversation memory, used for prompt history selection
// and for conversations kept entirely in process.
//
// config/
// Environment configuration with .env support. All required variables
// are validated at startup and reported together.
//
// app/
// The composition root tying everything above together behind Ask and
// IngestDir. The CLI is a thin layer over it:
//
//	cfg, _ := config.Load()
//	a, _ := app.New(cfg)
//	defer a.Close()
//
//	answer, _ := a.Ask(ctx, "alice", "How do I define a signature?")
//
// # Configuration
//
// Required environment variables:
//
//   - GROQ_API_KEY: Groq API key
//   - GROQ_MODEL: chat model name, e.g. llama-3.3-70b-versatile
//   - EMBEDDINGS_MODEL: embedding model name
//   - PERSIST_DIRECTORY: directory for the vector and checkpoint databases
//   - LANGSMITH_API_KEY, LANGSMITH_ENDPOINT, LANGSMITH_PROJECT,
//     LANGSMITH_TRACING: tracing contract; spans are logged locally
//
// Optional:
//
//   - GROQ_BASE_URL: override the Groq endpoint
//   - EMBEDDINGS_BASE_URL: any OpenAI-compatible embeddings endpoint
//   - EMBEDDINGS_API_KEY: key for the embeddings endpoint (defaults to
//     GROQ_API_KEY)
//   - REDIS_ADDR, POSTGRES_DSN: checkpoint backends for -store redis and
//     -store postgres
//   - LOG_LEVEL: debug, info, warn or error
package docschat // import "github.com/smallnest/docschat"
