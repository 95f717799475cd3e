// Package rag provides the retrieval layer for document-grounded
// question answering: document and result types, vector stores,
// retrievers with multi-query expansion, redundancy filtering and
// reranking, plus loaders and splitters for ingestion.
package rag
