package tools

import (
	"context"
	"errors"

	"github.com/promptlane/agentd/rag"
)

type searchDocsArgs struct {
	Query     string `json:"query"`
	TopK      int    `json:"top_k"`
	Namespace string `json:"namespace"`
}

type answerWithRAGArgs struct {
	Question  string `json:"question"`
	TopK      int    `json:"top_k"`
	Namespace string `json:"namespace"`
}

// RegisterRetrieval adds the document retrieval tools. Handlers resolve
// their retriever and LLM from the per-run Context, so one registry can
// serve many runs with different backends.
func RegisterRetrieval(r *Registry) error {
	err := r.Register(Spec{
		Name:        "search_docs",
		Description: "Search the ingested document corpus and return the most relevant snippets with scores.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Natural-language search query.",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": "Maximum number of snippets to return.",
				},
				"namespace": map[string]any{
					"type":        "string",
					"description": "Document namespace to search. Defaults to the run's namespace.",
				},
			},
			"required": []any{"query"},
		},
	}, searchDocs)
	if err != nil {
		return err
	}

	return r.Register(Spec{
		Name:        "answer_with_rag",
		Description: "Answer a question grounded strictly in the ingested documents, with source citations.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question to answer from the document corpus.",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": "Maximum number of context snippets to ground on.",
				},
				"namespace": map[string]any{
					"type":        "string",
					"description": "Document namespace to search. Defaults to the run's namespace.",
				},
			},
			"required": []any{"question"},
		},
	}, answerWithRAG)
}

// defaultNamespace resolves the namespace a retrieval call searches: the
// call's own argument wins, else the run's namespace from the Context.
func defaultNamespace(requested string, tc *Context) string {
	if requested != "" {
		return requested
	}
	return tc.Namespace
}

func searchDocs(ctx context.Context, args map[string]any, tc *Context) (any, error) {
	if tc == nil || tc.Retriever == nil {
		return nil, errors.New("no retriever configured")
	}
	var in searchDocsArgs
	if err := DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	results, err := tc.Retriever.Search(ctx, rag.Query{
		Text:      in.Query,
		TopK:      in.TopK,
		Namespace: defaultNamespace(in.Namespace, tc),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"results": results,
		"count":   len(results),
	}, nil
}

func answerWithRAG(ctx context.Context, args map[string]any, tc *Context) (any, error) {
	if tc == nil || tc.Retriever == nil {
		return nil, errors.New("no retriever configured")
	}
	if tc.LLM == nil {
		return nil, errors.New("no LLM configured")
	}
	var in answerWithRAGArgs
	if err := DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	answerer := &rag.Answerer{LLM: tc.LLM, Retriever: tc.Retriever}
	answer, sources, err := answerer.Answer(ctx, in.Question, rag.Query{
		TopK:      in.TopK,
		Namespace: defaultNamespace(in.Namespace, tc),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"answer":  answer,
		"sources": sources,
	}, nil
}
