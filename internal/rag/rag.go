// Package rag wires the generator, tools, index, and sessions into the
// question answering system.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harunnryd/kouza/internal/concurrency"
	"github.com/harunnryd/kouza/internal/docs"
	"github.com/harunnryd/kouza/internal/generator"
	"github.com/harunnryd/kouza/internal/model/contract"
	"github.com/harunnryd/kouza/internal/session"
	"github.com/harunnryd/kouza/internal/store"
	"github.com/harunnryd/kouza/internal/tool"
)

const queryTemplate = "Answer this question about course materials: %s"

var courseFileExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Generator produces an answer for a query, optionally driving tools.
type Generator interface {
	GenerateResponse(ctx context.Context, query, conversationHistory string, tools []contract.ToolDef, executor generator.ToolExecutor) (string, error)
}

// System is the composition root for answering course questions.
type System struct {
	generator    Generator
	tools        *tool.Manager
	store        *store.Store
	sessions     *session.Manager
	processor    *docs.Processor
	sessionLocks *concurrency.SessionLocks
}

func New(gen Generator, tools *tool.Manager, st *store.Store, sessions *session.Manager, processor *docs.Processor) *System {
	return &System{
		generator:    gen,
		tools:        tools,
		store:        st,
		sessions:     sessions,
		processor:    processor,
		sessionLocks: concurrency.NewSessionLocks(),
	}
}

// Query answers one user question. sessionID may be empty for a one-shot
// query with no history. Queries on the same session are serialized so
// history reads and writes never interleave.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []tool.Source, error) {
	prompt := fmt.Sprintf(queryTemplate, query)

	history := ""
	if sessionID != "" {
		s.sessionLocks.Lock(sessionID)
		defer s.sessionLocks.Unlock(sessionID)
		history = s.sessions.History(sessionID)
	}

	answer, err := s.generator.GenerateResponse(ctx, prompt, history, s.tools.Definitions(), s.tools)
	if err != nil {
		return "", nil, err
	}

	sources := s.tools.LastSources()
	s.tools.ResetSources()

	if sessionID != "" {
		s.sessions.AddExchange(sessionID, query, answer)
	}

	return answer, sources, nil
}

func (s *System) CreateSession() string {
	return s.sessions.Create()
}

func (s *System) ClearSession(sessionID string) {
	s.sessions.Clear(sessionID)
}

// Analytics reports what the catalog currently holds.
func (s *System) Analytics() (int, []string) {
	return s.store.CourseCount(), s.store.ListCourseTitles()
}

// IngestFolder loads every course script in a folder into the index,
// skipping courses that are already cataloged. With clear set, the index
// is wiped first. Returns the number of courses and chunks added.
func (s *System) IngestFolder(ctx context.Context, path string, clear bool) (int, int, error) {
	if clear {
		slog.Info("Clearing existing index before ingest")
		if err := s.store.Clear(); err != nil {
			return 0, 0, fmt.Errorf("failed to clear index: %w", err)
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read docs folder: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if courseFileExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	coursesAdded, chunksAdded := 0, 0
	for _, name := range names {
		filePath := filepath.Join(path, name)

		doc, err := s.processor.ProcessFile(filePath)
		if err != nil {
			slog.Error("Failed to process course script", "file", name, "error", err)
			continue
		}

		if s.store.HasCourse(doc.Course.Title) {
			slog.Debug("Course already indexed, skipping", "course", doc.Course.Title)
			continue
		}

		if err := s.store.AddCourse(ctx, doc.Course); err != nil {
			slog.Error("Failed to add course", "course", doc.Course.Title, "error", err)
			continue
		}
		if err := s.store.AddChunks(ctx, doc.Chunks); err != nil {
			slog.Error("Failed to add course chunks", "course", doc.Course.Title, "error", err)
			continue
		}

		slog.Info("Course indexed", "course", doc.Course.Title, "chunks", len(doc.Chunks))
		coursesAdded++
		chunksAdded += len(doc.Chunks)
	}

	return coursesAdded, chunksAdded, nil
}
