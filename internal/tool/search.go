package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/harunnryd/kouza/internal/store"
)

// CourseStore is the slice of the index the search tools need.
type CourseStore interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int, limit int) (*store.SearchResults, error)
	Outline(ctx context.Context, name string) (*store.Course, error)
	GetLessonLink(courseTitle string, lessonNumber int) (string, bool)
	GetCourseLink(title string) (string, bool)
}

// SearchTool answers content questions by semantic search over course
// chunks, with optional course and lesson filters.
type SearchTool struct {
	store CourseStore

	mu          sync.Mutex
	lastSources []Source
}

func NewSearchTool(store CourseStore) *SearchTool {
	return &SearchTool{store: store}
}

func (t *SearchTool) Name() string { return "search_course_content" }

func (t *SearchTool) Description() string {
	return "Search course materials with smart course name matching and lesson filtering"
}

func (t *SearchTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "What to search for in the course content",
			},
			"course_name": map[string]interface{}{
				"type":        "string",
				"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
			"lesson_number": map[string]interface{}{
				"type":        "integer",
				"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", errors.New("missing required argument: query")
	}

	courseName, _ := args["course_name"].(string)
	lessonNumber := intArg(args, "lesson_number")

	results, err := t.store.Search(ctx, query, courseName, lessonNumber, 0)
	if err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", courseName), nil
		}
		return fmt.Sprintf("Search error: %v", err), nil
	}

	if results.IsEmpty() {
		filterInfo := ""
		if courseName != "" {
			filterInfo += fmt.Sprintf(" in course '%s'", courseName)
		}
		if lessonNumber != nil {
			filterInfo += fmt.Sprintf(" in lesson %d", *lessonNumber)
		}
		return fmt.Sprintf("No relevant content found%s.", filterInfo), nil
	}

	return t.format(results), nil
}

// format renders each hit under a bracketed course/lesson header and
// records a source entry per hit.
func (t *SearchTool) format(results *store.SearchResults) string {
	var (
		formatted []string
		sources   []Source
	)

	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		header := fmt.Sprintf("[%s]", meta.CourseTitle)
		sourceText := meta.CourseTitle
		link := ""
		if meta.LessonNumber != nil {
			header = fmt.Sprintf("[%s - Lesson %d]", meta.CourseTitle, *meta.LessonNumber)
			sourceText = fmt.Sprintf("%s - Lesson %d", meta.CourseTitle, *meta.LessonNumber)
			if l, ok := t.store.GetLessonLink(meta.CourseTitle, *meta.LessonNumber); ok {
				link = l
			}
		}

		formatted = append(formatted, header+"\n"+doc)
		sources = append(sources, Source{Text: sourceText, Link: link})
	}

	t.mu.Lock()
	t.lastSources = sources
	t.mu.Unlock()

	return strings.Join(formatted, "\n\n")
}

func (t *SearchTool) LastSources() []Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSources
}

func (t *SearchTool) ResetSources() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSources = nil
}

// intArg reads an integer argument that may arrive as a JSON float.
func intArg(args map[string]interface{}, key string) *int {
	switch v := args[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	default:
		return nil
	}
}
