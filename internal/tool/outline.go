package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/harunnryd/kouza/internal/store"
)

// OutlineTool returns a course's full lesson list from the catalog.
type OutlineTool struct {
	store CourseStore

	mu          sync.Mutex
	lastSources []Source
}

func NewOutlineTool(store CourseStore) *OutlineTool {
	return &OutlineTool{store: store}
}

func (t *OutlineTool) Name() string { return "get_course_outline" }

func (t *OutlineTool) Description() string {
	return "Get the complete outline of a course including its title, link, and all lessons"
}

func (t *OutlineTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"course_name": map[string]interface{}{
				"type":        "string",
				"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
		},
		"required": []string{"course_name"},
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	courseName, ok := args["course_name"].(string)
	if !ok || courseName == "" {
		return "", errors.New("missing required argument: course_name")
	}

	course, err := t.store.Outline(ctx, courseName)
	if err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", courseName), nil
		}
		return fmt.Sprintf("Outline error: %v", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", course.Title)
	if course.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", course.Link)
	}
	fmt.Fprintf(&b, "Number of lessons: %d\n\nLessons:\n", len(course.Lessons))
	for _, lesson := range course.Lessons {
		fmt.Fprintf(&b, "%d. %s\n", lesson.Number, lesson.Title)
	}

	t.mu.Lock()
	t.lastSources = []Source{{Text: course.Title, Link: course.Link}}
	t.mu.Unlock()

	return strings.TrimRight(b.String(), "\n"), nil
}

func (t *OutlineTool) LastSources() []Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSources
}

func (t *OutlineTool) ResetSources() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSources = nil
}
