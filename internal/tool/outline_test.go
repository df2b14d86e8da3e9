package tool

import (
	"context"
	"testing"

	"github.com/harunnryd/kouza/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOutlineToolFormatsCourse(t *testing.T) {
	ms := new(MockCourseStore)
	tool := NewOutlineTool(ms)

	ms.On("Outline", mock.Anything, "ML").Return(&store.Course{
		Title: "Introduction to Machine Learning",
		Link:  "https://example.com/ml-course",
		Lessons: []store.Lesson{
			{Number: 0, Title: "What is ML"},
			{Number: 1, Title: "Linear Models"},
		},
	}, nil).Once()

	result, err := tool.Execute(context.Background(), map[string]interface{}{"course_name": "ML"})
	require.NoError(t, err)

	assert.Contains(t, result, "Course: Introduction to Machine Learning")
	assert.Contains(t, result, "Course Link: https://example.com/ml-course")
	assert.Contains(t, result, "Number of lessons: 2")
	assert.Contains(t, result, "0. What is ML")
	assert.Contains(t, result, "1. Linear Models")

	sources := tool.LastSources()
	require.Len(t, sources, 1)
	assert.Equal(t, "Introduction to Machine Learning", sources[0].Text)
	assert.Equal(t, "https://example.com/ml-course", sources[0].Link)

	ms.AssertExpectations(t)
}

func TestOutlineToolUnknownCourse(t *testing.T) {
	ms := new(MockCourseStore)
	tool := NewOutlineTool(ms)

	ms.On("Outline", mock.Anything, "Nope").Return(nil, store.ErrCourseNotFound)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"course_name": "Nope"})
	require.NoError(t, err)
	assert.Equal(t, "No course found matching 'Nope'", result)
	assert.Empty(t, tool.LastSources())
}

func TestOutlineToolMissingArgument(t *testing.T) {
	ms := new(MockCourseStore)
	tool := NewOutlineTool(ms)

	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.Error(t, err)
}

func TestManagerDefinitionsAndDispatch(t *testing.T) {
	ms := new(MockCourseStore)
	manager := NewManager()
	manager.Register(NewSearchTool(ms))
	manager.Register(NewOutlineTool(ms))

	defs := manager.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "get_course_outline", defs[0].Name)
	assert.Equal(t, "search_course_content", defs[1].Name)
	assert.NotEmpty(t, defs[0].Description)
	assert.NotNil(t, defs[1].InputSchema)

	result, err := manager.Execute(context.Background(), "does_not_exist", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tool 'does_not_exist' not found", result)
}

func TestManagerSourceAggregation(t *testing.T) {
	ms := new(MockCourseStore)
	manager := NewManager()
	search := NewSearchTool(ms)
	manager.Register(search)

	ms.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(sampleResults(), nil)
	ms.On("GetLessonLink", mock.Anything, mock.Anything).Return("", false)

	_, err := manager.Execute(context.Background(), "search_course_content", map[string]interface{}{"query": "test"})
	require.NoError(t, err)

	require.Len(t, manager.LastSources(), 2)

	manager.ResetSources()
	assert.Empty(t, manager.LastSources())
}
