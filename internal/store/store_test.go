package store

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashEmbedder gives deterministic embeddings where texts sharing words
// land closer together than texts with no words in common.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 128)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%128]++
	}
	vec[0] += 0.01
	return vec, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{MaxResults: 5}, hashEmbedder{})
	require.NoError(t, err)
	return s
}

func lessonPtr(n int) *int { return &n }

func seedCourses(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.AddCourse(ctx, Course{
		Title:      "Introduction to Go",
		Link:       "https://example.com/go",
		Instructor: "Rob",
		Lessons: []Lesson{
			{Number: 0, Title: "Welcome", Link: "https://example.com/go/0"},
			{Number: 1, Title: "Syntax Basics", Link: "https://example.com/go/1"},
		},
	}))
	require.NoError(t, s.AddCourse(ctx, Course{
		Title:      "Advanced Databases",
		Instructor: "Ada",
		Lessons: []Lesson{
			{Number: 1, Title: "Indexes"},
		},
	}))

	require.NoError(t, s.AddChunks(ctx, []Chunk{
		{Content: "goroutines make concurrency simple", CourseTitle: "Introduction to Go", LessonNumber: lessonPtr(1), ChunkIndex: 0},
		{Content: "channels pass values between goroutines", CourseTitle: "Introduction to Go", LessonNumber: lessonPtr(1), ChunkIndex: 1},
		{Content: "btree indexes speed up lookups", CourseTitle: "Advanced Databases", LessonNumber: lessonPtr(1), ChunkIndex: 2},
	}))
}

func TestResolveCourseName(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)
	ctx := context.Background()

	// Exact title short-circuits the semantic lookup.
	title, err := s.ResolveCourseName(ctx, "Advanced Databases")
	require.NoError(t, err)
	assert.Equal(t, "Advanced Databases", title)

	// Partial name resolves through the catalog index.
	title, err = s.ResolveCourseName(ctx, "Go")
	require.NoError(t, err)
	assert.Equal(t, "Introduction to Go", title)
}

func TestResolveCourseNameEmptyCatalog(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ResolveCourseName(context.Background(), "Anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)
	ctx := context.Background()

	results, err := s.Search(ctx, "goroutines concurrency", "", nil, 0)
	require.NoError(t, err)
	require.False(t, results.IsEmpty())
	assert.Equal(t, "goroutines make concurrency simple", results.Documents[0])
	assert.Equal(t, "Introduction to Go", results.Metadata[0].CourseTitle)
	require.NotNil(t, results.Metadata[0].LessonNumber)
	assert.Equal(t, 1, *results.Metadata[0].LessonNumber)
	assert.Len(t, results.Distances, len(results.Documents))
}

func TestSearchWithCourseFilter(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)
	ctx := context.Background()

	results, err := s.Search(ctx, "indexes", "Databases", nil, 0)
	require.NoError(t, err)
	require.False(t, results.IsEmpty())
	for _, meta := range results.Metadata {
		assert.Equal(t, "Advanced Databases", meta.CourseTitle)
	}
}

func TestSearchWithLessonFilter(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)
	ctx := context.Background()

	require.NoError(t, s.AddChunks(ctx, []Chunk{
		{Content: "course overview before any lesson", CourseTitle: "Introduction to Go", LessonNumber: nil, ChunkIndex: 3},
	}))

	results, err := s.Search(ctx, "goroutines", "Introduction to Go", lessonPtr(1), 0)
	require.NoError(t, err)
	require.False(t, results.IsEmpty())
	for _, meta := range results.Metadata {
		require.NotNil(t, meta.LessonNumber)
		assert.Equal(t, 1, *meta.LessonNumber)
	}
}

func TestSearchEmptyStore(t *testing.T) {
	s := newTestStore(t)

	results, err := s.Search(context.Background(), "anything", "", nil, 0)
	require.NoError(t, err)
	assert.True(t, results.IsEmpty())
}

func TestSearchUnknownCourse(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Search(context.Background(), "anything", "Nope", nil, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestOutlineAndLinks(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)
	ctx := context.Background()

	course, err := s.Outline(ctx, "Introduction to Go")
	require.NoError(t, err)
	assert.Equal(t, "Introduction to Go", course.Title)
	assert.Len(t, course.Lessons, 2)

	link, ok := s.GetCourseLink("Introduction to Go")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/go", link)

	link, ok = s.GetLessonLink("Introduction to Go", 1)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/go/1", link)

	_, ok = s.GetLessonLink("Introduction to Go", 9)
	assert.False(t, ok)

	_, ok = s.GetCourseLink("Advanced Databases")
	assert.False(t, ok)
}

func TestListAndCount(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	assert.Equal(t, 2, s.CourseCount())
	assert.Equal(t, []string{"Advanced Databases", "Introduction to Go"}, s.ListCourseTitles())
	assert.True(t, s.HasCourse("Introduction to Go"))
	assert.False(t, s.HasCourse("Missing"))
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	require.NoError(t, s.Clear())

	assert.Equal(t, 0, s.CourseCount())
	results, err := s.Search(context.Background(), "goroutines", "", nil, 0)
	require.NoError(t, err)
	assert.True(t, results.IsEmpty())
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Path:       dir,
		MaxResults: 5,
		Lock: &FileLockConfig{
			LockTimeout:  time.Second,
			LockRetry:    10 * time.Millisecond,
			LockMaxRetry: 3,
		},
	}

	s, err := New(cfg, hashEmbedder{})
	require.NoError(t, err)
	seedCourses(t, s)
	s.Close()

	reopened, err := New(cfg, hashEmbedder{})
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.CourseCount())

	results, err := reopened.Search(context.Background(), "goroutines concurrency", "", nil, 0)
	require.NoError(t, err)
	require.False(t, results.IsEmpty())
	assert.Equal(t, "goroutines make concurrency simple", results.Documents[0])
}

func TestIndexLockExclusion(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Path:       dir,
		MaxResults: 5,
		Lock: &FileLockConfig{
			LockTimeout:  200 * time.Millisecond,
			LockRetry:    10 * time.Millisecond,
			LockMaxRetry: 2,
		},
	}

	first, err := New(cfg, hashEmbedder{})
	require.NoError(t, err)
	defer first.Close()

	_, err = New(cfg, hashEmbedder{})
	require.Error(t, err)
}
