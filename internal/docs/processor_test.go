package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `Course Title: Building RAG Applications
Course Link: https://example.com/rag
Course Instructor: Jane Smith

Lesson 0: Introduction
Lesson Link: https://example.com/rag/lesson-0
Welcome to the course. We will cover retrieval augmented generation.

Lesson 1: Embeddings
Lesson Link: https://example.com/rag/lesson-1
Embeddings map text to vectors. Similar texts land close together.
`

func TestProcessFullScript(t *testing.T) {
	p := NewProcessor(800, 100)

	doc, err := p.Process("fallback", strings.NewReader(sampleScript))
	require.NoError(t, err)

	assert.Equal(t, "Building RAG Applications", doc.Course.Title)
	assert.Equal(t, "https://example.com/rag", doc.Course.Link)
	assert.Equal(t, "Jane Smith", doc.Course.Instructor)

	require.Len(t, doc.Course.Lessons, 2)
	assert.Equal(t, 0, doc.Course.Lessons[0].Number)
	assert.Equal(t, "Introduction", doc.Course.Lessons[0].Title)
	assert.Equal(t, "https://example.com/rag/lesson-0", doc.Course.Lessons[0].Link)
	assert.Equal(t, 1, doc.Course.Lessons[1].Number)
	assert.Equal(t, "Embeddings", doc.Course.Lessons[1].Title)

	require.Len(t, doc.Chunks, 2)
	assert.True(t, strings.HasPrefix(doc.Chunks[0].Content, "Course Building RAG Applications Lesson 0 content: "))
	assert.Contains(t, doc.Chunks[0].Content, "Welcome to the course.")
	assert.True(t, strings.HasPrefix(doc.Chunks[1].Content, "Course Building RAG Applications Lesson 1 content: "))

	for i, chunk := range doc.Chunks {
		assert.Equal(t, "Building RAG Applications", chunk.CourseTitle)
		assert.Equal(t, i, chunk.ChunkIndex)
		require.NotNil(t, chunk.LessonNumber)
	}
	assert.Equal(t, 0, *doc.Chunks[0].LessonNumber)
	assert.Equal(t, 1, *doc.Chunks[1].LessonNumber)
}

func TestProcessFallbackTitle(t *testing.T) {
	p := NewProcessor(800, 100)

	doc, err := p.Process("my_course", strings.NewReader("Just some text. Nothing else here."))
	require.NoError(t, err)

	assert.Equal(t, "my_course", doc.Course.Title)
	assert.Empty(t, doc.Course.Lessons)
	require.Len(t, doc.Chunks, 1)
	assert.Nil(t, doc.Chunks[0].LessonNumber)
	assert.Equal(t, "Just some text. Nothing else here.", doc.Chunks[0].Content)
}

func TestProcessPreLessonContent(t *testing.T) {
	p := NewProcessor(800, 100)
	script := `Course Title: Sample
About this course. It has one lesson.

Lesson 1: Only Lesson
Lesson content goes here.
`

	doc, err := p.Process("sample", strings.NewReader(script))
	require.NoError(t, err)

	require.Len(t, doc.Chunks, 2)
	assert.Nil(t, doc.Chunks[0].LessonNumber)
	assert.Equal(t, "About this course. It has one lesson.", doc.Chunks[0].Content)
	require.NotNil(t, doc.Chunks[1].LessonNumber)
	assert.Equal(t, 1, *doc.Chunks[1].LessonNumber)
}

func TestChunkTextRespectsSizeAndOverlap(t *testing.T) {
	p := NewProcessor(50, 20)
	text := "First sentence here. Second sentence here. Third sentence here."

	chunks := p.chunkText(text)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 50)
	}
	// The overlap window repeats trailing sentences at chunk boundaries.
	joined := strings.Join(chunks, " ")
	assert.Contains(t, joined, "Second sentence here.")
}

func TestChunkTextSingleLongSentence(t *testing.T) {
	p := NewProcessor(10, 5)
	long := "This single sentence is far longer than the chunk size."

	chunks := p.chunkText(long)
	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0])
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("Hello world. Is this working? Yes! It handles trailing text")
	assert.Equal(t, []string{
		"Hello world.",
		"Is this working?",
		"Yes!",
		"It handles trailing text",
	}, sentences)

	sentences = splitSentences("Wait for it... done.")
	assert.Equal(t, []string{"Wait for it...", "done."}, sentences)

	assert.Nil(t, splitSentences("   "))
}
