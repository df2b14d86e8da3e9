// Package docs parses course scripts and splits them into embeddable chunks.
//
// A course script starts with a short header:
//
//	Course Title: Building RAG Applications
//	Course Link: https://example.com/course
//	Course Instructor: Jane Smith
//
// followed by lesson sections introduced by "Lesson N: title" markers, each
// optionally carrying a "Lesson Link:" line before the transcript text.
package docs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/harunnryd/kouza/internal/store"
)

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

const (
	titlePrefix      = "Course Title:"
	linkPrefix       = "Course Link:"
	instructorPrefix = "Course Instructor:"
	lessonLinkPrefix = "Lesson Link:"
)

// Document is one parsed course script.
type Document struct {
	Course store.Course
	Chunks []store.Chunk
}

type Processor struct {
	chunkSize    int
	chunkOverlap int
}

func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
	}
	return &Processor{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

func (p *Processor) ProcessFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open course script: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return p.Process(name, f)
}

// Process parses a course script. name is the fallback course title when
// the header carries none.
func (p *Processor) Process(name string, r io.Reader) (*Document, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read course script: %w", err)
	}

	course := store.Course{Title: name}
	body := 0

	// The header is a run of prefixed lines at the top of the file.
headerLoop:
	for body < len(lines) {
		line := strings.TrimSpace(lines[body])
		switch {
		case line == "" && body < 4:
		case strings.HasPrefix(line, titlePrefix):
			course.Title = strings.TrimSpace(strings.TrimPrefix(line, titlePrefix))
		case strings.HasPrefix(line, linkPrefix):
			course.Link = strings.TrimSpace(strings.TrimPrefix(line, linkPrefix))
		case strings.HasPrefix(line, instructorPrefix):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, instructorPrefix))
		default:
			break headerLoop
		}
		body++
	}

	doc := &Document{Course: course}
	chunkIndex := 0

	var (
		currentLesson *store.Lesson
		buf           []string
	)

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, " "))
		buf = buf[:0]
		if text == "" {
			return
		}
		var lessonNumber *int
		if currentLesson != nil {
			n := currentLesson.Number
			lessonNumber = &n
		}
		for i, chunk := range p.chunkText(text) {
			if i == 0 && lessonNumber != nil {
				chunk = fmt.Sprintf("Course %s Lesson %d content: %s", doc.Course.Title, *lessonNumber, chunk)
			}
			doc.Chunks = append(doc.Chunks, store.Chunk{
				Content:      chunk,
				CourseTitle:  doc.Course.Title,
				LessonNumber: lessonNumber,
				ChunkIndex:   chunkIndex,
			})
			chunkIndex++
		}
	}

	for i := body; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if m := lessonMarker.FindStringSubmatch(line); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			doc.Course.Lessons = append(doc.Course.Lessons, store.Lesson{
				Number: number,
				Title:  strings.TrimSpace(m[2]),
			})
			currentLesson = &doc.Course.Lessons[len(doc.Course.Lessons)-1]
			continue
		}

		if currentLesson != nil && strings.HasPrefix(line, lessonLinkPrefix) && currentLesson.Link == "" && len(buf) == 0 {
			currentLesson.Link = strings.TrimSpace(strings.TrimPrefix(line, lessonLinkPrefix))
			continue
		}

		if line != "" {
			buf = append(buf, line)
		}
	}
	flush()

	return doc, nil
}

// chunkText packs whole sentences into chunks of at most chunkSize
// characters, carrying up to chunkOverlap trailing characters into the
// next chunk.
func (p *Processor) chunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		var current []string
		size := 0
		j := i
		for j < len(sentences) {
			add := len(sentences[j])
			if len(current) > 0 {
				add++
			}
			if size+add > p.chunkSize && len(current) > 0 {
				break
			}
			current = append(current, sentences[j])
			size += add
			j++
		}
		chunks = append(chunks, strings.Join(current, " "))
		if j >= len(sentences) {
			break
		}

		// Walk back over trailing sentences that fit in the overlap window.
		next := j
		overlap := 0
		for next > i+1 {
			n := len(sentences[next-1])
			if overlap+n > p.chunkOverlap {
				break
			}
			overlap += n
			next--
		}
		i = next
	}
	return chunks
}

// splitSentences breaks normalized text after runs of sentence terminators
// that are followed by whitespace.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i + 1
		for j < len(text) && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
			j++
		}
		if j >= len(text) || text[j] == ' ' {
			if s := strings.TrimSpace(text[start:j]); s != "" {
				sentences = append(sentences, s)
			}
			start = j + 1
		}
		i = j - 1
	}
	if start < len(text) {
		if s := strings.TrimSpace(text[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
