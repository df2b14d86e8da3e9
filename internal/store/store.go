// Package store persists course metadata and embedded course content,
// and answers semantic queries against them.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/philippgille/chromem-go"
)

const (
	catalogCollection = "course_catalog"
	contentCollection = "course_content"

	catalogFileName = "catalog.json"
)

// ErrCourseNotFound is returned when a course name filter cannot be
// resolved against the catalog.
var ErrCourseNotFound = errors.New("course not found")

// Embedder turns text into a vector. Both collections share one embedder
// so queries and documents live in the same space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Config struct {
	// Path is the index directory. Empty means a volatile in-memory index.
	Path       string
	MaxResults int
	Lock       *FileLockConfig
}

// Store owns the vector index and the course catalog. All methods are safe
// for concurrent use.
type Store struct {
	db         *chromem.DB
	catalog    *chromem.Collection
	content    *chromem.Collection
	embedFn    chromem.EmbeddingFunc
	path       string
	maxResults int
	lock       *FileLock

	mu          sync.RWMutex
	courses     map[string]Course
	chunkCounts map[string]map[string]int
}

// catalogFile is the on-disk shape of catalog.json. Chunk counts are kept
// so queries never ask the index for more results than a filter can match.
type catalogFile struct {
	Courses     map[string]Course         `json:"courses"`
	ChunkCounts map[string]map[string]int `json:"chunk_counts"`
}

func New(cfg Config, embedder Embedder) (*Store, error) {
	s := &Store{
		path:        cfg.Path,
		maxResults:  cfg.MaxResults,
		embedFn:     chromem.EmbeddingFunc(embedder.Embed),
		courses:     make(map[string]Course),
		chunkCounts: make(map[string]map[string]int),
	}
	if s.maxResults <= 0 {
		s.maxResults = 5
	}

	if cfg.Path == "" {
		s.db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index dir: %w", err)
		}
		if cfg.Lock != nil {
			lock, err := NewFileLock(cfg.Path, cfg.Lock)
			if err != nil {
				return nil, fmt.Errorf("failed to acquire index lock: %w", err)
			}
			s.lock = lock
		}
		db, err := chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			if s.lock != nil {
				s.lock.Unlock()
			}
			return nil, fmt.Errorf("failed to init vector db: %w", err)
		}
		s.db = db
	}

	if err := s.initCollections(); err != nil {
		if s.lock != nil {
			s.lock.Unlock()
		}
		return nil, err
	}

	if err := s.loadCatalog(); err != nil {
		if s.lock != nil {
			s.lock.Unlock()
		}
		return nil, err
	}

	return s, nil
}

func (s *Store) initCollections() error {
	catalog, err := s.db.GetOrCreateCollection(catalogCollection, nil, s.embedFn)
	if err != nil {
		return fmt.Errorf("failed to open catalog collection: %w", err)
	}
	content, err := s.db.GetOrCreateCollection(contentCollection, nil, s.embedFn)
	if err != nil {
		return fmt.Errorf("failed to open content collection: %w", err)
	}
	s.catalog = catalog
	s.content = content
	return nil
}

// Close releases the index lock, if any.
func (s *Store) Close() {
	if s.lock != nil {
		s.lock.Unlock()
	}
}

// AddCourse registers a course in the catalog. The title doubles as the
// catalog document so fuzzy name matching works through the same index.
func (s *Store) AddCourse(ctx context.Context, course Course) error {
	if course.Title == "" {
		return errors.New("course title is empty")
	}

	metadata := map[string]string{
		"title":        course.Title,
		"lesson_count": strconv.Itoa(len(course.Lessons)),
	}
	if course.Instructor != "" {
		metadata["instructor"] = course.Instructor
	}
	if course.Link != "" {
		metadata["link"] = course.Link
	}

	err := s.catalog.AddDocuments(ctx, []chromem.Document{
		{
			ID:       course.Title,
			Content:  course.Title,
			Metadata: metadata,
		},
	}, 1)
	if err != nil {
		return fmt.Errorf("failed to add course to catalog: %w", err)
	}

	s.mu.Lock()
	s.courses[course.Title] = course
	s.mu.Unlock()

	return s.saveCatalog()
}

// AddChunks embeds and stores course content chunks.
func (s *Store) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		metadata := map[string]string{
			"course_title": chunk.CourseTitle,
			"chunk_index":  strconv.Itoa(chunk.ChunkIndex),
		}
		if chunk.LessonNumber != nil {
			metadata["lesson_number"] = strconv.Itoa(*chunk.LessonNumber)
		}
		docs = append(docs, chromem.Document{
			ID:       fmt.Sprintf("%s_%d", strings.ReplaceAll(chunk.CourseTitle, " ", "_"), chunk.ChunkIndex),
			Content:  chunk.Content,
			Metadata: metadata,
		})
	}

	if err := s.content.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add chunks: %w", err)
	}

	s.mu.Lock()
	for _, chunk := range chunks {
		counts, ok := s.chunkCounts[chunk.CourseTitle]
		if !ok {
			counts = make(map[string]int)
			s.chunkCounts[chunk.CourseTitle] = counts
		}
		counts[lessonKey(chunk.LessonNumber)]++
	}
	s.mu.Unlock()

	return s.saveCatalog()
}

func lessonKey(lessonNumber *int) string {
	if lessonNumber == nil {
		return ""
	}
	return strconv.Itoa(*lessonNumber)
}

// availableChunks reports how many stored chunks a course/lesson filter
// can match at most.
func (s *Store) availableChunks(courseTitle string, lessonNumber *int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if courseTitle == "" && lessonNumber == nil {
		return s.content.Count()
	}

	total := 0
	for title, counts := range s.chunkCounts {
		if courseTitle != "" && title != courseTitle {
			continue
		}
		if lessonNumber == nil {
			for _, n := range counts {
				total += n
			}
		} else {
			total += counts[lessonKey(lessonNumber)]
		}
	}
	return total
}

// Search runs a semantic query over course content. courseName, when set,
// is resolved against the catalog first; lessonNumber, when set, narrows
// results to one lesson. limit <= 0 falls back to the configured maximum.
func (s *Store) Search(ctx context.Context, query, courseName string, lessonNumber *int, limit int) (*SearchResults, error) {
	where := map[string]string{}
	resolvedTitle := ""

	if courseName != "" {
		title, err := s.ResolveCourseName(ctx, courseName)
		if err != nil {
			return nil, err
		}
		resolvedTitle = title
		where["course_title"] = title
	}
	if lessonNumber != nil {
		where["lesson_number"] = strconv.Itoa(*lessonNumber)
	}
	if len(where) == 0 {
		where = nil
	}

	if limit <= 0 {
		limit = s.maxResults
	}
	if available := s.availableChunks(resolvedTitle, lessonNumber); available < limit {
		limit = available
	}
	if limit == 0 {
		return &SearchResults{}, nil
	}

	results, err := s.content.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	out := &SearchResults{}
	for _, res := range results {
		out.Documents = append(out.Documents, res.Content)
		out.Metadata = append(out.Metadata, parseChunkMeta(res.Metadata))
		out.Distances = append(out.Distances, 1-res.Similarity)
	}
	return out, nil
}

// ResolveCourseName maps a partial or fuzzy course name to an exact catalog
// title, preferring an exact match over the semantic one.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	_, exact := s.courses[name]
	s.mu.RUnlock()
	if exact {
		return name, nil
	}

	if s.catalog.Count() == 0 {
		return "", fmt.Errorf("%w: %s", ErrCourseNotFound, name)
	}

	results, err := s.catalog.Query(ctx, name, 1, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to resolve course name: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%w: %s", ErrCourseNotFound, name)
	}
	return results[0].Metadata["title"], nil
}

// Outline returns the full catalog entry for a course name.
func (s *Store) Outline(ctx context.Context, name string) (*Course, error) {
	title, err := s.ResolveCourseName(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	course, ok := s.courses[title]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, name)
	}
	return &course, nil
}

func (s *Store) GetCourseLink(title string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[title]
	if !ok || course.Link == "" {
		return "", false
	}
	return course.Link, true
}

func (s *Store) GetLessonLink(courseTitle string, lessonNumber int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[courseTitle]
	if !ok {
		return "", false
	}
	for _, lesson := range course.Lessons {
		if lesson.Number == lessonNumber && lesson.Link != "" {
			return lesson.Link, true
		}
	}
	return "", false
}

func (s *Store) ListCourseTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, 0, len(s.courses))
	for title := range s.courses {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

func (s *Store) CourseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

// HasCourse reports whether a course title is already in the catalog.
func (s *Store) HasCourse(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.courses[title]
	return ok
}

// Clear drops both collections and the catalog.
func (s *Store) Clear() error {
	if err := s.db.DeleteCollection(catalogCollection); err != nil {
		return fmt.Errorf("failed to delete catalog collection: %w", err)
	}
	if err := s.db.DeleteCollection(contentCollection); err != nil {
		return fmt.Errorf("failed to delete content collection: %w", err)
	}
	if err := s.initCollections(); err != nil {
		return err
	}

	s.mu.Lock()
	s.courses = make(map[string]Course)
	s.chunkCounts = make(map[string]map[string]int)
	s.mu.Unlock()

	return s.saveCatalog()
}

func (s *Store) catalogPath() string {
	return filepath.Join(s.path, catalogFileName)
}

func (s *Store) loadCatalog() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.catalogPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	var parsed catalogFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		slog.Warn("Failed to parse catalog, starting fresh", "path", s.catalogPath(), "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if parsed.Courses != nil {
		s.courses = parsed.Courses
	}
	if parsed.ChunkCounts != nil {
		s.chunkCounts = parsed.ChunkCounts
	}
	return nil
}

func (s *Store) saveCatalog() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	data, err := json.MarshalIndent(catalogFile{
		Courses:     s.courses,
		ChunkCounts: s.chunkCounts,
	}, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := atomic.WriteFile(s.catalogPath(), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

func parseChunkMeta(metadata map[string]string) ChunkMeta {
	meta := ChunkMeta{
		CourseTitle: metadata["course_title"],
	}
	if raw, ok := metadata["lesson_number"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			meta.LessonNumber = &n
		}
	}
	if raw, ok := metadata["chunk_index"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			meta.ChunkIndex = n
		}
	}
	return meta
}
