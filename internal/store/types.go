package store

// Course is the catalog entry for a single ingested course document.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Chunk is a unit of course text held in the content collection.
// LessonNumber is nil for text that precedes the first lesson marker.
type Chunk struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

type ChunkMeta struct {
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// SearchResults holds one parallel slice per field, ordered by ascending
// distance (closest match first).
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMeta
	Distances []float32
}

func (r *SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}
