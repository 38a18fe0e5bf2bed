package models

// Fable is one scraped story. URL is the unique source identifier.
type Fable struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Content       string `json:"content"`
	WordCount     int    `json:"word_count"`
}

type ProcessedFable struct {
	Fable
	Document string
	Category string
}

type Metadata struct {
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	URL           string `json:"url"`
	WordCount     int    `json:"word_count"`
	CleanedLength int    `json:"cleaned_length"`
}

// Entry is what the vector store persists for each fable.
type Entry struct {
	ID        string
	Embedding []float32
	Metadata  Metadata
	Document  string
}

// Match is an Entry returned by a similarity query. Distance is the cosine
// distance to the query vector; smaller is closer.
type Match struct {
	Entry
	Distance float64
}
