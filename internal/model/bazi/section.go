package bazi

// Section is a titled group of narrative paragraphs.
type Section struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}
