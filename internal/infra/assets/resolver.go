package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps question ids and category names to static files on disk.
// A missing file is a normal outcome; the delivery layer falls back to text.
type Resolver struct {
	questionsDir string
	documentsDir string
}

func NewResolver(questionsDir, documentsDir string) *Resolver {
	return &Resolver{questionsDir: questionsDir, documentsDir: documentsDir}
}

// QuestionImage resolves the slide image for a question id.
func (r *Resolver) QuestionImage(questionID int) (string, bool) {
	path := filepath.Join(r.questionsDir, fmt.Sprintf("%d.png", questionID))
	return path, fileExists(path)
}

// CategoryDocument resolves the description document for a category.
func (r *Resolver) CategoryDocument(category string) (string, bool) {
	path := filepath.Join(r.documentsDir, strings.ToLower(category)+".pdf")
	return path, fileExists(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
