package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// QuestionSet is the static quiz content file: the category -> question-id
// mapping the bank is built from, plus the display prompts keyed by id.
type QuestionSet struct {
	Categories map[string][]string `yaml:"categories"`
	Prompts    map[string]string   `yaml:"prompts"`
}

// LoadQuestions reads the quiz content YAML from path.
func LoadQuestions(path string) (QuestionSet, error) {
	set := QuestionSet{}
	data, err := os.ReadFile(path)
	if err != nil {
		return set, err
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return set, err
	}
	return set, nil
}

// Prompt returns the display text for a question id, or "" when the content
// file carries no prompt (the delivery layer falls back to a generic line).
func (s QuestionSet) Prompt(id int) string {
	return s.Prompts[strconv.Itoa(id)]
}
