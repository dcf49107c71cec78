package catalog

// Example is one React snippet in the catalog.
type Example struct {
	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Hooks       []string `yaml:"hooks" json:"hooks"`
	// Language is a dialect name accepted by parser.ParseDialect.
	Language string `yaml:"language" json:"language"`
	Code     string `yaml:"code" json:"code"`
	// Expected is the transform output, when the catalog pins it.
	Expected string `yaml:"expected,omitempty" json:"expected,omitempty"`
}

// ExampleSearchResult holds an example match with the reason it matched.
type ExampleSearchResult struct {
	Example     *Example `json:"example"`
	MatchReason string   `json:"match_reason"`
}
