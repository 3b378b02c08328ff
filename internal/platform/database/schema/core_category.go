// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreVocabularyTable describes the two slug-keyed vocabularies, core.category
// and core.genre, which share one physical layout.
type CoreVocabularyTable struct {
	Table     string
	ID        string
	Name      string
	Slug      string
	CreatedAt string
}

// CoreCategory is the schema definition for core.category
var CoreCategory = CoreVocabularyTable{
	Table:     "core.category",
	ID:        "id",
	Name:      "name",
	Slug:      "slug",
	CreatedAt: "createdat",
}

// CoreGenre is the schema definition for core.genre
var CoreGenre = CoreVocabularyTable{
	Table:     "core.genre",
	ID:        "id",
	Name:      "name",
	Slug:      "slug",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t CoreVocabularyTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.CreatedAt}
}

const (
	ConstraintCategorySlug = "category_slug_key"
	ConstraintGenreSlug    = "genre_slug_key"
)
