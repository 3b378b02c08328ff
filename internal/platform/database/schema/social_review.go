// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SocialReviewTable represents the 'social.review' table
type SocialReviewTable struct {
	Table     string
	ID        string
	TitleID   string
	AuthorID  string
	Text      string
	Score     string
	CreatedAt string
	UpdatedAt string
}

// SocialReview is the schema definition for social.review
var SocialReview = SocialReviewTable{
	Table:     "social.review",
	ID:        "id",
	TitleID:   "titleid",
	AuthorID:  "authorid",
	Text:      "text",
	Score:     "score",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// ConstraintReviewTitleAuthor is the UNIQUE(titleid, authorid) constraint.
const ConstraintReviewTitleAuthor = "review_title_author_key"
