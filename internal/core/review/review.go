// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package review implements the review ledger: one scored review per user per title.

# Invariants

  - At most one review per (title, author), enforced by a unique constraint.
  - Score is an integer in [1, 10].
  - Every mutation recomputes the title's rating in the same transaction,
    after taking the title row lock.
*/
package review

import "time"

// Review is a user's scored opinion of a title.
type Review struct {
	ID        string    `json:"id"`
	TitleID   string    `json:"title_id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"pub_date"`
	UpdatedAt time.Time `json:"-"`
}

// Input carries review fields. On create both are required; on update nil
// fields keep their stored value.
type Input struct {
	Text  *string
	Score *int
}

// Field names reported in validation details.
const (
	FieldText  = "text"
	FieldScore = "score"
)
