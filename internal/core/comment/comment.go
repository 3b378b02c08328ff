// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comment implements the comment thread attached to a review.

Any authenticated user may comment; only the author or a moderator/admin may
edit or delete. Comments disappear with their review or their author.
*/
package comment

import "time"

// Comment is a reply attached to a review.
type Comment struct {
	ID        string    `json:"id"`
	ReviewID  string    `json:"review_id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"pub_date"`
	UpdatedAt time.Time `json:"-"`
}

// FieldText is the only writable comment field.
const FieldText = "text"
