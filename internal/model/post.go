package model

import "time"

// Post is a blog post owned by exactly one user.
//
// AuthorID and CreatedAt are fixed at creation; updates replace Title,
// Content and Tags only. Tags keep the order the author typed them in.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}
