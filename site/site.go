// Package site holds the blog's global metadata.
package site

const (
	Title       = "Tech-Vexy | Veldrine Evelia"
	Description = "Personal blog of Veldrine Evelia - Computer Systems Engineering student passionate about AI/ML and building innovative solutions. Sharing insights on development, technology, and learning journey."
)
