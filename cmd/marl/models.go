package main

import (
	"time"

	"github.com/aretw0/marl"
	"github.com/aretw0/marl/pkg/typed"
)

// Comment is an embedded document: it has no identity or lifecycle of its
// own and lives inside its parent post.
type Comment struct {
	TimePosted time.Time `json:"timePosted"`
	Email      string    `json:"email"`
	Body       string    `json:"body"`
}

// Post is a blog entry. CharCount is a stored attribute, not derived from
// Body on insert; the demo corrects mismatches with a read-modify-write
// the way the store's clients are expected to.
type Post struct {
	ID        string
	Title     string
	Body      string
	CharCount int
	Comments  []Comment
}

// User maps each attribute to a fixed external field name.
type User struct {
	ID       string
	Name     string
	Blog     string
	Age      int
	Location string
}

var postMapping = marl.Mapping[Post]{
	ID: marl.IDField[Post]{
		Get: func(p *Post) string { return p.ID },
		Set: func(p *Post, id string) { p.ID = id },
	},
	Fields: map[string]marl.Field[Post]{
		"title": {
			Get: func(p *Post) any { return p.Title },
			Set: func(p *Post, v any) error {
				s, err := typed.AsString(v)
				if err != nil {
					return err
				}
				p.Title = s
				return nil
			},
		},
		"body": {
			Get: func(p *Post) any { return p.Body },
			Set: func(p *Post, v any) error {
				s, err := typed.AsString(v)
				if err != nil {
					return err
				}
				p.Body = s
				return nil
			},
		},
		"charCount": {
			Get: func(p *Post) any { return p.CharCount },
			Set: func(p *Post, v any) error {
				n, err := typed.AsInt(v)
				if err != nil {
					return err
				}
				p.CharCount = n
				return nil
			},
		},
		"comments": {
			Get: func(p *Post) any { return p.Comments },
			Set: func(p *Post, v any) error {
				return typed.Remarshal(v, &p.Comments)
			},
		},
	},
}

var userMapping = marl.Mapping[User]{
	ID: marl.IDField[User]{
		Get: func(u *User) string { return u.ID },
		Set: func(u *User, id string) { u.ID = id },
	},
	Fields: map[string]marl.Field[User]{
		"name": {
			Get: func(u *User) any { return u.Name },
			Set: func(u *User, v any) error {
				s, err := typed.AsString(v)
				if err != nil {
					return err
				}
				u.Name = s
				return nil
			},
		},
		"blog": {
			Get: func(u *User) any { return u.Blog },
			Set: func(u *User, v any) error {
				s, err := typed.AsString(v)
				if err != nil {
					return err
				}
				u.Blog = s
				return nil
			},
		},
		"age": {
			Get: func(u *User) any { return u.Age },
			Set: func(u *User, v any) error {
				n, err := typed.AsInt(v)
				if err != nil {
					return err
				}
				u.Age = n
				return nil
			},
		},
		"location": {
			Get: func(u *User) any { return u.Location },
			Set: func(u *User, v any) error {
				s, err := typed.AsString(v)
				if err != nil {
					return err
				}
				u.Location = s
				return nil
			},
		},
	},
}
