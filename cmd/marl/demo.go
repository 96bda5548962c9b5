package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/marl"
	"github.com/aretw0/marl/pkg/aggregate"
	"github.com/aretw0/marl/pkg/typed"
)

var commenterPrefix string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the blog walkthrough against the configured store",
	Long: `Resets the demo collections, inserts sample posts and users, and walks
through field queries and both aggregation strategies, printing the results.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		session, err := openSession(ctx)
		if err != nil {
			fatal("connecting store", err)
		}
		defer session.Close(ctx)

		posts, err := marl.NewRepository[Post](session, "posts", postMapping)
		if err != nil {
			fatal("binding posts repository", err)
		}
		users, err := marl.NewRepository[User](session, "users", userMapping)
		if err != nil {
			fatal("binding users repository", err)
		}

		if err := runPosts(ctx, posts); err != nil {
			fatal("posts walkthrough", err)
		}
		if err := runUsers(ctx, users); err != nil {
			fatal("users walkthrough", err)
		}
	},
}

func runPosts(ctx context.Context, posts *marl.Repository[Post]) error {
	// Start from a clean collection.
	if _, err := posts.DeleteWhere(ctx, nil); err != nil {
		return err
	}

	samples := []*Post{
		{
			Title:     "My First Post",
			Body:      "BlaBlaBLaBla",
			CharCount: 27,
			Comments: []Comment{
				{TimePosted: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), Email: "gipsz.jakab@gmail.com", Body: "Awesome"},
				{TimePosted: time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC), Email: "kiss.janos@gmail.com", Body: "Second comment"},
			},
		},
		{
			Title:     "My Second Post",
			Body:      "BlaBlaBla",
			CharCount: 34,
			Comments: []Comment{
				{TimePosted: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), Email: "gipsz.jakabb@gmail.com", Body: "Egy fokkal jobb"},
			},
		},
		{
			Title:     "My Third Post",
			Body:      "BllaBlabBla3",
			CharCount: 69,
			Comments: []Comment{
				{TimePosted: time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC), Email: "gipsz.jakabb@gmail.com", Body: "ASDASD"},
			},
		},
	}
	for _, post := range samples {
		if _, err := posts.Save(ctx, post); err != nil {
			return err
		}
	}

	// The first post was stored with a character count that does not match
	// its body. Correct it with a read-modify-write and re-save (an update
	// this time, since the post already has an identifier).
	all, err := posts.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, post := range all {
		if post.CharCount != len(post.Body) {
			post.CharCount = len(post.Body)
			if _, err := posts.Save(ctx, post); err != nil {
				return err
			}
			fmt.Printf("corrected charCount of %q to %d\n", post.Title, post.CharCount)
			break
		}
	}

	total, err := posts.Count(ctx, nil)
	if err != nil {
		return err
	}
	fmt.Printf("total posts: %d\n", total)

	// Posts with exactly two comments, counted with a reduction job.
	twoComments, err := aggregate.RunJob(ctx, posts, aggregate.Job[Post, string]{
		Filter: func(p *Post) bool { return len(p.Comments) == 2 },
		Map:    func(p *Post) (string, int64) { return "posts", 1 },
		Reduce: func(a, b int64) int64 { return a + b },
	})
	if err != nil {
		return err
	}
	fmt.Printf("posts with two comments: %d\n", twoComments["posts"])

	// Posts that received a comment after new year's day.
	newYear := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	commentedAfter, err := aggregate.RunJob(ctx, posts, aggregate.Job[Post, string]{
		Filter: func(p *Post) bool {
			for _, c := range p.Comments {
				if c.TimePosted.After(newYear) {
					return true
				}
			}
			return false
		},
		Map:    func(p *Post) (string, int64) { return "posts", 1 },
		Reduce: func(a, b int64) int64 { return a + b },
	})
	if err != nil {
		return err
	}
	fmt.Printf("posts commented on after %s: %d\n", newYear.Format("2006-01-02"), commentedAfter["posts"])

	// Total character count, once pushed through the store gateway and
	// once via the engine-side reduction. The two must agree.
	viaStore, err := posts.Reduce(ctx, marl.MapReduceJob{
		Map: func(doc marl.Document) (string, int64, bool) {
			n, err := typed.AsInt(doc.Fields["charCount"])
			if err != nil {
				return "", 0, false
			}
			return "total", int64(n), true
		},
		Reduce: func(a, b int64) int64 { return a + b },
	})
	if err != nil {
		return err
	}
	viaEngine, err := aggregate.Total(ctx, posts, func(p *Post) int64 { return int64(p.CharCount) })
	if err != nil {
		return err
	}
	fmt.Printf("character count: %d via store job, %d via direct aggregation\n", viaStore["total"], viaEngine)

	// Grouped stats keyed by "short post", restricted to posts somebody
	// with the given address prefix commented on.
	stats, err := aggregate.GroupStats(ctx, posts, aggregate.View[Post, bool]{
		Filter: func(p *Post) bool {
			for _, c := range p.Comments {
				if strings.HasPrefix(c.Email, commenterPrefix) {
					return true
				}
			}
			return false
		},
		Key:   func(p *Post) bool { return p.CharCount < 40 },
		Value: func(p *Post) int64 { return int64(p.CharCount) },
	})
	if err != nil {
		return err
	}
	for short, s := range stats {
		fmt.Printf("short=%v count=%d sum=%d avg=%.2f min=%d max=%d\n",
			short, s.Count, s.Sum, s.Average, s.Min, s.Max)
	}
	return nil
}

func runUsers(ctx context.Context, users *marl.Repository[User]) error {
	if _, err := users.DeleteWhere(ctx, nil); err != nil {
		return err
	}

	for _, user := range []*User{
		{Name: "Béla", Age: 30, Blog: "vezess.hu", Location: "Hun"},
		{Name: "Gipsz", Age: 27, Blog: "index.hu", Location: "Hun"},
	} {
		if _, err := users.InsertOne(ctx, user); err != nil {
			return err
		}
	}

	byName, err := users.GetByField(ctx, "name", "Béla")
	if err != nil {
		return err
	}
	byBlog, err := users.GetByField(ctx, "blog", "index.hu")
	if err != nil {
		return err
	}
	fmt.Printf("by name: %d match(es), by blog: %d match(es)\n", len(byName), len(byBlog))

	// Insert a third user, then remove her again by identifier.
	reka := &User{Name: "Réka", Age: 19, Blog: "smink.hu", Location: "hun"}
	id, err := users.InsertOne(ctx, reka)
	if err != nil {
		return err
	}
	removed, err := users.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("removed %s: %v\n", reka.Name, removed)

	// Move a blog without touching anything else.
	if len(byName) > 0 {
		target := byName[0]
		if err := users.UpdateField(ctx, target.ID, "blog", "index2.hu"); err != nil {
			return err
		}
		refetched, err := users.GetByField(ctx, marl.IDKey, target.ID)
		if err != nil {
			return err
		}
		if len(refetched) == 1 {
			fmt.Printf("%s now blogs at %s\n", refetched[0].Name, refetched[0].Blog)
		}
	}

	count, err := users.Count(ctx, nil)
	if err != nil {
		return err
	}
	fmt.Printf("users in collection: %d\n", count)
	return nil
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&commenterPrefix, "commenter", "gipsz", "Email prefix used for the grouped-stats filter")
}
