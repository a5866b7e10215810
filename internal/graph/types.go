package graph

import (
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/models"

	graphql "github.com/graph-gophers/graphql-go"
)

// ISO-8601 with milliseconds, always UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringList(values []string) *[]*string {
	out := make([]*string, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return &out
}

type userResolver struct{ u *models.User }

func (r *userResolver) ID() string { return r.u.ID }
func (r *userResolver) Email() string { return r.u.Email }
func (r *userResolver) Name() string { return r.u.Name }
func (r *userResolver) UserID() string { return r.u.UserID }
func (r *userResolver) Mobile() *string { return optional(r.u.Mobile) }
func (r *userResolver) ProfileImage() string { return r.u.ProfileImage }
func (r *userResolver) Gender() *string { return optional(r.u.Gender) }
func (r *userResolver) Bio() *string { return optional(r.u.Bio) }
func (r *userResolver) Timestamp() *string {
	ts := formatTime(r.u.CreatedAt)
	return &ts
}

type postResolver struct{ p *models.Post }

func (r *postResolver) ID() graphql.ID { return graphql.ID(r.p.ID) }
func (r *postResolver) Prompt() string { return r.p.Prompt }
func (r *postResolver) Category() string { return r.p.Category }
func (r *postResolver) Description() string { return r.p.Description }
func (r *postResolver) OutputURL() string { return r.p.OutputURL }
func (r *postResolver) Public() bool { return r.p.Public }
func (r *postResolver) Timestamp() string { return formatTime(r.p.CreatedAt) }
func (r *postResolver) AIModelTags() *[]*string { return stringList(r.p.AIModelTags) }
func (r *postResolver) CreatorID() string { return r.p.CreatorID }

func postList(posts []*models.Post) *[]*postResolver {
	out := make([]*postResolver, len(posts))
	for i, p := range posts {
		out[i] = &postResolver{p: p}
	}
	return &out
}

// getPostResponseResolver is the all-nullable post shape of the feed.
type getPostResponseResolver struct{ p *models.Post }

func (r *getPostResponseResolver) ID() *graphql.ID {
	id := graphql.ID(r.p.ID)
	return &id
}
func (r *getPostResponseResolver) Prompt() *string { return &r.p.Prompt }
func (r *getPostResponseResolver) Category() *string { return &r.p.Category }
func (r *getPostResponseResolver) Description() *string { return &r.p.Description }
func (r *getPostResponseResolver) OutputURL() *string { return &r.p.OutputURL }
func (r *getPostResponseResolver) Public() *bool { return &r.p.Public }
func (r *getPostResponseResolver) Timestamp() *string {
	ts := formatTime(r.p.CreatedAt)
	return &ts
}
func (r *getPostResponseResolver) AIModelTags() *[]*string { return stringList(r.p.AIModelTags) }
func (r *getPostResponseResolver) CreatorID() *string { return &r.p.CreatorID }

type commentResolver struct{ c *models.Comment }

func (r *commentResolver) ID() graphql.ID { return graphql.ID(r.c.ID) }
func (r *commentResolver) Timestamp() string { return formatTime(r.c.CreatedAt) }
func (r *commentResolver) Comment() string { return r.c.Text }
func (r *commentResolver) CommenterID() string { return r.c.CommenterID }

// likeResolver reports the liker's subject as the like id.
type likeResolver struct{ l *models.Like }

func (r *likeResolver) ID() graphql.ID { return graphql.ID(r.l.LikerID) }
func (r *likeResolver) Timestamp() string { return formatTime(r.l.CreatedAt) }
func (r *likeResolver) UserID() string { return r.l.UserID }

type userStatResolver struct{ e *models.FollowEdge }

func (r *userStatResolver) ID() string { return r.e.FollowerID }
func (r *userStatResolver) UserID() string { return r.e.FollowerUserID }

// followEntryResolver's id is the subject on the other side of the edge.
type followEntryResolver struct{ e *models.FollowEntry }

func (r *followEntryResolver) ID() string { return r.e.OtherID }
func (r *followEntryResolver) UserID() string { return r.e.UserID }
func (r *followEntryResolver) FollowingFrom() string { return formatTime(r.e.FollowingFrom) }

type messageResolver struct {
	id      string
	message string
}

func (r *messageResolver) ID() string { return r.id }
func (r *messageResolver) PostDocumentID() string { return r.id }
func (r *messageResolver) Message() string { return r.message }

type deleteCommentResolver struct {
	id      string
	message string
}

func (r *deleteCommentResolver) ID() graphql.ID { return graphql.ID(r.id) }
func (r *deleteCommentResolver) Message() string { return r.message }
