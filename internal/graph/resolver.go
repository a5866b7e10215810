package graph

import (
	"context"

	"github.com/Pratik1374/API-GraphQL/internal/models"
	"github.com/Pratik1374/API-GraphQL/internal/service"

	graphql "github.com/graph-gophers/graphql-go"
)

// Resolver is the root resolver for RootQuery and RootMutation.
type Resolver struct {
	users    *service.UserService
	posts    *service.PostService
	comments *service.CommentService
	likes    *service.LikeService
	follows  *service.FollowService
}

func NewResolver(
	users *service.UserService,
	posts *service.PostService,
	comments *service.CommentService,
	likes *service.LikeService,
	follows *service.FollowService,
) *Resolver {
	return &Resolver{users: users, posts: posts, comments: comments, likes: likes, follows: follows}
}

type userInput struct {
	Email        *string
	Name         *string
	UserID       *string
	Mobile       *string
	ProfileImage *string
	Gender       *string
	Bio          *string
}

type postInput struct {
	Prompt      *string
	Category    *string
	Description *string
	OutputURL   *string
	Public      *bool
	AIModelTags *[]*string
}

type commentInput struct {
	PostUserID     *string
	PostDocumentID *string
	Comment        *string
}

type likeInput struct {
	PostUserID     *string
	PostDocumentID *string
}

type followerInput struct {
	FollowerUID *string
}

type postRefInput struct {
	PostDocumentID *string
}

type updateUserInput struct {
	Name         *string
	Mobile       *string
	ProfileImage *string
	Gender       *string
	Bio          *string
}

type unfollowInput struct {
	UserIDToUnfollow *string
}

type deletePostInput struct {
	PostUserID     *string
	PostDocumentID *string
}

type deleteCommentInput struct {
	PostDocumentID *graphql.ID
	CommentID      *graphql.ID
}

func derefID(id *graphql.ID) string {
	if id == nil {
		return ""
	}
	return string(*id)
}

// Hello is an authenticated liveness probe.
func (r *Resolver) Hello(ctx context.Context) (*string, error) {
	if callerID(ctx) == "" {
		return nil, models.NewUnauthenticatedError("Authentication required to access this resource")
	}
	msg := "Hello, World!"
	return &msg, nil
}

func (r *Resolver) GetSinglePost(ctx context.Context, args struct{ SinglePostInput *postRefInput }) (*postResolver, error) {
	var postID string
	if args.SinglePostInput != nil {
		postID = deref(args.SinglePostInput.PostDocumentID)
	}
	post, err := r.posts.GetPost(ctx, callerID(ctx), postID)
	if err != nil {
		return nil, resolverError(err)
	}
	return &postResolver{p: post}, nil
}

func (r *Resolver) GetUser(ctx context.Context) (*userResolver, error) {
	user, err := r.users.GetUser(ctx, callerID(ctx))
	if err != nil {
		return nil, resolverError(err)
	}
	return &userResolver{u: user}, nil
}

func (r *Resolver) GetMyPosts(ctx context.Context) (*[]*postResolver, error) {
	posts, err := r.posts.GetMyPosts(ctx, callerID(ctx))
	if err != nil {
		return nil, resolverError(err)
	}
	return postList(posts), nil
}

func (r *Resolver) GetPostsByCreation(ctx context.Context, args struct{ Limit *int32 }) (*[]*getPostResponseResolver, error) {
	var limit *int
	if args.Limit != nil {
		n := int(*args.Limit)
		limit = &n
	}
	posts, err := r.posts.GetRecentPosts(ctx, callerID(ctx), limit)
	if err != nil {
		return nil, resolverError(err)
	}
	out := make([]*getPostResponseResolver, len(posts))
	for i, p := range posts {
		out[i] = &getPostResponseResolver{p: p}
	}
	return &out, nil
}

func (r *Resolver) GetPostComments(ctx context.Context, args struct{ PostInput *postRefInput }) (*[]*commentResolver, error) {
	var postID string
	if args.PostInput != nil {
		postID = deref(args.PostInput.PostDocumentID)
	}
	comments, err := r.posts.GetPostComments(ctx, callerID(ctx), postID)
	if err != nil {
		return nil, resolverError(err)
	}
	out := make([]*commentResolver, len(comments))
	for i, c := range comments {
		out[i] = &commentResolver{c: c}
	}
	return &out, nil
}

func (r *Resolver) GetPostLikes(ctx context.Context, args struct{ PostInput *postRefInput }) (*[]*likeResolver, error) {
	var postID string
	if args.PostInput != nil {
		postID = deref(args.PostInput.PostDocumentID)
	}
	likes, err := r.posts.GetPostLikes(ctx, callerID(ctx), postID)
	if err != nil {
		return nil, resolverError(err)
	}
	out := make([]*likeResolver, len(likes))
	for i, l := range likes {
		out[i] = &likeResolver{l: l}
	}
	return &out, nil
}

type followListArgs struct {
	UserID *string
}

func (r *Resolver) GetFollowers(ctx context.Context, args followListArgs) (*[]*followEntryResolver, error) {
	entries, err := r.follows.GetFollowers(ctx, callerID(ctx), deref(args.UserID))
	if err != nil {
		return nil, resolverError(err)
	}
	return followEntries(entries), nil
}

func (r *Resolver) GetFollowing(ctx context.Context, args followListArgs) (*[]*followEntryResolver, error) {
	entries, err := r.follows.GetFollowing(ctx, callerID(ctx), deref(args.UserID))
	if err != nil {
		return nil, resolverError(err)
	}
	return followEntries(entries), nil
}

func followEntries(entries []*models.FollowEntry) *[]*followEntryResolver {
	out := make([]*followEntryResolver, len(entries))
	for i, e := range entries {
		out[i] = &followEntryResolver{e: e}
	}
	return &out
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ UserInput *userInput }) (*userResolver, error) {
	in := service.RegisterInput{CallerID: callerID(ctx)}
	if u := args.UserInput; u != nil {
		in.Email = deref(u.Email)
		in.Name = deref(u.Name)
		in.UserID = deref(u.UserID)
		in.Mobile = deref(u.Mobile)
		in.ProfileImage = deref(u.ProfileImage)
		in.Gender = deref(u.Gender)
		in.Bio = deref(u.Bio)
	}
	user, _, err := r.users.Register(ctx, in)
	if err != nil {
		return nil, resolverError(err)
	}
	return &userResolver{u: user}, nil
}

func (r *Resolver) CreatePost(ctx context.Context, args struct{ PostInput *postInput }) (*postResolver, error) {
	in := service.CreatePostInput{CallerID: callerID(ctx)}
	if p := args.PostInput; p != nil {
		in.Prompt = deref(p.Prompt)
		in.Category = deref(p.Category)
		in.Description = deref(p.Description)
		in.OutputURL = deref(p.OutputURL)
		if p.Public != nil {
			in.Public = *p.Public
		}
		if p.AIModelTags != nil {
			for _, tag := range *p.AIModelTags {
				if tag == nil {
					return nil, resolverError(models.NewValidationError("ai_model_tags must not contain null entries"))
				}
				in.AIModelTags = append(in.AIModelTags, *tag)
			}
		}
	}
	post, err := r.posts.CreatePost(ctx, in)
	if err != nil {
		return nil, resolverError(err)
	}
	return &postResolver{p: post}, nil
}

func (r *Resolver) CreateComment(ctx context.Context, args struct{ CommentInput *commentInput }) (*commentResolver, error) {
	in := service.CreateCommentInput{CallerID: callerID(ctx)}
	if c := args.CommentInput; c != nil {
		in.PostOwnerID = deref(c.PostUserID)
		in.PostID = deref(c.PostDocumentID)
		in.Text = deref(c.Comment)
	}
	comment, err := r.comments.CreateComment(ctx, in)
	if err != nil {
		return nil, resolverError(err)
	}
	return &commentResolver{c: comment}, nil
}

func toLikeInput(ctx context.Context, l *likeInput) service.LikeInput {
	in := service.LikeInput{CallerID: callerID(ctx)}
	if l != nil {
		in.PostOwnerID = deref(l.PostUserID)
		in.PostID = deref(l.PostDocumentID)
	}
	return in
}

func (r *Resolver) CreateLike(ctx context.Context, args struct{ LikeInput *likeInput }) (*likeResolver, error) {
	like, err := r.likes.CreateLike(ctx, toLikeInput(ctx, args.LikeInput))
	if err != nil {
		return nil, resolverError(err)
	}
	return &likeResolver{l: like}, nil
}

func (r *Resolver) CreateFollower(ctx context.Context, args struct{ FollowerInput *followerInput }) (*userStatResolver, error) {
	var followee string
	if args.FollowerInput != nil {
		followee = deref(args.FollowerInput.FollowerUID)
	}
	edge, err := r.follows.Follow(ctx, callerID(ctx), followee)
	if err != nil {
		return nil, resolverError(err)
	}
	return &userStatResolver{e: edge}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct{ UpdateUserInput *updateUserInput }) (*userResolver, error) {
	var upd models.UserUpdate
	if u := args.UpdateUserInput; u != nil {
		upd = models.UserUpdate{
			Name:         u.Name,
			Mobile:       u.Mobile,
			ProfileImage: u.ProfileImage,
			Gender:       u.Gender,
			Bio:          u.Bio,
		}
	}
	user, err := r.users.UpdateUser(ctx, callerID(ctx), upd)
	if err != nil {
		return nil, resolverError(err)
	}
	return &userResolver{u: user}, nil
}

func (r *Resolver) UnfollowUser(ctx context.Context, args struct{ UnfollowInput unfollowInput }) (*messageResolver, error) {
	caller := callerID(ctx)
	msg, err := r.follows.Unfollow(ctx, caller, deref(args.UnfollowInput.UserIDToUnfollow))
	if err != nil {
		return nil, resolverError(err)
	}
	return &messageResolver{id: caller, message: msg}, nil
}

func (r *Resolver) RemoveLike(ctx context.Context, args struct{ LikeInput likeInput }) (*messageResolver, error) {
	in := toLikeInput(ctx, &args.LikeInput)
	if err := r.likes.RemoveLike(ctx, in); err != nil {
		return nil, resolverError(err)
	}
	return &messageResolver{id: in.PostID, message: "Like removed successfully."}, nil
}

func (r *Resolver) DeletePost(ctx context.Context, args struct{ DeletePostInput deletePostInput }) (*messageResolver, error) {
	in := service.DeletePostInput{
		CallerID:    callerID(ctx),
		PostOwnerID: deref(args.DeletePostInput.PostUserID),
		PostID:      deref(args.DeletePostInput.PostDocumentID),
	}
	if err := r.posts.DeletePost(ctx, in); err != nil {
		return nil, resolverError(err)
	}
	return &messageResolver{id: in.PostID, message: "Post, comments, and likes have been deleted successfully"}, nil
}

func (r *Resolver) DeleteComment(ctx context.Context, args struct{ DeleteCommentInput deleteCommentInput }) (*deleteCommentResolver, error) {
	in := service.DeleteCommentInput{
		CallerID:  callerID(ctx),
		PostID:    derefID(args.DeleteCommentInput.PostDocumentID),
		CommentID: derefID(args.DeleteCommentInput.CommentID),
	}
	if err := r.comments.DeleteComment(ctx, in); err != nil {
		return nil, resolverError(err)
	}
	return &deleteCommentResolver{id: in.CommentID, message: "Comment has been deleted successfully"}, nil
}
