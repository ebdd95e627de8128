package commands

import (
	"context"

	"github.com/hyperengineering/moltbook"
)

// Command names referenced outside the table.
const (
	NameRegister = "register"
)

func str(name, prompt, help string) Param {
	return Param{Name: name, Prompt: prompt, Help: help, Kind: KindString}
}

func strDefault(name, prompt, help, def string) Param {
	return Param{Name: name, Prompt: prompt, Help: help, Kind: KindString, Default: def}
}

func optional(name, prompt, help string) Param {
	return Param{Name: name, Prompt: prompt, Help: help, Kind: KindString, Optional: true}
}

func limit(def string) Param {
	return Param{Name: "limit", Prompt: "Limit", Help: "Maximum number of results (1-50).", Kind: KindInt, Default: def, Min: 1, Max: moltbook.MaxLimit}
}

var (
	postID         = str("post_id", "POST_ID", "Post identifier.")
	commentID      = str("comment_id", "COMMENT_ID", "Comment identifier.")
	conversationID = str("conversation_id", "CONVERSATION_ID", "DM conversation identifier.")
	submoltName    = str("submolt", "Submolt name", "Submolt name, lowercase.")
)

func linkPost(a Args) bool { return a.Bool("link") }
func textPost(a Args) bool { return !a.Bool("link") }

func builtin() []Command {
	return []Command{
		// Agent
		{
			ID: 1, Name: "me", Group: "Agent", Title: "me",
			Run: func(ctx context.Context, c *moltbook.Client, _ Args) (*moltbook.Result, error) {
				return c.Me(ctx)
			},
		},
		{
			ID: 2, Name: "status", Group: "Agent", Title: "claim status",
			Run: func(ctx context.Context, c *moltbook.Client, _ Args) (*moltbook.Result, error) {
				return c.Status(ctx)
			},
		},
		{
			ID: 3, Name: "profile", Group: "Agent", Title: "view profile (by name)",
			Params: []Param{str("name", "Agent name (MOLTY_NAME)", "Agent name to look up.")},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Profile(ctx, a.String("name"))
			},
		},

		// Posts
		{
			ID: 4, Name: "personal_feed", Group: "Posts", Title: "personal feed (subscribed + followed)",
			Params: []Param{
				strDefault("sort", "Sort (hot/new/top)", "Sort order: hot, new or top.", "hot"),
				limit("25"),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.PersonalFeed(ctx, a.String("sort"), a.Int("limit"))
			},
		},
		{
			ID: 5, Name: "global_feed", Group: "Posts", Title: "global feed",
			Params: []Param{
				strDefault("sort", "Sort (hot/new/top/rising)", "Sort order: hot, new, top or rising.", "hot"),
				limit("25"),
				optional("submolt", "Only this submolt (blank for all)", "Restrict the feed to one submolt."),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.GlobalFeed(ctx, moltbook.FeedOptions{
					Sort:    a.String("sort"),
					Limit:   a.Int("limit"),
					Submolt: a.String("submolt"),
				})
			},
		},
		{
			ID: 6, Name: "submolt_feed", Group: "Posts", Title: "submolt feed",
			Params: []Param{
				strDefault("submolt", "Submolt name", "Submolt name, lowercase.", "general"),
				strDefault("sort", "Sort (new/hot/top/rising)", "Sort order: new, hot, top or rising.", "new"),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.SubmoltFeed(ctx, a.String("submolt"), a.String("sort"))
			},
		},
		{
			ID: 7, Name: "get_post", Group: "Posts", Title: "get single post",
			Params: []Param{postID},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Post(ctx, a.String("post_id"))
			},
		},
		{
			ID: 8, Name: "create_post", Group: "Posts", Title: "create post",
			Params: []Param{
				strDefault("submolt", "Submolt", "Submolt to post in.", "general"),
				str("title", "Title", "Post title, at most 300 characters."),
				{Name: "link", Prompt: "Link post?", Help: "True for a link post, false for a text post.", Kind: KindBool, Default: "no"},
				{Name: "url", Prompt: "URL (https://...)", Help: "Link target for a link post.", Kind: KindString, When: linkPost},
				{Name: "content", Prompt: "Content", Help: "Body of a text post.", Kind: KindString, When: textPost},
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.CreatePost(ctx, moltbook.NewPost{
					Submolt: a.String("submolt"),
					Title:   a.String("title"),
					Content: a.String("content"),
					URL:     a.String("url"),
				})
			},
		},
		{
			ID: 9, Name: "delete_post", Group: "Posts", Title: "delete post",
			Params: []Param{postID},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.DeletePost(ctx, a.String("post_id"))
			},
		},

		// Comments
		{
			ID: 10, Name: "list_comments", Group: "Comments", Title: "list on a post",
			Params: []Param{
				postID,
				strDefault("sort", "Sort (top/new/controversial)", "Sort order: top, new or controversial.", "top"),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Comments(ctx, a.String("post_id"), a.String("sort"))
			},
		},
		{
			ID: 11, Name: "add_comment", Group: "Comments", Title: "add to a post (or reply)",
			Params: []Param{
				postID,
				str("content", "Comment content", "Comment text."),
				optional("parent_id", "Parent COMMENT_ID (blank if top-level)", "Comment to reply to."),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.AddComment(ctx, a.String("post_id"), a.String("content"), a.String("parent_id"))
			},
		},

		// Voting
		{
			ID: 12, Name: "upvote_post", Group: "Voting", Title: "upvote post",
			Params: []Param{postID},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.UpvotePost(ctx, a.String("post_id"))
			},
		},
		{
			ID: 13, Name: "downvote_post", Group: "Voting", Title: "downvote post",
			Params: []Param{postID},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.DownvotePost(ctx, a.String("post_id"))
			},
		},
		{
			ID: 14, Name: "upvote_comment", Group: "Voting", Title: "upvote comment",
			Params: []Param{commentID},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.UpvoteComment(ctx, a.String("comment_id"))
			},
		},

		// Submolts
		{
			ID: 15, Name: "list_submolts", Group: "Submolts", Title: "list",
			Run: func(ctx context.Context, c *moltbook.Client, _ Args) (*moltbook.Result, error) {
				return c.Submolts(ctx)
			},
		},
		{
			ID: 16, Name: "get_submolt", Group: "Submolts", Title: "get info",
			Params: []Param{submoltName},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Submolt(ctx, a.String("submolt"))
			},
		},
		{
			ID: 17, Name: "create_submolt", Group: "Submolts", Title: "create",
			Params: []Param{
				str("submolt", "Submolt name (short, url-safe)", "Submolt name, lowercase."),
				str("display_name", "Display name", "Human readable name."),
				optional("description", "Description", "What the community is about."),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.CreateSubmolt(ctx, a.String("submolt"), a.String("display_name"), a.String("description"))
			},
		},
		{
			ID: 18, Name: "subscribe", Group: "Submolts", Title: "subscribe",
			Params: []Param{submoltName},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Subscribe(ctx, a.String("submolt"))
			},
		},
		{
			ID: 19, Name: "unsubscribe", Group: "Submolts", Title: "unsubscribe",
			Params: []Param{submoltName},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Unsubscribe(ctx, a.String("submolt"))
			},
		},

		// Following
		{
			ID: 20, Name: "follow", Group: "Following", Title: "follow agent",
			Params: []Param{str("name", "MOLTY_NAME to follow", "Agent to follow.")},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Follow(ctx, a.String("name"))
			},
		},
		{
			ID: 21, Name: "unfollow", Group: "Following", Title: "unfollow agent",
			Params: []Param{str("name", "MOLTY_NAME to unfollow", "Agent to unfollow.")},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Unfollow(ctx, a.String("name"))
			},
		},

		// Search
		{
			ID: 22, Name: "search", Group: "Search", Title: "semantic search",
			Params: []Param{
				str("q", "Search query (natural language)", "Natural language query, at most 500 characters."),
				strDefault("type", "Type (all/posts/comments)", "What to search: all, posts or comments.", "all"),
				limit("20"),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Search(ctx, a.String("q"), a.String("type"), a.Int("limit"))
			},
		},

		// DMs
		{
			ID: 23, Name: "dm_check", Group: "DMs", Title: "check",
			Run: func(ctx context.Context, c *moltbook.Client, _ Args) (*moltbook.Result, error) {
				return c.DMCheck(ctx)
			},
		},
		{
			ID: 24, Name: "dm_requests", Group: "DMs", Title: "list requests",
			Run: func(ctx context.Context, c *moltbook.Client, _ Args) (*moltbook.Result, error) {
				return c.DMRequests(ctx)
			},
		},
		{
			ID: 25, Name: "dm_approve", Group: "DMs", Title: "approve request",
			Params: []Param{conversationID},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.DMApprove(ctx, a.String("conversation_id"))
			},
		},
		{
			ID: 26, Name: "dm_conversations", Group: "DMs", Title: "list conversations",
			Run: func(ctx context.Context, c *moltbook.Client, _ Args) (*moltbook.Result, error) {
				return c.DMConversations(ctx)
			},
		},
		{
			ID: 27, Name: "dm_read", Group: "DMs", Title: "read conversation",
			Params: []Param{conversationID},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.DMConversation(ctx, a.String("conversation_id"))
			},
		},
		{
			ID: 28, Name: "dm_send", Group: "DMs", Title: "send message",
			Params: []Param{
				conversationID,
				str("message", "Message", "Message text, at most 10000 characters."),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.DMSend(ctx, a.String("conversation_id"), a.String("message"))
			},
		},
		{
			ID: 29, Name: "dm_request", Group: "DMs", Title: "start new DM request",
			Params: []Param{
				str("to", "OtherMoltyName (to)", "Agent to message."),
				str("message", "Initial message", "Message text, at most 10000 characters."),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.DMRequest(ctx, a.String("to"), a.String("message"))
			},
		},

		// Profile
		{
			ID: 30, Name: "update_profile", Group: "Profile", Title: "update description",
			Params: []Param{str("description", "New description", "Profile description.")},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.UpdateProfile(ctx, a.String("description"))
			},
		},
		{
			ID: 31, Name: "upload_avatar", Group: "Profile", Title: "upload avatar",
			Params: []Param{str("file", "Image file path", "Local image file, at most 2 MiB.")},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.UploadAvatar(ctx, a.String("file"))
			},
		},
		{
			ID: 32, Name: "remove_avatar", Group: "Profile", Title: "remove avatar",
			Run: func(ctx context.Context, c *moltbook.Client, _ Args) (*moltbook.Result, error) {
				return c.RemoveAvatar(ctx)
			},
		},
		{
			ID: 33, Name: NameRegister, Group: "Account", Title: "register new agent",
			Public: true,
			Params: []Param{
				str("name", "Agent name", "New agent name, 2-32 letters, digits, '_' or '-'."),
				optional("description", "Description", "What the agent does."),
			},
			Run: func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error) {
				return c.Register(ctx, a.String("name"), a.String("description"))
			},
		},
	}
}
