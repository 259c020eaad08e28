package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

type staticToken string

func (s staticToken) AccessToken() (string, error) { return string(s), nil }

type handlerRoundTripper struct {
	h http.Handler
}

func (rt handlerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := newResponseRecorder()
	rt.h.ServeHTTP(rec, req)
	return rec.response(req), nil
}

type responseRecorder struct {
	header http.Header
	body   strings.Builder
	code   int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header         { return r.header }
func (r *responseRecorder) Write(p []byte) (int, error) { return r.body.Write(p) }
func (r *responseRecorder) WriteHeader(statusCode int)  { r.code = statusCode }

func (r *responseRecorder) response(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: r.code,
		Header:     r.header.Clone(),
		Body:       io.NopCloser(strings.NewReader(r.body.String())),
		Request:    req,
	}
}

func newTestClient(h http.Handler) *Client {
	return &Client{
		baseURL:       "http://example.test",
		tokenProvider: staticToken("tok"),
		http:          &http.Client{Transport: handlerRoundTripper{h: h}},
	}
}

func newAnonymousTestClient(h http.Handler) *Client {
	c := newTestClient(h)
	c.tokenProvider = nil
	return c
}

func statusJSON(id, accountID, display, acct, content string) map[string]any {
	return map[string]any{
		"id":                id,
		"content":           fmt.Sprintf("<p>%s</p>", content),
		"created_at":        time.Now().UTC().Format(time.RFC3339),
		"url":               "https://example/" + id,
		"visibility":        "public",
		"favourited":        false,
		"reblogged":         false,
		"bookmarked":        false,
		"favourites_count":  1,
		"reblogs_count":     0,
		"replies_count":     2,
		"in_reply_to_id":    nil,
		"media_attachments": []any{},
		"account": map[string]any{
			"id":           accountID,
			"username":     acct,
			"display_name": display,
			"acct":         acct,
		},
	}
}

func TestTimelineService_Fetch_PathsPerKind(t *testing.T) {
	tests := []struct {
		query domain.TimelineQuery
		path  string
		local string
	}{
		{query: domain.TimelineQuery{Kind: domain.TimelineHome}, path: "/api/v1/timelines/home"},
		{query: domain.TimelineQuery{Kind: domain.TimelineLocal}, path: "/api/v1/timelines/public", local: "true"},
		{query: domain.TimelineQuery{Kind: domain.TimelineFederated}, path: "/api/v1/timelines/public"},
		{query: domain.TimelineQuery{Kind: domain.TimelineBookmarks}, path: "/api/v1/bookmarks"},
		{query: domain.TimelineQuery{Kind: domain.TimelineFavourites}, path: "/api/v1/favourites"},
		{query: domain.TimelineQuery{Kind: domain.TimelineHashtag, Hashtag: "#golang"}, path: "/api/v1/timelines/tag/golang"},
		{query: domain.TimelineQuery{Kind: domain.TimelineList, ListID: "7"}, path: "/api/v1/timelines/list/7"},
	}
	for _, tc := range tests {
		t.Run(tc.query.Key(), func(t *testing.T) {
			var gotPath string
			var gotQuery url.Values
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath, gotQuery = r.URL.Path, r.URL.Query()
				_ = json.NewEncoder(w).Encode([]map[string]any{statusJSON("10", "a", "Name", "user1", "hello &lt;x&gt;")})
			})
			q := tc.query
			q.Limit = 40
			q.MaxID = "88"
			got, _, err := NewTimelineService(newTestClient(h)).Fetch(context.Background(), q)
			if err != nil {
				t.Fatalf("fetch failed: %v", err)
			}
			if gotPath != tc.path {
				t.Fatalf("unexpected path: %s", gotPath)
			}
			if gotQuery.Get("limit") != "40" || gotQuery.Get("max_id") != "88" || gotQuery.Get("local") != tc.local {
				t.Fatalf("unexpected query: %v", gotQuery)
			}
			if len(got) != 1 || !strings.Contains(got[0].Content, "<x>") {
				t.Fatalf("unexpected mapped payload: %+v", got)
			}
		})
	}
}

func TestTimelineService_Fetch_NextCursorFromLinkHeader(t *testing.T) {
	var gotMaxID string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/bookmarks" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		gotMaxID = r.URL.Query().Get("max_id")
		w.Header().Set("Link", `<http://example.test/api/v1/bookmarks?limit=40&max_id=999>; rel="next", <http://example.test/api/v1/bookmarks?limit=40&min_id=1200>; rel="prev"`)
		_ = json.NewEncoder(w).Encode([]map[string]any{statusJSON("5000", "a", "Name", "user1", "saved")})
	})
	svc := NewTimelineService(newTestClient(h))

	statuses, next, err := svc.Fetch(context.Background(), domain.TimelineQuery{Kind: domain.TimelineBookmarks, Limit: 40})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(statuses) != 1 || next != "999" {
		t.Fatalf("expected cursor 999 from Link header, got %q (%d statuses)", next, len(statuses))
	}

	if _, _, err := svc.Fetch(context.Background(), domain.TimelineQuery{Kind: domain.TimelineBookmarks, Limit: 40, MaxID: next}); err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if gotMaxID != "999" {
		t.Fatalf("second page must send the Link cursor, sent max_id=%q", gotMaxID)
	}
}

func TestNextMaxID(t *testing.T) {
	tests := map[string]struct {
		links []string
		want  string
	}{
		"none":         {links: nil, want: ""},
		"prev only":    {links: []string{`<https://h/api/v1/favourites?min_id=3>; rel="prev"`}, want: ""},
		"next first":   {links: []string{`<https://h/api/v1/favourites?max_id=12>; rel="next", <https://h/x?min_id=3>; rel="prev"`}, want: "12"},
		"split values": {links: []string{`<https://h/x?min_id=3>; rel="prev"`, `<https://h/api/v1/favourites?max_id=7>; rel="next"`}, want: "7"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := nextMaxID(tc.links); got != tc.want {
				t.Fatalf("nextMaxID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTimelineService_FetchThread(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/statuses/10/context" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ancestors":   []map[string]any{statusJSON("9", "acct-2", "name2", "u2", "ancestor")},
			"descendants": []map[string]any{statusJSON("11", "acct-3", "name3", "u3", "desc"), statusJSON("12", "acct-3", "name3", "u3", "desc2")},
		})
	})
	anc, desc, err := NewTimelineService(newTestClient(h)).FetchThread(context.Background(), "10")
	if err != nil {
		t.Fatalf("thread failed: %v", err)
	}
	if len(anc) != 1 || len(desc) != 2 {
		t.Fatalf("unexpected thread payload: anc=%d desc=%d", len(anc), len(desc))
	}
}

func TestAnonymousClient_SendsNoAuthorization(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Fatalf("anonymous request carried auth header %q", auth)
		}
		if r.Header.Get("User-Agent") != userAgent {
			t.Fatalf("missing user agent")
		}
		_ = json.NewEncoder(w).Encode([]any{})
	})
	c := newAnonymousTestClient(h)
	if c.Authenticated() {
		t.Fatalf("expected anonymous client")
	}
	if _, _, err := NewTimelineService(c).Fetch(context.Background(), domain.TimelineQuery{Kind: domain.TimelineLocal}); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
}

func TestStatusService_Create_SendsFormAndIdempotencyKey(t *testing.T) {
	var vals url.Values
	var ctype, key string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/statuses" {
			t.Fatalf("unexpected req: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Fatalf("missing auth header: %q", auth)
		}
		ctype = r.Header.Get("Content-Type")
		key = r.Header.Get("Idempotency-Key")
		raw, _ := io.ReadAll(r.Body)
		vals, _ = url.ParseQuery(string(raw))
		_ = json.NewEncoder(w).Encode(statusJSON("10", "a", "", "u", "posted"))
	})

	svc := NewStatusService(newTestClient(h))
	st, err := svc.Create(context.Background(), app.StatusParams{
		Text:           "hello",
		Visibility:     domain.VisibilityUnlisted,
		SpoilerText:    "cw",
		InReplyToID:    "5",
		MediaIDs:       []string{"m1", "m2"},
		Poll:           &app.PollParams{Options: []string{"a", "b"}, ExpiresIn: 3600, Multiple: true},
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if st.ID != "10" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if !strings.Contains(ctype, formContentType) || key != "key-1" {
		t.Fatalf("unexpected headers: ctype=%q key=%q", ctype, key)
	}
	if vals.Get("status") != "hello" || vals.Get("visibility") != "unlisted" || vals.Get("in_reply_to_id") != "5" {
		t.Fatalf("unexpected form: %v", vals)
	}
	if vals.Get("spoiler_text") != "cw" || vals.Get("sensitive") != "true" {
		t.Fatalf("expected content warning fields: %v", vals)
	}
	if len(vals["media_ids[]"]) != 2 || len(vals["poll[options][]"]) != 2 || vals.Get("poll[expires_in]") != "3600" || vals.Get("poll[multiple]") != "true" {
		t.Fatalf("unexpected media/poll fields: %v", vals)
	}
}

func TestStatusService_Create_RejectsBlank(t *testing.T) {
	svc := NewStatusService(newTestClient(http.NotFoundHandler()))
	if _, err := svc.Create(context.Background(), app.StatusParams{Text: "  "}); !errors.Is(err, domain.ErrEmptyStatus) {
		t.Fatalf("expected ErrEmptyStatus, got %v", err)
	}
}

func TestStatusService_EditDeleteAndInteractions_RequestShape(t *testing.T) {
	var hits []string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/statuses/12":
			body, _ := io.ReadAll(r.Body)
			vals, _ := url.ParseQuery(string(body))
			if vals.Get("status") != "edited" || vals.Has("visibility") {
				t.Fatalf("unexpected edit form: %v", vals)
			}
			_ = json.NewEncoder(w).Encode(statusJSON("12", "a", "n", "u", "edited"))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/statuses/12":
			_, _ = w.Write([]byte(`{}`))
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/v1/statuses/12/"):
			st := statusJSON("12", "a", "n", "u", "x")
			st["favourited"] = strings.HasSuffix(r.URL.Path, "/favourite")
			_ = json.NewEncoder(w).Encode(st)
		default:
			t.Fatalf("unexpected req: %s %s", r.Method, r.URL.Path)
		}
	})
	svc := NewStatusService(newTestClient(h))
	ctx := context.Background()

	if _, err := svc.Edit(ctx, "12", app.StatusParams{Text: "edited", Visibility: domain.VisibilityPublic}); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if err := svc.Delete(ctx, "12"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	st, err := svc.SetInteraction(ctx, "12", domain.Favourite, true)
	if err != nil || !st.Favourited {
		t.Fatalf("favourite failed: %+v %v", st, err)
	}
	for _, tc := range []struct {
		kind domain.Interaction
		on   bool
	}{{domain.Favourite, false}, {domain.Reblog, true}, {domain.Reblog, false}, {domain.Bookmark, true}, {domain.Bookmark, false}} {
		if _, err := svc.SetInteraction(ctx, "12", tc.kind, tc.on); err != nil {
			t.Fatalf("%v/%v failed: %v", tc.kind, tc.on, err)
		}
	}

	want := []string{
		"PUT /api/v1/statuses/12",
		"DELETE /api/v1/statuses/12",
		"POST /api/v1/statuses/12/favourite",
		"POST /api/v1/statuses/12/unfavourite",
		"POST /api/v1/statuses/12/reblog",
		"POST /api/v1/statuses/12/unreblog",
		"POST /api/v1/statuses/12/bookmark",
		"POST /api/v1/statuses/12/unbookmark",
	}
	if strings.Join(hits, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected requests:\n%s", strings.Join(hits, "\n"))
	}
}

func TestMediaService_Upload_PollsUntilProcessed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.png")
	if err := os.WriteFile(path, []byte("not really a png"), 0o600); err != nil {
		t.Fatalf("write media failed: %v", err)
	}

	polls := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/media":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("bad multipart body: %v", err)
			}
			if r.FormValue("description") != "a cat" {
				t.Fatalf("missing description")
			}
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"id":"m1","type":"image","url":null}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/media/m1":
			polls++
			if polls < 3 {
				w.WriteHeader(http.StatusPartialContent)
				_, _ = w.Write([]byte(`{"id":"m1","type":"image","url":null}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"m1","type":"image","url":"https://x/m1.png"}`))
		default:
			t.Fatalf("unexpected req: %s %s", r.Method, r.URL.Path)
		}
	})

	svc := NewMediaService(newTestClient(h))
	svc.newBackOff = func() backoff.BackOff { return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 5) }

	var lastSent, lastTotal int64
	att, err := svc.Upload(context.Background(), path, "a cat", func(sent, total int64) {
		lastSent, lastTotal = sent, total
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if att.ID != "m1" || att.URL != "https://x/m1.png" || polls != 3 {
		t.Fatalf("unexpected attachment %+v after %d polls", att, polls)
	}
	if lastTotal == 0 || lastSent != lastTotal {
		t.Fatalf("expected full progress, got %d/%d", lastSent, lastTotal)
	}
}

func TestMediaService_Upload_MissingFile(t *testing.T) {
	svc := NewMediaService(newTestClient(http.NotFoundHandler()))
	if _, err := svc.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"), "", nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAccountService_Endpoints_RequestShapeAndMapping(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/accounts/verify_credentials":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "acct-me", "acct": "me", "display_name": "Me", "note": "<p>bio &lt;safe&gt;</p>",
				"statuses_count": 3, "followers_count": 4, "following_count": 5,
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/accounts/42":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "42", "acct": "u42", "display_name": "User 42", "statuses_count": 12})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/accounts/42/statuses":
			if r.URL.Query().Get("max_id") != "199" {
				t.Fatalf("expected max_id")
			}
			_ = json.NewEncoder(w).Encode([]map[string]any{statusJSON("201", "42", "User 42", "u42", "post one")})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/accounts/relationships":
			if r.URL.Query()["id[]"][0] != "42" {
				t.Fatalf("expected id[] query")
			}
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": "42", "following": true, "followed_by": true}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/accounts/42/unfollow":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "42", "following": false})
		default:
			t.Fatalf("unexpected req: %s %s?%s", r.Method, r.URL.Path, r.URL.RawQuery)
		}
	})
	svc := NewAccountService(newTestClient(h))
	ctx := context.Background()

	me, err := svc.CurrentAccount(ctx)
	if err != nil || me.ID != "acct-me" || !strings.Contains(me.Note, "<safe>") {
		t.Fatalf("unexpected current account: %+v %v", me, err)
	}
	other, err := svc.Account(ctx, "42")
	if err != nil || other.Acct != "u42" || other.StatusesCount != 12 {
		t.Fatalf("unexpected profile: %+v %v", other, err)
	}
	posts, err := svc.Statuses(ctx, "42", 20, "199")
	if err != nil || len(posts) != 1 || posts[0].Account.ID != "42" {
		t.Fatalf("unexpected posts: %+v %v", posts, err)
	}
	rel, err := svc.Relationship(ctx, "42")
	if err != nil || !rel.Following || !rel.FollowedBy {
		t.Fatalf("unexpected relationship: %+v %v", rel, err)
	}
	rel, err = svc.SetFollowing(ctx, "42", false)
	if err != nil || rel.Following {
		t.Fatalf("unexpected unfollow: %+v %v", rel, err)
	}
	if _, err := svc.Account(ctx, " "); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestResourceServices_RequestShape(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/lists":
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": "1", "title": "Friends", "replies_policy": "list"}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/lists":
			if form.Get("title") != "Work" || form.Get("replies_policy") != "followed" {
				t.Fatalf("unexpected list form: %v", form)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "2", "title": "Work", "replies_policy": "followed"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/lists/2":
			_, _ = w.Write([]byte(`{}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/filters":
			if len(form["context[]"]) != len(domain.AllFilterContexts) || form.Get("keywords_attributes[][keyword]") != "spoiler" {
				t.Fatalf("unexpected filter form: %v", form)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "f1", "title": "Spoilers", "context": []string{"home"}, "filter_action": "hide",
				"keywords": []map[string]any{{"id": "k1", "keyword": "spoiler", "whole_word": true}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/tags/golang/follow":
			_ = json.NewEncoder(w).Encode(map[string]any{"name": "golang", "following": true,
				"history": []map[string]any{{"day": "1700000000", "uses": "12", "accounts": "4"}}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/notifications":
			if got := r.URL.Query()["types[]"]; len(got) != 1 || got[0] != "mention" {
				t.Fatalf("expected mention filter, got %v", got)
			}
			_ = json.NewEncoder(w).Encode([]map[string]any{{
				"id": "n1", "type": "mention", "created_at": time.Now().UTC().Format(time.RFC3339),
				"account": map[string]any{"id": "a", "acct": "u"}, "status": statusJSON("s1", "a", "", "u", "hi"),
			}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/instance":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"domain": "example.test", "title": "Example", "version": "4.3.0",
				"configuration": map[string]any{
					"statuses": map[string]any{"max_characters": 1000, "max_media_attachments": 6},
					"polls":    map[string]any{"max_options": 5},
				},
				"rules": []map[string]any{{"id": "1", "text": "Be nice"}},
			})
		default:
			t.Fatalf("unexpected req: %s %s", r.Method, r.URL.Path)
		}
	})
	c := newTestClient(h)
	ctx := context.Background()

	lists, err := NewListService(c).Lists(ctx)
	if err != nil || len(lists) != 1 || lists[0].Title != "Friends" {
		t.Fatalf("unexpected lists: %+v %v", lists, err)
	}
	created, err := NewListService(c).CreateList(ctx, domain.FollowList{Title: " Work ", RepliesPolicy: domain.RepliesFollowed})
	if err != nil || created.ID != "2" {
		t.Fatalf("unexpected created list: %+v %v", created, err)
	}
	if _, err := NewListService(c).CreateList(ctx, domain.FollowList{}); err == nil {
		t.Fatalf("expected title validation error")
	}
	if err := NewListService(c).DeleteList(ctx, "2"); err != nil {
		t.Fatalf("delete list failed: %v", err)
	}

	f, err := NewFilterService(c).CreateFilter(ctx, domain.Filter{Title: "Spoilers", Action: domain.FilterHide, Keywords: []domain.FilterKeyword{{Keyword: "spoiler", WholeWord: true}}})
	if err != nil || f.Action != domain.FilterHide || len(f.Keywords) != 1 {
		t.Fatalf("unexpected filter: %+v %v", f, err)
	}

	tag, err := NewTagService(c).SetTagFollowed(ctx, "#golang", true)
	if err != nil || !tag.Following || len(tag.History) != 1 || tag.History[0].Uses != 12 {
		t.Fatalf("unexpected tag: %+v %v", tag, err)
	}

	notes, err := NewNotificationService(c).Notifications(ctx, []domain.NotificationType{domain.NotifyMention}, 30)
	if err != nil || len(notes) != 1 || notes[0].Status == nil || notes[0].Type != domain.NotifyMention {
		t.Fatalf("unexpected notifications: %+v %v", notes, err)
	}

	inst, err := NewInstanceService(c).Instance(ctx)
	if err != nil {
		t.Fatalf("instance failed: %v", err)
	}
	if inst.CharLimit() != 1000 || inst.AttachmentLimit() != 6 || inst.PollOptionLimit() != 5 || len(inst.Rules) != 1 {
		t.Fatalf("unexpected instance: %+v", inst)
	}
}

func TestListService_Members_RequestShape(t *testing.T) {
	var added, removed []string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/lists/7/accounts" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("limit") != "0" {
				t.Fatalf("members must be fetched unpaged, got %v", r.URL.Query())
			}
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": "42", "acct": "gopher@go.dev", "display_name": "Gopher"}})
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			form, _ := url.ParseQuery(string(body))
			added = form["account_ids[]"]
			_, _ = w.Write([]byte(`{}`))
		case http.MethodDelete:
			removed = r.URL.Query()["account_ids[]"]
			_, _ = w.Write([]byte(`{}`))
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})
	svc := NewListService(newTestClient(h))
	ctx := context.Background()

	members, err := svc.ListAccounts(ctx, "7")
	if err != nil || len(members) != 1 || members[0].Acct != "gopher@go.dev" {
		t.Fatalf("unexpected members: %+v %v", members, err)
	}
	if err := svc.AddListAccounts(ctx, "7", []string{"42", "43"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(added) != 2 || added[0] != "42" || added[1] != "43" {
		t.Fatalf("unexpected added ids: %v", added)
	}
	if err := svc.RemoveListAccounts(ctx, "7", []string{"42"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed) != 1 || removed[0] != "42" {
		t.Fatalf("unexpected removed ids: %v", removed)
	}
	if err := svc.AddListAccounts(ctx, "7", nil); err != nil {
		t.Fatalf("adding nobody must be a no-op, got %v", err)
	}
}

func TestSearchService_RequestShapeAndMapping(t *testing.T) {
	var gotQuery url.Values
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/search":
			gotQuery = r.URL.Query()
			_ = json.NewEncoder(w).Encode(map[string]any{
				"accounts": []map[string]any{{"id": "42", "acct": "gopher@go.dev"}},
				"statuses": []map[string]any{statusJSON("s1", "42", "Gopher", "gopher@go.dev", "go &amp; fedi")},
				"hashtags": []map[string]any{{"name": "golang", "url": "https://example.test/tags/golang"}},
			})
		case "/api/v1/trends/tags":
			if r.URL.Query().Get("limit") != "10" {
				t.Fatalf("unexpected trends query: %v", r.URL.Query())
			}
			_ = json.NewEncoder(w).Encode([]map[string]any{{"name": "caturday", "history": []map[string]any{{"day": "1700000000", "uses": "90", "accounts": "30"}}}})
		case "/api/v1/trends/statuses":
			_ = json.NewEncoder(w).Encode([]map[string]any{statusJSON("t1", "a", "A", "a", "viral")})
		default:
			t.Fatalf("unexpected req: %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()
	svc := NewSearchService(newTestClient(h))

	res, err := svc.Search(ctx, domain.SearchQuery{Query: " gopher ", Type: domain.SearchAccounts, Resolve: true, Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotQuery.Get("q") != "gopher" || gotQuery.Get("type") != "accounts" || gotQuery.Get("resolve") != "true" || gotQuery.Get("limit") != "5" {
		t.Fatalf("unexpected search query: %v", gotQuery)
	}
	if len(res.Accounts) != 1 || len(res.Statuses) != 1 || len(res.Hashtags) != 1 || !strings.Contains(res.Statuses[0].Content, "go & fedi") {
		t.Fatalf("unexpected results: %+v", res)
	}

	if _, err := NewSearchService(newAnonymousTestClient(h)).Search(ctx, domain.SearchQuery{Query: "gopher", Resolve: true}); err != nil {
		t.Fatalf("anonymous search: %v", err)
	}
	if gotQuery.Has("resolve") || gotQuery.Has("type") {
		t.Fatalf("anonymous search must not resolve or narrow, got %v", gotQuery)
	}
	if _, err := svc.Search(ctx, domain.SearchQuery{Query: "  "}); err == nil {
		t.Fatal("expected an error for a blank query")
	}

	tags, err := svc.TrendingTags(ctx, 10)
	if err != nil || len(tags) != 1 || tags[0].Name != "caturday" || tags[0].History[0].Uses != 90 {
		t.Fatalf("unexpected trending tags: %+v %v", tags, err)
	}
	posts, err := svc.TrendingStatuses(ctx, 0)
	if err != nil || len(posts) != 1 || posts[0].ID != "t1" {
		t.Fatalf("unexpected trending posts: %+v %v", posts, err)
	}
}

func TestAPIError_ContainsPathAndStatus(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"Validation failed: Text can't be blank"}`))
	})
	_, err := NewStatusService(newTestClient(h)).Edit(context.Background(), "12", app.StatusParams{Text: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if !strings.Contains(err.Error(), "/api/v1/statuses/12") || !strings.Contains(err.Error(), "Validation failed") {
		t.Fatalf("expected path and message in wrapped error, got %v", err)
	}
}

func TestAPIError_UnauthorizedUnwraps(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"The access token is invalid"}`))
	})
	_, _, err := NewTimelineService(newTestClient(h)).Fetch(context.Background(), domain.TimelineQuery{Kind: domain.TimelineHome})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_MethodWrappers_UseExpectedHTTPMethods(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *Client) error
		method string
	}{
		{name: "put", method: http.MethodPut, call: func(c *Client) error {
			_, err := c.Put(context.Background(), "/x", url.Values{"a": {"b"}})
			return err
		}},
		{name: "patch", method: http.MethodPatch, call: func(c *Client) error {
			_, err := c.Patch(context.Background(), "/x", url.Values{"a": {"b"}})
			return err
		}},
		{name: "delete", method: http.MethodDelete, call: func(c *Client) error {
			_, err := c.Delete(context.Background(), "/x")
			return err
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotMethod string
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				_, _ = w.Write([]byte(`{}`))
			})
			if err := tc.call(newTestClient(h)); err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if gotMethod != tc.method {
				t.Fatalf("unexpected method got %s want %s", gotMethod, tc.method)
			}
		})
	}
}
