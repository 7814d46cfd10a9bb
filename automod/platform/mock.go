package platform

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// One call made against a MockClient.
type MockAction struct {
	Kind   string
	Target string
	Value  string
}

type MockReply struct {
	MessageID string
	Body      string
}

type MockModmail struct {
	Community string
	Subject   string
	Body      string
}

// A fake platform, for use in tests and dry runs. Community and user names are compared case-insensitively.
type MockClient struct {
	mu *sync.RWMutex

	Queue      []Submission
	Authors    map[string]AuthorInfo
	Moderators map[string][]string
	Pages      map[string]string
	Messages   []Message
	// communities the bot account moderates
	Joined []string

	Actions []MockAction
	Replies []MockReply
	Modmail []MockModmail
	Read    []string
}

var _ Client = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{
		mu:         &sync.RWMutex{},
		Authors:    make(map[string]AuthorInfo),
		Moderators: make(map[string][]string),
		Pages:      make(map[string]string),
	}
}

func pageKey(community, page string) string {
	return strings.ToLower(community) + "/" + page
}

func (c *MockClient) record(kind, target, value string) {
	c.Actions = append(c.Actions, MockAction{Kind: kind, Target: target, Value: value})
}

// Returns recorded actions of one kind.
func (c *MockClient) ActionsOf(kind string) []MockAction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []MockAction
	for _, a := range c.Actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func (c *MockClient) AddModerator(community, user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := strings.ToLower(community)
	c.Moderators[k] = append(c.Moderators[k], strings.ToLower(user))
}

func (c *MockClient) NewSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if limit > 0 && len(c.Queue) > limit {
		return slices.Clone(c.Queue[:limit]), nil
	}
	return slices.Clone(c.Queue), nil
}

func (c *MockClient) AuthorInfo(ctx context.Context, name, community string) (*AuthorInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.Authors[strings.ToLower(name)]
	if !ok {
		return nil, ErrNotFound
	}
	a.CommunityModerator = slices.Contains(c.Moderators[strings.ToLower(community)], strings.ToLower(name))
	return &a, nil
}

func (c *MockClient) Remove(ctx context.Context, submissionID string, spam bool, modNote string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	kind := "remove"
	if spam {
		kind = "spam"
	}
	c.record(kind, submissionID, modNote)
	return nil
}

func (c *MockClient) Approve(ctx context.Context, submissionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("approve", submissionID, "")
	return nil
}

func (c *MockClient) Report(ctx context.Context, submissionID, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("report", submissionID, reason)
	return nil
}

func (c *MockClient) Comment(ctx context.Context, submissionID, body string, sticky, lock bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("comment", submissionID, body)
	if sticky {
		c.record("comment-sticky", submissionID, "")
	}
	if lock {
		c.record("comment-lock", submissionID, "")
	}
	return fmt.Sprintf("c_%d", len(c.Actions)), nil
}

func (c *MockClient) SetFlair(ctx context.Context, submissionID, templateID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("flair", submissionID, templateID)
	return nil
}

func (c *MockClient) SetAttribute(ctx context.Context, submissionID string, attr Attribute, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(string(attr), submissionID, fmt.Sprint(on))
	return nil
}

func (c *MockClient) SetSuggestedSort(ctx context.Context, submissionID, sort string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("suggested_sort", submissionID, sort)
	return nil
}

func (c *MockClient) UnreadMessages(ctx context.Context) ([]Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Message
	for _, m := range c.Messages {
		if !slices.Contains(c.Read, m.ID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *MockClient) MarkRead(ctx context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Read = append(c.Read, ids...)
	return nil
}

func (c *MockClient) Reply(ctx context.Context, messageID, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Replies = append(c.Replies, MockReply{MessageID: messageID, Body: body})
	return nil
}

func (c *MockClient) SendCommunityMessage(ctx context.Context, community, subject, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Modmail = append(c.Modmail, MockModmail{Community: community, Subject: subject, Body: body})
	return nil
}

func (c *MockClient) AcceptInvite(ctx context.Context, community string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("accept_invite", community, "")
	c.Joined = append(c.Joined, strings.ToLower(community))
	return nil
}

func (c *MockClient) IsModerator(ctx context.Context, community, user string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.Moderators[strings.ToLower(community)], strings.ToLower(user)), nil
}

func (c *MockClient) Moderated(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.Joined), nil
}

func (c *MockClient) GetPage(ctx context.Context, community, page string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	content, ok := c.Pages[pageKey(community, page)]
	if !ok {
		return "", ErrNotFound
	}
	return content, nil
}

func (c *MockClient) PutPage(ctx context.Context, community, page, content, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Pages[pageKey(community, page)] = content
	c.record("wiki", pageKey(community, page), reason)
	return nil
}
