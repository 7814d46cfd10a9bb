package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

// Client for a platform gateway service, which holds the platform API credentials and exposes a small JSON API.
type GatewayClient struct {
	// HTTP client to use. If not set, defaults to http.DefaultClient.
	Client *http.Client
	Host   string
	// sent as a bearer token, if set
	Token     string
	UserAgent string
	// throttles outgoing requests, if set
	Limiter *rate.Limiter
}

var _ Client = (*GatewayClient)(nil)

type GatewayError struct {
	StatusCode int
	ErrStr     string `json:"error"`
	Message    string `json:"message"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %d: %s: %s", e.StatusCode, e.ErrStr, e.Message)
}

// Unwraps to ErrNotFound for 404 responses.
func (e *GatewayError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

func (c *GatewayClient) do(ctx context.Context, method, path string, params url.Values, bodyobj, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	var body io.Reader
	if bodyobj != nil {
		b, err := json.Marshal(bodyobj)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	uri := c.Host + path
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return err
	}
	if bodyobj != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	} else {
		req.Header.Set("User-Agent", "ocrmod/"+versioninfo.Short())
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ge := &GatewayError{StatusCode: resp.StatusCode}
		// error body is best-effort
		_ = json.NewDecoder(resp.Body).Decode(ge)
		return ge
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding gateway response: %w", err)
		}
	}
	return nil
}

func submissionPath(id, verb string) string {
	return "/v1/submissions/" + url.PathEscape(id) + "/" + verb
}

func communityPath(community string) string {
	return "/v1/communities/" + url.PathEscape(community)
}

func (c *GatewayClient) NewSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	var out struct {
		Submissions []Submission `json:"submissions"`
	}
	params := url.Values{"limit": []string{strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/v1/submissions/new", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Submissions, nil
}

func (c *GatewayClient) AuthorInfo(ctx context.Context, name, community string) (*AuthorInfo, error) {
	var out AuthorInfo
	params := url.Values{"community": []string{community}}
	if err := c.do(ctx, http.MethodGet, "/v1/authors/"+url.PathEscape(name), params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GatewayClient) Remove(ctx context.Context, submissionID string, spam bool, modNote string) error {
	body := map[string]any{"spam": spam, "mod_note": modNote}
	return c.do(ctx, http.MethodPost, submissionPath(submissionID, "remove"), nil, body, nil)
}

func (c *GatewayClient) Approve(ctx context.Context, submissionID string) error {
	return c.do(ctx, http.MethodPost, submissionPath(submissionID, "approve"), nil, nil, nil)
}

func (c *GatewayClient) Report(ctx context.Context, submissionID, reason string) error {
	return c.do(ctx, http.MethodPost, submissionPath(submissionID, "report"), nil, map[string]any{"reason": reason}, nil)
}

func (c *GatewayClient) Comment(ctx context.Context, submissionID, body string, sticky, lock bool) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	in := map[string]any{"body": body, "sticky": sticky, "lock": lock}
	if err := c.do(ctx, http.MethodPost, submissionPath(submissionID, "comment"), nil, in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *GatewayClient) SetFlair(ctx context.Context, submissionID, templateID string) error {
	return c.do(ctx, http.MethodPost, submissionPath(submissionID, "flair"), nil, map[string]any{"template_id": templateID}, nil)
}

func (c *GatewayClient) SetAttribute(ctx context.Context, submissionID string, attr Attribute, on bool) error {
	return c.do(ctx, http.MethodPost, submissionPath(submissionID, "attribute"), nil, map[string]any{"name": attr, "value": on}, nil)
}

func (c *GatewayClient) SetSuggestedSort(ctx context.Context, submissionID, sort string) error {
	return c.do(ctx, http.MethodPost, submissionPath(submissionID, "suggested_sort"), nil, map[string]any{"sort": sort}, nil)
}

func (c *GatewayClient) UnreadMessages(ctx context.Context) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/inbox/unread", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *GatewayClient) MarkRead(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/v1/inbox/read", nil, map[string]any{"ids": ids}, nil)
}

func (c *GatewayClient) Reply(ctx context.Context, messageID, body string) error {
	return c.do(ctx, http.MethodPost, "/v1/inbox/"+url.PathEscape(messageID)+"/reply", nil, map[string]any{"body": body}, nil)
}

func (c *GatewayClient) SendCommunityMessage(ctx context.Context, community, subject, body string) error {
	return c.do(ctx, http.MethodPost, communityPath(community)+"/message", nil, map[string]any{"subject": subject, "body": body}, nil)
}

func (c *GatewayClient) AcceptInvite(ctx context.Context, community string) error {
	return c.do(ctx, http.MethodPost, communityPath(community)+"/accept_invite", nil, nil, nil)
}

func (c *GatewayClient) IsModerator(ctx context.Context, community, user string) (bool, error) {
	var out struct {
		Moderator bool `json:"moderator"`
	}
	if err := c.do(ctx, http.MethodGet, communityPath(community)+"/moderators/"+url.PathEscape(user), nil, nil, &out); err != nil {
		return false, err
	}
	return out.Moderator, nil
}

func (c *GatewayClient) Moderated(ctx context.Context) ([]string, error) {
	var out struct {
		Communities []string `json:"communities"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/communities", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Communities, nil
}

func (c *GatewayClient) GetPage(ctx context.Context, community, page string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := c.do(ctx, http.MethodGet, communityPath(community)+"/wiki/"+url.PathEscape(page), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

func (c *GatewayClient) PutPage(ctx context.Context, community, page, content, reason string) error {
	body := map[string]any{"content": content, "reason": reason}
	return c.do(ctx, http.MethodPut, communityPath(community)+"/wiki/"+url.PathEscape(page), nil, body, nil)
}
