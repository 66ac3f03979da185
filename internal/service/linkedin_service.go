package service

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type LinkedInServiceInterface interface {
	PublishPost(ctx context.Context, accessToken, authorURN, text string) (string, error)
	FetchMemberID(ctx context.Context, accessToken string) (string, error)
}

// LinkedInService talks to the LinkedIn REST API. It never retries.
type LinkedInService struct {
	client *resty.Client
	now    func() time.Time
}

func NewLinkedInService(cfg *config.LinkedInConfig) *LinkedInService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetHeader("LinkedIn-Version", cfg.APIVersion).
		SetTimeout(30 * time.Second)
	return &LinkedInService{client: client, now: time.Now}
}

type ugcPost struct {
	Author          string         `json:"author"`
	LifecycleState  string         `json:"lifecycleState"`
	SpecificContent map[string]any `json:"specificContent"`
	Visibility      map[string]any `json:"visibility"`
}

func newUGCPost(authorURN, text string) ugcPost {
	return ugcPost{
		Author:         authorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]string{"text": text},
				"shareMediaCategory": "NONE",
			},
		},
		Visibility: map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
}

// PublishPost creates a UGC post and returns its URN. Rejections come back
// as *PublishError.
func (s *LinkedInService) PublishPost(ctx context.Context, accessToken, authorURN, text string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(newUGCPost(authorURN, text)).
		Post("/v2/ugcPosts")
	if err != nil {
		return "", &PublishError{
			Kind:       PublishErrorTransient,
			Message:    err.Error(),
			RetryAfter: DefaultTransientRetryAfter,
		}
	}

	if perr := ClassifyPublishResponse(resp.StatusCode(), resp.Header(), resp.Body(), s.now()); perr != nil {
		return "", perr
	}

	postID := resp.Header().Get("X-RestLi-Id")
	if postID == "" {
		postID = gjson.GetBytes(resp.Body(), "id").String()
	}
	if postID == "" {
		return "", errors.New("linkedin accepted the post but returned no id")
	}
	return postID, nil
}

// FetchMemberID resolves the OpenID subject of the token owner.
func (s *LinkedInService) FetchMemberID(ctx context.Context, accessToken string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get("/v2/userinfo")
	if err != nil {
		return "", errors.Wrap(err, "linkedin userinfo request")
	}
	if resp.IsError() {
		return "", errors.Newf("linkedin userinfo returned status %d", resp.StatusCode())
	}
	sub := gjson.GetBytes(resp.Body(), "sub").String()
	if sub == "" {
		return "", errors.New("linkedin userinfo response has no sub")
	}
	return sub, nil
}
