package instagram

import (
	"context"
	"net/url"
)

// PublishRequest describes one image post. ImageURL must be publicly
// fetchable over HTTPS; the provider validates it and the caption limits
// during container creation, not here.
type PublishRequest struct {
	ImageURL string
	Caption  string
}

// Publish runs the two-phase content publishing protocol: create a media
// container, then publish it. The returned id is the remote media id of
// the live post, opaque to us.
//
// publishContainer is deliberately unexported: step 2 can never be
// reached without a creation id produced by step 1 in the same call. If
// step 2 fails the container is orphaned (the protocol has no delete);
// retrying Publish with the same input creates a fresh container, which
// is the only safe retry.
func (c *Client) Publish(ctx context.Context, accountID, accessToken string, req PublishRequest) (string, error) {
	creationID, err := c.createContainer(ctx, accountID, accessToken, req)
	if err != nil {
		return "", err
	}
	return c.publishContainer(ctx, accountID, accessToken, creationID)
}

func (c *Client) createContainer(ctx context.Context, accountID, accessToken string, req PublishRequest) (string, error) {
	form := url.Values{}
	form.Set("image_url", req.ImageURL)
	form.Set("caption", req.Caption)
	form.Set("access_token", accessToken)

	var result struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "create_container", KindContainerCreation, "/"+accountID+"/media", form, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &Error{Kind: KindContainerCreation, Op: "create_container", Message: "no creation id in response"}
	}
	return result.ID, nil
}

func (c *Client) publishContainer(ctx context.Context, accountID, accessToken, creationID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", accessToken)

	var result struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "publish_container", KindPublish, "/"+accountID+"/media_publish", form, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &Error{Kind: KindPublish, Op: "publish_container", Message: "no media id in response"}
	}
	return result.ID, nil
}
