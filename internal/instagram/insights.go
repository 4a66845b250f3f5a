package instagram

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

var insightMetrics = []string{
	"impressions",
	"reach",
	"engagement",
	"saved",
	"likes",
	"comments",
	"shares",
}

// FetchInsights returns post-publish metrics for one media id. It is
// best-effort: any failure yields an empty snapshot so insights can
// never fail a publish-confirmation flow. A metric absent from the map
// means the provider did not report it, not zero.
func (c *Client) FetchInsights(ctx context.Context, mediaID, accessToken string) map[string]int64 {
	params := url.Values{}
	params.Set("metric", strings.Join(insightMetrics, ","))
	params.Set("access_token", accessToken)

	var result struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}

	snapshot := make(map[string]int64)
	if err := c.get(ctx, "media_insights", KindTransient, "/"+mediaID+"/insights", params, &result); err != nil {
		slog.Debug("insights fetch failed", "media_id", mediaID, "error", err)
		return snapshot
	}

	for _, item := range result.Data {
		if len(item.Values) > 0 {
			snapshot[item.Name] = item.Values[0].Value
		}
	}
	return snapshot
}
