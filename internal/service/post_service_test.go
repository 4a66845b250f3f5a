package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/miyakawa-dev/salonflow/internal/instagram"
	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

type fakeShopRepo struct {
	shops map[int64]*models.Shop
}

func newFakeShopRepo(shops ...*models.Shop) *fakeShopRepo {
	r := &fakeShopRepo{shops: map[int64]*models.Shop{}}
	for _, s := range shops {
		r.shops[s.ID] = s
	}
	return r
}

func (r *fakeShopRepo) Create(_ context.Context, shop *models.Shop) (int64, error) {
	id := int64(len(r.shops) + 1)
	shop.ID = id
	r.shops[id] = shop
	return id, nil
}

func (r *fakeShopRepo) GetByID(_ context.Context, id int64) (*models.Shop, error) {
	return r.shops[id], nil
}

func (r *fakeShopRepo) GetByUserAndID(_ context.Context, userID, shopID int64) (*models.Shop, error) {
	shop := r.shops[shopID]
	if shop == nil || shop.UserID != userID {
		return nil, nil
	}
	return shop, nil
}

func (r *fakeShopRepo) ListByUserID(_ context.Context, userID int64) ([]*models.Shop, error) {
	var out []*models.Shop
	for _, s := range r.shops {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShopRepo) Update(_ context.Context, shop *models.Shop) error {
	r.shops[shop.ID] = shop
	return nil
}

func (r *fakeShopRepo) Remove(_ context.Context, id int64) error {
	delete(r.shops, id)
	return nil
}

type fakePostRepo struct {
	posts  map[int64]*models.Post
	nextID int64
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: map[int64]*models.Post{}}
	for _, p := range posts {
		r.posts[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *fakePostRepo) Create(_ context.Context, post *models.Post) (int64, error) {
	r.nextID++
	post.ID = r.nextID
	r.posts[post.ID] = post
	return post.ID, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id int64) (*models.Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) GetByShopAndID(_ context.Context, shopID, postID int64) (*models.Post, error) {
	post := r.posts[postID]
	if post == nil || post.ShopID != shopID {
		return nil, nil
	}
	return post, nil
}

func (r *fakePostRepo) ListByShopID(_ context.Context, shopID int64, status string, limit, offset int) ([]*models.Post, int64, error) {
	var out []*models.Post
	for _, p := range r.posts {
		if p.ShopID == shopID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePostRepo) ListPublishedSince(_ context.Context, since time.Time) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range r.posts {
		if p.Status == models.PostStatusPublished && p.PublishedAt.Valid && p.PublishedAt.Time.After(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Update(_ context.Context, post *models.Post) error {
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) SetPublished(_ context.Context, id int64, instagramPostID string, publishedAt time.Time) error {
	p := r.posts[id]
	p.Status = models.PostStatusPublished
	p.InstagramPostID = nullString(instagramPostID)
	p.PublishedAt = nullTime(publishedAt)
	return nil
}

func (r *fakePostRepo) SetFailed(_ context.Context, id int64, errorMessage string) error {
	p := r.posts[id]
	p.Status = models.PostStatusFailed
	p.ErrorMessage = nullString(errorMessage)
	return nil
}

func (r *fakePostRepo) UpdateEngagement(_ context.Context, id int64, likes, comments, reach int64, syncedAt time.Time) error {
	p := r.posts[id]
	p.LikesCount = likes
	p.CommentsCount = comments
	p.ReachCount = reach
	p.EngagementSyncedAt = nullTime(syncedAt)
	return nil
}

func (r *fakePostRepo) Remove(_ context.Context, id int64) error {
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) StatsByShopID(_ context.Context, shopID int64) (*transfer.PostStats, error) {
	stats := &transfer.PostStats{}
	for _, p := range r.posts {
		if p.ShopID != shopID {
			continue
		}
		stats.TotalPosts++
		switch p.Status {
		case models.PostStatusDraft:
			stats.DraftCount++
		case models.PostStatusScheduled:
			stats.ScheduledCount++
		case models.PostStatusPublished:
			stats.PublishedCount++
		case models.PostStatusFailed:
			stats.FailedCount++
		}
	}
	return stats, nil
}

func (r *fakePostRepo) EngagementTotalsByShopID(_ context.Context, shopID int64, since time.Time) (*transfer.EngagementTotals, error) {
	totals := &transfer.EngagementTotals{}
	for _, p := range r.posts {
		if p.ShopID != shopID || p.Status != models.PostStatusPublished || !p.PublishedAt.Valid || p.PublishedAt.Time.Before(since) {
			continue
		}
		totals.Likes += p.LikesCount
		totals.Comments += p.CommentsCount
		totals.Reach += p.ReachCount
	}
	return totals, nil
}

type fakeIGService struct {
	mediaID    string
	publishErr error
	insights   map[string]int64
	captions   []string
}

func (f *fakeIGService) AuthURL(string) string { return "" }

func (f *fakeIGService) Connect(context.Context, int64, string) error { return nil }

func (f *fakeIGService) Status(context.Context, int64) (*transfer.ConnectionStatus, error) {
	return &transfer.ConnectionStatus{Connected: true}, nil
}

func (f *fakeIGService) Disconnect(context.Context, int64) error { return nil }

func (f *fakeIGService) Publish(_ context.Context, _ int64, req instagram.PublishRequest) (string, error) {
	f.captions = append(f.captions, req.Caption)
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return f.mediaID, nil
}

func (f *fakeIGService) SyncInsights(context.Context, int64, string) map[string]int64 {
	if f.insights == nil {
		return map[string]int64{}
	}
	return f.insights
}

func (f *fakeIGService) Close() {}

func TestPublishPostRecordsMediaID(t *testing.T) {
	shops := newFakeShopRepo(&models.Shop{ID: 1, UserID: 7, Name: "Harbor Salon"})
	posts := newFakePostRepo(&models.Post{
		ID:       3,
		ShopID:   1,
		Status:   models.PostStatusDraft,
		ImageURL: "https://cdn.example.com/cut.jpg",
		Caption:  "Fresh summer bob",
		Hashtags: []string{"salon", "#hair"},
	})
	ig := &fakeIGService{mediaID: "media_77", insights: map[string]int64{"likes": 5, "comments": 1, "reach": 40}}

	svc := NewPostService(shops, posts, ig)

	post, err := svc.Publish(context.Background(), 7, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPublished, post.Status)
	require.True(t, post.InstagramPostID.Valid)
	assert.Equal(t, "media_77", post.InstagramPostID.String)
	assert.True(t, post.PublishedAt.Valid)

	// Hashtags go out normalized after the caption body.
	require.Len(t, ig.captions, 1)
	assert.Equal(t, "Fresh summer bob\n\n#salon #hair", ig.captions[0])

	// Insights from the post-publish sync land on the row.
	assert.Equal(t, int64(5), post.LikesCount)
	assert.Equal(t, int64(40), post.ReachCount)
}

func TestPublishPostFailureMarksFailed(t *testing.T) {
	shops := newFakeShopRepo(&models.Shop{ID: 1, UserID: 7})
	posts := newFakePostRepo(&models.Post{
		ID:       3,
		ShopID:   1,
		Status:   models.PostStatusDraft,
		ImageURL: "https://cdn.example.com/cut.jpg",
	})
	ig := &fakeIGService{publishErr: &instagram.Error{
		Kind:    instagram.KindContainerCreation,
		Op:      "create_container",
		Message: "Image is too large",
	}}

	svc := NewPostService(shops, posts, ig)

	_, err := svc.Publish(context.Background(), 7, 1, 3)
	require.Error(t, err)
	assert.True(t, instagram.IsKind(err, instagram.KindContainerCreation))

	stored, _ := posts.GetByID(context.Background(), 3)
	assert.Equal(t, models.PostStatusFailed, stored.Status)
	require.True(t, stored.ErrorMessage.Valid)
	assert.Contains(t, stored.ErrorMessage.String, "Image is too large")
}

func TestPublishPostOwnershipChecked(t *testing.T) {
	shops := newFakeShopRepo(&models.Shop{ID: 1, UserID: 7})
	posts := newFakePostRepo(&models.Post{ID: 3, ShopID: 1, Status: models.PostStatusDraft, ImageURL: "https://x/y.jpg"})
	svc := NewPostService(shops, posts, &fakeIGService{mediaID: "media_77"})

	_, err := svc.Publish(context.Background(), 99, 1, 3)
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestPublishScheduledSkipsUnscheduled(t *testing.T) {
	shops := newFakeShopRepo(&models.Shop{ID: 1, UserID: 7})
	posts := newFakePostRepo(&models.Post{
		ID:       3,
		ShopID:   1,
		Status:   models.PostStatusDraft,
		ImageURL: "https://cdn.example.com/cut.jpg",
	})
	ig := &fakeIGService{mediaID: "media_77"}
	svc := NewPostService(shops, posts, ig)

	// Post was unscheduled after the task was enqueued.
	require.NoError(t, svc.PublishScheduled(context.Background(), 3))
	assert.Empty(t, ig.captions)

	stored, _ := posts.GetByID(context.Background(), 3)
	assert.Equal(t, models.PostStatusDraft, stored.Status)
}

func TestPublishScheduledPublishes(t *testing.T) {
	shops := newFakeShopRepo(&models.Shop{ID: 1, UserID: 7})
	posts := newFakePostRepo(&models.Post{
		ID:          3,
		ShopID:      1,
		Status:      models.PostStatusScheduled,
		ImageURL:    "https://cdn.example.com/cut.jpg",
		ScheduledAt: nullTime(time.Now().Add(-time.Minute)),
	})
	ig := &fakeIGService{mediaID: "media_77"}
	svc := NewPostService(shops, posts, ig)

	require.NoError(t, svc.PublishScheduled(context.Background(), 3))

	stored, _ := posts.GetByID(context.Background(), 3)
	assert.Equal(t, models.PostStatusPublished, stored.Status)
	assert.Equal(t, "media_77", stored.InstagramPostID.String)
}

func TestInsightsReturnsSnapshot(t *testing.T) {
	shops := newFakeShopRepo(&models.Shop{ID: 1, UserID: 7})
	posts := newFakePostRepo(&models.Post{
		ID:              3,
		ShopID:          1,
		Status:          models.PostStatusPublished,
		ImageURL:        "https://cdn.example.com/cut.jpg",
		InstagramPostID: nullString("media_77"),
	})
	ig := &fakeIGService{insights: map[string]int64{"likes": 12, "comments": 2, "reach": 310}}
	svc := NewPostService(shops, posts, ig)

	snapshot, err := svc.Insights(context.Background(), 7, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "media_77", snapshot.MediaID)
	assert.Equal(t, int64(12), snapshot.Metrics["likes"])

	// The fetch refreshes the stored counters as a side effect.
	stored, _ := posts.GetByID(context.Background(), 3)
	assert.Equal(t, int64(310), stored.ReachCount)
	assert.True(t, stored.EngagementSyncedAt.Valid)
}

func TestInsightsRequiresPublishedPost(t *testing.T) {
	shops := newFakeShopRepo(&models.Shop{ID: 1, UserID: 7})
	posts := newFakePostRepo(&models.Post{ID: 3, ShopID: 1, Status: models.PostStatusDraft, ImageURL: "https://x/y.jpg"})
	svc := NewPostService(shops, posts, &fakeIGService{})

	_, err := svc.Insights(context.Background(), 7, 1, 3)
	assert.ErrorIs(t, err, ErrPostNotPublished)

	_, err = svc.Insights(context.Background(), 99, 1, 3)
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestUpdatePublishedPostRejected(t *testing.T) {
	shops := newFakeShopRepo(&models.Shop{ID: 1, UserID: 7})
	posts := newFakePostRepo(&models.Post{
		ID:              3,
		ShopID:          1,
		Status:          models.PostStatusPublished,
		ImageURL:        "https://cdn.example.com/cut.jpg",
		InstagramPostID: nullString("media_77"),
	})
	svc := NewPostService(shops, posts, &fakeIGService{})

	caption := "new caption"
	_, err := svc.Update(context.Background(), 7, 1, 3, transfer.PostUpdateRequest{Caption: &caption})
	assert.ErrorIs(t, err, ErrPostPublished)

	err = svc.Delete(context.Background(), 7, 1, 3)
	assert.ErrorIs(t, err, ErrPostPublished)
}

func TestBuildCaption(t *testing.T) {
	cases := []struct {
		name     string
		caption  string
		hashtags []string
		want     string
	}{
		{"no hashtags", "hello", nil, "hello"},
		{"tags appended", "hello", []string{"salon", "hair"}, "hello\n\n#salon #hair"},
		{"existing hash kept", "hello", []string{"#salon"}, "hello\n\n#salon"},
		{"blank tags dropped", "hello", []string{" ", ""}, "hello"},
		{"empty caption", "", []string{"salon"}, "#salon"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, buildCaption(tc.caption, tc.hashtags))
		})
	}
}
