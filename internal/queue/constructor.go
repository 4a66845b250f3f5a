package queue

import (
	"github.com/miyakawa-dev/salonflow/internal/service"
)

type Queue struct {
	posts service.PostService
}

func NewQueue(posts service.PostService) *Queue {
	return &Queue{posts: posts}
}

const TaskTypePublishPost = "post:publish"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
