package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boma/internal/middleware"
	"boma/internal/models"
	"boma/internal/service"
)

func (h HandlerSet) ListReviews(c *gin.Context) {
	reviews, err := h.reviews.ListByListing(c.Request.Context(), c.Param("listingId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.reviewViews(c, reviews))
}

// ListUserReviews omits anonymous reviews the caller may not attribute, so
// the listing itself cannot reveal their author.
func (h HandlerSet) ListUserReviews(c *gin.Context) {
	userID := c.Param("userId")
	reviews, err := h.reviews.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	viewer := middleware.CurrentUser(c)
	visible := reviews[:0]
	for _, r := range reviews {
		if service.RevealAuthor(r.Anonymous, r.UserID, viewer) {
			visible = append(visible, r)
		}
	}
	c.JSON(http.StatusOK, h.reviewViews(c, visible))
}

func (h HandlerSet) reviewViews(c *gin.Context, reviews []models.Review) []reviewResponse {
	viewer := middleware.CurrentUser(c)
	return mapSlice(reviews, func(r models.Review) reviewResponse { return newReviewResponse(r, viewer) })
}

type createReviewRequest struct {
	SafetyRating   int    `json:"safetyRating"`
	WaterRating    int    `json:"waterRating"`
	LandlordRating int    `json:"landlordRating"`
	Comment        string `json:"comment"`
	Anonymous      *bool  `json:"anonymous"`
}

func (h HandlerSet) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	viewer := middleware.CurrentUser(c)
	r, err := h.reviews.Create(c.Request.Context(), viewer, c.Param("listingId"), service.ReviewInput{
		SafetyRating:   req.SafetyRating,
		WaterRating:    req.WaterRating,
		LandlordRating: req.LandlordRating,
		Comment:        req.Comment,
		Anonymous:      req.Anonymous,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newReviewResponse(r, viewer))
}

func (h HandlerSet) DeleteReview(c *gin.Context) {
	if err := h.reviews.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ListPosts(c *gin.Context) {
	posts, err := h.forum.List(c.Request.Context(), c.Param("listingId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	viewer := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, mapSlice(posts, func(p models.ForumPost) postResponse { return newPostResponse(p, viewer) }))
}

type createPostRequest struct {
	Content   string `json:"content"`
	Anonymous *bool  `json:"anonymous"`
	Complaint bool   `json:"complaint"`
}

func (h HandlerSet) CreatePost(c *gin.Context) {
	var req createPostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	viewer := middleware.CurrentUser(c)
	p, err := h.forum.Create(c.Request.Context(), viewer, c.Param("listingId"), service.PostInput{
		Content:   req.Content,
		Anonymous: req.Anonymous,
		Complaint: req.Complaint,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostResponse(p, viewer))
}

func (h HandlerSet) DeletePost(c *gin.Context) {
	if err := h.forum.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("postId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type resolveRequest struct {
	Resolved *bool `json:"resolved"`
}

func (h HandlerSet) ResolvePost(c *gin.Context) {
	var req resolveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resolved := true
	if req.Resolved != nil {
		resolved = *req.Resolved
	}

	viewer := middleware.CurrentUser(c)
	p, err := h.forum.SetResolved(c.Request.Context(), viewer, c.Param("postId"), resolved)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostResponse(p, viewer))
}
