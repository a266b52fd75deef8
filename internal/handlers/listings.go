package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boma/internal/middleware"
	"boma/internal/repository"
	"boma/internal/service"
)

type listingQuery struct {
	Search   string `form:"search"`
	Location string `form:"location"`
	MinPrice *int64 `form:"minPrice"`
	MaxPrice *int64 `form:"maxPrice"`
	Bedrooms *int   `form:"bedrooms"`
	Category string `form:"category"`
	Verified *bool  `form:"verified"`
	OwnerID  string `form:"ownerId"`
	Page     int    `form:"page"`
	PerPage  int    `form:"perPage"`
}

// ListListings answers with a JSON array; the effective page is echoed in
// the X-Page and X-Per-Page headers.
func (h HandlerSet) ListListings(c *gin.Context) {
	var q listingQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.listings.List(c.Request.Context(), repository.ListingFilter{
		Search:      q.Search,
		Location:    q.Location,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		MinBedrooms: q.Bedrooms,
		Category:    q.Category,
		Verified:    q.Verified,
		OwnerID:     q.OwnerID,
	}, service.Page{Page: q.Page, PerPage: q.PerPage})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("X-Page", strconv.Itoa(page.Page))
	c.Header("X-Per-Page", strconv.Itoa(page.PerPage))
	c.JSON(http.StatusOK, mapSlice(page.Items, newListingResponse))
}

func (h HandlerSet) GetListing(c *gin.Context) {
	l, err := h.listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListingResponse(l))
}

type createListingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Price       int64    `json:"price"`
	Bedrooms    int      `json:"bedrooms"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

// CreateListing ignores any verified flag in the body; new listings are
// always unverified.
func (h HandlerSet) CreateListing(c *gin.Context) {
	var req createListingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	l, err := h.listings.Create(c.Request.Context(), middleware.CurrentUser(c), service.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Category:    req.Category,
		Images:      req.Images,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newListingResponse(l))
}

type updateListingRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Address     *string   `json:"address"`
	Price       *int64    `json:"price"`
	Bedrooms    *int      `json:"bedrooms"`
	Category    *string   `json:"category"`
	Images      *[]string `json:"images"`
	Verified    *bool     `json:"verified"`
}

func (h HandlerSet) UpdateListing(c *gin.Context) {
	var req updateListingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	l, err := h.listings.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), service.ListingPatch{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Category:    req.Category,
		Images:      req.Images,
		Verified:    req.Verified,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListingResponse(l))
}

func (h HandlerSet) DeleteListing(c *gin.Context) {
	if err := h.listings.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
