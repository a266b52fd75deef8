package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"boma/internal/apperr"
	"boma/internal/config"
	"boma/internal/middleware"
	"boma/internal/models"
	"boma/internal/repository"
	"boma/internal/security"
	"boma/internal/service"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	auth         *service.AuthService
	listings     *service.ListingService
	reviews      *service.ReviewService
	forum        *service.ForumService
	verification *service.VerificationService
	users        *service.UserService
	store        repository.Store
	cache        *redis.Client
	tokens       *security.TokenService
}

// NewHandlerSet wires the HTTP layer. cache may be nil when redis is disabled.
func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	services *service.Services,
	store repository.Store,
	cache *redis.Client,
	tokens *security.TokenService,
) HandlerSet {
	return HandlerSet{
		log:          log,
		cfg:          cfg,
		auth:         services.Auth,
		listings:     services.Listings,
		reviews:      services.Reviews,
		forum:        services.Forum,
		verification: services.Verification,
		users:        services.Users,
		store:        store,
		cache:        cache,
		tokens:       tokens,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	api := router.Group("")
	api.Use(middleware.Session(h.tokens, h.store.Users(), h.log))

	auth := api.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)
	auth.GET("/me", middleware.RequireAuth(), h.Me)
	auth.PUT("/profile", middleware.RequireAuth(), h.UpdateProfile)

	listings := api.Group("/listings")
	listings.GET("", h.ListListings)
	listings.GET("/:id", h.GetListing)
	listings.POST("", middleware.RequireAuth(), h.CreateListing)
	listings.PUT("/:id", middleware.RequireAuth(), h.UpdateListing)
	listings.DELETE("/:id", middleware.RequireAuth(), h.DeleteListing)

	reviews := api.Group("/reviews")
	reviews.GET("/:listingId", h.ListReviews)
	reviews.GET("/user/:userId", h.ListUserReviews)
	reviews.POST("/:listingId", middleware.RequireAuth(), h.CreateReview)
	reviews.DELETE("/:id", middleware.RequireAuth(), h.DeleteReview)

	forum := api.Group("/forum")
	forum.GET("/:listingId", h.ListPosts)
	forum.POST("/:listingId", middleware.RequireAuth(), h.CreatePost)
	forum.DELETE("/:postId", middleware.RequireAuth(), h.DeletePost)
	forum.PUT("/:postId/resolved", middleware.RequireAuth(), h.ResolvePost)

	verification := api.Group("/verification")
	verification.POST("", middleware.RequireRoles(models.RoleLandlord), h.SubmitVerification)
	verification.GET("/mine", middleware.RequireRoles(models.RoleLandlord), h.MyVerification)
	verification.GET("", middleware.RequireRoles(models.RoleAdmin), h.ListVerifications)
	verification.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.ReviewVerification)

	users := api.Group("/users")
	users.Use(middleware.RequireRoles(models.RoleAdmin))
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id/role", h.ChangeRole)
	users.DELETE("/:id", h.DeleteUser)
}

// respondError writes err in the common error shape. Internal failures are
// logged here; their cause never reaches the client.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	status, body := apperr.Response(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("route", c.FullPath()).
			Str("request_id", middleware.RequestIDFrom(c)).
			Msg("request failed")
	}
	c.JSON(status, body)
}

// bindJSON decodes the request body into dst and reports a validation error
// on malformed input.
func (h HandlerSet) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		h.respondError(c, apperr.Validation("invalid_request", msg))
		return false
	}
	return true
}

func (h HandlerSet) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.respondError(c, apperr.Validation("invalid_query", err.Error()))
		return false
	}
	return true
}
