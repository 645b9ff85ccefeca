package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles everything the HTTP handlers depend on.
type Services struct {
	Auth        service.IAuthService
	Users       service.IUserService
	Catalog     service.ICatalogService
	Recipes     service.IRecipeService
	Memberships service.IMembershipService
	Follows     service.IFollowService
	Shopping    service.IShoppingService
}

// Options carries optional handler settings.
type Options struct {
	PDFFontPath         string
	RecipeCreateLimiter gin.HandlerFunc
}

// HealthCheck returns the liveness status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Foodgram API is running",
	})
}

// RegisterRoutes registers all API routes under /api/v1
func RegisterRoutes(router gin.IRouter, svc Services, opts Options) *gin.RouterGroup {
	v1 := router.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(svc.Auth))

	NewAuthHandler(svc.Auth).RegisterRoutes(v1)
	NewUserHandler(svc.Auth, svc.Users, svc.Follows).RegisterRoutes(v1)
	NewCatalogHandler(svc.Catalog).RegisterRoutes(v1)
	NewRecipeHandler(svc.Recipes, svc.Memberships, svc.Shopping, opts.PDFFontPath, opts.RecipeCreateLimiter).RegisterRoutes(v1)

	return v1
}
