package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/report"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipeService     service.IRecipeService
	membershipService service.IMembershipService
	shoppingService   service.IShoppingService
	fontPath          string
	createLimiter     gin.HandlerFunc
}

// NewRecipeHandler creates a recipe handler. createLimiter may be nil.
func NewRecipeHandler(
	recipeService service.IRecipeService,
	membershipService service.IMembershipService,
	shoppingService service.IShoppingService,
	fontPath string,
	createLimiter gin.HandlerFunc,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:     recipeService,
		membershipService: membershipService,
		shoppingService:   shoppingService,
		fontPath:          fontPath,
		createLimiter:     createLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	create := []gin.HandlerFunc{middleware.RequireAuth()}
	if h.createLimiter != nil {
		create = append(create, h.createLimiter)
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", middleware.RequireAuth(), h.UpdateRecipe)
		recipes.PATCH("/:id", middleware.RequireAuth(), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.RequireAuth(), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.RequireAuth(), h.addMembership(model.MembershipFavorite))
		recipes.DELETE("/:id/favorite", middleware.RequireAuth(), h.removeMembership(model.MembershipFavorite))
		recipes.POST("/:id/shopping_cart", middleware.RequireAuth(), h.addMembership(model.MembershipShoppingCart))
		recipes.DELETE("/:id/shopping_cart", middleware.RequireAuth(), h.removeMembership(model.MembershipShoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := types.RecipeFilter{
		Tags:           c.QueryArray("tags"),
		Favorited:      queryBool(c, "is_favorited"),
		InShoppingCart: queryBool(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			respondInvalidParam(c, "author", "must be a valid user id")
			return
		}
		filter.AuthorID = &authorID
	}

	params := pageParams(c)
	page, err := h.recipeService.ListRecipes(c.Request.Context(), filter, params, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withLinks(c, page, params))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addMembership(kind model.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		short, err := h.membershipService.AddMembership(c.Request.Context(), middleware.GetIdentity(c), id, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, short)
	}
}

func (h *RecipeHandler) removeMembership(kind model.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := h.membershipService.RemoveMembership(c.Request.Context(), middleware.GetIdentity(c), id, kind); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart renders the caller's aggregated shopping list as an
// attachment. The format query picks pdf (default), txt or xlsx.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "pdf"))
	renderer, err := report.ForFormat(format, h.fontPath)
	if err != nil {
		respondInvalidParam(c, "format", "must be one of pdf, txt, xlsx")
		return
	}

	items, err := h.shoppingService.ShoppingList(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, items); err != nil {
		log.Error().Err(err).Str("format", format).Msg("failed to render shopping list")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	metrics.ShoppingListDownloads.WithLabelValues(format).Inc()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", renderer.Filename()))
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}
