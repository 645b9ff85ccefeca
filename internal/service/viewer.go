package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// viewerState holds what the requester has favorited, put in the shopping
// cart and subscribed to, restricted to the recipes and authors on screen.
// The zero value describes an anonymous requester.
type viewerState struct {
	memberships map[model.MembershipKind]map[uuid.UUID]bool
	following   map[uuid.UUID]bool
}

func loadViewerState(ctx context.Context, db *gorm.DB, viewer *types.Identity, recipeIDs, authorIDs []uuid.UUID) (*viewerState, error) {
	state := &viewerState{
		memberships: map[model.MembershipKind]map[uuid.UUID]bool{
			model.MembershipFavorite:     {},
			model.MembershipShoppingCart: {},
		},
		following: map[uuid.UUID]bool{},
	}
	if viewer == nil {
		return state, nil
	}

	if len(recipeIDs) > 0 {
		var rows []model.Membership
		if err := db.WithContext(ctx).Select("recipe_id", "kind").
			Where("user_id = ? AND recipe_id IN ?", viewer.UserID, recipeIDs).
			Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, m := range rows {
			if set, ok := state.memberships[m.Kind]; ok {
				set[m.RecipeID] = true
			}
		}
	}

	if len(authorIDs) > 0 {
		var following []uuid.UUID
		if err := db.WithContext(ctx).Model(&model.Follow{}).
			Where("user_id = ? AND following_id IN ?", viewer.UserID, authorIDs).
			Pluck("following_id", &following).Error; err != nil {
			return nil, err
		}
		for _, id := range following {
			state.following[id] = true
		}
	}

	return state, nil
}

func (v *viewerState) recipeFlags(r *model.Recipe) recipeFlags {
	return recipeFlags{
		favorited:      v.memberships[model.MembershipFavorite][r.ID],
		inShoppingCart: v.memberships[model.MembershipShoppingCart][r.ID],
		subscribed:     v.following[r.AuthorID],
	}
}

func (v *viewerState) follows(userID uuid.UUID) bool {
	return v.following[userID]
}
