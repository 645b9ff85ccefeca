package types

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var requiredID = validation.By(func(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
})

// distinctIDs fails when the same id appears twice in a slice.
func distinctIDs(label string, ids []uuid.UUID) validation.Rule {
	return validation.By(func(interface{}) error {
		seen := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				return fmt.Errorf("%s must not repeat: %s", label, id)
			}
			seen[id] = struct{}{}
		}
		return nil
	})
}
