package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSaveBase64(t *testing.T) {
	store := new(mocks.MockAssetStore)
	store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "recipes/images/") && strings.HasSuffix(key, ".jpg")
	}), mock.Anything, "image/jpeg").Return(nil).Once()

	images := service.NewImageService(store)
	key, err := images.SaveBase64(context.Background(), testhelpers.ImageDataURI(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "recipes/images/"))
	store.AssertExpectations(t)
}

func TestSaveBase64RawPayload(t *testing.T) {
	store := new(mocks.MockAssetStore)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, "image/jpeg").Return(nil).Once()

	uri := testhelpers.ImageDataURI(t)
	raw := uri[strings.Index(uri, ",")+1:]

	_, err := service.NewImageService(store).SaveBase64(context.Background(), raw)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSaveBase64Rejects(t *testing.T) {
	store := new(mocks.MockAssetStore)
	images := service.NewImageService(store)

	for name, payload := range map[string]string{
		"blank":       "  ",
		"not base64":  "data:image/png;base64,%%%",
		"not image":   "data:text/plain;base64,aGVsbG8=",
		"not a data":  "data:image/png,raw",
		"bad content": "aGVsbG8gd29ybGQ=",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := images.SaveBase64(context.Background(), payload)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "image")
		})
	}
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveBase64StoreFailure(t *testing.T) {
	store := new(mocks.MockAssetStore)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket unavailable"))

	_, err := service.NewImageService(store).SaveBase64(context.Background(), testhelpers.ImageDataURI(t))
	assert.EqualError(t, err, "bucket unavailable")
}

func TestImageURL(t *testing.T) {
	store := new(mocks.MockAssetStore)
	store.On("URL", "recipes/images/a.jpg").Return("https://cdn.example.com/recipes/images/a.jpg")
	images := service.NewImageService(store)

	assert.Nil(t, images.URL(""))
	url := images.URL("recipes/images/a.jpg")
	require.NotNil(t, url)
	assert.Equal(t, "https://cdn.example.com/recipes/images/a.jpg", *url)

	assert.NoError(t, images.Delete(context.Background(), ""))
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
