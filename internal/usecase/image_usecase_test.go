package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStagedImageName_Deterministic(t *testing.T) {
	first := StagedImageName("bike.jpg", "Bike", "sports", "red", "50", "image/jpeg")
	second := StagedImageName("bike.jpg", "Bike", "sports", "red", "50", "image/jpeg")
	assert.Equal(t, first, second)

	// 64 hex chars plus the MIME subtype extension.
	require.True(t, strings.HasSuffix(first, ".jpeg"), "name %q should carry the subtype extension", first)
	assert.Len(t, strings.TrimSuffix(first, ".jpeg"), 64)
}

func TestStagedImageName_FieldsChangeName(t *testing.T) {
	base := StagedImageName("bike.jpg", "Bike", "sports", "red", "50", "image/jpeg")

	assert.NotEqual(t, base, StagedImageName("bike2.jpg", "Bike", "sports", "red", "50", "image/jpeg"))
	assert.NotEqual(t, base, StagedImageName("bike.jpg", "Bike", "sports", "red", "60", "image/jpeg"))
	assert.NotEqual(t, base, StagedImageName("bike.jpg", "Bike", "sports", "blue", "50", "image/jpeg"))
}

func TestStagedImageName_ExtensionFromContentType(t *testing.T) {
	name := StagedImageName("bike.jpg", "Bike", "sports", "red", "50", "image/png")
	assert.True(t, strings.HasSuffix(name, ".png"))
}

func TestStageUpload_WritesUnderDerivedName(t *testing.T) {
	imageStore := new(MockImageStore)
	data := []byte("fake image bytes")
	expected := StagedImageName("bike.jpg", "Bike", "sports", "red", "50", "image/jpeg")

	imageStore.On("Stage", mock.Anything, expected, "image/jpeg", data).Return(nil).Once()

	uc := NewImageUseCase(imageStore, zap.NewNop())
	name, err := uc.StageUpload(context.Background(), data, "bike.jpg", "image/jpeg", "Bike", "sports", "red", "50")

	require.NoError(t, err)
	assert.Equal(t, expected, name)
	imageStore.AssertExpectations(t)
}

func TestGetVariant_InvalidSize(t *testing.T) {
	imageStore := new(MockImageStore)

	uc := NewImageUseCase(imageStore, zap.NewNop())
	_, _, err := uc.GetVariant(context.Background(), "abc123.jpeg", 200)

	assert.ErrorIs(t, err, ErrInvalidSize)
	imageStore.AssertNotCalled(t, "GetVariant", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetVariant_MissingName(t *testing.T) {
	uc := NewImageUseCase(new(MockImageStore), zap.NewNop())
	_, _, err := uc.GetVariant(context.Background(), "", 100)
	assert.ErrorIs(t, err, ErrMissingImageName)
}

func TestGetVariant_NotReady(t *testing.T) {
	imageStore := new(MockImageStore)
	imageStore.On("GetVariant", mock.Anything, "abc123.jpeg", 100).
		Return(nil, "", storage.ErrObjectNotFound).Once()

	uc := NewImageUseCase(imageStore, zap.NewNop())
	_, _, err := uc.GetVariant(context.Background(), "abc123.jpeg", 100)

	assert.ErrorIs(t, err, ErrVariantNotReady)
	imageStore.AssertExpectations(t)
}

func TestGetVariant_Success(t *testing.T) {
	imageStore := new(MockImageStore)
	body := io.NopCloser(bytes.NewReader([]byte("resized bytes")))
	imageStore.On("GetVariant", mock.Anything, "abc123.jpeg", 500).
		Return(body, "image/jpeg", nil).Once()

	uc := NewImageUseCase(imageStore, zap.NewNop())
	reader, contentType, err := uc.GetVariant(context.Background(), "abc123.jpeg", 500)

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
	got, readErr := io.ReadAll(reader)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("resized bytes"), got)
	imageStore.AssertExpectations(t)
}
