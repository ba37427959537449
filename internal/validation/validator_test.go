package validation

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Path  string `json:"path" validate:"required"`
	Type  string `json:"content_type,omitempty" validate:"omitempty,oneof=movie tv"`
	Count int    `json:"count" validate:"gte=0,lte=10"`
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&sample{Path: "/data/x.mkv", Type: "tv", Count: 3}))

	err := v.Validate(&sample{Type: "anime", Count: 11})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)

	body, ok := he.Message.(map[string]interface{})
	require.True(t, ok)
	fields, ok := body["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", fields["path"])
	assert.Equal(t, "must be one of: movie tv", fields["content_type"])
	assert.Equal(t, "must be less than or equal to 10", fields["count"])
}
