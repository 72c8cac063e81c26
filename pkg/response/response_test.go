package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejection(t *testing.T) {
	r := Rejection(ErrCodeGone, "Expired", "EVENT HAS ENDED")
	assert.False(t, r.Success)
	require.NotNil(t, r.Error)
	assert.Equal(t, ErrCodeGone, r.Error.Code)
	assert.Equal(t, "Expired", r.Error.Kind)
	assert.Equal(t, "EVENT HAS ENDED", r.Error.Message)
}

func TestPage_JSON(t *testing.T) {
	b, err := json.Marshal(Page([]int{1, 2}, 2, 7, true))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[1,2],"meta":{"limit":2,"next_after":7,"has_more":true}}`, string(b))
}

func TestError_OmitsKind(t *testing.T) {
	b, err := json.Marshal(NotFound("missing"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"NOT_FOUND","message":"missing"}}`, string(b))
}
