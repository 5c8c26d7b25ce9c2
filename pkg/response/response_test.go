package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/workhivehq/workhive/pkg/errors"
)

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SuccessWithMessage(c, http.StatusOK, "2 other pending invitations have been canceled", gin.H{"canceled": 2})

	require.Equal(t, http.StatusOK, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "2 other pending invitations have been canceled", body.Message)
	require.Nil(t, body.Error)
}

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, appErrors.ErrAlreadyAffiliated)

	require.Equal(t, http.StatusConflict, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.NotNil(t, body.Error)
	require.Equal(t, "ALREADY_AFFILIATED", body.Error.Code)
}

func TestErrorDefaultsToInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
