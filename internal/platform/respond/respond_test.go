// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

func TestError_AppErrorEnvelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/titles/1/reviews", nil)

	respond.Error(recorder, request, apperr.Conflict("Review already exists").WithReason(apperr.ReasonDuplicateReview))

	assert.Equal(t, http.StatusConflict, recorder.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeConflict, body.Code)
	assert.Equal(t, apperr.ReasonDuplicateReview, body.Reason)
	assert.Equal(t, "Review already exists", body.Error)
}

func TestError_PlainErrorIsHidden(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/titles", nil)

	respond.Error(recorder, request, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "relation")
}

func TestPaginated(t *testing.T) {
	recorder := httptest.NewRecorder()
	params := pagination.Params{Page: 1, Limit: 2}

	respond.Paginated(recorder, []string{"a", "b"}, pagination.NewMeta(params, 3))

	var body struct {
		Data []string        `json:"data"`
		Meta pagination.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.Data)
	assert.Equal(t, 2, body.Meta.TotalPages)
}
