package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-ai-api/internal/domain/entity"
	apperrors "book-ai-api/pkg/errors"
)

type stubAnswerer struct {
	turn      *entity.ChatTurn
	err       error
	profileID int64
	query     string
}

func (s *stubAnswerer) AnswerQuery(ctx context.Context, profileID int64, query string) (*entity.ChatTurn, error) {
	s.profileID = profileID
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	return s.turn, nil
}

type stubUserRepo struct {
	user *entity.User
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.user, nil
}
func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (s *stubUserRepo) GetByProfileID(ctx context.Context, profileID int64) (*entity.User, error) {
	return nil, nil
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}
func (s *stubUserRepo) Update(ctx context.Context, user *entity.User) error      { return nil }
func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id string) error     { return nil }
func (s *stubUserRepo) SetRecommendationsReady(ctx context.Context, id string, ready bool) error {
	return nil
}
func (s *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func newAskRouter(answerer *stubAnswerer, users *stubUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "u-42")
	})
	h := NewAssistantHandler(answerer, users)
	r.POST("/v1/assistant/ask", h.Ask)
	return r
}

func doAsk(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/assistant/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAskRecommendationIncludesKey(t *testing.T) {
	recs := []entity.RecommendationResult{{Title: "Dune", Author: "Frank Herbert", Description: "sand"}}
	answerer := &stubAnswerer{turn: &entity.ChatTurn{
		Route:           entity.RouteRecommendation,
		Response:        "Here are some personalized recommendations for you:",
		Recommendations: &recs,
	}}
	users := &stubUserRepo{user: &entity.User{ID: "u-42", ProfileID: 42}}

	w := doAsk(t, newAskRouter(answerer, users), `{"query":"a recommendation please"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, hasRecs := resp.Data["recommendations"]
	assert.True(t, hasRecs, "recommendation route must expose recommendations key")
	assert.Equal(t, int64(42), answerer.profileID, "defaults to the authenticated user's profile")
}

func TestAskRecommendationEmptyListKeptInBody(t *testing.T) {
	recs := []entity.RecommendationResult{}
	answerer := &stubAnswerer{turn: &entity.ChatTurn{
		Route:           entity.RouteRecommendation,
		Response:        "Here are some personalized recommendations for you:",
		Recommendations: &recs,
	}}
	users := &stubUserRepo{user: &entity.User{ID: "u-42", ProfileID: 42}}

	w := doAsk(t, newAskRouter(answerer, users), `{"query":"recommendation"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	raw, hasRecs := resp.Data["recommendations"]
	require.True(t, hasRecs, "empty result set still carries the key")
	assert.JSONEq(t, "[]", string(raw))
}

func TestAskGeneralOmitsRecommendationsKey(t *testing.T) {
	answerer := &stubAnswerer{turn: &entity.ChatTurn{
		Route:    entity.RouteGeneral,
		Response: "Frank Herbert wrote Dune.",
	}}
	users := &stubUserRepo{user: &entity.User{ID: "u-42", ProfileID: 42}}

	w := doAsk(t, newAskRouter(answerer, users), `{"query":"who wrote Dune?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, hasRecs := resp.Data["recommendations"]
	assert.False(t, hasRecs, "general route must not expose recommendations key")
}

func TestAskUserIDOverride(t *testing.T) {
	answerer := &stubAnswerer{turn: &entity.ChatTurn{Route: entity.RouteGeneral, Response: "hi"}}
	users := &stubUserRepo{user: &entity.User{ID: "u-42", ProfileID: 42}}

	w := doAsk(t, newAskRouter(answerer, users), `{"query":"hello","user_id":7}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), answerer.profileID)
}

func TestAskMissingQuery(t *testing.T) {
	answerer := &stubAnswerer{}
	users := &stubUserRepo{user: &entity.User{ID: "u-42", ProfileID: 42}}

	w := doAsk(t, newAskRouter(answerer, users), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskMapsEngineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"user not found", apperrors.ErrUserNotFound, http.StatusNotFound},
		{"embedding missing", apperrors.ErrEmbeddingMissing, http.StatusInternalServerError},
		{"search failed", apperrors.ErrSearchFailed, http.StatusInternalServerError},
		{"completion failed", apperrors.ErrCompletionFailed, http.StatusInternalServerError},
	}

	users := &stubUserRepo{user: &entity.User{ID: "u-42", ProfileID: 42}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answerer := &stubAnswerer{err: tt.err}
			w := doAsk(t, newAskRouter(answerer, users), `{"query":"recommendation"}`)
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp struct {
				Error struct {
					ErrorCode string `json:"error_code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error.ErrorCode)
		})
	}
}
