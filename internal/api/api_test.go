package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ercanvas/locamoo/internal/api"
	"github.com/ercanvas/locamoo/internal/api/response"
	"github.com/ercanvas/locamoo/internal/dependencies/mocks"
	"github.com/ercanvas/locamoo/internal/hub"
	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/services/moderation"
	"github.com/ercanvas/locamoo/internal/storage/memory"
	"github.com/ercanvas/locamoo/internal/testutil"
)

// testServer wires the router against in-memory dependencies
type testServer struct {
	handler http.Handler
	store   *memory.Storage
	clock   *mocks.MockClock
	filter  *moderation.Filter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	filter := moderation.NewFilter(store, logger, time.Minute)
	h := hub.New(store, filter, clk, logger, hub.DefaultConfig())

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Store:      store,
		Clock:      clk,
		Hub:        h,
		Filter:     filter,
		ChatWindow: 20 * time.Minute,
	})

	return &testServer{handler: router, store: store, clock: clk, filter: filter}
}

func (ts *testServer) request(method, path string, body any, user string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("x-user", user)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) saveModerator(t *testing.T, username string) {
	t.Helper()
	err := ts.store.SavePlayerProfile(context.Background(), &model.PlayerProfile{
		Username: username,
		PhotoURL: model.DefaultPhotoURL,
		Role:     model.RoleModerator,
		Level:    1,
	})
	require.NoError(t, err)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestChatHistoryReturnsRecentWindowAscending(t *testing.T) {
	ts := newTestServer(t)
	now := ts.clock.Now()

	for _, msg := range []*model.ChatMessage{
		{Username: "old", Message: "too old", Timestamp: now.Add(-30 * time.Minute)},
		{Username: "alice", Message: "first", Timestamp: now.Add(-10 * time.Minute)},
		{Username: "bob", Message: "second", Timestamp: now.Add(-5 * time.Minute)},
	} {
		require.NoError(t, ts.store.AppendGlobalChat(context.Background(), msg))
	}

	rr := ts.request(http.MethodGet, "/api/chat/global", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.ChatHistory
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "first", resp.Messages[0].Message)
	assert.Equal(t, "second", resp.Messages[1].Message)
}

func TestChatHistoryEmptyWindow(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/chat/global", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"messages":[]}`, rr.Body.String())
}

func TestHiddenWordsRequireIdentity(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/settings/hidden-words", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHiddenWordsRejectNonModerators(t *testing.T) {
	ts := newTestServer(t)
	err := ts.store.SavePlayerProfile(context.Background(), &model.PlayerProfile{
		Username: "alice",
		Role:     model.RolePlayer,
	})
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/settings/hidden-words", nil, "alice")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// unknown identities are rejected the same way
	rr = ts.request(http.MethodGet, "/api/settings/hidden-words", nil, "nobody")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestModeratorManagesHiddenWords(t *testing.T) {
	ts := newTestServer(t)
	ts.saveModerator(t, "mod")

	rr := ts.request(http.MethodPost, "/api/settings/hidden-words", map[string]string{"word": " Spam "}, "mod")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/settings/hidden-words", nil, "mod")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.HiddenWords
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Words, 1)
	assert.Equal(t, "spam", resp.Words[0].Word)
	assert.Equal(t, "mod", resp.Words[0].AddedBy)

	// the censor picks the word up without waiting for the periodic refresh
	assert.Equal(t, "no *** here", ts.filter.Censor("no spam here"))

	rr = ts.request(http.MethodDelete, "/api/settings/hidden-words/spam", nil, "mod")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/settings/hidden-words/spam", nil, "mod")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddHiddenWordRejectsEmptyWord(t *testing.T) {
	ts := newTestServer(t)
	ts.saveModerator(t, "mod")

	rr := ts.request(http.MethodPost, "/api/settings/hidden-words", map[string]string{"word": "   "}, "mod")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
