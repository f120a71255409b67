package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
)

type echoRunner struct {
	got *model.HookEvent
}

func (e *echoRunner) Invoke(_ context.Context, ev *model.HookEvent) *model.HookResponse {
	e.got = ev
	intent := ev.SessionState.Intent
	intent.State = model.StateFulfilled
	return &model.HookResponse{
		SessionState: model.SessionState{
			DialogAction:      &model.DialogAction{Type: model.ActionClose},
			Intent:            intent,
			SessionAttributes: ev.SessionState.SessionAttributes,
		},
		Messages: []model.Message{model.PlainText("bye")},
	}
}

func newRouter(runner TurnRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, runner, prometheus.NewRegistry())
	return r
}

func TestHookRoundTrip(t *testing.T) {
	runner := &echoRunner{}
	r := newRouter(runner)

	body := `{
		"sessionId": "abc",
		"invocationSource": "DialogCodeHook",
		"inputTranscript": "bye",
		"sessionState": {
			"intent": {"name": "OrderFood", "slots": {"OrderQuery": null}},
			"sessionAttributes": {"table": "4"}
		}
	}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, runner.got)
	assert.Equal(t, "abc", runner.got.SessionID)
	assert.Equal(t, model.SourceDialog, runner.got.InvocationSource)

	var resp model.HookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ActionClose, resp.Action())
	assert.Equal(t, "4", resp.SessionState.SessionAttributes["table"])
	assert.Equal(t, "bye", resp.Messages[0].Content)
}

func TestHookRejectsGarbage(t *testing.T) {
	runner := &echoRunner{}
	w := httptest.NewRecorder()
	newRouter(runner).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader("{nope")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, runner.got)
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&echoRunner{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
