package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"legal-rag-be/internal/dto"
	"legal-rag-be/internal/pkg/serverutils"
	"legal-rag-be/internal/service"
	"legal-rag-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryService struct {
	resp *dto.QueryResponse
	err  error

	gotOwner    string
	gotClientID string
	gotRequest  *dto.QueryRequest
}

func (f *fakeQueryService) Ask(_ context.Context, ownerID, clientID string, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	f.gotOwner, f.gotClientID, f.gotRequest = ownerID, clientID, req
	return f.resp, f.err
}

func (f *fakeQueryService) GetConversation(_ context.Context, ownerID, id string) (*dto.ConversationResponse, error) {
	f.gotOwner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ConversationResponse{Id: id, Name: "Bail basics"}, nil
}

func newTestApp(svc service.IQueryService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api", serverutils.OptionalJwtMiddleware(""))
	NewQueryController(svc).RegisterRoutes(api)
	NewConversationController(svc).RegisterRoutes(api)
	return app
}

func answer(summary string) *dto.QueryResponse {
	return &dto.QueryResponse{ConversationId: "c-1", Intent: "LEGAL_QUERY", Summary: summary}
}

func TestQuery_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		resp       *dto.QueryResponse
		err        error
		wantStatus int
		wantBody   bool
	}{
		{name: "answered", resp: answer("ok"), wantStatus: 200, wantBody: true},
		{name: "blocked", resp: answer("blocked"), err: rag.ErrBlockedGeneration, wantStatus: 422, wantBody: true},
		{name: "generation failed", resp: answer("failed"), err: fmt.Errorf("%w: timeout", rag.ErrGenerationFailed), wantStatus: 503, wantBody: true},
		{name: "persistence failure", resp: answer("ok"), err: fmt.Errorf("%w: disk full", service.ErrPersistence), wantStatus: 500, wantBody: true},
		{name: "unknown conversation", err: service.ErrConversationNotFound, wantStatus: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeQueryService{resp: tt.resp, err: tt.err}
			app := newTestApp(svc)

			req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"question":"What is bail?"}`))
			req.Header.Set("Content-Type", "application/json")
			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.StatusCode)

			body, _ := io.ReadAll(res.Body)
			if tt.wantBody {
				var got dto.QueryResponse
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, tt.resp.Summary, got.Summary)
				assert.Equal(t, "c-1", got.ConversationId)
			} else {
				var env serverutils.Response
				require.NoError(t, json.Unmarshal(body, &env))
				assert.False(t, env.Success)
			}
		})
	}
}

func TestQuery_NullCitationFields(t *testing.T) {
	app := newTestApp(&fakeQueryService{resp: answer("hello")})

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"question":"Hi"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&raw))
	for _, k := range []string{"title", "year", "pageNumber", "originalText", "pdfUrl", "matchScore"} {
		v, ok := raw[k]
		assert.True(t, ok, k)
		assert.Nil(t, v, k)
	}
}

func TestQuery_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing question", body: `{}`},
		{name: "blank question", body: `{"question":"   "}`},
		{name: "malformed conversation id", body: `{"question":"What is bail?","conversationId":"abc"}`},
		{name: "not json", body: `question=bail`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeQueryService{resp: answer("ok")}
			app := newTestApp(svc)

			req := httptest.NewRequest("POST", "/api/query", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
			assert.Nil(t, svc.gotRequest)
		})
	}
}

func TestQuery_ClientID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{name: "header", header: "tab-1", want: "tab-1"},
		{name: "query parameter", query: "tab-2", want: "tab-2"},
		{name: "header wins", header: "tab-1", query: "tab-2", want: "tab-1"},
		{name: "none", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeQueryService{resp: answer("ok")}
			app := newTestApp(svc)

			url := "/api/query"
			if tt.query != "" {
				url += "?clientId=" + tt.query
			}
			req := httptest.NewRequest("POST", url, strings.NewReader(`{"question":"What is bail?"}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.header != "" {
				req.Header.Set(HeaderClientID, tt.header)
			}
			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, svc.gotClientID)
			assert.Equal(t, serverutils.AnonymousUser, svc.gotOwner)
		})
	}
}

func TestConversation_Show(t *testing.T) {
	app := newTestApp(&fakeQueryService{})
	res, err := app.Test(httptest.NewRequest("GET", "/api/conversations/c-9", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)

	var env struct {
		Success bool                     `json:"success"`
		Data    dto.ConversationResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.Equal(t, "c-9", env.Data.Id)

	app = newTestApp(&fakeQueryService{err: service.ErrConversationNotFound})
	res, err = app.Test(httptest.NewRequest("GET", "/api/conversations/c-9", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, res.StatusCode)
}
