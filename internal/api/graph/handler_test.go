package graph

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	queries []string
}

func (e *recordingExecutor) Exec(_ context.Context, query, _ string, _ map[string]interface{}) *graphql.Response {
	e.queries = append(e.queries, query)
	return &graphql.Response{}
}

func TestHandler_HandleQuery_Methods(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const (
		mutation = `mutation { deleteEvent(id: "1") }`
		mixed    = `query Read { me { id } } mutation Write { deleteEvent(id: "1") }`
	)

	tests := []struct {
		name       string
		method     string
		query      string
		opName     string
		wantStatus int
		wantExec   bool
	}{
		{name: "query over GET", method: http.MethodGet, query: `{ __typename }`, wantStatus: http.StatusOK, wantExec: true},
		{name: "mutation over GET", method: http.MethodGet, query: mutation, wantStatus: http.StatusBadRequest},
		{name: "named mutation over GET", method: http.MethodGet, query: mixed, opName: "Write", wantStatus: http.StatusBadRequest},
		{name: "named query over GET", method: http.MethodGet, query: mixed, opName: "Read", wantStatus: http.StatusOK, wantExec: true},
		{name: "unparsable query over GET", method: http.MethodGet, query: `mutation {`, wantStatus: http.StatusOK, wantExec: true},
		{name: "mutation over POST", method: http.MethodPost, query: mutation, wantStatus: http.StatusOK, wantExec: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &recordingExecutor{}
			router := gin.New()
			h := NewHandler(exec)
			router.GET("/graphql", h.HandleQuery)
			router.POST("/graphql", h.HandleQuery)

			var req *http.Request
			if tt.method == http.MethodGet {
				params := url.Values{"query": {tt.query}}
				if tt.opName != "" {
					params.Set("operationName", tt.opName)
				}
				req = httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)
			} else {
				body, err := json.Marshal(Request{Query: tt.query})
				require.NoError(t, err)
				req = httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantExec {
				assert.Equal(t, []string{tt.query}, exec.queries)
				return
			}
			assert.Empty(t, exec.queries)
			assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
		})
	}
}
