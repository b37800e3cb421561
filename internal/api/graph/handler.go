package graph

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/metrics"
)

var (
	errMissingQuery    = errors.New("query is required")
	errMutationOverGet = errors.New("mutations must be sent with POST")
)

type Executor interface {
	Exec(ctx context.Context, queryString, operationName string, variables map[string]interface{}) *graphql.Response
}

type Request struct {
	Query         string                 `json:"query" form:"query"`
	OperationName string                 `json:"operationName" form:"operationName"`
	Variables     map[string]interface{} `json:"variables" form:"-"`
}

type Handler struct {
	exec Executor
}

func NewHandler(exec Executor) *Handler {
	return &Handler{
		exec: exec,
	}
}

// HandleQuery godoc
// @Summary      Execute a GraphQL query or mutation
// @Tags         graphql
// @Accept       json
// @Produce      json
// @Param        request   body      graph.Request true "GraphQL request"
// @Success      200      {object}   map[string]interface{}
// @Failure      400      {object}   response.Err
// @Security     BearerAuth
// @Router       /graphql [post]
func (h *Handler) HandleQuery(ctx *gin.Context) {
	var req Request
	if err := bindRequest(ctx, &req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if req.Query == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errMissingQuery))
		return
	}
	if ctx.Request.Method == http.MethodGet && isMutation(req.Query, req.OperationName) {
		response.RenderErr(ctx, response.ErrBadRequest(errMutationOverGet))
		return
	}

	start := time.Now()
	resp := h.exec.Exec(ctx.Request.Context(), req.Query, req.OperationName, req.Variables)

	outcome := metrics.Outcome(len(resp.Errors) > 0)
	metrics.GraphQLRequests.WithLabelValues("http", outcome).Inc()
	metrics.GraphQLDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	body, err := json.Marshal(resp)
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func bindRequest(ctx *gin.Context, req *Request) error {
	if ctx.Request.Method == http.MethodGet {
		if err := ctx.ShouldBindQuery(req); err != nil {
			return err
		}
		if vars := ctx.Query("variables"); vars != "" {
			return json.Unmarshal([]byte(vars), &req.Variables)
		}

		return nil
	}

	return json.NewDecoder(ctx.Request.Body).Decode(req)
}

// isMutation reports whether the operation the request selects is a mutation.
// Documents that do not parse are left to the executor to report.
func isMutation(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return false
	}

	op := doc.Operations.ForName(operationName)
	if op == nil {
		return false
	}

	return op.Operation == ast.Mutation
}
