package gql

import (
	"encoding/json"
	"net/http"

	"rps_backend/internal/common"
	"rps_backend/internal/middleware"
	"rps_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"go.uber.org/zap"
)

// Request is the standard GraphQL-over-HTTP request body.
type Request struct {
	Query         string                 `json:"query" form:"query" binding:"required"`
	Variables     map[string]interface{} `json:"variables" form:"-"`
	OperationName string                 `json:"operationName" form:"operationName"`
}

// Handler serves the user schema over HTTP.
type Handler struct {
	schema graphql.Schema
	logger *zap.Logger
}

// NewHandler builds the schema over users.
func NewHandler(users user.Service, logger *zap.Logger) (*Handler, error) {
	schema, err := NewSchema(users)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema, logger: logger.Named("GraphQL")}, nil
}

// RegisterRoutes mounts POST and GET /graphql. GET only runs queries.
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/graphql", h.servePOST)
	router.GET("/graphql", h.serveGET)
}

func (h *Handler) servePOST(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Body must be JSON with a non-empty \"query\"."))
		return
	}
	h.execute(c, req)
}

func (h *Handler) serveGET(c *gin.Context) {
	var req Request
	if err := c.ShouldBindQuery(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("The \"query\" parameter is required."))
		return
	}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("The \"variables\" parameter must be a JSON object."))
			return
		}
	}
	if isMutation(req.Query, req.OperationName) {
		c.Header("Allow", http.MethodPost)
		common.RespondWithError(c, common.ErrMethodNotAllowed.WithDetails("Mutations must be sent with POST."))
		return
	}
	h.execute(c, req)
}

func (h *Handler) execute(c *gin.Context, req Request) {
	ctx, state := withRequest(c.Request.Context(), middleware.CurrentUser(c))

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	status := http.StatusOK
	if result.HasErrors() {
		status = h.statusFor(c, state.recorded())
	}
	c.JSON(status, result)
}

// statusFor picks the HTTP status for a response with errors: the most severe
// resolver failure, or 400 when the document itself was rejected.
func (h *Handler) statusFor(c *gin.Context, errs []error) int {
	if len(errs) == 0 {
		return http.StatusBadRequest
	}
	status := 0
	for _, err := range errs {
		apiErr := common.ToAPIError(err)
		if apiErr.StatusCode >= http.StatusInternalServerError {
			h.logger.Error("GraphQL resolver failed",
				zap.Error(err),
				zap.String("request_id", c.GetString(common.RequestIDKey)),
			)
		}
		if apiErr.StatusCode > status {
			status = apiErr.StatusCode
		}
	}
	return status
}

// isMutation reports whether the operation that would run is a mutation.
// Unparseable documents are left to the executor to reject.
func isMutation(query, operationName string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}
