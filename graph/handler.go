package graph

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"
)

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves the GraphQL endpoint. Errors from resolvers land in the
// standard "errors" array of the response body; the HTTP status is 200 for
// any well-formed request, per GraphQL-over-HTTP convention.
func Handler(schema graphql.Schema) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req graphqlRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if req.Query == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no query provided")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        withEchoContext(c.Request().Context(), c),
		})
		return c.JSON(http.StatusOK, result)
	}
}
