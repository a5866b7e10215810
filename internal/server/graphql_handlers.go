package server

import (
	"encoding/json"
	"strings"

	"github.com/Pratik1374/API-GraphQL/internal/models"

	"github.com/gofiber/fiber/v2"
)

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQL executes a query. POST takes a JSON body; GET takes the query,
// operationName and variables URL parameters. Domain errors come back in the
// response's errors list with extensions.code, always with status 200.
func (s *Server) GraphQL(c *fiber.Ctx) error {
	var req graphqlRequest
	if c.Method() == fiber.MethodGet {
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("variables must be a JSON object"))
			}
		}
	} else if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if strings.TrimSpace(req.Query) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("query is required"))
	}

	resp := s.schema.Exec(c.UserContext(), req.Query, req.OperationName, req.Variables)
	return c.JSON(resp)
}

const graphiqlPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>GraphiQL</title>
  <style>body { height: 100vh; margin: 0; } #graphiql { height: 100vh; }</style>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css" />
</head>
<body>
  <div id="graphiql">Loading...</div>
  <script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: "/graphql" });
    ReactDOM.createRoot(document.getElementById("graphiql")).render(
      React.createElement(GraphiQL, {
        fetcher,
        defaultHeaders: '{"Authorization": "Bearer <token>"}',
        defaultEditorToolsVisibility: true,
      })
    );
  </script>
</body>
</html>`

// GraphiQL serves the in-browser IDE. Requests it sends still need a bearer
// token in the headers pane.
func (s *Server) GraphiQL(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	// helmet's COEP default blocks the CDN assets
	c.Set("Cross-Origin-Embedder-Policy", "unsafe-none")
	c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'self' https://unpkg.com 'unsafe-inline'; img-src 'self' data: https:")
	return c.SendString(graphiqlPage)
}
