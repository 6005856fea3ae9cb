package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>profilekit API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "profilekit", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Project": {"type":"object","properties":{"_id":{"type":"string"},"name":{"type":"string"},"description":{"type":"string"},"technologies":{"type":"string"},"link":{"type":"string"},"github":{"type":"string"},"startDate":{"type":"string","format":"date-time"},"endDate":{"type":"string","format":"date-time"}}},
      "ProfileSubmission": {"type":"object","properties":{"personal":{"type":"object"},"education":{"type":"array","items":{"type":"object"}},"experience":{"type":"array","items":{"type":"object"}},"skills":{"type":"array","items":{"type":"object"}},"certification":{"type":"array","items":{"type":"object"}},"projects":{"type":"array","items":{"$ref":"#/components/schemas/Project"}},"projectIds":{"type":"array","items":{"type":"string"}}}}
    }
  },
  "paths": {
    "/auth/signup": { "post": { "summary": "Create an account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "user and tokens" }, "400": { "description": "validation failed" }, "409": { "description": "email taken" } } } },
    "/auth/login": { "post": { "summary": "Password login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "user and tokens" }, "401": { "description": "invalid credentials" } } } },
    "/auth/refresh": { "post": { "summary": "Rotate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new token pair" }, "401": { "description": "invalid refresh" } } } },
    "/auth/logout": { "post": { "summary": "Drop refresh session and revoke bearer token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } } },
    "/api/user/profile": { "get": { "summary": "Current account", "security": [{"bearer": []}], "responses": { "200": { "description": "user" } } }, "put": { "summary": "Rename and set picture", "security": [{"bearer": []}], "responses": { "200": { "description": "user" } } } },
    "/api/user/password": { "put": { "summary": "Change password", "security": [{"bearer": []}], "responses": { "200": { "description": "updated" }, "401": { "description": "wrong current password" } } } },
    "/api/upload": { "post": { "summary": "Upload an image", "security": [{"bearer": []}], "responses": { "200": { "description": "url and publicId" }, "503": { "description": "blob store not configured" } } } },
    "/api/projects": { "get": { "summary": "List project library", "security": [{"bearer": []}], "parameters": [{"name":"techStack","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "projects" } } }, "post": { "summary": "Create project", "security": [{"bearer": []}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Project"}}}}, "responses": { "201": { "description": "project" } } } },
    "/api/projects/techstacks": { "get": { "summary": "Distinct technologies", "security": [{"bearer": []}], "responses": { "200": { "description": "techStacks" } } } },
    "/api/projects/{id}": { "get": { "summary": "Get project", "security": [{"bearer": []}], "responses": { "200": { "description": "project" }, "404": { "description": "not found" } } }, "put": { "summary": "Update project", "security": [{"bearer": []}], "responses": { "200": { "description": "project" } } }, "delete": { "summary": "Delete project and unlink it from profiles", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } } },
    "/api/profiles": { "get": { "summary": "List profiles", "security": [{"bearer": []}], "responses": { "200": { "description": "profiles" } } }, "post": { "summary": "Create profile", "security": [{"bearer": []}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/ProfileSubmission"}}}}, "responses": { "201": { "description": "profile" } } } },
    "/api/profiles/{id}": { "get": { "summary": "Get profile", "security": [{"bearer": []}], "responses": { "200": { "description": "profile" } } }, "put": { "summary": "Update profile", "security": [{"bearer": []}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/ProfileSubmission"}}}}, "responses": { "200": { "description": "profile" } } }, "delete": { "summary": "Delete profile", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } } },
    "/api/profiles/{id}/pdf": { "get": { "summary": "Export portfolio", "security": [{"bearer": []}], "responses": { "200": { "description": "application/pdf or text/html attachment" } } } },
    "/api/public/portfolio/{id}": { "get": { "summary": "Public portfolio data", "responses": { "200": { "description": "profile" } } } },
    "/portfolio/{id}": { "get": { "summary": "Public portfolio page", "responses": { "200": { "description": "html" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
