package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the admin API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
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
    <title>bakehouse-admin - Swagger</title>
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

// Minimal OpenAPI document for the admin endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "bakehouse-admin", "version": "v1.0.0" },
  "paths": {
    "/api/products": {
      "get": { "summary": "List products", "responses": { "200": { "description": "array of products" } } },
      "post": {
        "summary": "Create a product",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"name":{"type":"string"},"price":{"type":"string"},"description":{"type":"string"},"image":{"type":"string","format":"binary"}}}}}},
        "responses": { "200": { "description": "created product" }, "400": { "description": "image missing" } }
      }
    },
    "/api/products/{id}": {
      "delete": { "summary": "Delete a product", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "Product Deleted" } } }
    },
    "/api/gallery": {
      "get": { "summary": "List gallery images", "responses": { "200": { "description": "array of gallery items" } } },
      "post": {
        "summary": "Upload gallery images",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"files":{"type":"array","items":{"type":"string","format":"binary"}}}}}}},
        "responses": { "200": { "description": "whole updated gallery" }, "400": { "description": "no files uploaded" } }
      }
    },
    "/api/gallery/{id}": {
      "delete": { "summary": "Delete a gallery image", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "Image Deleted" } } }
    },
    "/api/reviews": {
      "get": { "summary": "List reviews, newest first", "responses": { "200": { "description": "array of reviews" } } },
      "post": {
        "summary": "Add a review",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"message":{"type":"string"},"rating":{}}}}}},
        "responses": { "200": { "description": "success and the stored review" }, "400": { "description": "malformed JSON" } }
      }
    },
    "/api/reviews/{id}": {
      "delete": { "summary": "Delete a review", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "Review Deleted" } } }
    },
    "/api/about": {
      "get": { "summary": "Get the about text", "responses": { "200": { "description": "about object or null" } } },
      "post": {
        "summary": "Replace the about text",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"description":{"type":"string"},"description2":{"type":"string"}}}}}},
        "responses": { "200": { "description": "About Updated" } }
      }
    },
    "/api/today": {
      "get": { "summary": "Get today's bake", "responses": { "200": { "description": "bake object or null" } } },
      "post": {
        "summary": "Set today's bake",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"name":{"type":"string"},"ingredients":{"type":"string"},"description":{"type":"string"},"image":{"type":"string","format":"binary"}}}}}},
        "responses": { "200": { "description": "stored bake" }, "400": { "description": "image missing" } }
      },
      "delete": { "summary": "Clear today's bake", "responses": { "200": { "description": "Today Bake Cleared" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
