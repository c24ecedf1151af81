// Package response holds the JSON response helpers for the local
// TraderVolt stand-in. Error bodies follow the platform's problem shape:
// a title plus an optional detail, which is exactly what the migration
// client's error extraction expects.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Problem is the structured error body
type Problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// OK sends a 200 with the given payload
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 with the created resource
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a bare 204
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 problem
func BadRequest(c *gin.Context, title string) {
	c.JSON(http.StatusBadRequest, Problem{Title: title})
}

// Unauthorized sends a 401 problem
func Unauthorized(c *gin.Context, title string) {
	c.JSON(http.StatusUnauthorized, Problem{Title: title})
}

// NotFound sends a 404 problem
func NotFound(c *gin.Context, title string) {
	c.JSON(http.StatusNotFound, Problem{Title: title})
}

// Conflict sends a 409 problem, the platform's duplicate-create answer
func Conflict(c *gin.Context, title, detail string) {
	c.JSON(http.StatusConflict, Problem{Title: title, Detail: detail})
}
