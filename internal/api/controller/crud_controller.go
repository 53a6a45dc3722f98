package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
)

// CrudService defines the minimal interface required for CRUD operations.
type CrudService[T any] interface {
	All(ctx context.Context) ([]T, error)
	Add(ctx context.Context, item T) ([]T, error)
	Remove(ctx context.Context, id string) ([]T, error)
}

// CrudValidator defines the interface for validating a resource.
type CrudValidator[T any] interface {
	Validate(item T) error
}

// CrudController provides generic CRUD handlers for resources.
type CrudController[T any] struct {
	Service   CrudService[T]
	Validator CrudValidator[T]
	Component string
}

// GetAll handles GET requests to list all resources.
func (cc *CrudController[T]) GetAll(c *gin.Context) {
	items, err := cc.Service.All(c.Request.Context())
	if err != nil {
		respondError(c, cc.component(), err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Create handles POST requests carrying a resource in the body.
func (cc *CrudController[T]) Create(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		respondError(c, cc.component(), fmt.Errorf("invalid payload: %w: %w", err, errdefs.ErrInvalidArgument))
		return
	}
	if cc.Validator != nil {
		if err := cc.Validator.Validate(item); err != nil {
			respondError(c, cc.component(), err)
			return
		}
	}
	items, err := cc.Service.Add(c.Request.Context(), item)
	if err != nil {
		respondError(c, cc.component(), err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Delete handles DELETE requests to remove a resource by id.
func (cc *CrudController[T]) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondError(c, cc.component(), fmt.Errorf("missing resource id: %w", errdefs.ErrInvalidArgument))
		return
	}
	items, err := cc.Service.Remove(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.component(), err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (cc *CrudController[T]) component() string {
	if cc.Component == "" {
		return "crud-controller"
	}
	return cc.Component
}
