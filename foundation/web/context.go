package web

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Context wraps gin.Context with typed param/query extraction and the
// response helpers handlers use. Ctx carries request-scoped values such as
// auth claims.
type Context struct {
	*gin.Context
	Ctx context.Context

	paramErrs []error
	queryErrs []error
}

// GetParam extracts a path parameter converted to the requested kind. The
// conversion error, if any, is collected and reported by ValidParam so
// handlers can extract several values before checking.
func (c *Context) GetParam(kind reflect.Kind, name string) interface{} {
	raw := c.Param(name)

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.paramErrs = append(c.paramErrs, errors.Wrapf(err, "param %q must be an integer", name))
			return 0
		}
		return v
	case reflect.String:
		return raw
	default:
		c.paramErrs = append(c.paramErrs, fmt.Errorf("unsupported param kind %q", kind))
		return nil
	}
}

// GetQueryFunc extracts an optional query parameter as a pointer of the
// requested kind. A missing parameter yields a nil interface so the caller's
// type assertion simply fails and the filter field stays unset.
func (c *Context) GetQueryFunc(kind reflect.Kind, name string) interface{} {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.queryErrs = append(c.queryErrs, errors.Wrapf(err, "query %q must be an integer", name))
			return nil
		}
		return &v
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.queryErrs = append(c.queryErrs, errors.Wrapf(err, "query %q must be a boolean", name))
			return nil
		}
		return &v
	case reflect.String:
		return &raw
	default:
		c.queryErrs = append(c.queryErrs, fmt.Errorf("unsupported query kind %q", kind))
		return nil
	}
}

func (c *Context) ValidParam() error {
	if len(c.paramErrs) == 0 {
		return nil
	}
	return NewRequestError(c.paramErrs[0], http.StatusBadRequest)
}

func (c *Context) ValidQuery() error {
	if len(c.queryErrs) == 0 {
		return nil
	}
	return NewRequestError(c.queryErrs[0], http.StatusBadRequest)
}

// BindFunc binds the request body into v and verifies that the named struct
// fields were actually provided (non-nil for pointers, non-zero otherwise).
func (c *Context) BindFunc(v interface{}, required ...string) error {
	if err := c.ShouldBind(v); err != nil {
		return NewRequestError(errors.Wrap(err, "binding request"), http.StatusBadRequest)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	for _, name := range required {
		field := rv.FieldByName(name)
		if !field.IsValid() {
			continue
		}
		if field.Kind() == reflect.Ptr && field.IsNil() {
			return NewRequestError(fmt.Errorf("field %q is required", name), http.StatusBadRequest)
		}
		if field.Kind() != reflect.Ptr && field.IsZero() {
			return NewRequestError(fmt.Errorf("field %q is required", name), http.StatusBadRequest)
		}
	}

	return nil
}

func (c *Context) Respond(data interface{}, status int) error {
	c.JSON(status, data)
	return nil
}

func (c *Context) RespondError(err error) error {
	var webErr *Error
	if errors.As(err, &webErr) {
		c.JSON(webErr.Status, gin.H{
			"error":  webErr.Err.Error(),
			"status": false,
		})
		return nil
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  err.Error(),
		"status": false,
	})
	return nil
}
