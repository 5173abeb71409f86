// Package web is a small framework on top of gin: handlers return errors,
// middleware composes around handlers, and responses go through a single
// Respond path so the transport shape stays uniform.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler is the signature every application handler implements.
type Handler func(c *Context) error

// Middleware wraps a Handler with additional behavior.
type Middleware func(Handler) Handler

// App is the entrypoint for the web application. It embeds gin.Engine so the
// router can still reach raw gin routes (static files, websockets) when needed.
type App struct {
	*gin.Engine
}

func NewApp() *App {
	return &App{gin.New()}
}

func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}
	return handler
}

func (a *App) handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)

	a.Engine.Handle(method, path, func(c *gin.Context) {
		ctx := &Context{Context: c, Ctx: c.Request.Context()}
		if err := handler(ctx); err != nil {
			// Handlers respond themselves; an error that escapes here means
			// nothing was written yet.
			ctx.RespondError(err)
		}
	})
}

func (a *App) Get(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodGet, path, handler, mw...)
}

func (a *App) Post(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodPost, path, handler, mw...)
}

func (a *App) Put(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodPut, path, handler, mw...)
}

func (a *App) Patch(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodPatch, path, handler, mw...)
}

func (a *App) Delete(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodDelete, path, handler, mw...)
}
