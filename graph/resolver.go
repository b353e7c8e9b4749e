package graph

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"

	"github.com/schoolatlas-dev/schoolatlas/services"
)

// Resolver bundles the services the schema resolves against. Authorization
// lives in the services; resolvers only shuttle arguments and results.
type Resolver struct {
	Auth    *services.AuthService
	Users   *services.UserService
	Schools *services.SchoolService
	Reviews *services.ReviewService
}

// NewResolver creates a Resolver.
func NewResolver(auth *services.AuthService, users *services.UserService, schools *services.SchoolService, reviews *services.ReviewService) *Resolver {
	return &Resolver{
		Auth:    auth,
		Users:   users,
		Schools: schools,
		Reviews: reviews,
	}
}

type echoContextKey struct{}

// withEchoContext threads the transport context through the executor so
// login and logout resolvers can write the session cookie.
func withEchoContext(ctx context.Context, c echo.Context) context.Context {
	return context.WithValue(ctx, echoContextKey{}, c)
}

func echoContextFrom(ctx context.Context) (echo.Context, bool) {
	c, ok := ctx.Value(echoContextKey{}).(echo.Context)
	return c, ok
}

// Argument extraction helpers. graphql-go hands arguments over as untyped
// maps; absent optional arguments are simply missing keys.

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}

func intArg(p graphql.ResolveParams, name string) int {
	v, _ := p.Args[name].(int)
	return v
}

func stringPtrArg(p graphql.ResolveParams, name string) *string {
	if v, ok := p.Args[name].(string); ok {
		return &v
	}
	return nil
}

func boolArg(p graphql.ResolveParams, name string) bool {
	v, _ := p.Args[name].(bool)
	return v
}

func boolPtrArg(p graphql.ResolveParams, name string) *bool {
	if v, ok := p.Args[name].(bool); ok {
		return &v
	}
	return nil
}

func intPtrArg(p graphql.ResolveParams, name string) *int {
	if v, ok := p.Args[name].(int); ok {
		return &v
	}
	return nil
}

func floatPtrArg(p graphql.ResolveParams, name string) *float64 {
	switch v := p.Args[name].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func stringListArg(p graphql.ResolveParams, name string) []string {
	raw, ok := p.Args[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intListArg(p graphql.ResolveParams, name string) []int {
	raw, ok := p.Args[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if n, ok := item.(int); ok {
			out = append(out, n)
		}
	}
	return out
}
