package openapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Operation describes one HTTP route for the generated document. Path uses
// echo's ":name" placeholders; every placeholder is documented as a positive
// int64 path parameter.
type Operation struct {
	Method      string
	Path        string
	Summary     string
	OperationID string
	Tag         string

	// Request names the component schema of the JSON body, if any.
	Request string
	// Status is the success status code.
	Status int
	// Response names the component schema of the success body. Empty means
	// the response carries no body.
	Response string
	// List wraps Response in an array.
	List bool
	// Errors lists the error statuses the route can produce besides 500.
	Errors []int
}

// API is implemented by whatever owns the routes being documented.
type API interface {
	Operations() []Operation
	Schemas() map[string]interface{}
}

// Generator builds an OpenAPI 3.0 document from an API description.
type Generator struct {
	api     API
	version string
	baseURL string
}

// NewGenerator creates a new OpenAPI spec generator.
func NewGenerator(api API, version, baseURL string) *Generator {
	return &Generator{api: api, version: version, baseURL: baseURL}
}

// GenerateSpec produces the OpenAPI 3.0 spec as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := make(map[string]interface{})
	var tags []string
	seenTags := make(map[string]bool)

	for _, op := range g.api.Operations() {
		path, params := convertPath(op.Path)
		item, ok := paths[path].(map[string]interface{})
		if !ok {
			item = make(map[string]interface{})
			paths[path] = item
		}

		entry := map[string]interface{}{
			"summary":     op.Summary,
			"operationId": op.OperationID,
			"tags":        []string{op.Tag},
			"responses":   g.buildResponses(op),
		}
		if len(params) > 0 {
			entry["parameters"] = buildPathParameters(params)
		}
		if op.Request != "" {
			entry["requestBody"] = g.buildRequestBody(op.Request)
		}
		item[strings.ToLower(op.Method)] = entry

		if op.Tag != "" && !seenTags[op.Tag] {
			seenTags[op.Tag] = true
			tags = append(tags, op.Tag)
		}
	}

	tagList := make([]map[string]string, 0, len(tags))
	for _, t := range tags {
		tagList = append(tagList, map[string]string{"name": t})
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Patient Card API",
			"version":     g.version,
			"description": "API for managing patient data",
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"tags":  tagList,
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": g.buildComponentSchemas(),
		},
	}
}

// convertPath rewrites "/patient/:id" to "/patient/{id}" and returns the
// parameter names in order.
func convertPath(path string) (string, []string) {
	segs := strings.Split(path, "/")
	var params []string
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			name := s[1:]
			params = append(params, name)
			segs[i] = "{" + name + "}"
		}
	}
	return strings.Join(segs, "/"), params
}

func buildPathParameters(names []string) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]interface{}{
			"name":     n,
			"in":       "path",
			"required": true,
			"schema": map[string]interface{}{
				"type":    "integer",
				"format":  "int64",
				"minimum": 1,
			},
		})
	}
	return out
}

// buildRequestBody creates the OpenAPI requestBody for POST/PUT operations.
func (g *Generator) buildRequestBody(schema string) map[string]interface{} {
	return map[string]interface{}{
		"required": true,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": schemaRef(schema),
			},
		},
	}
}

func (g *Generator) buildResponses(op Operation) map[string]interface{} {
	responses := make(map[string]interface{})

	success := map[string]interface{}{"description": http.StatusText(op.Status)}
	if op.Response != "" {
		var schema map[string]interface{}
		if op.List {
			schema = map[string]interface{}{"type": "array", "items": schemaRef(op.Response)}
		} else {
			schema = schemaRef(op.Response)
		}
		success["content"] = map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		}
	}
	responses[strconv.Itoa(op.Status)] = success

	errs := append([]int(nil), op.Errors...)
	if op.Request != "" {
		errs = append(errs, http.StatusRequestEntityTooLarge)
	}
	errs = append(errs, http.StatusInternalServerError)
	sort.Ints(errs)
	for _, code := range errs {
		responses[strconv.Itoa(code)] = g.buildResponseWithSchema(http.StatusText(code), "#/components/schemas/Error")
	}
	return responses
}

// buildResponseWithSchema creates an OpenAPI response with content schema reference.
func (g *Generator) buildResponseWithSchema(description, ref string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{"$ref": ref},
			},
		},
	}
}

func (g *Generator) buildComponentSchemas() map[string]interface{} {
	schemas := map[string]interface{}{
		"Error": map[string]interface{}{
			"type":     "object",
			"required": []string{"message"},
			"properties": map[string]interface{}{
				"message": map[string]interface{}{"type": "string"},
			},
		},
	}
	for name, s := range g.api.Schemas() {
		schemas[name] = s
	}
	return schemas
}

func schemaRef(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

// RegisterRoutes adds the OpenAPI endpoint to the given group.
func (g *Generator) RegisterRoutes(group *echo.Group) {
	group.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
}
