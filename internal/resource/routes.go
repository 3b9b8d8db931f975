package resource

import (
	"fmt"
	"net/http"

	"github.com/cityservices/api"
)

// Route templates. Schema keys use the same templates the router serves.
const (
	CollectionPath = "/resources"
	ItemPath       = "/resources/{id}"
)

// RegisterSchemas adds the schemas of every resource route to reg.
func RegisterSchemas(reg *api.SchemaRegistry) error {
	type entry struct {
		method  string
		pattern string
		derive  func(...api.SchemaOption) (api.RouteSchemas, error)
	}

	entries := []entry{
		{http.MethodGet, CollectionPath, api.SchemasFor[ListRequest, ListResponse]},
		{http.MethodPost, CollectionPath, api.SchemasFor[CreateRequest, Resource]},
		{http.MethodGet, ItemPath, api.SchemasFor[IDRequest, Resource]},
		{http.MethodPut, ItemPath, api.SchemasFor[UpdateRequest, Resource]},
		{http.MethodDelete, ItemPath, api.SchemasFor[IDRequest, api.Void]},
	}

	for _, e := range entries {
		schemas, err := e.derive()
		if err != nil {
			return fmt.Errorf("%s %s: %w", e.method, e.pattern, err)
		}
		if err := reg.Register(api.NewRouteKey(e.method, e.pattern), schemas); err != nil {
			return err
		}
	}
	return nil
}

// Mount registers the resource handlers on r.
func Mount(r api.Registrar, s *Service) {
	tags := api.WithTags("resources")

	api.Get(r, CollectionPath, s.List, tags,
		api.WithSummary("List resources"),
		api.WithOperationID("listResources"))

	api.Post(r, CollectionPath, s.Create, tags,
		api.WithSummary("Create a resource"),
		api.WithOperationID("createResource"),
		api.WithStatus(http.StatusCreated))

	api.Get(r, ItemPath, s.Get, tags,
		api.WithSummary("Get a resource"),
		api.WithOperationID("getResource"),
		api.WithErrors(http.StatusNotFound))

	api.Put(r, ItemPath, s.Update, tags,
		api.WithSummary("Update a resource"),
		api.WithOperationID("updateResource"),
		api.WithErrors(http.StatusNotFound))

	api.Delete(r, ItemPath, s.Delete, tags,
		api.WithSummary("Delete a resource"),
		api.WithOperationID("deleteResource"),
		api.WithErrors(http.StatusNotFound))
}
