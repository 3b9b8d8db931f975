package patrol

import (
	"fmt"
	"net/http"

	"github.com/cityservices/api"
)

// Route templates. Schema keys use the same templates the router serves.
const (
	CollectionPath = "/patrols"
	ItemPath       = "/patrols/{id}"
)

// RegisterSchemas adds the schemas of every patrol route to reg.
func RegisterSchemas(reg *api.SchemaRegistry) error {
	routes := []struct {
		key    api.RouteKey
		derive func(...api.SchemaOption) (api.RouteSchemas, error)
	}{
		{api.NewRouteKey(http.MethodGet, CollectionPath), api.SchemasFor[ListRequest, ListResponse]},
		{api.NewRouteKey(http.MethodPost, CollectionPath), api.SchemasFor[CreateRequest, Patrol]},
		{api.NewRouteKey(http.MethodGet, ItemPath), api.SchemasFor[IDRequest, Patrol]},
		{api.NewRouteKey(http.MethodPut, ItemPath), api.SchemasFor[UpdateRequest, Patrol]},
		{api.NewRouteKey(http.MethodDelete, ItemPath), api.SchemasFor[IDRequest, api.Void]},
	}

	for _, rt := range routes {
		schemas, err := rt.derive()
		if err != nil {
			return fmt.Errorf("%s: %w", rt.key, err)
		}
		if err := reg.Register(rt.key, schemas); err != nil {
			return err
		}
	}
	return nil
}

// Mount registers the patrol handlers on r.
func Mount(r api.Registrar, s *Service) {
	tags := api.WithTags("patrols")

	api.Get(r, CollectionPath, s.List, tags,
		api.WithSummary("List police patrols"),
		api.WithOperationID("listPolicePatrols"))

	api.Post(r, CollectionPath, s.Create, tags,
		api.WithSummary("Record a police patrol"),
		api.WithOperationID("createPolicePatrol"),
		api.WithStatus(http.StatusCreated))

	api.Get(r, ItemPath, s.Get, tags,
		api.WithSummary("Get a police patrol"),
		api.WithOperationID("getPolicePatrol"),
		api.WithErrors(http.StatusNotFound))

	api.Put(r, ItemPath, s.Update, tags,
		api.WithSummary("Update a police patrol"),
		api.WithOperationID("updatePolicePatrol"),
		api.WithErrors(http.StatusNotFound))

	api.Delete(r, ItemPath, s.Delete, tags,
		api.WithSummary("Delete a police patrol"),
		api.WithOperationID("deletePolicePatrol"),
		api.WithErrors(http.StatusNotFound))
}
