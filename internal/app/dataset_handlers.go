package app

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// The grouped datasets (rock, spring, color, old, and whatever else the
// manifest names) all share one shape: a mapping from group key to city
// list. A single set of parametrized handlers serves every one of them
// instead of a copy per dataset.

// listDatasetsHandler returns the sorted names of all loaded grouped datasets.
func (app *Application) listDatasetsHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, app.Store.GroupedNames())
}

// groupedDatasetHandler returns the full group-key mapping of one dataset.
func (app *Application) groupedDatasetHandler(w http.ResponseWriter, r *http.Request) {
	name := httprouter.ParamsFromContext(r.Context()).ByName("name")

	groups, exists := app.Store.Grouped(name)
	if !exists {
		app.unknownDatasetResponse(w, name)
		return
	}
	app.writeJSON(w, http.StatusOK, groups)
}

// flattenedDatasetHandler returns every record of one grouped dataset as a
// single list, each record carrying its group key.
func (app *Application) flattenedDatasetHandler(w http.ResponseWriter, r *http.Request) {
	name := httprouter.ParamsFromContext(r.Context()).ByName("name")

	if _, exists := app.Store.Grouped(name); !exists {
		app.unknownDatasetResponse(w, name)
		return
	}
	app.writeJSON(w, http.StatusOK, app.Store.Flatten(name))
}

// groupKeysHandler returns the sorted group keys of one dataset.
func (app *Application) groupKeysHandler(w http.ResponseWriter, r *http.Request) {
	name := httprouter.ParamsFromContext(r.Context()).ByName("name")

	if _, exists := app.Store.Grouped(name); !exists {
		app.unknownDatasetResponse(w, name)
		return
	}
	app.writeJSON(w, http.StatusOK, app.Store.GroupKeys(name))
}

// groupHandler returns the records of a single group. An unknown group key
// inside a known dataset yields an empty array, not an error.
func (app *Application) groupHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	name := params.ByName("name")
	key := params.ByName("key")

	if _, exists := app.Store.Grouped(name); !exists {
		app.unknownDatasetResponse(w, name)
		return
	}
	app.writeJSON(w, http.StatusOK, app.Store.Group(name, key))
}

func (app *Application) unknownDatasetResponse(w http.ResponseWriter, name string) {
	app.errorResponse(w, http.StatusNotFound, fmt.Sprintf("unknown dataset %q", name))
}
