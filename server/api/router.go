// Copyright 2023 The mxquadtree Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"github.com/gorilla/mux"
	"github.com/phen0menon/mxquadtree/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/render"
)

// createRouteOption is used to register service for mux.Route
type createRouteOption func(route *mux.Route)

// setMethods is used to add HTTP Method matcher for mux.Route
func setMethods(method ...string) createRouteOption {
	return func(route *mux.Route) {
		route.Methods(method...)
	}
}

// routeCreateFunc is used to registers a new route which will be registered matcher or service by opts for the URL path
func routeCreateFunc(route *mux.Route, handler http.Handler, name string, opts ...createRouteOption) {
	route = route.Handler(handler).Name(name)
	for _, opt := range opts {
		opt(route)
	}
}

func createIndentRender() *render.Render {
	return render.New(render.Options{
		IndentJSON: true,
	})
}

func getFunctionName(f interface{}) string {
	strs := strings.Split(runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name(), ".")
	return strings.Split(strs[len(strs)-1], "-")[0]
}

// createRouter registers every route under prefix. The route name is the
// handler function name and doubles as the service label used by the rate
// limiter and the auditor.
func createRouter(prefix string, svr *server.Server) *mux.Router {
	serviceMiddle := newServiceMiddlewareBuilder(svr)
	register := func(router *mux.Router, path, name string, handler http.Handler, opts ...createRouteOption) {
		svr.RegisterService(name)
		routeCreateFunc(router.Path(path), serviceMiddle.createHandler(handler), name, opts...)
	}
	registerFunc := func(router *mux.Router, path string,
		handleFunc func(http.ResponseWriter, *http.Request), opts ...createRouteOption) {
		register(router, path, getFunctionName(handleFunc), http.HandlerFunc(handleFunc), opts...)
	}

	rd := createIndentRender()

	rootRouter := mux.NewRouter().PathPrefix(prefix).Subrouter()
	apiRouter := rootRouter.NewRoute().Subrouter()

	pointHandler := newPointHandler(svr, rd)
	registerFunc(apiRouter, "/points", pointHandler.InsertPoint, setMethods(http.MethodPost))
	registerFunc(apiRouter, "/points", pointHandler.RemovePoint, setMethods(http.MethodDelete))
	registerFunc(apiRouter, "/points", pointHandler.ScanPoints, setMethods(http.MethodGet))

	queryHandler := newQueryHandler(svr, rd)
	registerFunc(apiRouter, "/leaf", queryHandler.GetLeaf, setMethods(http.MethodGet))
	registerFunc(apiRouter, "/region", queryHandler.QueryRegion, setMethods(http.MethodGet))

	treeHandler := newTreeHandler(svr, rd)
	registerFunc(apiRouter, "/tree/layout", treeHandler.GetLayout, setMethods(http.MethodGet))
	registerFunc(apiRouter, "/tree/stats", treeHandler.GetStats, setMethods(http.MethodGet))
	registerFunc(apiRouter, "/tree/chart", treeHandler.GetChart, setMethods(http.MethodGet))

	infoHandler := newInfoHandler(svr, rd)
	registerFunc(apiRouter, "/config", infoHandler.GetConfig, setMethods(http.MethodGet))
	registerFunc(apiRouter, "/config/plane", infoHandler.GetPlaneConfig, setMethods(http.MethodGet))
	registerFunc(apiRouter, "/status", infoHandler.GetStatus, setMethods(http.MethodGet))
	registerFunc(apiRouter, "/version", infoHandler.GetVersion, setMethods(http.MethodGet))

	register(apiRouter, "/metrics", "GetMetrics", promhttp.Handler(), setMethods(http.MethodGet))

	// @Summary  Ping the server.
	// @Router   /ping [get]
	register(apiRouter, "/ping", "Ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), setMethods(http.MethodGet))

	return rootRouter
}
