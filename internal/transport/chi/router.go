package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridex/internal/metrics"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	APIKeys []string
	Logger  *zap.Logger
}

// NewRouter builds the chi router with the standard middleware stack and every API route.
func NewRouter(s *Server, opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(recoverJSON(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(accessLog(logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	Handler(s, r)
	return r
}

// Handler mounts the API routes on r.
func Handler(s *Server, r chi.Router) {
	wrapper := serverWrapper{s: s}

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/namespaces", s.ListNamespaces)
	r.Route("/namespaces/{namespace}", func(r chi.Router) {
		r.Get("/", wrapper.GetNamespace)
		r.Delete("/", wrapper.DestroyNamespace)
		r.Post("/documents", wrapper.AddDocument)
		r.Post("/documents/batch", wrapper.BatchAdd)
		r.Get("/documents/{id}", wrapper.GetDocument)
		r.Delete("/documents/{id}", wrapper.DeleteDocument)
		r.Post("/search", wrapper.Search)
	})
	r.Delete("/documents/{id}", wrapper.DeleteDocumentAnywhere)
}

// serverWrapper binds path and query parameters before calling the handlers.
type serverWrapper struct {
	s *Server
}

func (sw serverWrapper) GetNamespace(w http.ResponseWriter, r *http.Request) {
	ns, ok := bindPath(w, r, "namespace")
	if !ok {
		return
	}
	sw.s.GetNamespace(w, r, ns)
}

func (sw serverWrapper) DestroyNamespace(w http.ResponseWriter, r *http.Request) {
	ns, ok := bindPath(w, r, "namespace")
	if !ok {
		return
	}
	sw.s.DestroyNamespace(w, r, ns)
}

func (sw serverWrapper) AddDocument(w http.ResponseWriter, r *http.Request) {
	ns, ok := bindPath(w, r, "namespace")
	if !ok {
		return
	}
	sw.s.AddDocument(w, r, ns)
}

func (sw serverWrapper) BatchAdd(w http.ResponseWriter, r *http.Request) {
	ns, ok := bindPath(w, r, "namespace")
	if !ok {
		return
	}
	sw.s.BatchAdd(w, r, ns)
}

func (sw serverWrapper) GetDocument(w http.ResponseWriter, r *http.Request) {
	ns, ok := bindPath(w, r, "namespace")
	if !ok {
		return
	}
	id, ok := bindPath(w, r, "id")
	if !ok {
		return
	}
	sw.s.GetDocument(w, r, ns, id)
}

func (sw serverWrapper) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ns, ok := bindPath(w, r, "namespace")
	if !ok {
		return
	}
	id, ok := bindPath(w, r, "id")
	if !ok {
		return
	}
	sw.s.DeleteDocument(w, r, ns, id)
}

func (sw serverWrapper) DeleteDocumentAnywhere(w http.ResponseWriter, r *http.Request) {
	id, ok := bindPath(w, r, "id")
	if !ok {
		return
	}

	var ns *string
	if err := runtime.BindQueryParameter("form", true, false, "namespace", r.URL.Query(), &ns); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter namespace: %s", err))
		return
	}
	sw.s.DeleteDocumentAnywhere(w, r, id, ns)
}

func (sw serverWrapper) Search(w http.ResponseWriter, r *http.Request) {
	ns, ok := bindPath(w, r, "namespace")
	if !ok {
		return
	}
	sw.s.Search(w, r, ns)
}

func bindPath(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		return "", false
	}
	return v, true
}
