package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"github.com/naivary/pixst"
	"github.com/naivary/pixst/graph"
	"github.com/naivary/pixst/models"
)

// Handler serves the HTTP API of the object store: object and link
// management, image import, blob streaming and graph duplication.
type Handler struct {
	router chi.Router
	store  *pixst.Store
	dup    *graph.Duplicator
	ops    *opRegistry
	logger *slog.Logger
	opts   HandlerOptions
}

func NewHandler(store *pixst.Store, opts HandlerOptions) *Handler {
	h := &Handler{
		store:  store,
		dup:    graph.NewDuplicator(store),
		ops:    newOpRegistry(),
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		opts:   opts,
	}
	r := chi.NewRouter()
	r.Use(requestID)
	r.Route("/pixst", func(r chi.Router) {
		r.Use(h.opts.IsAuthorized)
		r.Route("/objects", func(r chi.Router) {
			r.Post("/", h.create)
			r.Get("/{class}/{id}", h.get)
			r.Delete("/{class}/{id}", h.remove)
			r.Get("/{class}/{id}/links", h.links)
		})
		r.Route("/query", func(r chi.Router) {
			r.Use(assurePrincipal)
			r.Post("/", h.query)
		})
		r.Route("/import", func(r chi.Router) {
			r.Use(assurePrincipal)
			r.Post("/", h.importImage)
		})
		r.Get("/blobs/{digest}", h.blob)
		r.Get("/thumbnails/{class}/{id}", h.thumbnail)
		r.Route("/duplicate", func(r chi.Router) {
			r.Use(assurePrincipal)
			r.Post("/", h.duplicate)
		})
		r.Get("/ops/{id}", h.op)
	})
	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) Serve(addr string) error {
	return http.ListenAndServe(addr, h.router)
}

func refFromURL(r *http.Request) (pixst.Ref, error) {
	return pixst.ParseRef(fmt.Sprintf("%s:%s", chi.URLParam(r, "class"), chi.URLParam(r, "id")))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	m := models.Object{}
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "something went wrong while decoding the data into the model", http.StatusBadRequest)
		return
	}
	obj, err := pixst.FromModel(&m)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Create(obj); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(obj.ToModel()); err != nil {
		http.Error(w, "couldn't send the object back", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromURL(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	obj, err := h.store.Get(ref)
	if errors.Is(err, pixst.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(obj.ToModel()); err != nil {
		http.Error(w, "something went wrong while sending the object", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromURL(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Delete(ref); err != nil {
		msg := fmt.Sprintf("couldn't delete the object %s", ref)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) links(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromURL(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	links, err := h.store.LinksFrom(ref, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ms := make([]*models.Object, 0, len(links))
	for _, l := range links {
		ms = append(ms, l.ToModel())
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ms); err != nil {
		http.Error(w, "something went wrong while sending the links", http.StatusInternalServerError)
		return
	}
}

// query returns the caller's objects filtered by class and metadata.
func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	m := models.QueryRequest{}
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "something went wrong while decoding the query", http.StatusBadRequest)
		return
	}
	p := r.Context().Value(CtxKeyPrincipal).(pixst.Principal)
	q := pixst.NewQuery(p.Name)
	if m.Class != "" {
		class, ok := pixst.LookupClass(m.Class)
		if !ok {
			http.Error(w, pixst.ErrUnknownClass.Error(), http.StatusBadRequest)
			return
		}
		q = q.WithClass(class)
	}
	if len(m.Meta) > 0 {
		meta := pixst.NewMetadata()
		pairs := make(map[pixst.MetaKey]string, len(m.Meta))
		for k, v := range m.Meta {
			pairs[pixst.MetaKey(k)] = v
		}
		meta.Merge(pairs)
		q = q.WithMeta(meta)
	}
	if m.Or {
		q = q.WithAction(pixst.Or)
	}
	objs, err := h.store.RunQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ms := make([]*models.Object, 0, len(objs))
	for _, obj := range objs {
		ms = append(ms, obj.ToModel())
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ms); err != nil {
		http.Error(w, "something went wrong while sending the objects", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) importImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.opts.MaxUploadSize); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile(h.opts.FormKeyFile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer file.Close()
	p := r.Context().Value(CtxKeyPrincipal).(pixst.Principal)
	obj, err := h.store.ImportImage(header.Filename, p, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(obj.ToModel()); err != nil {
		http.Error(w, "couldn't send the object back", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) blob(w http.ResponseWriter, r *http.Request) {
	digest := chi.URLParam(r, "digest")
	data, err := h.store.GetBlob(digest)
	if errors.Is(err, pixst.ErrBlobNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		http.Error(w, "something went wrong while streaming the blob", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) thumbnail(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromURL(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := h.store.Thumbnail(ref)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := w.Write(data); err != nil {
		http.Error(w, "something went wrong while sending the thumbnail", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) duplicate(w http.ResponseWriter, r *http.Request) {
	m := models.DuplicateRequest{}
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "something went wrong while decoding the request", http.StatusBadRequest)
		return
	}
	targets, err := pixst.ParseRefs(m.Targets)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	policy, err := graph.ParsePolicy(m.DuplicateClasses, m.ReferenceClasses, m.IgnoreClasses)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := graph.Request{
		Targets: targets,
		Policy:  policy,
		Caller:  r.Context().Value(CtxKeyPrincipal).(pixst.Principal),
		DryRun:  m.DryRun,
	}
	op := h.ops.submit()
	go h.runDuplicate(op.ID, req)
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(op); err != nil {
		http.Error(w, "couldn't send the op back", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) runDuplicate(opID string, req graph.Request) {
	ctx := context.Background()
	h.ops.setRunning(opID)
	res, err := h.dup.Run(ctx, req)
	if err != nil {
		h.logger.Error("duplication failed",
			slog.String("op", opID), slog.String("msg", err.Error()))
		h.ops.fail(opID, err)
		return
	}
	h.ops.finish(opID, res.ToModel())
}

func (h *Handler) op(w http.ResponseWriter, r *http.Request) {
	op, ok := h.ops.get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "unknown op", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(op); err != nil {
		http.Error(w, "couldn't send the op", http.StatusInternalServerError)
		return
	}
}
