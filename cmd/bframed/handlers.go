package main

import (
	"context"
	"encoding/json"

	"github.com/advdv/bframe"
	"github.com/advdv/bframe/bfsrv"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Handlers implements the demo routes.
type Handlers struct {
	rt *bfsrv.Runtime[Env]
}

// NewHandlers creates the handlers.
func NewHandlers(rt *bfsrv.Runtime[Env]) *Handlers {
	return &Handlers{rt: rt}
}

// Index greets.
func (h *Handlers) Index(_ context.Context, w *bframe.Response, _ *bframe.Request) error {
	_, err := w.WriteString(h.rt.Env().Greeting)
	return err
}

// Echo responds with the request body and its content type.
func (h *Handlers) Echo(_ context.Context, w *bframe.Response, r *bframe.Request) error {
	if ct, ok := r.Message.Header("Content-Type"); ok {
		w.SetContentType(ct)
	}

	_, err := w.Write(r.Message.Body())

	return err
}

// GetItem returns the item id together with the path it can be fetched from.
func (h *Handlers) GetItem(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
	id := r.PathValue("id")

	self, err := h.rt.Reverse("get-item", id)
	if err != nil {
		return errors.Wrap(err, "reverse")
	}

	bfsrv.Log(ctx).Debug("get item", zap.String("id", id))

	return writeJSON(w, bframe.CodeOK, map[string]string{"id": id, "self": self})
}

// Form reads the name and age fields of a form encoded body.
func (h *Handlers) Form(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
	name, err := bframe.GetString(r.Message.Body(), "name")
	if err != nil {
		return bframe.NewError(bframe.CodeUnprocessableEntity, err)
	}

	age, err := bframe.GetValue[int](r.Message.Body(), "age")
	if err != nil {
		return bframe.NewError(bframe.CodeUnprocessableEntity, err)
	}

	bfsrv.Log(ctx).Info("form submitted", zap.String("name", name), zap.Int("age", age))

	return writeJSON(w, bframe.CodeOK, map[string]any{"name": name, "age": age})
}

// CreateUser reads the user name from a JSON body.
func (h *Handlers) CreateUser(_ context.Context, w *bframe.Response, r *bframe.Request) error {
	name, err := bframe.GetJSON(r.Message, "user.name")
	if err != nil {
		return bframe.NewError(bframe.CodeBadRequest, err)
	}

	return writeJSON(w, bframe.CodeCreated, map[string]string{"name": name.String()})
}

func writeJSON(w *bframe.Response, code bframe.Code, v any) error {
	w.WriteHeader(code)
	w.SetContentType("application/json")

	return json.NewEncoder(w).Encode(v)
}
