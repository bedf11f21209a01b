package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"PixelCtl/internal/color"
	"PixelCtl/internal/pixel"
	"PixelCtl/internal/protocol"
	"PixelCtl/internal/state"
	"PixelCtl/internal/textlayer"
	"PixelCtl/internal/views"
)

const maxImageBytes = 8 << 20

var errBadRequest = errors.New("bad request")

type api struct {
	panel *panel
}

func newRouter(p *panel, h *hub) *mux.Router {
	a := &api{panel: p}

	r := mux.NewRouter()
	r.Use(corsMiddleware)

	// Routes below are method bound, so preflights need a route of their own for the
	// middleware to run. corsMiddleware answers them.
	r.Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	r.Path("/state").Methods(http.MethodGet).HandlerFunc(a.getState)
	r.Path("/pixels").Methods(http.MethodPost).HandlerFunc(a.drawPixels)
	r.Path("/fill").Methods(http.MethodPost).HandlerFunc(a.fill)
	r.Path("/clear").Methods(http.MethodPost).HandlerFunc(a.clear)
	r.Path("/image").Methods(http.MethodPost).HandlerFunc(a.drawImage)

	r.Path("/text").Methods(http.MethodPut).HandlerFunc(a.setText)
	r.Path("/text").Methods(http.MethodPost).HandlerFunc(a.addText)
	r.Path("/text/{line:[0-9]+}").Methods(http.MethodPut).HandlerFunc(a.updateText)
	r.Path("/text/{line:[0-9]+}").Methods(http.MethodDelete).HandlerFunc(a.removeText)

	r.Path("/brightness").Methods(http.MethodPost).HandlerFunc(a.setBrightness)
	r.Path("/composition").Methods(http.MethodPost).HandlerFunc(a.setComposition)
	r.Path("/locale").Methods(http.MethodPost).HandlerFunc(a.setLocale)
	r.Path("/timezone").Methods(http.MethodPost).HandlerFunc(a.setTimezone)
	r.Path("/customdata").Methods(http.MethodPost).HandlerFunc(a.setCustomData)
	r.Path("/tool").Methods(http.MethodPost).HandlerFunc(a.setTool)

	r.Path("/reset").Methods(http.MethodPost).HandlerFunc(a.command(a.panel.reset))
	r.Path("/sync").Methods(http.MethodPost).HandlerFunc(a.command(a.panel.sync))
	r.Path("/pull").Methods(http.MethodPost).HandlerFunc(a.command(a.panel.pull))

	r.Path("/preview.png").Methods(http.MethodGet).HandlerFunc(a.preview)

	r.Path("/views").Methods(http.MethodGet).HandlerFunc(a.listViews)
	r.Path("/views").Methods(http.MethodPost).HandlerFunc(a.saveView)
	r.Path("/views/{id}").Methods(http.MethodGet).HandlerFunc(a.getView)
	r.Path("/views/{id}").Methods(http.MethodDelete).HandlerFunc(a.deleteView)
	r.Path("/views/{id}/load").Methods(http.MethodPost).HandlerFunc(a.loadView)

	r.Path("/ws").HandlerFunc(h.serveWS)
	r.Path("/metrics").Handler(promhttp.Handler())

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Access-Control-Allow-Origin", "*")
		if r.Method == "OPTIONS" {
			w.Header().Add("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debugw("unable to write response",
			"err", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, state.ErrTooManyLines),
		errors.Is(err, errInvalidTimezone):
		status = http.StatusBadRequest
	case errors.Is(err, state.ErrNotFound), errors.Is(err, views.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, protocol.ErrNotOpen), errors.Is(err, protocol.ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		logger.Errorw("request failed",
			"err", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(err error) error {
	return errors.Join(errBadRequest, err)
}

// writeResult reports a change that was applied locally. A device that is not connected
// is not a failure: the change is kept and delivered is false.
func writeResult(w http.ResponseWriter, body *gabs.Container, err error) {
	if err != nil && !errors.Is(err, protocol.ErrNotOpen) {
		writeError(w, err)
		return
	}

	if body == nil {
		body = gabs.New()
	}
	body.Set(err == nil, "delivered")

	w.Header().Set("Content-Type", "application/json")
	w.Write(body.Bytes())
}

func readBody(r *http.Request) (*gabs.Container, error) {
	defer r.Body.Close()

	body, err := gabs.ParseJSONBuffer(r.Body)
	if err != nil {
		return nil, badRequest(err)
	}

	return body, nil
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(err)
	}

	return nil
}

func lineParam(r *http.Request) int {
	// The route pattern only admits digits.
	i, _ := strconv.Atoi(mux.Vars(r)["line"])
	return i
}

func (a *api) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.panel.state.Snapshot())
}

func (a *api) drawPixels(w http.ResponseWriter, r *http.Request) {
	var batch pixel.Batch
	if err := decodeBody(r, &batch); err != nil {
		writeError(w, err)
		return
	}

	err := a.panel.drawPixels(r.Context(), batch)

	body := gabs.New()
	body.Set(len(batch.Filter(a.panel.cfg.Width, a.panel.cfg.Height)), "pixels")
	writeResult(w, body, err)
}

func (a *api) fill(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s, _ := body.Path("color").Data().(string)
	c, ok := color.ParseLoose(s)
	if !ok {
		writeError(w, badRequest(errors.New("color must be #rrggbb or r, g, b")))
		return
	}

	writeResult(w, nil, a.panel.fill(r.Context(), c))
}

func (a *api) clear(w http.ResponseWriter, r *http.Request) {
	writeResult(w, nil, a.panel.clear(r.Context()))
}

// drawImage takes either a multipart form with an "image" file or the raw image as the
// request body.
func (a *api) drawImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	defer r.Body.Close()

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		f, _, err := r.FormFile("image")
		if err != nil {
			writeError(w, badRequest(err))
			return
		}
		defer f.Close()
		src = f
	}

	img, err := pixel.DecodeImage(src)
	if err != nil {
		writeError(w, badRequest(err))
		return
	}

	batch := pixel.FromImage(img, a.panel.cfg.Width, a.panel.cfg.Height)
	writeResult(w, nil, a.panel.drawImage(r.Context(), batch))
}

func (a *api) setText(w http.ResponseWriter, r *http.Request) {
	var lines []textlayer.Line
	if err := decodeBody(r, &lines); err != nil {
		writeError(w, err)
		return
	}

	if err := a.panel.setText(lines); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a.panel.state.Snapshot().Text)
}

func (a *api) addText(w http.ResponseWriter, r *http.Request) {
	var l textlayer.Line
	if err := decodeBody(r, &l); err != nil {
		writeError(w, err)
		return
	}

	i, err := a.panel.addText(l)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"line": i,
		"text": a.panel.state.Snapshot().Text[i],
	})
}

func (a *api) updateText(w http.ResponseWriter, r *http.Request) {
	var l textlayer.Line
	if err := decodeBody(r, &l); err != nil {
		writeError(w, err)
		return
	}

	if err := a.panel.updateText(lineParam(r), l); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a.panel.state.Snapshot().Text)
}

func (a *api) removeText(w http.ResponseWriter, r *http.Request) {
	if err := a.panel.removeText(lineParam(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a.panel.state.Snapshot().Text)
}

func (a *api) setBrightness(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	v, ok := body.Path("brightness").Data().(float64)
	if !ok {
		writeError(w, badRequest(errors.New("brightness must be a number")))
		return
	}

	b, err := a.panel.setBrightness(r.Context(), int(v))

	out := gabs.New()
	out.Set(b, "brightness")
	writeResult(w, out, err)
}

// setComposition sets {"mode": n}, or moves to the next mode when the body has none.
func (a *api) setComposition(w http.ResponseWriter, r *http.Request) {
	var mode *int
	if r.ContentLength != 0 {
		body, err := readBody(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if v, ok := body.Path("mode").Data().(float64); ok {
			m := int(v)
			mode = &m
		}
	}

	m, err := a.panel.setCompositionMode(r.Context(), mode)

	out := gabs.New()
	out.Set(int(m), "mode")
	out.Set(m.String(), "name")
	writeResult(w, out, err)
}

func (a *api) setLocale(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s, _ := body.Path("locale").Data().(string)
	locale, err := a.panel.setLocale(r.Context(), s)
	if err != nil && !errors.Is(err, protocol.ErrNotOpen) {
		writeError(w, badRequest(err))
		return
	}

	out := gabs.New()
	out.Set(locale, "locale")
	writeResult(w, out, err)
}

func (a *api) setTimezone(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tz, _ := body.Path("timezone").Data().(string)
	err = a.panel.setTimezone(r.Context(), tz)

	out := gabs.New()
	out.Set(tz, "timezone")
	writeResult(w, out, err)
}

func (a *api) setCustomData(w http.ResponseWriter, r *http.Request) {
	var cd protocol.CustomData
	if err := decodeBody(r, &cd); err != nil {
		writeError(w, err)
		return
	}

	writeResult(w, nil, a.panel.setCustomData(r.Context(), cd))
}

func (a *api) setTool(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s, _ := body.Path("color").Data().(string)
	c, ok := color.ParseLoose(s)
	if !ok {
		writeError(w, badRequest(errors.New("color must be #rrggbb or r, g, b")))
		return
	}

	a.panel.state.SetToolColor(c)
	writeJSON(w, http.StatusOK, a.panel.state.Snapshot().Tool)
}

func (a *api) command(fn func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(r.Context())
		if errors.Is(err, protocol.ErrNotOpen) {
			writeError(w, err)
			return
		}

		writeResult(w, nil, err)
	}
}

func (a *api) preview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")

	if err := pixel.WritePNG(w, a.panel.preview(), a.panel.cfg.PixelRatio); err != nil {
		logger.Warnw("unable to encode preview",
			"err", err)
	}
}

func (a *api) listViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.panel.views.List())
}

func (a *api) saveView(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	name, _ := body.Path("name").Data().(string)
	if strings.TrimSpace(name) == "" {
		writeError(w, badRequest(errors.New("name is required")))
		return
	}
	id, _ := body.Path("id").Data().(string)

	v, err := a.panel.saveView(name, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

func (a *api) getView(w http.ResponseWriter, r *http.Request) {
	v, err := a.panel.views.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func (a *api) deleteView(w http.ResponseWriter, r *http.Request) {
	if err := a.panel.views.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) loadView(w http.ResponseWriter, r *http.Request) {
	v, err := a.panel.loadView(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}
