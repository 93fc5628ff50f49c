package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"airbnb-analyzer/models"
	"airbnb-analyzer/services"
)

// readUpload loads the multipart "file" field of r.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, *models.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	ds, err := s.loader.Load(header.Filename, file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, ds, nil
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	source, ds, err := s.readUpload(w, r)
	if err != nil {
		s.logger.Warn("[api] Upload rejected: %v", err)
		_ = render.Render(w, r, loadErrorFor(err))
		return
	}

	sess, err := s.store.Create(source, ds)
	if err != nil {
		_ = render.Render(w, r, loadErrorFor(err))
		return
	}
	s.metrics.setReports(s.store.Len())
	s.logger.Info("[api] Report %s created from %s (%d reservations)", sess.Info.ID, source, sess.Info.Rows)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sess.Info)
}

func (s *Server) replaceReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(id); err != nil {
		_ = render.Render(w, r, errorFor(err))
		return
	}

	source, ds, err := s.readUpload(w, r)
	if err != nil {
		s.logger.Warn("[api] Upload for %s rejected: %v", id, err)
		_ = render.Render(w, r, loadErrorFor(err))
		return
	}

	sess, err := s.store.Replace(id, source, ds)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			_ = render.Render(w, r, errorFor(err))
			return
		}
		_ = render.Render(w, r, loadErrorFor(err))
		return
	}
	s.logger.Info("[api] Report %s replaced from %s (%d reservations)", id, source, sess.Info.Rows)
	render.JSON(w, r, sess.Info)
}

func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		_ = render.Render(w, r, errorFor(err))
		return
	}
	s.metrics.setReports(s.store.Len())
	render.NoContent(w, r)
}

// getReport returns every view at once; failed sections are listed as
// warnings rather than failing the request.
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		_ = render.Render(w, r, errorFor(err))
		return
	}
	top, err := s.topParam(r)
	if err != nil {
		_ = render.Render(w, r, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), "top"))
		return
	}
	render.JSON(w, r, s.insights.Generate(sess.Info, sess.Engine, top))
}

// view adapts one engine query to a handler.
func (s *Server) view(name string, query func(*services.ReportEngine, *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.Get(chi.URLParam(r, "id"))
		if err != nil {
			_ = render.Render(w, r, errorFor(err))
			return
		}

		result, err := query(sess.Engine, r)
		if errors.Is(err, errInvalidTop) {
			_ = render.Render(w, r, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), "top"))
			return
		}
		s.metrics.observeView(name, err)
		if err != nil {
			s.logger.Warn("[api] %s for report %s failed: %v", name, sess.Info.ID, err)
			_ = render.Render(w, r, errorFor(err))
			return
		}
		render.JSON(w, r, result)
	}
}
