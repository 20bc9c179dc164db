package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/filelist/params"
	"github.com/dimasma0305/filelist/internal/filelist/refresh"
)

// ConfigPatch is a partial configuration write. Absent fields are left as
// they are.
type ConfigPatch struct {
	Directory     *string `json:"directory,omitempty"`
	Pattern       *string `json:"pattern,omitempty"`
	CaseSensitive *bool   `json:"case_sensitive,omitempty"`
	FullPath      *bool   `json:"full_path,omitempty"`
}

// RefreshReport is the JSON form of a refresh result
type RefreshReport struct {
	refresh.Result
	Outcome string `json:"result"`
	Error   string `json:"error,omitempty"`
}

// ConfigResponse answers a configuration write
type ConfigResponse struct {
	Config  config.Configuration `json:"config"`
	Updated []string             `json:"updated"`
	Refresh *RefreshReport       `json:"refresh,omitempty"`
}

// ErrorBody is returned with every non-2xx response
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func newReport(res refresh.Result) *RefreshReport {
	r := &RefreshReport{Result: res, Outcome: errors.Kind(res.Err)}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	return r
}

// statusFor maps a pipeline error to an HTTP status. Overflow is soft and
// still answers 200.
func statusFor(err error) int {
	switch {
	case err == nil, errors.IsSoft(err):
		return http.StatusOK
	case errors.Is(err, errors.ErrInvalidConfig), errors.Is(err, errors.ErrUnknownField),
		errors.Is(err, errors.ErrInvalidPattern):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrDirectoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrDirectoryPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	kind := errors.Kind(err)
	switch {
	case errors.Is(err, errors.ErrInvalidConfig):
		kind = "invalid_config"
	case errors.Is(err, errors.ErrUnknownField):
		kind = "unknown_field"
	}
	return c.JSON(statusFor(err), ErrorBody{Error: err.Error(), Kind: kind})
}

func (s *Server) getSnapshot(c echo.Context) error {
	snap := s.backend.Snapshot()
	h := c.Response().Header()
	h.Set(HeaderValidLength, strconv.Itoa(snap.Length))
	h.Set(HeaderSequence, strconv.FormatUint(snap.Sequence, 10))
	h.Set(HeaderCodec, snap.Codec)
	h.Set(HeaderCapacity, strconv.Itoa(snap.Capacity))
	if !snap.UpdatedAt.IsZero() {
		h.Set(echo.HeaderLastModified, snap.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, snap.Data[:snap.Length])
}

func (s *Server) getNames(c echo.Context) error {
	names, err := s.backend.Names()
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(HeaderSequence, strconv.FormatUint(s.backend.Snapshot().Sequence, 10))
	return c.JSON(http.StatusOK, names)
}

func (s *Server) getConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, s.backend.Config())
}

// putConfig applies the flags first so that a refresh triggered by a
// pattern or directory write already sees them.
func (s *Server) putConfig(c echo.Context) error {
	var patch ConfigPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, errors.Wrapf(errors.ErrInvalidConfig, "decode body: %v", err))
	}

	type write struct{ field, value string }
	var writes []write
	if patch.CaseSensitive != nil {
		writes = append(writes, write{config.FieldCaseSensitive, strconv.FormatBool(*patch.CaseSensitive)})
	}
	if patch.FullPath != nil {
		writes = append(writes, write{config.FieldFullPath, strconv.FormatBool(*patch.FullPath)})
	}
	if patch.Pattern != nil {
		writes = append(writes, write{config.FieldPattern, *patch.Pattern})
	}
	if patch.Directory != nil {
		writes = append(writes, write{config.FieldDirectory, *patch.Directory})
	}
	if len(writes) == 0 {
		return fail(c, errors.Wrap(errors.ErrInvalidConfig, "no fields to update"))
	}
	// nothing is applied unless every field is acceptable
	for _, w := range writes {
		if err := params.Validate(w.field, w.value); err != nil {
			return fail(c, err)
		}
	}

	resp := ConfigResponse{Updated: []string{}}
	for _, w := range writes {
		res, err := s.backend.SetConfig(c.Request().Context(), w.field, w.value)
		if err != nil {
			return fail(c, err)
		}
		resp.Updated = append(resp.Updated, w.field)
		if res != nil {
			resp.Refresh = newReport(*res)
		}
	}
	resp.Config = s.backend.Config()
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) postRefresh(c echo.Context) error {
	res, err := s.backend.Refresh(refresh.SourceManual)
	return c.JSON(statusFor(err), newReport(res))
}
