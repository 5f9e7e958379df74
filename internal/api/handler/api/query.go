package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/zerovacancy/zerovacancy/internal/core"
)

const maxBodyBytes = 1 << 20

// WriteRecorder counts marketplace writes. Optional.
type WriteRecorder interface {
	RecordWrite(entity, status string)
}

func recordWrite(rec WriteRecorder, entity string, err error) {
	if rec == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = string(core.KindOf(err))
	}
	rec.RecordWrite(entity, status)
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, core.Validation(name+" must be a non-negative integer", map[string]any{"field": name})
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return core.Validation("request body is required", nil)
		}
		return core.Validation("request body must be valid JSON: "+err.Error(), nil)
	}
	return nil
}
