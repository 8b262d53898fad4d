package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/geo-position-etl/internal/domain"
)

// Operation labels for the conversion_requests_total metric.
const (
	opParse     = "parse"
	opFormat    = "format"
	opNormalize = "normalize"
	opDecode    = "decode"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type parseRequest struct {
	Value *string `json:"value"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, opParse, err)
		return
	}

	degrees, err := domain.ParseDMSField(req.Value)
	if err != nil {
		s.fail(w, opParse, err)
		return
	}
	s.succeed(w, opParse, map[string]float64{"degrees": degrees})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	value, err := queryFloat(r, "value")
	if err != nil {
		s.fail(w, opFormat, err)
		return
	}

	dms, err := domain.FormatDMS(value)
	if err != nil {
		s.fail(w, opFormat, err)
		return
	}
	s.succeed(w, opFormat, map[string]string{"dms": dms})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	value, err := queryFloat(r, "value")
	if err != nil {
		s.fail(w, opNormalize, err)
		return
	}

	normalized, err := s.normalizer.Normalize(value)
	if err != nil {
		s.fail(w, opNormalize, err)
		return
	}
	s.succeed(w, opNormalize, map[string]float64{"value": normalized})
}

// handleNormalizePosition decodes a raw [lng, lat(, alt)] array and returns
// the normalized array. Null elements are a malformed record.
func (s *Server) handleNormalizePosition(w http.ResponseWriter, r *http.Request) {
	var raw []*float64
	if err := decodeBody(w, r, &raw); err != nil {
		s.fail(w, opDecode, err)
		return
	}

	values, err := domain.ArrayElements(raw)
	if err != nil {
		s.fail(w, opDecode, err)
		return
	}

	pos, err := domain.DecodeArrayWith(values, s.normalizer)
	if err != nil {
		s.fail(w, opDecode, err)
		return
	}
	s.succeed(w, opDecode, domain.EncodeArray(pos))
}

func (s *Server) succeed(w http.ResponseWriter, op string, body any) {
	s.observe(op, "success")
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.observe(op, "error")

	kind := domain.KindOf(err)
	resp := errorResponse{Error: err.Error()}
	if kind != 0 {
		resp.Kind = kind.String()
	}
	s.logger.Debug("conversion rejected", "operation", op, "error", err, "kind", resp.Kind)
	writeJSON(w, statusForKind(kind), resp)
}

func (s *Server) observe(op, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ConversionRequests.WithLabelValues(op, outcome).Inc()
}

// statusForKind maps a coordinate error kind to an HTTP status. Errors
// without a kind come from request decoding.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.InvalidFormat, domain.MalformedRecord:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

var errMissingValue = errors.New("missing value query parameter")

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errMissingValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
