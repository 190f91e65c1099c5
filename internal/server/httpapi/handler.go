package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/server/services"
)

type loginRequest struct {
	NationalID  string `json:"nationalId"`
	PhoneNumber string `json:"phoneNumber"`
}

// decodeBody reads a JSON object keeping numbers as json.Number, so
// integer fields survive without a float round trip.
func decodeBody(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &services.ValidationError{Field: "body", Reason: "is not valid JSON"}
	}
	return nil
}

// writeError maps service errors to a status and a {message} body.
func (s *Server) writeError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "record already exists"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid national ID or phone number"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func (s *Server) resource(c *gin.Context) (*catalog.Descriptor, bool) {
	d, err := s.records.Resolve(c.Param("resource"))
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return d, true
}

func keyParams(c *gin.Context) []string {
	key := []string{c.Param("k1")}
	if k2 := c.Param("k2"); k2 != "" {
		key = append(key, k2)
	}
	return key
}

// GET /api/:resource
func (s *Server) list(c *gin.Context) {
	d, ok := s.resource(c)
	if !ok {
		return
	}
	rows, err := s.records.List(c.Request.Context(), d)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// POST /api/:resource
func (s *Server) create(c *gin.Context) {
	d, ok := s.resource(c)
	if !ok {
		return
	}
	var body map[string]any
	if err := decodeBody(c, &body); err != nil {
		s.writeError(c, err)
		return
	}
	row, err := s.records.Create(c.Request.Context(), d, body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// PUT /api/:resource/:k1[/:k2]
func (s *Server) update(c *gin.Context) {
	d, ok := s.resource(c)
	if !ok {
		return
	}
	var body map[string]any
	if err := decodeBody(c, &body); err != nil {
		s.writeError(c, err)
		return
	}
	row, err := s.records.Update(c.Request.Context(), d, keyParams(c), body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// DELETE /api/:resource/:k1[/:k2]
func (s *Server) delete(c *gin.Context) {
	d, ok := s.resource(c)
	if !ok {
		return
	}
	if err := s.records.Delete(c.Request.Context(), d, keyParams(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /customers/login
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := decodeBody(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	user, token, err := s.customers.Login(c.Request.Context(), req.NationalID, req.PhoneNumber)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
