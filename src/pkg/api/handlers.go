package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/names"
	"pricetag-ocr/src/pkg/prices"
)

const maxBatchTexts = 500

type correctRequest struct {
	Text  *string  `json:"text"`
	Texts []string `json:"texts"`
}

type correctResponse struct {
	Corrections []names.Correction `json:"corrections"`
}

type parseRequest struct {
	Retailer string `json:"retailer"`
	Text     string `json:"text"`
	Role     string `json:"role"`
}

type parseResponse struct {
	prices.Result
	OK     bool           `json:"ok"`
	Values map[string]any `json:"values"`
}

type runRequest struct {
	Filename string `json:"filename"`
	ShopName string `json:"shop_name"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"retailers": len(s.deps.Prices.Retailers()),
		"runs":      s.deps.Runs != nil,
	})
}

func (s *Server) correctNames(c echo.Context) error {
	var request correctRequest
	if err := c.Bind(&request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "body must be JSON with 'text' or 'texts'")
	}

	texts := request.Texts
	if request.Text != nil {
		texts = append([]string{*request.Text}, texts...)
	}
	if len(texts) == 0 {
		return errorJSON(c, http.StatusBadRequest, "'text' or 'texts' is required")
	}
	if len(texts) > maxBatchTexts {
		return errorJSON(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("at most %d texts per request", maxBatchTexts))
	}

	response := correctResponse{Corrections: make([]names.Correction, 0, len(texts))}
	for _, text := range texts {
		response.Corrections = append(response.Corrections, s.deps.Names.Correct(text))
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) parsePrice(c echo.Context) error {
	var request parseRequest
	if err := c.Bind(&request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "body must be JSON with 'retailer', 'text' and 'role'")
	}
	if strings.TrimSpace(request.Retailer) == "" {
		return errorJSON(c, http.StatusBadRequest, "'retailer' is required")
	}

	role := prices.RoleItem
	if request.Role != "" {
		parsed, ok := prices.ParseRole(request.Role)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, fmt.Sprintf("unknown role '%s'", request.Role))
		}
		role = parsed
	}
	if _, _, found := s.deps.Prices.Lookup(request.Retailer); !found {
		return errorJSON(c, http.StatusNotFound, fmt.Sprintf("no price rule for retailer '%s'", request.Retailer))
	}

	result := s.deps.Prices.Parse(request.Retailer, request.Text, role)
	tl.Log(tl.Verbose, palette.CyanDim, "Parsed '%s' for '%s' (%s): %v", request.Text, request.Retailer, role, tl.PrettyForStderr(result.Values()))
	return c.JSON(http.StatusOK, parseResponse{Result: result, OK: result.OK(), Values: result.Values()})
}

func (s *Server) listRetailers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"retailers": s.deps.Prices.Retailers()})
}

func (s *Server) startRun(c echo.Context) error {
	if s.deps.Runs == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "the workflow queue is not configured")
	}
	var request runRequest
	if err := c.Bind(&request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "body must be JSON with 'filename' and 'shop_name'")
	}
	if strings.TrimSpace(request.Filename) == "" || strings.TrimSpace(request.ShopName) == "" {
		return errorJSON(c, http.StatusBadRequest, "'filename' and 'shop_name' are required")
	}

	runID, e := s.deps.Runs.EnqueueRun(c.Request().Context(), request.Filename, request.ShopName)
	if e != nil {
		tl.Log(tl.Error, palette.Red, "Unable to enqueue run for '%s': %v", request.Filename, e)
		return errorJSON(c, http.StatusBadGateway, "unable to enqueue the run")
	}
	return c.JSON(http.StatusAccepted, map[string]string{"run_id": runID})
}
