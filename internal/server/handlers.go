package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rana718/seedforge/internal/export"
	"github.com/Rana718/seedforge/internal/repository"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type generateRequest struct {
	Schema types.Schema       `json:"schema"`
	Config types.ExportConfig `json:"config"`
	// Store uploads the artifact to the configured store and answers with
	// its location instead of the file itself.
	Store bool `json:"store,omitempty"`
}

type validateRequest struct {
	Schema   types.Schema       `json:"schema"`
	Config   types.ExportConfig `json:"config"`
	RowCount int                `json:"rowCount"`
}

// spreadsheetRequest carries rows under data; rows is accepted as an alias.
type spreadsheetRequest struct {
	Data   []map[string]any `json:"data"`
	Rows   []map[string]any `json:"rows,omitempty"`
	Fields []string         `json:"fields,omitempty"`
	Name   string           `json:"name,omitempty"`
}

func (r spreadsheetRequest) rows() []map[string]any {
	if len(r.Data) > 0 {
		return r.Data
	}
	return r.Rows
}

type errorResponse struct {
	Error  string   `json:"error"`
	Kind   string   `json:"kind,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

func decode(c *fiber.Ctx, target any) error {
	if len(c.Body()) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "request body is required")
	}
	if err := json.Unmarshal(c.Body(), target); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// normalizeFormat accepts the display labels as well as canonical names.
func normalizeFormat(cfg *types.ExportConfig) {
	if f, ok := types.ParseFormat(string(cfg.Format)); ok {
		cfg.Format = f
	}
}

// writeError maps generation failures onto status codes: overlay failures
// are upstream errors, encoder failures are ours, the rest are the
// caller's.
func (s *Server) writeError(c *fiber.Ctx, err error) error {
	var ge *types.Error
	var fe *fiber.Error
	switch {
	case errors.As(err, &ge):
		status := fiber.StatusBadRequest
		switch ge.Kind {
		case types.KindOverlayFailed:
			status = fiber.StatusBadGateway
		case types.KindEncodeFailed:
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(errorResponse{Error: ge.Error(), Kind: string(ge.Kind), Fields: ge.Fields})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: err.Error()})
	}
	s.logger.Error("request error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"overlay": s.engine.HasOverlay(),
		"maxRows": s.engine.MaxRows(),
	})
}

func (s *Server) handleTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"types": s.registry.Types()})
}

func (s *Server) handleValidate(c *fiber.Ctx) error {
	var req validateRequest
	if err := decode(c, &req); err != nil {
		return s.writeError(c, err)
	}
	if req.RowCount == 0 {
		req.RowCount = req.Config.RowCount
	}
	res := s.engine.Check(req.Schema, req.Config, req.RowCount)

	body := fiber.Map{"valid": res.Err == nil, "issues": res.Issues}
	var ge *types.Error
	if errors.As(res.Err, &ge) {
		body["error"] = ge.Error()
		body["kind"] = ge.Kind
		body["fields"] = ge.Fields
	}
	return c.JSON(body)
}

func (s *Server) handlePreview(c *fiber.Ctx) error {
	var req generateRequest
	if err := decode(c, &req); err != nil {
		return s.writeError(c, err)
	}
	res, err := s.engine.Preview(c.UserContext(), req.Schema, req.Config)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(res)
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var req generateRequest
	if err := decode(c, &req); err != nil {
		return s.writeError(c, err)
	}
	res, err := s.engine.Generate(c.UserContext(), req.Schema, req.Config)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(res)
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	var req generateRequest
	if err := decode(c, &req); err != nil {
		return s.writeError(c, err)
	}
	normalizeFormat(&req.Config)

	if req.Store && s.store == nil {
		return s.writeError(c, fiber.NewError(fiber.StatusServiceUnavailable, "no artifact store configured"))
	}

	out, err := s.engine.Export(c.UserContext(), req.Schema, req.Config)
	if err != nil {
		return s.writeError(c, err)
	}

	if req.Store {
		stored, err := s.store.Put(c.UserContext(), out.Artifact)
		if err != nil {
			return s.writeError(c, err)
		}
		return c.JSON(fiber.Map{
			"artifact": artifactInfo(out.Artifact),
			"stored":   stored,
			"metadata": out.Metadata,
		})
	}

	c.Set("X-Seedforge-Deterministic", strconv.FormatBool(out.Metadata.Deterministic))
	c.Set("X-Seedforge-Warnings", strconv.Itoa(len(out.Metadata.Warnings)))
	return sendArtifact(c, out.Artifact)
}

func (s *Server) handleSpreadsheet(c *fiber.Ctx) error {
	var req spreadsheetRequest
	if err := decode(c, &req); err != nil {
		return s.writeError(c, err)
	}
	artifact, err := export.EncodeSpreadsheet(req.rows(), req.Fields, export.Options{
		DatasetName: req.Name,
		Now:         s.now(),
	})
	if err != nil {
		if errors.Is(err, export.ErrNoRows) {
			return s.writeError(c, fiber.NewError(fiber.StatusBadRequest, "data rows are required"))
		}
		return s.writeError(c, err)
	}
	return sendArtifact(c, artifact)
}

func (s *Server) schemaRepo() (repository.SchemaRepository, error) {
	if s.repo == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "no schema repository configured")
	}
	return s.repo, nil
}

func (s *Server) handleListSchemas(c *fiber.Ctx) error {
	repo, err := s.schemaRepo()
	if err != nil {
		return s.writeError(c, err)
	}
	list, err := repo.List(c.UserContext())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"schemas": list})
}

func (s *Server) handleSaveSchema(c *fiber.Ctx) error {
	repo, err := s.schemaRepo()
	if err != nil {
		return s.writeError(c, err)
	}
	var saved types.SavedSchema
	if err := decode(c, &saved); err != nil {
		return s.writeError(c, err)
	}
	if strings.TrimSpace(saved.Name) == "" {
		return s.writeError(c, fiber.NewError(fiber.StatusBadRequest, "schema name is required"))
	}
	if err := repo.Save(c.UserContext(), &saved); err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (s *Server) handleGetSchema(c *fiber.Ctx) error {
	repo, err := s.schemaRepo()
	if err != nil {
		return s.writeError(c, err)
	}
	saved, err := repo.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(saved)
}

func (s *Server) handleDeleteSchema(c *fiber.Ctx) error {
	repo, err := s.schemaRepo()
	if err != nil {
		return s.writeError(c, err)
	}
	if err := repo.Delete(c.UserContext(), c.Params("id")); err != nil {
		return s.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func artifactInfo(a *export.Artifact) fiber.Map {
	return fiber.Map{
		"name":        a.Name,
		"format":      a.Format,
		"contentType": a.ContentType,
		"size":        len(a.Data),
	}
}

func sendArtifact(c *fiber.Ctx, a *export.Artifact) error {
	c.Set(fiber.HeaderContentType, a.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", a.Name))
	return c.Send(a.Data)
}
