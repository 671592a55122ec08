package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docqa/internal/http/middleware"
	"docqa/internal/service"
)

// documentID validates the :id path parameter.
// documentID returns the path id in canonical form. uuid.Parse also accepts
// the urn and braced forms, which the UUID column does not.
func documentID(c *fiber.Ctx) (string, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ListDocuments lists the caller's documents with limit & offset.
//
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Security BearerAuth
// @Param    limit  query int false "page size" default(10)
// @Param    offset query int false "offset"    default(0)
// @Success  200 {object} service.DocumentListResult
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Router   /api/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), middleware.UserID(c), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// UploadDocument stores an uploaded file (multipart/form-data, field name: file).
// Any type is stored; questions can only be answered about PDFs.
//
// @Summary  Upload a document
// @Tags     documents
// @Accept   mpfd
// @Produce  json
// @Security BearerAuth
// @Param    file formData file true "document"
// @Success  201 {object} model.Document
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Router   /api/documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), middleware.UserID(c), f, fh.Filename, fh.Size)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns one of the caller's documents.
//
// @Summary  Retrieve a document
// @Tags     documents
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "document id"
// @Success  200 {object} model.Document
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// ReplaceDocument swaps the stored file of a document.
//
// @Summary  Replace a document's file
// @Tags     documents
// @Accept   mpfd
// @Produce  json
// @Security BearerAuth
// @Param    id   path     string true "document id"
// @Param    file formData file   true "document"
// @Success  200 {object} model.Document
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/documents/{id} [put]
func ReplaceDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Replace(c.UserContext(), middleware.UserID(c), id, f, fh.Filename, fh.Size)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document and its stored file.
//
// @Summary  Delete a document
// @Tags     documents
// @Security BearerAuth
// @Param    id path string true "document id"
// @Success  204
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument redirects to a presigned object storage URL.
//
// @Summary  Download a document
// @Tags     documents
// @Security BearerAuth
// @Param    id path string true "document id"
// @Success  307
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.DownloadURL(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return err
		}
		return c.Redirect(u, fiber.StatusTemporaryRedirect)
	}
}
