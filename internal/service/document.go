package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"docqa/internal/model"
	"docqa/internal/repository"
	"docqa/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("Document not found")
	ErrReaderNil  = errors.New("reader is nil")
)

// sniffLen is how much of an upload is buffered to detect its content type.
const sniffLen = 3072

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling documents.
// Every method is scoped to ownerID; documents of other owners behave as if they did not exist.
type DocumentService interface {
	// Upload stores the content in object storage, saves metadata to DB, and rolls back storage if DB save fails.
	Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename string, size int64) (*model.Document, error)

	// List returns the owner's documents using limit/offset and a total count.
	List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, ownerID, id string) (*model.Document, error)

	// Replace swaps the stored file of an existing document.
	Replace(ctx context.Context, ownerID, id string, r io.Reader, originalFilename string, size int64) (*model.Document, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, ownerID, id string) error

	// DownloadURL returns a presigned link to the stored file.
	DownloadURL(ctx context.Context, ownerID, id string) (string, error)

	// Content returns the document metadata together with its full stored bytes.
	Content(ctx context.Context, ownerID, id string) (*model.Document, []byte, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	repo      repository.DocumentRepository
	urlExpiry time.Duration
	log       logrus.FieldLogger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, urlExpiry time.Duration, log logrus.FieldLogger) DocumentService {
	return &documentService{store: store, repo: repo, urlExpiry: urlExpiry, log: log}
}

// sniff buffers the head of r to detect its content type and returns a
// reader that replays the whole stream. Any type is accepted; whether a
// document can be read as text is decided at extraction time.
func sniff(r io.Reader) (io.Reader, *mimetype.MIME, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), r), mimetype.Detect(head), nil
}

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}

// storedObject is what put hands back to Upload and Replace.
type storedObject struct {
	storage.ObjectInfo
	ContentType string
}

// put stores a new object for ownerID under a key derived from the sniffed type.
func (s *documentService) put(ctx context.Context, ownerID string, r io.Reader, originalFilename string, size int64) (storedObject, error) {
	if r == nil {
		return storedObject{}, ErrReaderNil
	}
	body, mtype, err := sniff(r)
	if err != nil {
		return storedObject{}, err
	}

	key := path.Join("documents", ownerID, uuid.NewString()+mtype.Extension())
	info, err := s.store.Put(ctx, key, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: mtype.String(),
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"owner-id":          ownerID,
		},
	})
	if err != nil {
		return storedObject{}, fmt.Errorf("upload to storage: %w", err)
	}
	return storedObject{ObjectInfo: info, ContentType: mtype.String()}, nil
}

func (s *documentService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	objInfo, err := s.put(ctx, ownerID, r, originalFilename, size)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Filename:    cleanFilename(originalFilename),
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: objInfo.ContentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(ctx, objInfo.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, ownerID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) find(ctx context.Context, ownerID, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, ownerID, id string) (*model.Document, error) {
	return s.find(ctx, ownerID, id)
}

// Replace uploads the new file first, repoints the row, then drops the old object.
// A failure to remove the old object is logged and does not fail the request.
func (s *documentService) Replace(ctx context.Context, ownerID, id string, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	current, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	objInfo, err := s.put(ctx, ownerID, r, originalFilename, size)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateFile(ctx, &model.Document{
		ID:          current.ID,
		OwnerID:     ownerID,
		Filename:    cleanFilename(originalFilename),
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: objInfo.ContentType,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, objInfo.Key); delErr != nil {
			s.log.WithError(delErr).WithField("storage_path", objInfo.Key).Warn("rollback delete failed")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db update failed: %w", err)
	}

	if err := s.store.Delete(ctx, current.StoragePath); err != nil {
		s.log.WithError(err).WithField("storage_path", current.StoragePath).Warn("failed to remove replaced object")
	}
	return updated, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, ownerID, id string) error {
	doc, err := s.find(ctx, ownerID, id)
	if err != nil {
		return err
	}
	// Storage first; if this fails the row keeps pointing at the object.
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *documentService) DownloadURL(ctx context.Context, ownerID, id string) (string, error) {
	doc, err := s.find(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, doc.StoragePath, s.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

func (s *documentService) Content(ctx context.Context, ownerID, id string) (*model.Document, []byte, error) {
	doc, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("read stored file: %w", err)
	}
	return doc, data, nil
}
