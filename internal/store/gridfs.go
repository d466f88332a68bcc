package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fileMetadata struct {
	OwnerID     string `bson:"owner_id"`
	Type        string `bson:"type"`
	ContentType string `bson:"content_type"`
	UploadedBy  string `bson:"uploaded_by,omitempty"`
}

type gridFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   fileMetadata       `bson:"metadata"`
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// gridStore keeps at most one current file per (owner, type) in a bucket
type gridStore struct {
	bucket *gridfs.Bucket
	name   string
}

func newGridStore(db *mongo.Database, name string) (*gridStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket %s: %w", name, err)
	}
	return &gridStore{bucket: bucket, name: name}, nil
}

func (g *gridStore) put(ctx context.Context, meta fileMetadata, filename string, content io.Reader) (gridFile, error) {
	ctx, span := utils.TraceStorage(ctx, g.name, "upload")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return gridFile{}, err
	}

	counter := &countingReader{r: content}
	id, err := g.bucket.UploadFromStream(filename, counter, options.GridFSUpload().SetMetadata(meta))
	recordOperation("gridfs_upload", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"owner_id": meta.OwnerID, "type": meta.Type})
		return gridFile{}, fmt.Errorf("failed to upload file: %w", err)
	}

	previous, err := g.find(ctx, bson.M{
		"metadata.owner_id": meta.OwnerID,
		"metadata.type":     meta.Type,
		"_id":               bson.M{"$ne": id},
	}, 0)
	if err != nil {
		return gridFile{}, err
	}
	for _, old := range previous {
		if err := g.bucket.Delete(old.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return gridFile{}, fmt.Errorf("failed to replace previous file: %w", err)
		}
	}

	utils.AddSpanAttribute(span, "storage.size", counter.n)
	return gridFile{
		ID:         id,
		Length:     counter.n,
		UploadDate: time.Now().UTC().Truncate(time.Millisecond),
		Filename:   filename,
		Metadata:   meta,
	}, nil
}

func (g *gridStore) find(ctx context.Context, filter bson.M, limit int32) ([]gridFile, error) {
	opts := options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := g.bucket.Find(filter, opts)
	recordOperation("gridfs_find", err)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer cursor.Close(ctx)

	var files []gridFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}
	return files, nil
}

func (g *gridStore) latest(ctx context.Context, ownerID, fileType string) (gridFile, bool, error) {
	files, err := g.find(ctx, bson.M{"metadata.owner_id": ownerID, "metadata.type": fileType}, 1)
	if err != nil || len(files) == 0 {
		return gridFile{}, false, err
	}
	return files[0], true, nil
}

func (g *gridStore) open(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, error) {
	_, span := utils.TraceStorage(ctx, g.name, "download")
	defer span.End()

	stream, err := g.bucket.OpenDownloadStream(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return stream, nil
}

// GridFSDocumentStore keeps application documents in GridFS
type GridFSDocumentStore struct {
	files *gridStore
}

// NewGridFSDocumentStore opens the document bucket
func NewGridFSDocumentStore(db *mongo.Database, bucket string) (*GridFSDocumentStore, error) {
	files, err := newGridStore(db, bucket)
	if err != nil {
		return nil, err
	}
	return &GridFSDocumentStore{files: files}, nil
}

func toDocumentInfo(f gridFile) models.DocumentInfo {
	return models.DocumentInfo{
		ID:            f.ID.Hex(),
		ApplicationID: f.Metadata.OwnerID,
		Type:          models.DocumentType(f.Metadata.Type),
		Filename:      f.Filename,
		ContentType:   f.Metadata.ContentType,
		Size:          f.Length,
		UploadedBy:    f.Metadata.UploadedBy,
		UploadedAt:    f.UploadDate,
	}
}

func (s *GridFSDocumentStore) Put(ctx context.Context, info models.DocumentInfo, content io.Reader) (models.DocumentInfo, error) {
	f, err := s.files.put(ctx, fileMetadata{
		OwnerID:     info.ApplicationID,
		Type:        string(info.Type),
		ContentType: info.ContentType,
		UploadedBy:  info.UploadedBy,
	}, info.Filename, content)
	if err != nil {
		return models.DocumentInfo{}, err
	}
	return toDocumentInfo(f), nil
}

func (s *GridFSDocumentStore) Open(ctx context.Context, applicationID string, docType models.DocumentType) (models.DocumentInfo, io.ReadCloser, error) {
	f, ok, err := s.files.latest(ctx, applicationID, string(docType))
	if err != nil {
		return models.DocumentInfo{}, nil, err
	}
	if !ok {
		return models.DocumentInfo{}, nil, models.ErrDocumentNotFound
	}
	rc, err := s.files.open(ctx, f.ID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return models.DocumentInfo{}, nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return models.DocumentInfo{}, nil, err
	}
	return toDocumentInfo(f), rc, nil
}

func (s *GridFSDocumentStore) List(ctx context.Context, applicationID string) ([]models.DocumentInfo, error) {
	files, err := s.files.find(ctx, bson.M{"metadata.owner_id": applicationID}, 0)
	if err != nil {
		return nil, err
	}
	docs := make([]models.DocumentInfo, 0, len(files))
	for _, f := range files {
		docs = append(docs, toDocumentInfo(f))
	}
	return docs, nil
}

func (s *GridFSDocumentStore) DeleteAll(ctx context.Context, applicationID string) error {
	files, err := s.files.find(ctx, bson.M{"metadata.owner_id": applicationID}, 0)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.files.bucket.Delete(f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("failed to delete document %s: %w", f.ID.Hex(), err)
		}
	}
	return nil
}

// GridFSMediaStore keeps user avatars and signatures in GridFS
type GridFSMediaStore struct {
	files *gridStore
}

// NewGridFSMediaStore opens the media bucket
func NewGridFSMediaStore(db *mongo.Database, bucket string) (*GridFSMediaStore, error) {
	files, err := newGridStore(db, bucket)
	if err != nil {
		return nil, err
	}
	return &GridFSMediaStore{files: files}, nil
}

func toMediaInfo(f gridFile) models.MediaInfo {
	return models.MediaInfo{
		ID:          f.ID.Hex(),
		UserID:      f.Metadata.OwnerID,
		Type:        models.MediaType(f.Metadata.Type),
		Filename:    f.Filename,
		ContentType: f.Metadata.ContentType,
		Size:        f.Length,
		UploadedAt:  f.UploadDate,
	}
}

func (s *GridFSMediaStore) Put(ctx context.Context, info models.MediaInfo, content io.Reader) (models.MediaInfo, error) {
	f, err := s.files.put(ctx, fileMetadata{
		OwnerID:     info.UserID,
		Type:        string(info.Type),
		ContentType: info.ContentType,
	}, info.Filename, content)
	if err != nil {
		return models.MediaInfo{}, err
	}
	return toMediaInfo(f), nil
}

func (s *GridFSMediaStore) Stat(ctx context.Context, userID string, mediaType models.MediaType) (models.MediaInfo, error) {
	f, ok, err := s.files.latest(ctx, userID, string(mediaType))
	if err != nil {
		return models.MediaInfo{}, err
	}
	if !ok {
		return models.MediaInfo{}, models.ErrMediaNotFound
	}
	return toMediaInfo(f), nil
}

func (s *GridFSMediaStore) Open(ctx context.Context, userID string, mediaType models.MediaType) (models.MediaInfo, io.ReadCloser, error) {
	f, ok, err := s.files.latest(ctx, userID, string(mediaType))
	if err != nil {
		return models.MediaInfo{}, nil, err
	}
	if !ok {
		return models.MediaInfo{}, nil, models.ErrMediaNotFound
	}
	rc, err := s.files.open(ctx, f.ID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return models.MediaInfo{}, nil, models.ErrMediaNotFound
	}
	if err != nil {
		return models.MediaInfo{}, nil, err
	}
	return toMediaInfo(f), rc, nil
}
