package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore persists blobs as GridFS files. GridFS internally splits each
// file into 255 KB pieces, but that is invisible here: one Put is one file,
// and the chunk metadata this subsystem cares about lives in the file's
// metadata document.
type GridFSStore struct {
	client *mongo.Client
	bucket *gridfs.Bucket
}

const gridfsCloseTimeout = 5 * time.Second

// NewGridFSStore connects to MongoDB and opens a GridFS bucket on the named
// database. The returned store owns the client; release it with Close.
func NewGridFSStore(ctx context.Context, uri, database string) (*GridFSStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	bucket, err := gridfs.NewBucket(client.Database(database))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &GridFSStore{client: client, bucket: bucket}, nil
}

// NewGridFSStoreFromDatabase opens a bucket on a database handle whose
// lifecycle the caller owns. Close becomes a no-op.
func NewGridFSStoreFromDatabase(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, err
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (gs *GridFSStore) Put(ctx context.Context, content []byte, filename string, metadata map[string]any) (string, error) {
	meta := EnsureCreatedAt(CloneMetadata(metadata), time.Now().UTC())
	gs.applyWriteDeadline(ctx)
	opts := options.GridFSUpload().SetMetadata(bson.M(meta))
	id, err := gs.bucket.UploadFromStream(filename, bytes.NewReader(content), opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload of %q: %w", filename, err)
	}
	return id.Hex(), nil
}

func (gs *GridFSStore) Get(ctx context.Context, blobID string) ([]byte, error) {
	oid, err := primitive.ObjectIDFromHex(blobID)
	if err != nil {
		return nil, fmt.Errorf("invalid blob id %q: %w", blobID, err)
	}
	gs.applyReadDeadline(ctx)
	var buf bytes.Buffer
	if _, err := gs.bucket.DownloadToStream(oid, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
		}
		return nil, fmt.Errorf("gridfs download of %s: %w", blobID, err)
	}
	return buf.Bytes(), nil
}

func (gs *GridFSStore) List(ctx context.Context, filter map[string]any) ([]BlobInfo, error) {
	query := bson.M{}
	for key, value := range filter {
		query["metadata."+key] = value
	}
	gs.applyReadDeadline(ctx)
	cursor, err := gs.bucket.Find(query)
	if err != nil {
		return nil, fmt.Errorf("gridfs find: %w", err)
	}
	defer cursor.Close(ctx)

	var infos []BlobInfo
	for cursor.Next(ctx) {
		var file gridfs.File
		if err := cursor.Decode(&file); err != nil {
			return nil, err
		}
		meta := map[string]any{}
		if len(file.Metadata) > 0 {
			if err := bson.Unmarshal(file.Metadata, &meta); err != nil {
				return nil, fmt.Errorf("decode metadata of %v: %w", file.ID, err)
			}
		}
		infos = append(infos, BlobInfo{
			ID:         fileIDString(file.ID),
			Filename:   file.Name,
			Length:     file.Length,
			UploadDate: file.UploadDate,
			Metadata:   meta,
		})
	}
	return infos, cursor.Err()
}

func (gs *GridFSStore) Delete(ctx context.Context, blobID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(blobID)
	if err != nil {
		return false, fmt.Errorf("invalid blob id %q: %w", blobID, err)
	}
	gs.applyWriteDeadline(ctx)
	if err := gs.bucket.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("gridfs delete of %s: %w", blobID, err)
	}
	return true, nil
}

// EnsureIndexes creates the metadata.content_id index that chunk-set
// discovery queries rely on.
func (gs *GridFSStore) EnsureIndexes(ctx context.Context) error {
	files := gs.bucket.GetFilesCollection()
	_, err := files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "metadata." + MetaContentID, Value: 1}},
		Options: options.Index().SetName("metadata_content_id"),
	})
	return err
}

// The v1 driver's gridfs bucket is deadline-based rather than
// context-based; map a context deadline onto it when one is set.
func (gs *GridFSStore) applyReadDeadline(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = gs.bucket.SetReadDeadline(deadline)
	}
}

func (gs *GridFSStore) applyWriteDeadline(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = gs.bucket.SetWriteDeadline(deadline)
	}
}

func fileIDString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Close releases the underlying MongoDB client, if this store owns one.
func (gs *GridFSStore) Close() error {
	if gs == nil || gs.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), gridfsCloseTimeout)
	defer cancel()
	return gs.client.Disconnect(ctx)
}
