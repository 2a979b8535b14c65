package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/innometrics/innometrics-backend/internal/config"
	domain "github.com/innometrics/innometrics-backend/internal/domain/bootstrap"
)

// Repository defines persistence operations for the build record.
type Repository interface {
	Load(ctx context.Context) (*domain.Record, error)
	Save(ctx context.Context, record *domain.Record) error
	Delete(ctx context.Context) error
}

// FileRepository keeps the build record in a JSON file.
type FileRepository struct {
	// path is the filesystem location of the record.
	path string
	// mu protects concurrent access to the record file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no build has been recorded.
	ErrNotFound = errors.New("build record not found")
	// errMalformed is returned when a record lacks a required field.
	errMalformed = errors.New("malformed build record")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the record location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the record from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read build record: %w", err)
	}

	var message structpb.Struct
	if err = protojson.Unmarshal(contents, &message); err != nil {
		return nil, fmt.Errorf("decode build record: %w", err)
	}

	return fromProto(&message)
}

// Save writes the record to a temporary file and renames it into place, so a
// reader never observes a partial record.
func (r *FileRepository) Save(_ context.Context, record *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, err := toProto(record)
	if err != nil {
		return fmt.Errorf("encode build record: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode build record: %w", err)
	}

	temporary := r.path + ".tmp"
	if err = os.WriteFile(temporary, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write build record: %w", err)
	}

	if err = os.Rename(temporary, r.path); err != nil {
		_ = os.Remove(temporary)

		return fmt.Errorf("write build record: %w", err)
	}

	return nil
}

// Delete removes the record; a missing record is not an error.
func (r *FileRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete build record: %w", err)
	}

	return nil
}

// toProto converts the domain record into a structpb.Struct.
func toProto(record *domain.Record) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"work_dir":             record.Layout.Root,
		"root_variable":        record.Layout.RootVariable,
		"search_path_variable": record.Layout.SearchPathVariable,
		"search_path_subdirs":  toAnySlice(record.Layout.SearchPathSubdirs),
		"interpreter":          record.Interpreter,
		"entry_point":          record.EntryPoint,
		"toolchain":            record.Toolchain,
		"manifest":             record.Manifest,
		"manifest_sha512":      record.ManifestChecksum,
		"requirements":         toAnySlice(record.Requirements),
		"files":                record.Files,
		"built_at":             record.BuiltAt.UTC().Format(time.RFC3339Nano),
	})
}

// fromProto converts a structpb.Struct back into the domain record.
func fromProto(message *structpb.Struct) (*domain.Record, error) {
	fields := message.GetFields()

	text := func(key string) string {
		return fields[key].GetStringValue()
	}

	list := func(key string) []string {
		values := fields[key].GetListValue().GetValues()
		result := make([]string, 0, len(values))

		for _, value := range values {
			result = append(result, value.GetStringValue())
		}

		return result
	}

	record := &domain.Record{
		Layout: domain.Layout{
			Root:               text("work_dir"),
			RootVariable:       text("root_variable"),
			SearchPathVariable: text("search_path_variable"),
			SearchPathSubdirs:  list("search_path_subdirs"),
		},
		Interpreter:      text("interpreter"),
		EntryPoint:       text("entry_point"),
		Toolchain:        text("toolchain"),
		Manifest:         text("manifest"),
		ManifestChecksum: text("manifest_sha512"),
		Requirements:     list("requirements"),
		Files:            int(fields["files"].GetNumberValue()),
	}

	if record.Layout.Root == "" || record.EntryPoint == "" {
		return nil, errMalformed
	}

	if builtAt := text("built_at"); builtAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, builtAt)
		if err != nil {
			return nil, fmt.Errorf("built_at: %w", err)
		}

		record.BuiltAt = parsed
	}

	return record, nil
}

func toAnySlice(values []string) []any {
	result := make([]any, 0, len(values))
	for _, value := range values {
		result = append(result, value)
	}

	return result
}
