// Package annotstore loads per-video annotation data from JSON files laid
// out as <root>/<videoID>.json.
package annotstore

import (
	"context"
	"fmt"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/user/trackviz/pkg/ports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// annotationFile is the on-disk document for one video.
type annotationFile struct {
	Predictions []ports.AnnotationRecord   `json:"predictions"`
	GroundTruth []ports.AnnotationRecord   `json:"ground_truth"`
	ImagePreds  map[int]ports.FrameScalars `json:"image_predictions"`
	ImageGTs    map[int]ports.FrameScalars `json:"image_ground_truth"`
}

// Store implements ports.AnnotationProvider over a directory of JSON files.
type Store struct {
	root string
	fs   ports.FileSystem
}

// New creates a store rooted at root.
func New(root string, fs ports.FileSystem) *Store {
	return &Store{root: root, fs: fs}
}

// Load reads and parses the annotation file of one video.
func (s *Store) Load(ctx context.Context, videoID string) (ports.VideoAnnotations, error) {
	if err := ctx.Err(); err != nil {
		return ports.VideoAnnotations{}, err
	}

	path := filepath.Join(s.root, videoID+".json")
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return ports.VideoAnnotations{}, fmt.Errorf("read annotations for %s: %w", videoID, err)
	}

	var file annotationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return ports.VideoAnnotations{}, fmt.Errorf("parse annotations for %s: %w", videoID, err)
	}

	return ports.VideoAnnotations{
		Predictions: file.Predictions,
		GroundTruth: file.GroundTruth,
		ImagePreds:  file.ImagePreds,
		ImageGTs:    file.ImageGTs,
	}, nil
}

// Ensure Store implements ports.AnnotationProvider
var _ ports.AnnotationProvider = (*Store)(nil)
