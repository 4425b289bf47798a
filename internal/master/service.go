package master

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warmaster/warmaster/internal/chain"
	"github.com/warmaster/warmaster/internal/engine"
)

// Service ties the pipeline to a metadata store and a working
// directory. It owns the master lifecycle: create, re-apply knobs,
// preview, delete.
type Service struct {
	Pipeline *Pipeline
	Store    Store
	WorkDir  string
}

// NewService creates a Service rendering into workDir.
func NewService(eng Engine, store Store, workDir string) *Service {
	return &Service{
		Pipeline: &Pipeline{Engine: eng},
		Store:    store,
		WorkDir:  workDir,
	}
}

// Master pairs a stored record with the render result that produced
// its current artifact.
type Master struct {
	Record Record
	Result *Result
}

// CreateMaster runs the full flow for a fresh source: validate size,
// gate duration, decode to the clean PCM base, render the master, and
// store the record. The clean base is retained so Apply can re-render
// without the original file.
func (s *Service) CreateMaster(ctx context.Context, req Request) (*Master, error) {
	info, err := os.Stat(req.InputPath)
	if err != nil {
		return nil, &InputError{Path: req.InputPath, Err: err}
	}
	if info.Size() > MaxInputBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}

	duration, err := s.Pipeline.Engine.Duration(ctx, req.InputPath)
	if err != nil {
		return nil, &InputError{Path: req.InputPath, Err: err}
	}
	gate, err := GateDuration(req.Tier, duration)
	if err != nil {
		return nil, err
	}

	id := newID()
	cleanPath := filepath.Join(s.WorkDir, "clean_"+id+".wav")
	masterPath := filepath.Join(s.WorkDir, "master_"+id+".wav")

	// Decode to the canonical PCM base first. This both validates the
	// source and leaves a stable input for later knob re-application.
	s.Pipeline.progress(1, "Decoding", 0)
	if _, err := s.Pipeline.Engine.Run(ctx, engine.Invocation{
		InputPath:  req.InputPath,
		OutputPath: cleanPath,
	}); err != nil {
		discard(cleanPath)
		return nil, &InputError{Path: req.InputPath, Err: err}
	}
	s.Pipeline.progress(1, "Decoding", 1)

	result, err := s.Pipeline.Render(ctx, req, cleanPath, masterPath, gate)
	if err != nil {
		discard(cleanPath)
		return nil, err
	}

	rec := Record{
		ID:         id,
		Title:      SafeName(firstNonEmpty(req.Title, filepath.Base(req.InputPath))),
		Preset:     req.Preset,
		Intensity:  chain.ClampIntensity(req.Intensity),
		Knobs:      req.Knobs.Clamped(),
		Target:     req.Target,
		Tier:       req.Tier,
		CreatedAt:  time.Now().UTC(),
		CleanPath:  cleanPath,
		MasterPath: masterPath,
	}
	s.Store.Put(rec)

	return &Master{Record: rec, Result: result}, nil
}

// ApplyRequest carries replacement controls for an existing master.
// Nil fields keep the stored value; knobs are always replaced as a
// set, matching how a control surface submits them.
type ApplyRequest struct {
	Preset    *string
	Intensity *float64
	Target    *string
	Knobs     chain.Knobs
}

// Apply re-renders an existing master from its stored clean base with
// new controls, overwriting the previous artifact and updating the
// record.
func (s *Service) Apply(ctx context.Context, id string, apply ApplyRequest) (*Master, error) {
	rec, ok := s.Store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if _, err := os.Stat(rec.CleanPath); err != nil {
		return nil, &InputError{Path: rec.CleanPath, Err: errors.New("clean base missing, re-master from source")}
	}

	req := Request{
		InputPath: rec.CleanPath,
		Title:     rec.Title,
		Preset:    rec.Preset,
		Intensity: float64(rec.Intensity),
		Knobs:     apply.Knobs,
		Target:    rec.Target,
		Tier:      rec.Tier,
	}
	if apply.Preset != nil {
		req.Preset = chain.ParsePreset(*apply.Preset)
	}
	if apply.Intensity != nil {
		req.Intensity = *apply.Intensity
	}
	if apply.Target != nil {
		req.Target = *apply.Target
	}

	// The clean base already passed the gate at create time; the
	// free-tier clip is re-applied from its actual duration so the
	// result reports truncation the same way CreateMaster does.
	gate := GateDecision{}
	if !rec.Tier.Paid() {
		seconds, err := s.Pipeline.Engine.Duration(ctx, rec.CleanPath)
		if err != nil {
			return nil, &InputError{Path: rec.CleanPath, Err: err}
		}
		gate, _ = GateDuration(rec.Tier, seconds)
	}

	result, err := s.Pipeline.Render(ctx, req, rec.CleanPath, rec.MasterPath, gate)
	if err != nil {
		return nil, err
	}

	rec.Preset = req.Preset
	rec.Intensity = chain.ClampIntensity(req.Intensity)
	rec.Knobs = req.Knobs.Clamped()
	rec.Target = req.Target
	s.Store.Put(rec)

	return &Master{Record: rec, Result: result}, nil
}

// Preview renders a time-bounded excerpt of an existing master. The
// artifact keeps the canonical output format; seconds is clamped to
// the preview bounds.
func (s *Service) Preview(ctx context.Context, id string, seconds int) (string, error) {
	rec, ok := s.Store.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	if _, err := os.Stat(rec.MasterPath); err != nil {
		return "", &InputError{Path: rec.MasterPath, Err: err}
	}

	seconds = ClampPreviewSeconds(seconds)
	previewPath := filepath.Join(s.WorkDir, fmt.Sprintf("preview_%s_%d.wav", id, seconds))

	if _, err := s.Pipeline.Engine.Run(ctx, engine.Invocation{
		InputPath:   rec.MasterPath,
		OutputPath:  previewPath,
		ClipSeconds: seconds,
	}); err != nil {
		discard(previewPath)
		if errors.Is(err, engine.ErrTimeout) {
			return "", fmt.Errorf("preview: %w", err)
		}
		return "", &RenderError{Err: err}
	}

	info, err := os.Stat(previewPath)
	if err != nil || info.Size() < minArtifactBytes {
		discard(previewPath)
		return "", &RenderError{Err: fmt.Errorf("undersized preview %s", previewPath)}
	}
	return previewPath, nil
}

// Get looks up a stored master record.
func (s *Service) Get(id string) (Record, error) {
	rec, ok := s.Store.Get(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// List returns all stored records, newest first.
func (s *Service) List() []Record {
	return s.Store.List()
}

// Delete removes a master's record and artifacts.
func (s *Service) Delete(id string) {
	if rec, ok := s.Store.Get(id); ok {
		discard(rec.CleanPath)
		discard(rec.MasterPath)
	}
	s.Store.Delete(id)
}

// SafeName reduces a user-supplied name to [A-Za-z0-9._- ] with
// spaces collapsed to underscores, falling back to "audio".
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	clean := strings.Trim(b.String(), "._-")
	if clean == "" {
		return "audio"
	}
	return clean
}

// newID returns a short random hex id, matching the artifact naming
// scheme.
func newID() string {
	var buf [4]byte
	rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
