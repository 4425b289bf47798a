package master

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestService(t *testing.T, eng *fakeEngine) *Service {
	t.Helper()
	return NewService(eng, NewMemoryStore(0), t.TempDir())
}

func writeInput(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateMaster(t *testing.T) {
	eng := &fakeEngine{duration: 200, measureDiag: measureDiag, renderDiag: renderDiag}
	svc := newTestService(t, eng)

	req := testRequest()
	req.InputPath = writeInput(t, 4096)
	req.Title = "My Track (final mix)"
	req.Tier = TierPlus

	m, err := svc.CreateMaster(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateMaster() error = %v", err)
	}

	if m.Record.ID == "" {
		t.Error("record should carry an id")
	}
	if m.Record.Title != "My_Track_final_mix" {
		t.Errorf("Title = %q, want sanitized name", m.Record.Title)
	}
	if !m.Result.TwoPass {
		t.Error("expected two-pass render")
	}

	// Decode, measure, render
	if len(eng.invocations) != 3 {
		t.Fatalf("engine ran %d times, want 3", len(eng.invocations))
	}
	decode := eng.invocations[0]
	if decode.Filter != "" {
		t.Error("decode run should carry no filter")
	}
	if !strings.Contains(decode.OutputPath, "clean_") {
		t.Errorf("decode output = %q, want clean base path", decode.OutputPath)
	}

	// Both artifacts exist and the record is retrievable
	if _, err := os.Stat(m.Record.CleanPath); err != nil {
		t.Errorf("clean base missing: %v", err)
	}
	if _, err := os.Stat(m.Record.MasterPath); err != nil {
		t.Errorf("master artifact missing: %v", err)
	}
	if _, err := svc.Get(m.Record.ID); err != nil {
		t.Errorf("Get() error = %v", err)
	}
}

func TestCreateMasterFreeTierClips(t *testing.T) {
	eng := &fakeEngine{duration: 200, measureDiag: measureDiag, renderDiag: renderDiag}
	svc := newTestService(t, eng)

	req := testRequest()
	req.InputPath = writeInput(t, 4096)
	req.Tier = TierFree

	m, err := svc.CreateMaster(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateMaster() error = %v", err)
	}

	if !m.Result.Truncated || m.Result.ClipSeconds != FreeClipSeconds {
		t.Errorf("free tier clip = (%d, %v), want (%d, true)",
			m.Result.ClipSeconds, m.Result.Truncated, FreeClipSeconds)
	}
}

func TestCreateMasterRejectsPaidOverDuration(t *testing.T) {
	eng := &fakeEngine{duration: MaxPaidSeconds + 10}
	svc := newTestService(t, eng)

	req := testRequest()
	req.InputPath = writeInput(t, 4096)
	req.Tier = TierPro

	_, err := svc.CreateMaster(context.Background(), req)
	if !errors.Is(err, ErrDurationExceeded) {
		t.Errorf("CreateMaster() error = %v, want ErrDurationExceeded", err)
	}
}

func TestCreateMasterRejectsOversizedInput(t *testing.T) {
	eng := &fakeEngine{duration: 60}
	svc := newTestService(t, eng)

	path := filepath.Join(t.TempDir(), "huge.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	// Sparse file; no need to actually write 100 MiB
	if err := f.Truncate(MaxInputBytes + 1); err != nil {
		t.Fatal(err)
	}
	f.Close()

	req := testRequest()
	req.InputPath = path

	_, err = svc.CreateMaster(context.Background(), req)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("CreateMaster() error = %v, want ErrTooLarge", err)
	}
}

func TestCreateMasterMissingInput(t *testing.T) {
	svc := newTestService(t, &fakeEngine{})

	req := testRequest()
	req.InputPath = "/nonexistent/in.wav"

	_, err := svc.CreateMaster(context.Background(), req)

	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Errorf("CreateMaster() error = %T, want *InputError", err)
	}
}

func TestApply(t *testing.T) {
	eng := &fakeEngine{duration: 200, measureDiag: measureDiag, renderDiag: renderDiag}
	svc := newTestService(t, eng)

	req := testRequest()
	req.InputPath = writeInput(t, 4096)
	req.Tier = TierFree

	created, err := svc.CreateMaster(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateMaster() error = %v", err)
	}

	preset := "heavy"
	target := "club"
	applied, err := svc.Apply(context.Background(), created.Record.ID, ApplyRequest{
		Preset: &preset,
		Target: &target,
		Knobs:  created.Record.Knobs,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if applied.Record.Preset != "heavy" {
		t.Errorf("Preset = %q, want heavy", applied.Record.Preset)
	}
	if applied.Record.Target != "club" {
		t.Errorf("Target = %q, want club", applied.Record.Target)
	}
	// Unchanged fields keep their stored values
	if applied.Record.Intensity != created.Record.Intensity {
		t.Errorf("Intensity = %d, want stored %d", applied.Record.Intensity, created.Record.Intensity)
	}

	// Re-render pulls from the clean base, not the original upload
	rerender := eng.invocations[len(eng.invocations)-1]
	if rerender.InputPath != created.Record.CleanPath {
		t.Errorf("re-render input = %q, want clean base %q", rerender.InputPath, created.Record.CleanPath)
	}
	// Free-tier clip is re-applied and reported like a fresh render
	if rerender.ClipSeconds != FreeClipSeconds {
		t.Errorf("re-render ClipSeconds = %d, want %d", rerender.ClipSeconds, FreeClipSeconds)
	}
	if !applied.Result.Truncated || applied.Result.ClipSeconds != FreeClipSeconds {
		t.Errorf("re-render clip state = (%d, %v), want (%d, true)",
			applied.Result.ClipSeconds, applied.Result.Truncated, FreeClipSeconds)
	}
	// Club target flows into the normalizer
	if !strings.Contains(rerender.Filter, "loudnorm=I=-8.0") {
		t.Errorf("re-render filter missing club target: %s", rerender.Filter)
	}
}

func TestApplyShortFreeBaseNotTruncated(t *testing.T) {
	eng := &fakeEngine{duration: 20, measureDiag: measureDiag, renderDiag: renderDiag}
	svc := newTestService(t, eng)

	req := testRequest()
	req.InputPath = writeInput(t, 4096)
	req.Tier = TierFree

	created, err := svc.CreateMaster(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateMaster() error = %v", err)
	}

	applied, err := svc.Apply(context.Background(), created.Record.ID, ApplyRequest{
		Knobs: created.Record.Knobs,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if applied.Result.Truncated {
		t.Error("a base shorter than the clip window should not report truncation")
	}
	if applied.Result.ClipSeconds != FreeClipSeconds {
		t.Errorf("ClipSeconds = %d, want %d", applied.Result.ClipSeconds, FreeClipSeconds)
	}
}

func TestApplyUnknownID(t *testing.T) {
	svc := newTestService(t, &fakeEngine{})

	_, err := svc.Apply(context.Background(), "missing", ApplyRequest{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Apply() error = %v, want ErrNotFound", err)
	}
}

func TestPreview(t *testing.T) {
	eng := &fakeEngine{duration: 200, measureDiag: measureDiag, renderDiag: renderDiag}
	svc := newTestService(t, eng)

	req := testRequest()
	req.InputPath = writeInput(t, 4096)
	req.Tier = TierPro

	created, err := svc.CreateMaster(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateMaster() error = %v", err)
	}

	path, err := svc.Preview(context.Background(), created.Record.ID, 300)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	// Length is clamped, not rejected
	if !strings.HasSuffix(path, "_60.wav") {
		t.Errorf("preview path = %q, want clamp to %ds", path, PreviewMaxSeconds)
	}

	excerpt := eng.invocations[len(eng.invocations)-1]
	if excerpt.InputPath != created.Record.MasterPath {
		t.Errorf("preview input = %q, want the master artifact", excerpt.InputPath)
	}
	if excerpt.ClipSeconds != PreviewMaxSeconds {
		t.Errorf("preview ClipSeconds = %d, want %d", excerpt.ClipSeconds, PreviewMaxSeconds)
	}
	if excerpt.Filter != "" {
		t.Error("preview should re-encode without filtering")
	}
}

func TestPreviewUnknownID(t *testing.T) {
	svc := newTestService(t, &fakeEngine{})

	_, err := svc.Preview(context.Background(), "missing", 30)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Preview() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesArtifacts(t *testing.T) {
	eng := &fakeEngine{duration: 200, measureDiag: measureDiag, renderDiag: renderDiag}
	svc := newTestService(t, eng)

	req := testRequest()
	req.InputPath = writeInput(t, 4096)

	created, err := svc.CreateMaster(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateMaster() error = %v", err)
	}

	svc.Delete(created.Record.ID)

	if _, err := svc.Get(created.Record.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(created.Record.CleanPath); !os.IsNotExist(err) {
		t.Error("clean base should be removed")
	}
	if _, err := os.Stat(created.Record.MasterPath); !os.IsNotExist(err) {
		t.Error("master artifact should be removed")
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Track", "My_Track"},
		{"mix-v2.wav", "mix-v2.wav"},
		{"weird/!@#chars", "weirdchars"},
		{"../../etc/passwd", "etcpasswd"},
		{"...", "audio"},
		{"", "audio"},
		{"  spaced  ", "spaced"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeName(tt.in); got != tt.want {
				t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
