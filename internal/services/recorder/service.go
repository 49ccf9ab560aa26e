// Package recorder writes alert-triggered video clips to disk via FFmpeg.
// A rolling pre-roll buffer captures the seconds leading up to the alert so
// the clip shows what caused it.
package recorder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"roadhud-go/internal/config"
	"roadhud-go/internal/models"
)

// clip is one in-flight recording
type clip struct {
	process  *exec.Cmd
	stdin    io.WriteCloser
	path     string
	reason   string
	deadline time.Time
	frames   int64
}

// Service buffers recent composed frames and turns them into clips when an
// alert fires. Implements the frame sink interface of the onroad container.
type Service struct {
	cfg *config.Config

	mu      sync.Mutex
	preRoll []*models.ComposedFrame // Ring of recent frames, oldest first
	maxPre  int
	active  *clip

	finalizing   sync.WaitGroup
	clipsWritten int64
}

// NewService creates a new clip recorder
func NewService(cfg *config.Config) *Service {
	fps := cfg.NominalFPS
	if fps <= 0 {
		fps = 30
	}
	// Pre-roll covers the first half of the clip, post-roll the rest
	maxPre := fps * cfg.ClipSeconds / 2
	if maxPre < 1 {
		maxPre = 1
	}

	s := &Service{
		cfg:    cfg,
		maxPre: maxPre,
	}

	if cfg.RecordingEnabled {
		log.Info().
			Str("output_dir", cfg.VideoOutputDir).
			Int("clip_seconds", cfg.ClipSeconds).
			Int("pre_roll_frames", maxPre).
			Int("max_clips", cfg.VideoMaxClips).
			Msg("Clip recorder initialized")
	}
	return s
}

// PublishFrame feeds the pre-roll buffer and, while a clip is active,
// streams the frame to FFmpeg
func (s *Service) PublishFrame(f *models.ComposedFrame) error {
	if !s.cfg.RecordingEnabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.preRoll = append(s.preRoll, f)
	if len(s.preRoll) > s.maxPre {
		s.preRoll = s.preRoll[1:]
	}

	if s.active == nil {
		return nil
	}

	if time.Now().After(s.active.deadline) {
		s.finishClipLocked()
		return nil
	}

	if err := s.writeFrameLocked(f); err != nil {
		log.Warn().Err(err).Str("clip", s.active.path).Msg("Clip write failed, abandoning clip")
		s.finishClipLocked()
	}
	return nil
}

// TriggerClip starts a recording unless one is already running
func (s *Service) TriggerClip(reason string) {
	if !s.cfg.RecordingEnabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		log.Debug().Str("reason", reason).Msg("Clip already recording, trigger ignored")
		return
	}

	if err := s.startClipLocked(reason); err != nil {
		log.Error().Err(err).Str("reason", reason).Msg("Failed to start clip")
	}
}

// Recording reports whether a clip is in flight
func (s *Service) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// ClipsWritten returns the number of completed clips
func (s *Service) ClipsWritten() int64 {
	return atomic.LoadInt64(&s.clipsWritten)
}

// Shutdown finalizes any in-flight clip and waits for FFmpeg to finish
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.active != nil {
		s.finishClipLocked()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.finalizing.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	log.Info().Int64("clips_written", atomic.LoadInt64(&s.clipsWritten)).Msg("Clip recorder shutdown")
	return nil
}

func (s *Service) startClipLocked(reason string) error {
	if len(s.preRoll) == 0 {
		return fmt.Errorf("no frames buffered yet")
	}

	if err := os.MkdirAll(s.cfg.VideoOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	first := s.preRoll[len(s.preRoll)-1]
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.cfg.VideoOutputDir, fmt.Sprintf("clip_%s.mp4", timestamp))

	fps := s.cfg.NominalFPS
	if fps <= 0 {
		fps = 30
	}

	cmd := exec.Command("ffmpeg", ffmpegArgs(first.Width, first.Height, fps, path)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	postRoll := time.Duration(s.cfg.ClipSeconds)*time.Second - time.Duration(len(s.preRoll))*time.Second/time.Duration(fps)
	if postRoll < time.Second {
		postRoll = time.Second
	}

	s.active = &clip{
		process:  cmd,
		stdin:    stdin,
		path:     path,
		reason:   reason,
		deadline: time.Now().Add(postRoll),
	}

	// Flush the pre-roll so the clip starts before the alert
	for _, f := range s.preRoll {
		if err := s.writeFrameLocked(f); err != nil {
			log.Warn().Err(err).Msg("Pre-roll write failed")
			break
		}
	}

	log.Info().
		Str("clip", path).
		Str("reason", reason).
		Int("pre_roll_frames", len(s.preRoll)).
		Dur("post_roll", postRoll).
		Msg("🎬 Clip recording started")
	return nil
}

func (s *Service) writeFrameLocked(f *models.ComposedFrame) error {
	expected := f.Width * f.Height * 3
	if len(f.Data) != expected {
		// Skip malformed frames rather than corrupting the stream
		return nil
	}
	if _, err := s.active.stdin.Write(f.Data); err != nil {
		return fmt.Errorf("failed to write frame to ffmpeg: %w", err)
	}
	s.active.frames++
	return nil
}

// finishClipLocked detaches the active clip; the encoder wait must not
// stall the paint goroutine behind the service mutex
func (s *Service) finishClipLocked() {
	c := s.active
	s.active = nil
	s.finalizing.Add(1)
	go s.finalizeClip(c)
}

func (s *Service) finalizeClip(c *clip) {
	defer s.finalizing.Done()

	_ = c.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- c.process.Wait() }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		_ = c.process.Process.Kill()
		log.Warn().Str("clip", c.path).Msg("Force killed ffmpeg while finishing clip")
	}

	atomic.AddInt64(&s.clipsWritten, 1)
	log.Info().
		Str("clip", c.path).
		Str("reason", c.reason).
		Int64("frames", c.frames).
		Msg("Clip recording finished")

	if err := s.cleanupOldClips(); err != nil {
		log.Warn().Err(err).Msg("Clip cleanup failed")
	}
}

// ffmpegArgs builds the encoder invocation for raw BGR24 frames on stdin
func ffmpegArgs(width, height, fps int, path string) []string {
	return []string{
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-movflags", "+faststart",
		"-f", "mp4",
		"-loglevel", "warning",
		path,
	}
}

// cleanupOldClips keeps at most VideoMaxClips files, oldest deleted first
func (s *Service) cleanupOldClips() error {
	if s.cfg.VideoMaxClips <= 0 {
		return nil
	}

	pattern := filepath.Join(s.cfg.VideoOutputDir, "clip_*.mp4")
	clips, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to list clips: %w", err)
	}
	if len(clips) <= s.cfg.VideoMaxClips {
		return nil
	}

	type clipInfo struct {
		path    string
		modTime time.Time
	}
	infos := make([]clipInfo, 0, len(clips))
	for _, path := range clips {
		if stat, err := os.Stat(path); err == nil {
			infos = append(infos, clipInfo{path: path, modTime: stat.ModTime()})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].modTime.Before(infos[j].modTime) })

	removed := 0
	for i := 0; i < len(infos)-s.cfg.VideoMaxClips; i++ {
		if err := os.Remove(infos[i].path); err != nil {
			log.Warn().Err(err).Str("clip", infos[i].path).Msg("Failed to remove old clip")
		} else {
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Int("kept", s.cfg.VideoMaxClips).Msg("Cleaned up old clips")
	}
	return nil
}
