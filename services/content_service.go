package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"brandflowAPI/internal/audio"
	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/records"
	"brandflowAPI/internal/session"
)

const (
	DefaultPlatform = "All Platforms"
	DefaultVoice    = "Puck"

	// Narration is generated from at most this many characters of a field.
	maxSpeechChars = 1000
)

var (
	Platforms = []string{"All Platforms", "LinkedIn", "Instagram", "Twitter/X", "YouTube"}
	Voices    = []string{"Puck", "Charon", "Fenrir", "Kore", "Zephyr"}
)

type AudioTrack string

const (
	TrackScript AudioTrack = "script"
	TrackMain   AudioTrack = "main"
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type ContentService struct {
	store   realtime.Store
	gateway Gateway
	usage   *UsageService
	metrics Metrics
	now     func() time.Time
}

func NewContentService(store realtime.Store, gateway Gateway, usage *UsageService, metrics Metrics) *ContentService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ContentService{
		store:   store,
		gateway: gateway,
		usage:   usage,
		metrics: metrics,
		now:     time.Now,
	}
}

func normalizeContentRequest(req records.GenerateContentRequest) (records.GenerateContentRequest, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return req, fmt.Errorf("prompt: %w", ErrEmptyInput)
	}
	if req.Platform == "" {
		req.Platform = DefaultPlatform
	}
	if !oneOf(req.Platform, Platforms) {
		return req, fmt.Errorf("platform %q: %w", req.Platform, ErrInvalidInput)
	}
	if req.VoiceName == "" {
		req.VoiceName = DefaultVoice
	}
	if !oneOf(req.VoiceName, Voices) {
		return req, fmt.Errorf("voice %q: %w", req.VoiceName, ErrInvalidInput)
	}
	return req, nil
}

// Generate produces a content pack with its marketing image and, while the
// plan's voice budget lasts, narration of the script and main copy. One
// post slot is consumed only when the record is stored.
func (s *ContentService) Generate(ctx context.Context, sess *session.Session, req records.GenerateContentRequest) (*records.ContentHistoryItem, error) {
	req, err := normalizeContentRequest(req)
	if err != nil {
		return nil, err
	}

	reservation, err := s.usage.ReservePost(ctx, sess)
	if err != nil {
		return nil, err
	}

	item, err := s.generate(ctx, reservation, req)
	if err != nil {
		if rerr := reservation.Release(ctx); rerr != nil {
			logging.FromContext(ctx).WithError(rerr).Error("content: usage release failed")
		}
		return nil, err
	}

	if err := reservation.Commit(ctx, item.HasVoice()); err != nil {
		logging.FromContext(ctx).WithError(err).Error("content: usage commit failed")
	}
	return item, nil
}

func (s *ContentService) generate(ctx context.Context, reservation *Reservation, req records.GenerateContentRequest) (*records.ContentHistoryItem, error) {
	log := logging.FromContext(ctx)

	pack, err := s.gateway.ContentPack(ctx, req.Prompt, req.Platform)
	s.metrics.Generation(CapabilityContent, outcome(err))
	if err != nil {
		log.WithError(err).Warn("content: pack generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	withVoice := reservation.ReserveVoice(ctx)

	var image, scriptAudio, mainAudio string
	var g errgroup.Group

	g.Go(func() error {
		img, err := s.gateway.MarketingImage(ctx, pack.VisualPrompt())
		s.metrics.Generation(CapabilityImage, outcome(err))
		if err != nil {
			log.WithError(err).Warn("content: image generation failed")
			return nil
		}
		image = img
		return nil
	})

	if withVoice {
		speak := func(text string, dst *string) func() error {
			return func() error {
				if strings.TrimSpace(text) == "" {
					return nil
				}
				pcm, err := s.gateway.Speech(ctx, truncateRunes(text, maxSpeechChars), req.VoiceName)
				s.metrics.Generation(CapabilitySpeech, outcome(err))
				if err != nil {
					log.WithError(err).Warn("content: speech generation failed")
					return nil
				}
				*dst = pcm
				return nil
			}
		}
		g.Go(speak(pack.VideoScript(), &scriptAudio))
		g.Go(speak(pack.MainContent(), &mainAudio))
	}

	_ = g.Wait()

	item := records.NewContentHistoryItem(s.now().UnixMilli())
	item.Prompt = req.Prompt
	item.Platform = req.Platform
	item.Result = pack
	item.ImageBase64 = strPtr(image)
	item.ScriptAudioBase64 = strPtr(scriptAudio)
	item.MainAudioBase64 = strPtr(mainAudio)
	if item.HasVoice() {
		item.VoiceName = strPtr(req.VoiceName)
	}

	key, err := s.store.Push(ctx, realtime.HistoryPath(reservation.uid), item)
	if err != nil {
		return nil, fmt.Errorf("failed to save content: %w", err)
	}
	item.SetKey(key)

	log.WithFields(logrus.Fields{
		"id":    key,
		"image": item.ImageBase64 != nil,
		"voice": item.HasVoice(),
	}).Info("content generated")
	return item, nil
}

// History returns the caller's content packs, newest first.
func (s *ContentService) History(ctx context.Context, sess *session.Session) ([]*records.ContentHistoryItem, error) {
	var m map[string]*records.ContentHistoryItem
	if err := s.store.Get(ctx, realtime.HistoryPath(sess.UID), &m); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records.NewestFirst(m), nil
}

func (s *ContentService) Get(ctx context.Context, sess *session.Session, id string) (*records.ContentHistoryItem, error) {
	if !realtime.ValidKey(id) {
		return nil, fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	var item *records.ContentHistoryItem
	if err := s.store.Get(ctx, realtime.HistoryPath(sess.UID)+"/"+id, &item); err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("content %q: %w", id, ErrNotFound)
	}
	item.SetKey(id)
	return item, nil
}

// AudioWAV wraps a stored narration track in a WAV container.
func (s *ContentService) AudioWAV(ctx context.Context, sess *session.Session, id string, track AudioTrack) ([]byte, error) {
	pcm, err := s.audioPCM(ctx, sess, id, track)
	if err != nil {
		return nil, err
	}
	return audio.EncodeWAV(pcm), nil
}

// AudioBuffer decodes a stored narration track into normalized samples for
// clients that play it through an audio context instead of a file.
func (s *ContentService) AudioBuffer(ctx context.Context, sess *session.Session, id string, track AudioTrack) (audio.Buffer, error) {
	pcm, err := s.audioPCM(ctx, sess, id, track)
	if err != nil {
		return audio.Buffer{}, err
	}
	return audio.Samples(pcm), nil
}

func (s *ContentService) audioPCM(ctx context.Context, sess *session.Session, id string, track AudioTrack) ([]byte, error) {
	item, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	var encoded *string
	switch track {
	case TrackScript:
		encoded = item.ScriptAudioBase64
	case TrackMain:
		encoded = item.MainAudioBase64
	default:
		return nil, fmt.Errorf("audio track %q: %w", track, ErrInvalidInput)
	}
	if encoded == nil {
		return nil, fmt.Errorf("%s audio for %q: %w", track, id, ErrNotFound)
	}

	pcm, err := audio.DecodeBase64PCM(*encoded)
	if err != nil {
		return nil, fmt.Errorf("stored audio for %q: %w", id, err)
	}
	return pcm, nil
}

// Image returns the decoded marketing image of a stored pack.
func (s *ContentService) Image(ctx context.Context, sess *session.Session, id string) ([]byte, error) {
	item, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if item.ImageBase64 == nil {
		return nil, fmt.Errorf("image for %q: %w", id, ErrNotFound)
	}

	img, err := decodeBase64(*item.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("stored image for %q: %w", id, err)
	}
	return img, nil
}

// Video generates a short clip and returns its MP4 bytes. Clips are not
// stored and do not count against the daily quota.
func (s *ContentService) Video(ctx context.Context, sess *session.Session, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt: %w", ErrEmptyInput)
	}

	clip, err := s.gateway.Video(ctx, prompt)
	s.metrics.Generation(CapabilityVideo, outcome(err))
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("uid", sess.UID).Warn("content: video generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return clip, nil
}
