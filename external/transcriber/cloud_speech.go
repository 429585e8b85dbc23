package transcriber

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"google.golang.org/api/option"

	"github.com/miraihr/mirai/internal/audio"
	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/transcriber"
)

const (
	speechAPIEndpointPort = 443
	normalizedSampleRate  = 16000
	normalizedChannels    = 1
)

// CloudSpeechTranscriber recognizes finished clips with the Google Cloud
// Speech-to-Text v2 synchronous API. Uploads are normalized to 16 kHz mono
// PCM16 first so the explicit decoding config always matches.
type CloudSpeechTranscriber struct {
	projectID       string
	credentialsJSON string
	location        string
	model           string
	defaultLanguage string
	normalizer      audio.Normalizer
}

func NewCloudSpeechTranscriber(cfg *config.Config, normalizer audio.Normalizer) transcriber.Transcriber {
	return &CloudSpeechTranscriber{
		projectID:       cfg.GoogleCloudProjectID,
		credentialsJSON: cfg.GoogleCloudCredentialsJSON,
		location:        strings.TrimSpace(cfg.GoogleCloudSpeechLocation),
		model:           strings.TrimSpace(cfg.GoogleCloudSpeechModel),
		defaultLanguage: cfg.DefaultLanguage,
		normalizer:      normalizer,
	}
}

func (t *CloudSpeechTranscriber) Name() string {
	return config.TranscriberGoogle
}

func (t *CloudSpeechTranscriber) Transcribe(ctx context.Context, clip transcriber.Clip) (string, error) {
	normalized, err := t.normalizer.Normalize(clip.Data)
	if err != nil {
		return "", fmt.Errorf("normalize audio: %w", err)
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(t.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return "", fmt.Errorf("detect credentials: %w", err)
	}

	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if t.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", t.location, speechAPIEndpointPort)))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = client.Close()
	}()

	language := clip.Language
	if language == "" {
		language = t.defaultLanguage
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location),
		Config: &speechpb.RecognitionConfig{
			Model:         t.model,
			LanguageCodes: []string{bcp47(language)},
			DecodingConfig: &speechpb.RecognitionConfig_ExplicitDecodingConfig{
				ExplicitDecodingConfig: &speechpb.ExplicitDecodingConfig{
					Encoding:          speechpb.ExplicitDecodingConfig_LINEAR16,
					SampleRateHertz:   normalizedSampleRate,
					AudioChannelCount: normalizedChannels,
				},
			},
			Features: &speechpb.RecognitionFeatures{},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: normalized.PCM},
	})
	if err != nil {
		return "", fmt.Errorf("cloud speech recognize: %w", err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		if len(result.GetAlternatives()) == 0 {
			continue
		}
		parts = append(parts, strings.TrimSpace(result.GetAlternatives()[0].GetTranscript()))
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return "", fmt.Errorf("cloud speech recognize: empty transcription")
	}
	return text, nil
}

// bcp47 widens bare ISO 639-1 codes to the region-tagged form the v2 API expects.
func bcp47(language string) string {
	if strings.Contains(language, "-") {
		return language
	}
	switch strings.ToLower(language) {
	case "id":
		return "id-ID"
	case "en":
		return "en-US"
	case "ja":
		return "ja-JP"
	default:
		return language
	}
}
