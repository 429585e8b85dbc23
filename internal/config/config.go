package config

import "fmt"

const (
	TranscriberOpenAI      = "openai"
	TranscriberHuggingFace = "huggingface"
	TranscriberGoogle      = "google"

	SpeechOpenAI     = "openai"
	SpeechElevenLabs = "elevenlabs"
)

type Config struct {
	Env      string
	BindAddr string

	TranscriptionService string
	TTSService           string
	DefaultLanguage      string

	OpenAIAPIKey          string
	OpenAIChatModel       string
	OpenAITranscribeModel string
	OpenAITTSModel        string
	OpenAITTSVoice        string

	HuggingFaceToken    string
	HuggingFaceModel    string
	HuggingFaceEndpoint string

	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string

	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string

	AudioDir            string
	WelcomingDir        string
	RoadmapDir          string
	InterviewScriptPath string

	SessionExpiryMin    int
	AudioRetentionSec   int
	MaxUploadBytes      int64
	MaxAudioDurationSec int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	switch c.TranscriptionService {
	case TranscriberOpenAI:
	case TranscriberHuggingFace:
		if c.HuggingFaceToken == "" {
			return fmt.Errorf("HUGGINGFACE_TOKEN is required when TRANSCRIPTION_SERVICE=huggingface")
		}
	case TranscriberGoogle:
		if c.GoogleCloudProjectID == "" || c.GoogleCloudCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID and GOOGLE_CLOUD_CREDENTIALS_JSON are required when TRANSCRIPTION_SERVICE=google")
		}
	default:
		return fmt.Errorf("TRANSCRIPTION_SERVICE must be 'openai', 'huggingface' or 'google', got %q", c.TranscriptionService)
	}
	switch c.TTSService {
	case SpeechOpenAI:
	case SpeechElevenLabs:
		if c.ElevenLabsAPIKey == "" {
			return fmt.Errorf("ELEVENLABS_API_KEY is required when TTS_SERVICE=elevenlabs")
		}
	default:
		return fmt.Errorf("TTS_SERVICE must be 'openai' or 'elevenlabs', got %q", c.TTSService)
	}
	if c.SessionExpiryMin <= 0 {
		return fmt.Errorf("SESSION_EXPIRY_MIN must be positive, got %d", c.SessionExpiryMin)
	}
	if c.AudioRetentionSec <= 0 {
		return fmt.Errorf("AUDIO_RETENTION_SEC must be positive, got %d", c.AudioRetentionSec)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxAudioDurationSec <= 0 {
		return fmt.Errorf("MAX_AUDIO_DURATION_SEC must be positive, got %d", c.MaxAudioDurationSec)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
		{name: "TRANSCRIPTION_SERVICE", value: c.TranscriptionService},
		{name: "TTS_SERVICE", value: c.TTSService},
		{name: "DEFAULT_LANGUAGE", value: c.DefaultLanguage},
		{name: "AUDIO_DIR", value: c.AudioDir},
		{name: "WELCOMING_DIR", value: c.WelcomingDir},
		{name: "ROADMAP_DIR", value: c.RoadmapDir},
		{name: "INTERVIEW_SCRIPT_PATH", value: c.InterviewScriptPath},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
