package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	internalconfig "github.com/miraihr/mirai/internal/config"
)

type envConfig struct {
	Env      string `env:"ENV" envDefault:"production"`
	BindAddr string `env:"BIND_ADDR" envDefault:":8000"`

	TranscriptionService string `env:"TRANSCRIPTION_SERVICE" envDefault:"huggingface"`
	TTSService           string `env:"TTS_SERVICE" envDefault:"openai"`
	DefaultLanguage      string `env:"DEFAULT_LANGUAGE" envDefault:"id"`

	OpenAIAPIKey          string `env:"OPENAI_API_KEY,required"`
	OpenAIChatModel       string `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4o-mini"`
	OpenAITranscribeModel string `env:"OPENAI_TRANSCRIBE_MODEL" envDefault:"whisper-1"`
	OpenAITTSModel        string `env:"OPENAI_TTS_MODEL" envDefault:"tts-1"`
	OpenAITTSVoice        string `env:"OPENAI_TTS_VOICE" envDefault:"alloy"`

	HuggingFaceToken    string `env:"HUGGINGFACE_TOKEN"`
	HuggingFaceModel    string `env:"HUGGINGFACE_MODEL" envDefault:"openai/whisper-small"`
	HuggingFaceEndpoint string `env:"HUGGINGFACE_ENDPOINT" envDefault:"https://api-inference.huggingface.co"`

	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `env:"ELEVENLABS_VOICE_ID" envDefault:"3mAVBNEqop5UbHtD8oxQ"`

	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"asia-southeast1"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`

	AudioDir            string `env:"AUDIO_DIR" envDefault:"./audios"`
	WelcomingDir        string `env:"WELCOMING_DIR" envDefault:"./audios/welcoming"`
	RoadmapDir          string `env:"ROADMAP_DIR" envDefault:"./roadmaps"`
	InterviewScriptPath string `env:"INTERVIEW_SCRIPT_PATH" envDefault:"./config/interview.yaml"`

	SessionExpiryMin    int   `env:"SESSION_EXPIRY_MIN" envDefault:"60"`
	AudioRetentionSec   int   `env:"AUDIO_RETENTION_SEC" envDefault:"300"`
	MaxUploadBytes      int64 `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
	MaxAudioDurationSec int   `env:"MAX_AUDIO_DURATION_SEC" envDefault:"300"`
}

func Load() (*internalconfig.Config, error) {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		BindAddr:                   raw.BindAddr,
		TranscriptionService:       raw.TranscriptionService,
		TTSService:                 raw.TTSService,
		DefaultLanguage:            raw.DefaultLanguage,
		OpenAIAPIKey:               raw.OpenAIAPIKey,
		OpenAIChatModel:            raw.OpenAIChatModel,
		OpenAITranscribeModel:      raw.OpenAITranscribeModel,
		OpenAITTSModel:             raw.OpenAITTSModel,
		OpenAITTSVoice:             raw.OpenAITTSVoice,
		HuggingFaceToken:           raw.HuggingFaceToken,
		HuggingFaceModel:           raw.HuggingFaceModel,
		HuggingFaceEndpoint:        raw.HuggingFaceEndpoint,
		ElevenLabsAPIKey:           raw.ElevenLabsAPIKey,
		ElevenLabsVoiceID:          raw.ElevenLabsVoiceID,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		AudioDir:                   raw.AudioDir,
		WelcomingDir:               raw.WelcomingDir,
		RoadmapDir:                 raw.RoadmapDir,
		InterviewScriptPath:        raw.InterviewScriptPath,
		SessionExpiryMin:           raw.SessionExpiryMin,
		AudioRetentionSec:          raw.AudioRetentionSec,
		MaxUploadBytes:             raw.MaxUploadBytes,
		MaxAudioDurationSec:        raw.MaxAudioDurationSec,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
