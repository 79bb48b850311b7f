package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath       = "config.yaml"
	defaultOutputDir        = "./output"
	defaultResolution       = "1080x1920"
	defaultGroqModel        = "llama-3.3-70b-versatile"
	defaultSpeechProvider   = "elevenlabs"
	defaultSpeechModel      = "eleven_multilingual_v2"
	defaultStability        = 0.5
	defaultSimilarity       = 0.75
	defaultSpeed            = 1.0
	defaultImageModel       = "dall-e-3"
	defaultImageSize        = "1024x1792"
	defaultImageQuality     = "standard"
	defaultMaxDirectives    = 10
	defaultTargetSeconds    = 10
	defaultFrameRate        = 24
	defaultPaddingSeconds   = 1
	defaultParallelism      = 2
	defaultImageCallsPerMin = 15

	defaultDocumentaryVoice   = "onwK4e9ZLuTAKqWW03F9"
	defaultUpbeatVoice        = "EXAVITQu4vr4xnSDxMaL"
	defaultPromotionalVoice   = "TxGEqnHWrfWFTfGW9XjX"
	defaultInstructionalVoice = "pNInz6obpgDQGcFmaJgB"
	defaultNarratorVoice      = "JBFqnCBsd6RMkjVDRZzb"
)

type Config struct {
	GroqAPIKey        string
	ElevenLabsAPIKeys []string
	OpenAIAPIKey      string

	Groq   GroqConfig   `yaml:"groq"`
	Speech SpeechConfig `yaml:"speech"`
	Image  ImageConfig  `yaml:"image"`
	Script ScriptConfig `yaml:"script"`
	Voices VoicesConfig `yaml:"voices"`
	Video  VideoConfig  `yaml:"video"`
	Clip   ClipConfig   `yaml:"clip"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type SpeechConfig struct {
	Provider   string  `yaml:"provider"` // "elevenlabs" or "stub"
	Model      string  `yaml:"model"`
	Stability  float64 `yaml:"stability"`
	Similarity float64 `yaml:"similarity"`
	Speed      float64 `yaml:"speed"`
}

type ImageConfig struct {
	Model   string `yaml:"model"`
	Size    string `yaml:"size"`
	Quality string `yaml:"quality"`
}

type ScriptConfig struct {
	MaxDirectives int `yaml:"max_directives"`
	TargetSeconds int `yaml:"target_seconds"`
}

// VoicesConfig is the tone-to-voice lookup table used by the script planner
// plus the fixed narrator voice for chat sessions.
type VoicesConfig struct {
	Documentary   string `yaml:"documentary"`
	Upbeat        string `yaml:"upbeat"`
	Promotional   string `yaml:"promotional"`
	Instructional string `yaml:"instructional"`
	Narrator      string `yaml:"narrator"`
}

type VideoConfig struct {
	OutputDir      string `yaml:"output_dir"`
	Resolution     string `yaml:"resolution"`
	FrameRate      int    `yaml:"frame_rate"`
	PaddingSeconds int    `yaml:"padding_seconds"`
}

type ClipConfig struct {
	Parallelism      int `yaml:"parallelism"`
	ImageCallsPerMin int `yaml:"image_calls_per_min"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		ElevenLabsAPIKeys: splitKeys(os.Getenv("ELEVENLABS_API_KEY")),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	return cfg
}

func splitKeys(raw string) []string {
	var keys []string
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	applyGroqDefaults(cfg)
	applySpeechDefaults(cfg)
	applyImageDefaults(cfg)
	applyScriptDefaults(cfg)
	applyVoicesDefaults(cfg)
	applyVideoDefaults(cfg)
	applyClipDefaults(cfg)
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
}

func applySpeechDefaults(cfg *Config) {
	if cfg.Speech.Provider == "" {
		cfg.Speech.Provider = defaultSpeechProvider
	}
	if cfg.Speech.Model == "" {
		cfg.Speech.Model = defaultSpeechModel
	}
	if cfg.Speech.Stability == 0 {
		cfg.Speech.Stability = defaultStability
	}
	if cfg.Speech.Similarity == 0 {
		cfg.Speech.Similarity = defaultSimilarity
	}
	if cfg.Speech.Speed == 0 {
		cfg.Speech.Speed = defaultSpeed
	}
}

func applyImageDefaults(cfg *Config) {
	if cfg.Image.Model == "" {
		cfg.Image.Model = defaultImageModel
	}
	if cfg.Image.Size == "" {
		cfg.Image.Size = defaultImageSize
	}
	if cfg.Image.Quality == "" {
		cfg.Image.Quality = defaultImageQuality
	}
}

func applyScriptDefaults(cfg *Config) {
	if cfg.Script.MaxDirectives == 0 {
		cfg.Script.MaxDirectives = defaultMaxDirectives
	}
	if cfg.Script.TargetSeconds == 0 {
		cfg.Script.TargetSeconds = defaultTargetSeconds
	}
}

func applyVoicesDefaults(cfg *Config) {
	if cfg.Voices.Documentary == "" {
		cfg.Voices.Documentary = defaultDocumentaryVoice
	}
	if cfg.Voices.Upbeat == "" {
		cfg.Voices.Upbeat = defaultUpbeatVoice
	}
	if cfg.Voices.Promotional == "" {
		cfg.Voices.Promotional = defaultPromotionalVoice
	}
	if cfg.Voices.Instructional == "" {
		cfg.Voices.Instructional = defaultInstructionalVoice
	}
	if cfg.Voices.Narrator == "" {
		cfg.Voices.Narrator = defaultNarratorVoice
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = defaultOutputDir
	}
	if cfg.Video.Resolution == "" {
		cfg.Video.Resolution = defaultResolution
	}
	if cfg.Video.FrameRate == 0 {
		cfg.Video.FrameRate = defaultFrameRate
	}
	if cfg.Video.PaddingSeconds == 0 {
		cfg.Video.PaddingSeconds = defaultPaddingSeconds
	}
}

func applyClipDefaults(cfg *Config) {
	if cfg.Clip.Parallelism == 0 {
		cfg.Clip.Parallelism = defaultParallelism
	}
	if cfg.Clip.ImageCallsPerMin == 0 {
		cfg.Clip.ImageCallsPerMin = defaultImageCallsPerMin
	}
}
