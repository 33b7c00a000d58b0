package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how raw corpus text is split into passages.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// CorpusConfig configures the themed corpus fetcher. Sources maps a theme
// name to the ordered list of URLs its reference text is pulled from.
type CorpusConfig struct {
	Sources             map[string][]string `yaml:"sources,omitempty"`
	ParagraphsPerSource int                 `yaml:"paragraphs_per_source"`
	TimeoutSecs         int                 `yaml:"timeout_secs"`
}

// IndexConfig configures the persisted theme index cache.
type IndexConfig struct {
	Dir  string `yaml:"dir"`
	TopK int    `yaml:"top_k"`
}

// ProviderConfig configures one remote generation provider.
type ProviderConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Temperature float64 `yaml:"temperature"`
}

// GenerationConfig configures the fallback chain's provider tiers.
type GenerationConfig struct {
	Primary   ProviderConfig `yaml:"primary"`
	Secondary ProviderConfig `yaml:"secondary"`
}

// SafetyConfig configures the content safety filter. An empty BlocklistPath
// means the embedded default dataset is used.
type SafetyConfig struct {
	BlocklistPath string `yaml:"blocklist_path"`
}

// IllustrationConfig configures the external image generation service.
// An empty URL disables illustration.
type IllustrationConfig struct {
	URL            string  `yaml:"url"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
	InferenceSteps int     `yaml:"inference_steps"`
	GuidanceScale  float64 `yaml:"guidance_scale"`
}

// TranslationConfig configures the external translation service.
// An empty URL disables translation.
type TranslationConfig struct {
	URL         string `yaml:"url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LogLevel     string             `yaml:"log_level"`
	Embedder     EmbedderConfig     `yaml:"embedder"`
	Chunker      ChunkerConfig      `yaml:"chunker"`
	Corpus       CorpusConfig       `yaml:"corpus"`
	Index        IndexConfig        `yaml:"index"`
	Generation   GenerationConfig   `yaml:"generation"`
	Safety       SafetyConfig       `yaml:"safety"`
	Illustration IllustrationConfig `yaml:"illustration"`
	Translation  TranslationConfig  `yaml:"translation"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/storyweaver/config.yaml.
// If neither exists, it writes defaults to ~/.config/storyweaver/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "storyweaver", "config.yaml"), nil
}

// DefaultThemeSources returns the built-in corpus source lists per theme.
// Unrecognized themes resolve to the "general" set.
func DefaultThemeSources() map[string][]string {
	return map[string][]string{
		"mythology": {
			"https://www.templepurohit.com/vedic-vaani/hindu-mythology-stories/",
			"https://www.kidsgen.com/fables_and_fairytales/indian_mythology_stories/",
			"https://mythopedia.com/",
			"https://www.ancient-origins.net/myths-legends",
		},
		"animal": {
			"https://www.talesofpanchatantra.com/",
			"https://www.kidsgen.com/fables_and_fairytales/african_folk_tales/",
			"https://www.worldoftales.com/",
			"https://pantheon.org/",
			"https://www.worldhistory.org/mythology/",
		},
		"bedtime": {
			"https://www.bedtimeshortstories.com/",
			"https://www.shortkidstories.com/",
			"https://www.storyberries.com/",
			"https://www.freechildrenstories.com/",
			"https://www.littlefox.com/",
		},
		"general": {
			"https://www.pitara.com/fiction-for-kids/stories-for-kids/",
			"https://americanliterature.com/childrens-stories",
			"https://www.indiaparenting.com/stories/",
			"https://www.uniteforliteracy.com/",
			"https://www.globalstorybooks.net/",
		},
	}
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		LogLevel: "info",
		Embedder: EmbedderConfig{Type: "tfidf"},
		Chunker:  ChunkerConfig{ChunkSize: 500, ChunkOverlap: 100},
		Corpus: CorpusConfig{
			Sources:             DefaultThemeSources(),
			ParagraphsPerSource: 5,
			TimeoutSecs:         5,
		},
		Index: IndexConfig{Dir: "story_index", TopK: 5},
		Generation: GenerationConfig{
			Primary: ProviderConfig{
				BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
				APIKeyEnv:   "GEMINI_API_KEY",
				Model:       "gemini-1.5-pro",
				TimeoutSecs: 30,
				Temperature: 0.8,
			},
			Secondary: ProviderConfig{
				BaseURL:     "https://api-inference.huggingface.co",
				APIKeyEnv:   "HF_API_TOKEN",
				Model:       "gpt2",
				TimeoutSecs: 30,
				Temperature: 0.8,
			},
		},
		Illustration: IllustrationConfig{
			TimeoutSecs:    60,
			InferenceSteps: 30,
			GuidanceScale:  1.1,
		},
		Translation: TranslationConfig{TimeoutSecs: 10},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Chunker.ChunkSize <= 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Chunker.ChunkOverlap < 0 {
		cfg.Chunker.ChunkOverlap = 0
	}
	if len(cfg.Corpus.Sources) == 0 {
		cfg.Corpus.Sources = DefaultThemeSources()
	}
	if cfg.Corpus.ParagraphsPerSource <= 0 {
		cfg.Corpus.ParagraphsPerSource = def.Corpus.ParagraphsPerSource
	}
	if cfg.Corpus.TimeoutSecs <= 0 {
		cfg.Corpus.TimeoutSecs = def.Corpus.TimeoutSecs
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = def.Index.Dir
	}
	if cfg.Index.TopK <= 0 {
		cfg.Index.TopK = def.Index.TopK
	}
	applyProviderDefaults(&cfg.Generation.Primary, def.Generation.Primary)
	applyProviderDefaults(&cfg.Generation.Secondary, def.Generation.Secondary)
	if cfg.Illustration.TimeoutSecs <= 0 {
		cfg.Illustration.TimeoutSecs = def.Illustration.TimeoutSecs
	}
	if cfg.Illustration.InferenceSteps <= 0 {
		cfg.Illustration.InferenceSteps = def.Illustration.InferenceSteps
	}
	if cfg.Illustration.GuidanceScale <= 0 {
		cfg.Illustration.GuidanceScale = def.Illustration.GuidanceScale
	}
	if cfg.Translation.TimeoutSecs <= 0 {
		cfg.Translation.TimeoutSecs = def.Translation.TimeoutSecs
	}
}

func applyProviderDefaults(p *ProviderConfig, def ProviderConfig) {
	if p.BaseURL == "" {
		p.BaseURL = def.BaseURL
	}
	if p.APIKeyEnv == "" {
		p.APIKeyEnv = def.APIKeyEnv
	}
	if p.Model == "" {
		p.Model = def.Model
	}
	if p.TimeoutSecs <= 0 {
		p.TimeoutSecs = def.TimeoutSecs
	}
	if p.Temperature <= 0 {
		p.Temperature = def.Temperature
	}
}
