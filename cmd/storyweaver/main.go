package main

import (
	"flag"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/chunker"
	"storyweaver/internal/config"
	"storyweaver/internal/corpus"
	"storyweaver/internal/domain"
	"storyweaver/internal/embedding"
	"storyweaver/internal/generate"
	"storyweaver/internal/illustrate"
	"storyweaver/internal/index"
	"storyweaver/internal/safety"
	"storyweaver/internal/story"
	"storyweaver/internal/summarizer"
	"storyweaver/internal/translate"
	"storyweaver/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, theme, language string
	var length int
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/storyweaver/config.yaml if not provided)")
	flag.StringVar(&theme, "theme", "general", "Story theme (mythology, animal, bedtime, general)")
	flag.IntVar(&length, "length", 2, "Story length tier (1 short, 2 medium, 3 long)")
	flag.StringVar(&language, "language", "en", "Target language code for story text")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// The safety filter has no degraded mode: a broken blocklist halts startup.
	filter, err := safety.New(cfg.Safety.BlocklistPath)
	if err != nil {
		logrus.Fatalf("safety filter init failed: %v", err)
	}

	var newEmbedder index.EmbedderFactory
	switch cfg.Embedder.Type {
	case "tfidf", "":
		newEmbedder = func() (domain.Embedder, error) { return embedding.NewTFIDF(), nil }
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			logrus.Fatal("openai embedder config missing")
		}
		ocfg := embedding.OpenAIConfig{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		}
		newEmbedder = func() (domain.Embedder, error) { return embedding.NewOpenAIClient(ocfg) }
	default:
		logrus.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	fetcher := corpus.New(cfg.Corpus.Sources, cfg.Corpus.ParagraphsPerSource,
		time.Duration(cfg.Corpus.TimeoutSecs)*time.Second)
	ch := chunker.NewWindowChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)

	registry, err := index.NewRegistry(cfg.Index.Dir, fetcher, ch, newEmbedder)
	if err != nil {
		logrus.Fatalf("index registry init failed: %v", err)
	}

	sum := summarizer.NewFrequencySummarizer()
	primary := generate.NewGemini(providerSettings(cfg.Generation.Primary))
	secondary := generate.NewHuggingFace(providerSettings(cfg.Generation.Secondary))
	chain := generate.NewChain(
		generate.NewRAG(registry, primary, sum, cfg.Index.TopK),
		generate.NewDirect(secondary, sum),
		generate.Template{},
	)

	var illustrator domain.Illustrator
	if cfg.Illustration.URL != "" {
		illustrator = illustrate.New(illustrate.Config{
			URL:            cfg.Illustration.URL,
			Timeout:        time.Duration(cfg.Illustration.TimeoutSecs) * time.Second,
			InferenceSteps: cfg.Illustration.InferenceSteps,
			GuidanceScale:  cfg.Illustration.GuidanceScale,
		})
	}

	var translator domain.Translator
	if cfg.Translation.URL != "" {
		translator = translate.New(cfg.Translation.URL,
			time.Duration(cfg.Translation.TimeoutSecs)*time.Second)
	}

	orchestrator := story.New(filter, chain, illustrator, translator)

	m := tui.New(orchestrator, tui.Session{Theme: theme, StoryLength: length, Language: language})
	if _, err := tea.NewProgram(m).Run(); err != nil {
		logrus.Fatal(err)
	}
}

func providerSettings(p config.ProviderConfig) generate.ProviderSettings {
	return generate.ProviderSettings{
		BaseURL:     p.BaseURL,
		APIKeyEnv:   p.APIKeyEnv,
		Model:       p.Model,
		Timeout:     time.Duration(p.TimeoutSecs) * time.Second,
		Temperature: p.Temperature,
	}
}
