package bootstrap

import (
	"context"
	"log"

	"bpmn-interview-be/internal/config"
	"bpmn-interview-be/internal/controller"
	"bpmn-interview-be/internal/handler"
	"bpmn-interview-be/internal/metrics"
	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/internal/repository/contract"
	"bpmn-interview-be/internal/repository/memory"
	"bpmn-interview-be/internal/repository/redisstore"
	"bpmn-interview-be/internal/repository/unitofwork"
	"bpmn-interview-be/internal/service"
	"bpmn-interview-be/internal/websocket"
	"bpmn-interview-be/pkg/bpmn"
	"bpmn-interview-be/pkg/interview"
	"bpmn-interview-be/pkg/llm/factory"
	pktNats "bpmn-interview-be/pkg/nats"
	"bpmn-interview-be/pkg/prompt"
	"bpmn-interview-be/pkg/transcription"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// GenerationTopic is the in-process queue feeding the history table.
const GenerationTopic = "bpmn_generation.save"

type Container struct {
	Logger logger.ILogger

	// Controllers
	InterviewController  controller.IInterviewController
	GenerationController controller.IGenerationController

	// Background services, started by main
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub

	closers []func()
}

// NewContainer wires every dependency. db may be nil, in which case the
// generation history is disabled.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.closers = append(c.closers, func() { sysLogger.Sync() })
	c.Logger = sysLogger

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	// 2. Interview configuration
	catalog, err := interview.LoadCatalog(cfg.Interview.TopicsFile)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load topic catalog: %v", err)
	}
	processes, err := interview.LoadProcessTypes(cfg.Interview.ProcessInfoFile)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load process types: %v", err)
	}

	prompts := prompt.NewStore(cfg.Interview.PromptsDir)
	checkPrompts(prompts)

	// 3. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 4. Sessions
	var sessions contract.SessionRepository
	var locker service.SessionLocker
	if cfg.Session.Store == "redis" {
		if rdb == nil {
			log.Fatalf("[FATAL] SESSION_STORE=redis but Redis is not reachable at %s", cfg.App.RedisURL)
		}
		sessions = redisstore.NewSessionRepository(rdb, cfg.Session.TTL)
		locker = service.NewRedisSessionLocker(rdb, 0)
		log.Printf("[INFO] Using Redis session store (ttl %s)", cfg.Session.TTL)
	} else {
		sessions = memory.NewSessionRepository(cfg.Session.TTL)
		locker = service.NewLocalSessionLocker()
		log.Printf("[INFO] Using in-memory session store (ttl %s)", cfg.Session.TTL)
	}

	// 5. AI collaborators
	settings := factory.Settings{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		APIKey:   cfg.Keys.OpenAI,
	}
	switch cfg.Ai.LLMProvider {
	case "ollama":
		settings.BaseURL = cfg.Ai.OllamaBaseURL
	case "huggingface":
		settings.APIKey = cfg.Keys.HuggingFace
	}

	var orchestrator *interview.Orchestrator
	var pipeline *bpmn.Pipeline
	aiModel := cfg.Ai.LLMModel
	llmProvider, err := factory.NewLLMProvider(settings)
	if err != nil {
		log.Printf("[WARN] LLM provider unavailable, interview and generation are disabled: %v", err)
	} else {
		aiModel = llmProvider.ModelName()
		agents := interview.NewLLMAgents(llmProvider, prompts, sysLogger)
		orchestrator = interview.NewOrchestrator(agents, catalog, processes, sysLogger)
		pipeline = bpmn.NewPipeline(bpmn.NewGenerator(llmProvider, prompts), cfg.Interview.MaxImprovementAttempts, sysLogger)
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, aiModel)
	}

	var speech *transcription.Service
	if cfg.Keys.OpenAI != "" {
		whisper := transcription.NewWhisperTranscriber(cfg.Keys.OpenAI, cfg.Transcription.Model)
		speech = transcription.NewService(whisper, cfg.Transcription.Language, cfg.Transcription.Timeout)
	} else {
		log.Printf("[WARN] OPENAI_API_KEY not set, audio answers are disabled")
	}

	// 6. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()
	c.closers = append(c.closers, wsHub.Stop)

	// 7. Services
	eventPublisher := service.NewNatsEventPublisher(natsPub, sysLogger)
	publisherService := service.NewPublisherService(GenerationTopic, pubSub)
	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	interviewService := service.NewInterviewService(
		catalog,
		processes,
		orchestrator,
		pipeline,
		speech,
		sessions,
		locker,
		wsHub, // Hub implements ProgressNotifier
		eventPublisher,
		publisherService,
		recorder,
		aiModel,
		sysLogger,
	)
	generationService := service.NewGenerationService(uowFactory)

	c.ConsumerService = service.NewConsumerService(pubSub, GenerationTopic, uowFactory, sysLogger)
	c.NotificationService = service.NewNotificationService(natsSub, wsHub, wsLogger)

	// 8. Transport
	c.InterviewController = controller.NewInterviewController(interviewService)
	c.GenerationController = controller.NewGenerationController(generationService, cfg.App.JWTSecret)
	c.ProgressHandler = handler.NewProgressHandler(interviewService, wsHub, recorder, wsLogger)
	c.WebSocketHub = wsHub

	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func connectRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, continuing without it: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}

func checkPrompts(prompts *prompt.Store) {
	for _, name := range []string{
		prompt.CoT, prompt.Improvement, prompt.DIGeneration,
		prompt.SecurityAgent, prompt.SummaryAgent, prompt.ProbingAgent,
		prompt.SummarizeAnswer, prompt.TopicManager,
	} {
		if _, err := prompts.Load(name); err != nil {
			log.Printf("[WARN] Prompt template %q unavailable: %v", name, err)
		}
	}
}
