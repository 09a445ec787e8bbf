package provider

import (
	"time"

	"github.com/confirmador/internal/cache"
	"github.com/confirmador/internal/config"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/queue"
	"github.com/confirmador/internal/repository"
	"github.com/confirmador/internal/service"
	"github.com/confirmador/internal/shopify"
	"github.com/confirmador/internal/whatsapp"
)

// Container wires repositories, clients and services together.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OrderRepo         repository.OrderRepository
	TemplateRepo      repository.TemplateRepository
	ShopifyConfigRepo repository.ShopifyConfigRepository

	// Clients
	Messenger     whatsapp.Messenger
	ShopifyClient *shopify.Client

	// Services
	TemplateService     *service.TemplateService
	ConfirmationService *service.ConfirmationService
	IngestService       *service.IngestService
	SchedulerService    *service.SchedulerService
	SyncService         *service.SyncService
}

// NewContainer initializes the dependency container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initClients()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.TemplateRepo = repository.NewTemplateRepository(db)
	c.ShopifyConfigRepo = repository.NewShopifyConfigRepository(db)
}

func (c *Container) initClients() {
	c.Messenger = whatsapp.NewGatewayClient(c.Config.WhatsApp)
	c.ShopifyClient = shopify.NewClient(
		c.ShopifyConfigRepo,
		c.Config.Shopify.APIVersion,
		time.Duration(c.Config.Shopify.TimeoutSeconds)*time.Second,
	)
}

func (c *Container) initServices() {
	cfcfg := c.Config.Confirmation
	delayer := service.NewRandomDelayer(
		time.Duration(cfcfg.ReplyDelayMinSeconds)*time.Second,
		time.Duration(cfcfg.ReplyDelayMaxSeconds)*time.Second,
	)

	c.TemplateService = service.NewTemplateService(c.TemplateRepo)
	c.ConfirmationService = service.NewConfirmationService(
		c.OrderRepo,
		c.TemplateService,
		c.Messenger,
		c.ShopifyClient,
		c.QueueClient,
		delayer,
		service.ConfirmationOptions{
			CountryPrefix: c.Config.WhatsApp.DefaultCountryPrefix,
			ChatIDSuffix:  c.Config.WhatsApp.ChatIDSuffix,
			StoreURL:      c.Config.WhatsApp.StoreURL,
		},
	)
	c.IngestService = service.NewIngestService(c.OrderRepo, c.ShopifyConfigRepo)
	c.SchedulerService = service.NewSchedulerService(
		c.OrderRepo,
		c.ConfirmationService,
		c.Messenger,
		c.ShopifyClient,
		c.QueueClient,
		delayer,
		service.SchedulerOptions{
			FirstReminderAfter:  time.Duration(cfcfg.FirstReminderHours) * time.Hour,
			SecondReminderAfter: time.Duration(cfcfg.SecondReminderHours) * time.Hour,
			AutoCancelAfter:     time.Duration(cfcfg.AutoCancelHours) * time.Hour,
		},
	)
	c.SyncService = service.NewSyncService(c.ShopifyClient, c.IngestService)
}

// Close releases the container's long-lived resources.
func (c *Container) Close() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("queue_client_close_failed", "error", err)
		}
	}
}
