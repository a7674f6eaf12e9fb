package provider

import (
	"strings"

	"github.com/stagefront/internal/authz"
	"github.com/stagefront/internal/cache"
	"github.com/stagefront/internal/config"
	"github.com/stagefront/internal/logger"
	"github.com/stagefront/internal/models"
	"github.com/stagefront/internal/repository"
	"github.com/stagefront/internal/service"

	"github.com/shopspring/decimal"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	AdminRepo   repository.AdminRepository
	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	VariantRepo repository.ProductVariantRepository
	VoucherRepo repository.VoucherRepository
	OrderRepo   repository.OrderRepository
	CartRepo    repository.CartRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	ProductService      *service.ProductService
	CartService         *service.CartService
	VoucherService      *service.VoucherService
	VoucherAdminService *service.VoucherAdminService
	OrderService        *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariantRepo = repository.NewProductVariantRepository(db)
	c.VoucherRepo = repository.NewVoucherRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.VariantRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.VariantRepo)
	c.VoucherService = service.NewVoucherService(c.VoucherRepo)
	c.VoucherAdminService = service.NewVoucherAdminService(c.VoucherRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.VariantRepo,
		c.VoucherRepo,
		c.VoucherService,
		resolveShippingFee(c.Config.Order.ShippingFee),
		resolveCurrency(c.Config.Order.Currency),
	)
}

func resolveShippingFee(raw string) models.Money {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.Money{}
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil || amount.IsNegative() {
		logger.Warnw("provider_invalid_shipping_fee", "value", raw)
		return models.Money{}
	}
	return models.NewMoneyFromDecimal(amount)
}

func resolveCurrency(raw string) string {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return "VND"
	}
	return currency
}
