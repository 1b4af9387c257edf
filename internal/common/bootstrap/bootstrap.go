package bootstrap

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/avlasov/userhub/internal/common/clock"
	"github.com/avlasov/userhub/internal/common/config"
	commoncrypto "github.com/avlasov/userhub/internal/common/crypto"
	"github.com/avlasov/userhub/internal/common/db"
	"github.com/avlasov/userhub/internal/common/logger"
	"github.com/avlasov/userhub/internal/opaqueid"
	"github.com/avlasov/userhub/internal/user/repository"
	"github.com/avlasov/userhub/internal/user/service"
)

type App struct {
	Log         *logger.Logger
	Config      config.Config
	Pool        *pgxpool.Pool
	Codec       *opaqueid.Codec
	UserRepo    repository.Repository
	UserService *service.UserService
}

func New() (*App, error) {
	log, err := logger.New(os.Getenv("LOG_DIR"), "userhub", os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
		return nil, err
	}

	codec, err := opaqueid.New(opaqueid.Config{
		Salt:      cfg.OpaqueID.Salt,
		MinLength: cfg.OpaqueID.MinLength,
		Alphabet:  cfg.OpaqueID.Alphabet,
	})
	if err != nil {
		log.Fatalf("failed to construct opaque id codec: %v", err)
		return nil, err
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	if pool == nil {
		return nil, fmt.Errorf("failed to initialize database pool")
	}

	userRepo := repository.NewPgRepository(pool)
	userService := service.NewUserService(service.UserServiceDeps{
		Repo:   userRepo,
		Codec:  codec,
		Hasher: &commoncrypto.BcryptHasher{},
		Clock:  clock.NewRealClock(),
		Log:    log,
	})

	return &App{
		Log:         log,
		Config:      cfg,
		Pool:        pool,
		Codec:       codec,
		UserRepo:    userRepo,
		UserService: userService,
	}, nil
}
