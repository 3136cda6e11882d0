package main

import (
	"log"

	api "github.com/vraj-isotiya/topcitylight/cmd/api"
	custdomain "github.com/vraj-isotiya/topcitylight/internal/customer/domain"
	custRepo "github.com/vraj-isotiya/topcitylight/internal/customer/repository"
	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"
	mailRepo "github.com/vraj-isotiya/topcitylight/internal/mail/repository"
	mailUsecase "github.com/vraj-isotiya/topcitylight/internal/mail/usecase"
	"github.com/vraj-isotiya/topcitylight/pkg/cleaner"
	"github.com/vraj-isotiya/topcitylight/pkg/config"
	"github.com/vraj-isotiya/topcitylight/pkg/database"
	"github.com/vraj-isotiya/topcitylight/pkg/imap"
	"github.com/vraj-isotiya/topcitylight/pkg/mailer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&custdomain.Customer{},
		&custdomain.User{},
		&maildomain.EmailThread{},
		&maildomain.EmailReply{},
		&maildomain.EmailProviderSetting{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	threadRepo := mailRepo.NewThreadRepository(db)
	settingRepo := mailRepo.NewProviderSettingRepository(db)
	customerRepo := custRepo.NewCustomerRepository(db)
	userRepo := custRepo.NewUserRepository(db)

	// Initialize IMAP service
	imapService := imap.NewService(cfg.ConnectTimeout)

	// Initialize use cases (dependency injection)
	mailUc := mailUsecase.NewMailUsecase(threadRepo, settingRepo, customerRepo, userRepo, mailer.NewDispatcher, cfg.ConnectTimeout)
	syncUc := mailUsecase.NewSyncUsecase(threadRepo, settingRepo, imapService, cleaner.Clean, cfg.SyncTimeout)

	// Initialize HTTP handler
	handler := api.NewHandler(mailUc, syncUc, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
