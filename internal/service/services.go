package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"acqplan/internal/config"
	"acqplan/internal/model"
	"acqplan/internal/notify"
	"acqplan/internal/repository"
)

// Services groups every application service built on one database handle.
type Services struct {
	Users           UserService
	Departments     DepartmentService
	DepartmentTypes DepartmentTypeService
	Requests        RequestService
	Notifications   NotificationService
	Catalog         CatalogService
	Dashboard       DashboardService
	Audit           AuditService
	Settings        SettingService
}

// NewServices wires repositories into services (Repository -> Service).
// cache may be nil, in which case unread counts always hit the database.
func NewServices(db *gorm.DB, cache *notify.CountCache, jwtCfg config.JWTConfig, log *zap.Logger) *Services {
	tx := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	typeRepo := repository.NewDepartmentTypeRepository(db)

	audit := NewAuditService(repository.NewAuditRepository(db), log)
	notifications := NewNotificationService(repository.NewNotificationRepository(db), userRepo, cache, log)

	return &Services{
		Users:           NewUserService(userRepo, deptRepo, audit, jwtCfg),
		Departments:     NewDepartmentService(tx, deptRepo, typeRepo, audit),
		DepartmentTypes: NewDepartmentTypeService(typeRepo, deptRepo, audit),
		Requests: NewRequestService(
			tx,
			repository.NewRequestRepository(db),
			repository.NewHistoryRepository(db),
			repository.NewSequenceRepository(db),
			deptRepo,
			notifications,
			audit,
		),
		Notifications: notifications,
		Catalog: NewCatalogService(
			repository.NewLookupRepository[model.ItemType](db),
			repository.NewLookupRepository[model.ItemCategory](db),
			repository.NewLookupRepository[model.ContractType](db),
			repository.NewLookupRepository[model.AcquisitionTypeMaster](db),
			repository.NewItemRepository(db),
		),
		Dashboard: NewDashboardService(repository.NewStatisticsRepository(db)),
		Audit:     audit,
		Settings:  NewSettingService(tx, repository.NewSettingRepository(db), audit),
	}
}
