// service содержит бизнес-логику entitlements-сервиса:
// жизненный цикл грантов доступа (выдача, покупка, отзыв, продление),
// проверку доступа с ленивым протуханием и выдачу scope-токенов
// пользователя через проекцию user_scopes.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки возвращаются и далее маппятся транспортом на HTTP-коды
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/Hylozoic/entitlements-service/internal/cache"
	"github.com/Hylozoic/entitlements-service/internal/config"
	"github.com/Hylozoic/entitlements-service/internal/storage"
)

var (
	// ErrGrantNotFound — грант с указанным идентификатором отсутствует.
	// Транспорт: HTTP 404.
	ErrGrantNotFound = errors.New("grant not found")

	// ErrInvalidTarget — в параметрах не указана ровно одна цель гранта
	// (трек, роль или группа). Транспорт: HTTP 400.
	ErrInvalidTarget = errors.New("exactly one grant target is required")

	// ErrMissingUser — не указан пользователь-получатель гранта.
	// Транспорт: HTTP 400.
	ErrMissingUser = errors.New("user id is required")

	// ErrMissingGroup — не указана группа, от имени которой выдан грант.
	// Транспорт: HTTP 400.
	ErrMissingGroup = errors.New("granted_by_group id is required")

	// ErrMissingSession — для покупки не указан идентификатор checkout-сессии.
	// Транспорт: HTTP 400.
	ErrMissingSession = errors.New("stripe session id is required")

	// ErrMissingSubscription — не указан идентификатор подписки.
	// Транспорт: HTTP 400.
	ErrMissingSubscription = errors.New("stripe subscription id is required")
)

// Service описывает бизнес-логику entitlements-сервиса.
type Service struct {
	storage storage.Storage
	cfg     config.EntitlementsConfig
	scache  cache.ScopeCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.EntitlementsConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
	}
}

// SetScopeCache устанавливает кэш scope-токенов (опционально).
func (s *Service) SetScopeCache(c cache.ScopeCache) {
	s.scache = c
}
