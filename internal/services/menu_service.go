package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/models"
	"github.com/charlesng35/gymadmin/internal/permissions"
	apperrors "github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/logger"
	"github.com/charlesng35/gymadmin/pkg/metrics"
)

// Menu sources recorded on each stored revision.
const (
	MenuSourceDefault = "default"
	MenuSourceFile    = "file"
	MenuSourceAPI     = "api"
)

// MenuService owns the menu configuration: it loads the active revision into
// the resolver and publishes replacements.
type MenuService struct {
	db       *gorm.DB
	resolver *permissions.Resolver
	menuFile string
	log      *zap.Logger
	active   atomic.Int64
}

// NewMenuService constructs a MenuService. menuFile seeds an empty database
// and may be blank, in which case the embedded default menu is used.
func NewMenuService(db *gorm.DB, resolver *permissions.Resolver, menuFile string) (*MenuService, error) {
	if db == nil {
		return nil, errors.New("menu service: db is required")
	}
	if resolver == nil {
		return nil, errors.New("menu service: resolver is required")
	}
	return &MenuService{
		db:       db,
		resolver: resolver,
		menuFile: strings.TrimSpace(menuFile),
		log:      logger.WithModule("menu"),
	}, nil
}

// Bootstrap activates the latest stored revision. When none exists the menu
// file (or the embedded default) is compiled, stored as revision 1 and activated.
func (s *MenuService) Bootstrap(ctx context.Context) error {
	ctx = ensureContext(ctx)

	loaded, err := s.Reload(ctx)
	if err != nil || loaded {
		return err
	}

	doc, source, err := s.seedDocument()
	if err != nil {
		metrics.MenuReloads.WithLabelValues("error").Inc()
		return err
	}

	_, err = s.Replace(ctx, doc, source, "")
	return err
}

// Reload re-reads the latest stored revision into the resolver. It reports
// false when the database holds no revision. A revision that is already
// active is not recompiled.
func (s *MenuService) Reload(ctx context.Context) (bool, error) {
	latest, err := s.Latest(ensureContext(ctx))
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}
	if int64(latest.Version) == s.active.Load() {
		return true, nil
	}

	doc, err := decodeStoredMenu(latest)
	if err != nil {
		metrics.MenuReloads.WithLabelValues("error").Inc()
		return false, err
	}
	table, err := permissions.Compile(doc)
	if err != nil {
		metrics.MenuReloads.WithLabelValues("error").Inc()
		return false, fmt.Errorf("menu service: stored revision %d: %w", latest.Version, err)
	}

	s.warnIgnored(table, latest.Version)
	s.resolver.Swap(table)
	s.active.Store(int64(latest.Version))
	metrics.MenuReloads.WithLabelValues("success").Inc()
	s.log.Debug("menu reloaded", zap.Int("version", latest.Version))
	return true, nil
}

// Current returns the document backing the active snapshot.
func (s *MenuService) Current() permissions.MenuDocument {
	return s.resolver.Table().Document()
}

// ActiveVersion returns the revision currently loaded into the resolver, or 0.
func (s *MenuService) ActiveVersion() int {
	return int(s.active.Load())
}

// Latest returns the highest stored revision, or nil when there is none.
func (s *MenuService) Latest(ctx context.Context) (*models.MenuConfig, error) {
	var record models.MenuConfig
	err := s.db.WithContext(ensureContext(ctx)).Order("version DESC").Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("menu service: load latest: %w", err)
	}
	return &record, nil
}

// Replace validates doc, stores it as a new revision and swaps it into the
// resolver. An invalid document leaves the active snapshot untouched.
func (s *MenuService) Replace(ctx context.Context, doc permissions.MenuDocument, source, updatedBy string) (*models.MenuConfig, error) {
	ctx = ensureContext(ctx)

	table, err := permissions.Compile(doc)
	if err != nil {
		metrics.MenuReloads.WithLabelValues("rejected").Inc()
		return nil, apperrors.ErrInvalidMenu.WithInternal(err)
	}

	payload, err := json.Marshal(table.Document())
	if err != nil {
		return nil, fmt.Errorf("menu service: encode: %w", err)
	}

	record := &models.MenuConfig{
		Document:  datatypes.JSON(payload),
		Source:    source,
		UpdatedBy: strings.TrimSpace(updatedBy),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current int
		if err := tx.Model(&models.MenuConfig{}).
			Select("COALESCE(MAX(version), 0)").
			Scan(&current).Error; err != nil {
			return err
		}
		record.Version = current + 1
		return tx.Create(record).Error
	})
	if err != nil {
		metrics.MenuReloads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("menu service: store revision: %w", err)
	}

	s.warnIgnored(table, record.Version)
	s.resolver.Swap(table)
	s.active.Store(int64(record.Version))
	metrics.MenuReloads.WithLabelValues("success").Inc()
	s.log.Info("menu replaced",
		zap.Int("version", record.Version),
		zap.String("source", source),
		zap.String("updated_by", record.UpdatedBy),
	)
	return record, nil
}

func (s *MenuService) warnIgnored(table *permissions.Table, version int) {
	if ignored := table.IgnoredButtons(); len(ignored) > 0 {
		s.log.Warn("menu buttons without a known action are not granted",
			zap.Int("version", version),
			zap.Strings("buttons", ignored),
		)
	}
}

func (s *MenuService) seedDocument() (permissions.MenuDocument, string, error) {
	if s.menuFile == "" {
		return permissions.DefaultDocument(), MenuSourceDefault, nil
	}

	data, err := os.ReadFile(s.menuFile)
	if err != nil {
		return nil, "", fmt.Errorf("menu service: read %s: %w", s.menuFile, err)
	}
	doc, err := permissions.ParseMenuDocument(data, permissions.FormatFromPath(s.menuFile))
	if err != nil {
		return nil, "", fmt.Errorf("menu service: %s: %w", s.menuFile, err)
	}
	return doc, MenuSourceFile, nil
}

func decodeStoredMenu(record *models.MenuConfig) (permissions.MenuDocument, error) {
	var doc permissions.MenuDocument
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		return nil, fmt.Errorf("menu service: decode revision %d: %w", record.Version, err)
	}
	return doc, nil
}
