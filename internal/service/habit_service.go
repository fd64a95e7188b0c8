package service

import (
	"fmt"
	"strings"

	"github.com/habitlog/internal/db"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HabitCatalog 是只读的习惯目录
type HabitCatalog interface {
	Get(id string) (*db.Habit, error)
	List() ([]db.Habit, error)
}

// HabitService 维护内置习惯目录
// 习惯只能由定义列表在启动时写入，接口层只读
// 不在定义列表中的 ID 一律视为不存在
type HabitService struct {
	db          *gorm.DB
	definitions []HabitDefinition
	categories  []db.Category
	index       map[string]int
	log         logrus.FieldLogger
}

// NewHabitService 构造 HabitService，使用内置定义
func NewHabitService(gdb *gorm.DB) *HabitService {
	s := &HabitService{db: gdb, categories: DefaultCategories(), log: logrus.StandardLogger()}
	return s.WithDefinitions(DefaultHabitDefinitions())
}

// WithDefinitions 替换习惯定义列表，主要用于测试
func (s *HabitService) WithDefinitions(defs []HabitDefinition) *HabitService {
	s.definitions = append([]HabitDefinition(nil), defs...)
	s.index = make(map[string]int, len(defs))
	for i, def := range s.definitions {
		s.index[def.ID] = i
	}
	return s
}

// WithLogger 设置日志输出
func (s *HabitService) WithLogger(logger logrus.FieldLogger) *HabitService {
	if logger != nil {
		s.log = logger
	}
	return s
}

// Initialize 校验定义并将分类与习惯写入数据库，应用启动时调用一次
func (s *HabitService) Initialize() error {
	if err := validateHabitDefinitions(s.definitions, s.categories); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, category := range s.categories {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "color"}),
			}).Create(&category).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", category.ID, err)
			}
		}

		for _, def := range s.definitions {
			habit := def.toHabit()
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "unit", "source", "description", "category_id",
					"provider_name", "provider_metric", "updated_at",
				}),
			}).Create(&habit).Error; err != nil {
				return fmt.Errorf("seed habit %s: %w", def.ID, err)
			}
			s.log.WithFields(logrus.Fields{"habit_id": habit.ID, "source": habit.Source}).Debug("habit initialized")
		}

		s.log.WithField("count", len(s.definitions)).Info("habit catalog initialized")
		return nil
	})
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(id string) (*db.Habit, error) {
	id = strings.TrimSpace(id)
	if _, ok := s.index[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}

	var habits []db.Habit
	if err := s.db.Where("id = ?", id).Limit(1).Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	if len(habits) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}
	return &habits[0], nil
}

// List 按定义顺序返回全部习惯
func (s *HabitService) List() ([]db.Habit, error) {
	if len(s.definitions) == 0 {
		return []db.Habit{}, nil
	}

	ids := make([]string, 0, len(s.definitions))
	for _, def := range s.definitions {
		ids = append(ids, def.ID)
	}

	var rows []db.Habit
	if err := s.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	ordered := make([]db.Habit, len(s.definitions))
	present := make([]bool, len(s.definitions))
	for _, row := range rows {
		if i, ok := s.index[row.ID]; ok {
			ordered[i] = row
			present[i] = true
		}
	}

	habits := make([]db.Habit, 0, len(rows))
	for i, ok := range present {
		if ok {
			habits = append(habits, ordered[i])
		}
	}
	return habits, nil
}

// Categories 返回全部分类
func (s *HabitService) Categories() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func validateHabitDefinitions(defs []HabitDefinition, categories []db.Category) error {
	known := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		known[category.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if strings.TrimSpace(def.ID) == "" {
			return fmt.Errorf("habit definition %q: id is required", def.Name)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("habit definition %s: duplicate id", def.ID)
		}
		seen[def.ID] = struct{}{}

		if !def.Source.Valid() {
			return fmt.Errorf("habit definition %s: unsupported source %q", def.ID, def.Source)
		}
		if def.Source == db.SourceAutomatic && def.ProviderName == "" {
			return fmt.Errorf("habit definition %s: automatic habit requires a provider", def.ID)
		}
		if def.CategoryID != "" {
			if _, ok := known[def.CategoryID]; !ok {
				return fmt.Errorf("habit definition %s: unknown category %s", def.ID, def.CategoryID)
			}
		}
	}
	return nil
}
