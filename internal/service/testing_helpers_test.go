package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/habitlog/internal/db"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceTestDB 为每个测试打开独立的内存数据库
func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	gdb, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// newTestCatalog 写入内置习惯定义并返回目录
func newTestCatalog(t *testing.T, gdb *gorm.DB) *HabitService {
	t.Helper()

	habits := NewHabitService(gdb).WithLogger(quietLogger())
	if err := habits.Initialize(); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	return habits
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()

	d, err := ParseDate(value)
	if err != nil {
		t.Fatalf("ParseDate(%q) returned error: %v", value, err)
	}
	return d
}

// seedEntries 为某习惯按天写入数值
func seedEntries(t *testing.T, store EntryStore, habitID string, values map[string]float64) {
	t.Helper()

	for day, value := range values {
		date := mustDate(t, day)
		log := NewDailyLog(date)
		if err := log.AddOrUpdate(newEntry(habitID, date, value, db.SourceManual, time.Now())); err != nil {
			t.Fatalf("AddOrUpdate returned error: %v", err)
		}
		if err := store.Save(log); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
