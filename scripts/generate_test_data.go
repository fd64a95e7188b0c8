package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
	"github.com/sirupsen/logrus"
)

// 测试数据生成器：为手动习惯写入最近若干天的记录，并创建示例目标
func main() {
	days := flag.Int("days", 60, "number of days to generate, ending today")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	habits := service.NewHabitService(db.DB).WithLogger(quietLogger())
	if err := habits.Initialize(); err != nil {
		log.Fatal("写入习惯定义失败:", err)
	}

	end := time.Now().UTC()
	written, err := createTestEntries(habits, end, *days, rand.New(rand.NewSource(*seed)))
	if err != nil {
		log.Fatal("生成记录失败:", err)
	}
	goals, err := createTestGoals(habits, end.AddDate(0, 0, -(*days - 1)))
	if err != nil {
		log.Fatal("生成目标失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("记录: %d 条（%d 天）\n", written, *days)
	fmt.Printf("目标: %d 个\n", goals)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// 每个手动习惯的取值范围与漏记概率
var manualHabitProfiles = []struct {
	habitID  string
	min, max float64
	skipRate float64
	integer  bool
}{
	{habitID: "reading", min: 5, max: 60, skipRate: 0.2, integer: true},
	{habitID: "meditation", min: 5, max: 30, skipRate: 0.3, integer: true},
	{habitID: "deep_work", min: 0.5, max: 6, skipRate: 0.25},
}

// createTestEntries 以 end 为最后一天，向前生成 days 天的手动记录
func createTestEntries(habits *service.HabitService, end time.Time, days int, rng *rand.Rand) (int, error) {
	logs := service.NewDailyLogService(service.NewEntryRepository(db.DB), habits).WithLogger(quietLogger())

	written := 0
	for offset := days - 1; offset >= 0; offset-- {
		date := end.AddDate(0, 0, -offset)
		for _, profile := range manualHabitProfiles {
			if rng.Float64() < profile.skipRate {
				continue
			}
			value := profile.min + rng.Float64()*(profile.max-profile.min)
			if profile.integer {
				value = float64(int(value))
			} else {
				value = float64(int(value*10)) / 10
			}
			if _, err := logs.RecordManual(date, profile.habitID, value); err != nil {
				return written, fmt.Errorf("record %s on %s: %w", profile.habitID, service.FormatDate(date), err)
			}
			written++
		}
	}

	fmt.Println("✅ 测试记录创建完成")
	return written, nil
}

// createTestGoals 创建示例目标，已存在的目标跳过
func createTestGoals(habits *service.HabitService, start time.Time) (int, error) {
	goals := service.NewGoalService(service.NewGoalRepository(db.DB), service.NewEntryRepository(db.DB), habits).
		WithLogger(quietLogger())

	inputs := []service.GoalInput{
		{ID: "reading-daily", HabitID: "reading", TargetValue: 20, Comparison: db.ComparisonAtLeast, Period: db.PeriodDaily, StartDate: start, Description: "每天至少读 **20 页**"},
		{ID: "meditation-weekly", HabitID: "meditation", TargetValue: 90, Comparison: db.ComparisonAtLeast, Period: db.PeriodWeekly, StartDate: start},
		{ID: "deep-work-monthly", HabitID: "deep_work", TargetValue: 60, Comparison: db.ComparisonAtLeast, Period: db.PeriodMonthly, StartDate: start},
	}

	created := 0
	for _, input := range inputs {
		existing, err := goals.Get(input.ID)
		if err == nil && existing != nil {
			fmt.Printf("目标 %s 已存在，跳过创建\n", input.ID)
			continue
		}
		if _, err := goals.Create(input); err != nil {
			return created, err
		}
		created++
	}

	fmt.Println("✅ 测试目标创建完成")
	return created, nil
}
