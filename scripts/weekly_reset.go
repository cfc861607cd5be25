// 手动触发全班周积分重置脚本
//
// 该功能已集成到主应用的后台定时任务中（每周日由 Redis 锁保证全局执行一次）。
// 此脚本仅用于手动触发，例如学期中途调整数值表后需要立即清零。
//
// 用法: go run scripts/weekly_reset.go

package main

import (
	"classroom_champions_backend/internal/config"
	"classroom_champions_backend/internal/repository"
	"classroom_champions_backend/pkg/database"
	"classroom_champions_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	classIDs, err := classRepo.AllIDs()
	if err != nil {
		log.Fatalf("读取班级列表失败: %v", err)
	}

	log.Printf("手动触发周重置，共 %d 个班级...", len(classIDs))
	for _, classID := range classIDs {
		if err := studentRepo.ResetWeekly(classID); err != nil {
			log.Printf("班级 %d 重置失败: %v", classID, err)
		}
	}
	log.Println("完成！")
}
