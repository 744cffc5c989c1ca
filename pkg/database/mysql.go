// Package database 负责初始化 MySQL 与 Redis 连接。
package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
	"doc-annotator-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 数据库连接，autoMigrate 为 true 时同步表结构。
func InitMySQL(dsn string, autoMigrate bool) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		// 将唯一键冲突等驱动错误转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}

	sqlDB.SetMaxIdleConns(10)           // 设置空闲连接池中连接的最大数量
	sqlDB.SetMaxOpenConns(100)          // 设置打开数据库连接的最大数量
	sqlDB.SetConnMaxLifetime(time.Hour) // 设置了连接可复用的最大时间

	if autoMigrate {
		if err := model.Migrate(DB); err != nil {
			log.Fatal("failed to migrate database", err)
		}
		log.Info("MySQL schema migrated")
	}

	log.Info("MySQL database connected successfully")
}
