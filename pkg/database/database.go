package database

import (
	"fmt"

	"coder_quest_backend/internal/config"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established")
	return db, nil
}

// Migrate 建表并写入默认目录，可重复执行
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.UserProgress{},
		&model.AchievementDefinition{},
		&model.Quest{},
		&model.QuestRating{},
	)
	if err != nil {
		return err
	}
	logger.Log.Info("Database migration completed")

	return SeedCatalog(db)
}
