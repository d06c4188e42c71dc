package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Semester{},
		&models.UserProfile{},
		&models.Course{},
		&models.Contribution{},
		&models.Questionnaire{},
		&models.Question{},
		&models.TextAnswer{},
		&models.LikertAnswer{},
		&models.GradeAnswer{},
		&models.EmailTemplate{},
		&models.ActivityLog{},
	))

	return db
}

func intPtr(v int) *int {
	return &v
}

func uintPtr(v uint) *uint {
	return &v
}
